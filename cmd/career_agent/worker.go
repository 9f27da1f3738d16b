package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/worker"
)

var workerCommand = &cobra.Command{
	Use:   "worker",
	Short: "Consume extraction jobs from RabbitMQ",
	Long: `Runs a pool of consumers on the configured job queue. Each job names a résumé inline or
by S3 key; status updates are published to the status exchange under job.<job_id>.`,
	RunE: runWorker,
}

var workerConsumers int

func init() {
	workerCommand.Flags().IntVar(&workerConsumers, "consumers", 0, "Concurrent consumers (default from config)")
	rootCmd.AddCommand(workerCommand)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	orch := a.newOrchestrator(store, llm.NewRegistry(client))
	opts := []worker.HandlerOption{
		worker.WithDefaults(a.pipelineDefaults()),
		worker.WithHandlerLogger(a.logger),
	}

	if s3cfg := a.cfg.S3; s3cfg.Bucket != "" {
		source, err := worker.NewS3Source(ctx, worker.S3Options{
			Bucket:          s3cfg.Bucket,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
			UsePathStyle:    s3cfg.UsePathStyle,
		})
		if err != nil {
			return err
		}
		opts = append(opts, worker.WithSource(source))
	}

	wc := a.cfg.Worker
	poolCfg := worker.PoolConfig{
		URL:       wc.AMQPURL,
		Queue:     wc.JobQueue,
		Consumers: wc.Consumers,
		Prefetch:  wc.Prefetch,
	}
	if cmd.Flags().Changed("consumers") {
		poolCfg.Consumers = workerConsumers
	}

	conn, err := worker.Dial(poolCfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	publisher, err := worker.NewAMQPPublisher(conn, wc.StatusExchange)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()
	opts = append(opts, worker.WithPublisher(publisher))

	a.logger.Info("worker started",
		zap.String("queue", poolCfg.Queue),
		zap.String("exchange", wc.StatusExchange),
		zap.Int("consumers", poolCfg.Consumers),
		zap.Bool("s3", a.cfg.S3.Bucket != ""))

	pool := worker.NewPool(conn, poolCfg, worker.NewHandler(orch, opts...), a.logger)
	if err := pool.Run(ctx); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	a.logger.Info("worker stopped")
	return nil
}
