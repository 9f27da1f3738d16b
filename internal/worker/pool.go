package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PoolConfig names the queue and sizes the consumer pool
type PoolConfig struct {
	URL       string
	Queue     string
	Consumers int
	// Prefetch bounds unacknowledged deliveries per consumer
	Prefetch int
}

// Pool runs Consumers goroutines, each on its own channel, sharing one connection
type Pool struct {
	cfg     PoolConfig
	conn    *amqp.Connection
	handler *Handler
	logger  *zap.Logger
}

// Dial connects to the broker and declares the durable job queue
func Dial(cfg PoolConfig) (*amqp.Connection, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp url is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}
	return conn, nil
}

// NewPool creates a pool over an open connection
func NewPool(conn *amqp.Connection, cfg PoolConfig, handler *Handler, logger *zap.Logger) *Pool {
	if cfg.Consumers < 1 {
		cfg.Consumers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{cfg: cfg, conn: conn, handler: handler, logger: logger}
}

// Run consumes until ctx is done or a consumer fails. In-flight jobs finish
// or are requeued before Run returns.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Consumers; i++ {
		id := i + 1
		g.Go(func() error { return p.consume(gctx, id) })
	}
	p.logger.Info("worker pool started", zap.Int("consumers", p.cfg.Consumers), zap.String("queue", p.cfg.Queue))
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (p *Pool) consume(ctx context.Context, id int) error {
	log := p.logger.With(zap.Int("consumer", id))
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("consumer %d: failed to open channel: %w", id, err)
	}
	defer ch.Close()

	if p.cfg.Prefetch > 0 {
		if err := ch.Qos(p.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("consumer %d: failed to set qos: %w", id, err)
		}
	}
	tag := fmt.Sprintf("career-worker-%d", id)
	msgs, err := ch.Consume(p.cfg.Queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer %d: failed to consume: %w", id, err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("consumer stopping")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer %d: delivery channel closed", id)
			}
			p.handler.Handle(ctx, d)
		}
	}
}
