package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/pipeline/steps"
	"github.com/jonathan/career-extractor/internal/types"
)

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Report on a recorded extraction session, or list the sessions of a vault",
	RunE:  runReport,
}

var (
	reportSessionID string
	reportVault     string
	reportLimit     int
	reportOut       string
)

func init() {
	reportCommand.Flags().StringVar(&reportSessionID, "session-id", "", "Session to report on")
	reportCommand.Flags().StringVar(&reportVault, "vault", "", "List the most recent sessions of this vault")
	reportCommand.Flags().IntVar(&reportLimit, "limit", observability.DefaultSessionListLimit, "Maximum sessions listed")
	reportCommand.Flags().StringVarP(&reportOut, "out", "o", "", "Also write the report as JSON to this file")
	reportCommand.MarkFlagsMutuallyExclusive("session-id", "vault")
	reportCommand.MarkFlagsOneRequired("session-id", "vault")

	rootCmd.AddCommand(reportCommand)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
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

	if reportVault != "" {
		lister, ok := store.(observability.SessionLister)
		if !ok {
			return fmt.Errorf("%s store cannot list sessions", a.cfg.Store.Kind)
		}
		sessions, err := lister.ListSessions(ctx, reportVault, reportLimit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		printSessions(cmd.OutOrStdout(), reportVault, sessions)
		return nil
	}

	id, err := uuid.Parse(reportSessionID)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", reportSessionID, err)
	}
	report, err := observability.GenerateReport(ctx, store, id)
	if err != nil {
		if errors.Is(err, observability.ErrSessionNotFound) {
			return fmt.Errorf("session %s not found in %s store", id, a.cfg.Store.Kind)
		}
		return err
	}
	progress, err := steps.GetProgress(ctx, store, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	observability.NewPrinter(out).PrintReport(report)
	printProgress(out, progress)

	if reportOut != "" {
		if err := writeJSON(reportOut, report); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Report written to %s\n", reportOut)
	}
	return nil
}

func printSessions(w io.Writer, vault string, sessions []types.ExtractionSession) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintf(w, "No sessions for vault %s\n", vault)
		return
	}
	_, _ = fmt.Fprintf(w, "%-36s  %-10s  %-20s  %s\n", "SESSION", "STATUS", "STARTED", "USER")
	for _, s := range sessions {
		_, _ = fmt.Fprintf(w, "%-36s  %-10s  %-20s  %s\n",
			s.ID, s.Status, s.StartedAt.Format("2006-01-02 15:04:05"), s.UserID)
	}
}

func printProgress(w io.Writer, p *steps.Progress) {
	_, _ = fmt.Fprintf(w, "Phases completed: %d, available: %d, blocked: %d\n",
		len(p.Completed), len(p.Available), len(p.Blocked))
	for _, phase := range p.Available {
		_, _ = fmt.Fprintf(w, "  next: %s\n", phase)
	}
}
