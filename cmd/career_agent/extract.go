package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/parsing"
	"github.com/jonathan/career-extractor/internal/pipeline"
	"github.com/jonathan/career-extractor/internal/types"
)

var extractCommand = &cobra.Command{
	Use:   "extract",
	Short: "Extract career intelligence from a résumé text file",
	Long: `Runs a full extraction session: structure parsing, role detection, framework matching,
one validated pass per category and a final cross-validation. The session is recorded in
the configured store and can be inspected later with "career_agent report".`,
	RunE: runExtract,
}

var (
	extractResume      string
	extractRole        string
	extractIndustry    string
	extractVault       string
	extractUser        string
	extractOut         string
	extractConfirmRole bool
	extractConcurrency int
	extractMaxAttempts int
)

func init() {
	extractCommand.Flags().StringVarP(&extractResume, "resume", "r", "", "Path to résumé text file (use - for stdin)")
	extractCommand.Flags().StringVar(&extractRole, "role", "", "Target role, overrides detection")
	extractCommand.Flags().StringVar(&extractIndustry, "industry", "", "Target industry, overrides detection")
	extractCommand.Flags().StringVar(&extractVault, "vault", "local", "Vault id the session belongs to")
	extractCommand.Flags().StringVar(&extractUser, "user", "cli", "User id the session belongs to")
	extractCommand.Flags().StringVarP(&extractOut, "out", "o", "", "Write the full result as JSON to this file")
	extractCommand.Flags().BoolVar(&extractConfirmRole, "confirm-role", false, "Pick the role interactively from the detected candidates")
	extractCommand.Flags().IntVar(&extractConcurrency, "concurrency", 0, "Passes run in parallel (default from config)")
	extractCommand.Flags().IntVar(&extractMaxAttempts, "max-attempts", 0, "Attempts per pass (default from config)")

	_ = extractCommand.MarkFlagRequired("resume")
	rootCmd.AddCommand(extractCommand)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	text, err := readResume(extractResume, cmd.InOrStdin())
	if err != nil {
		return err
	}

	role := extractRole
	if extractConfirmRole && role == "" {
		if role, err = confirmRole(text); err != nil {
			return err
		}
	}

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

	orch := a.newOrchestrator(store, llm.NewRegistry(client), observability.LoggerSink{Logger: a.logger})

	cfg := a.pipelineDefaults()
	cfg.ResumeText = text
	cfg.VaultID = extractVault
	cfg.UserID = extractUser
	cfg.TargetRole = role
	cfg.TargetIndustry = extractIndustry
	cfg.Metadata = map[string]any{"source": "cli", "resume_file": filepath.Base(extractResume)}
	if cmd.Flags().Changed("concurrency") {
		cfg.MaxConcurrentPasses = extractConcurrency
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts = extractMaxAttempts
	}

	result, runErr := orch.OrchestrateExtraction(ctx, cfg)
	if result.Started() {
		printResult(cmd.OutOrStdout(), result)
		if extractOut != "" {
			if err := writeJSON(extractOut, result); err != nil {
				a.logger.Error("failed to write result", zap.Error(err))
				return errors.Join(runErr, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Result written to %s\n", extractOut)
		}
	}
	if runErr != nil {
		return fmt.Errorf("extraction failed: %w", runErr)
	}
	return nil
}

func readResume(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read résumé %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("résumé %s is empty", path)
	}
	return text, nil
}

const otherRole = "Other (type a role)"

// roleChoices lists the detected role first, then its alternatives
func roleChoices(info *types.RoleInfo) []string {
	seen := map[string]bool{}
	var out []string
	add := func(r string) {
		r = strings.TrimSpace(r)
		if r == "" || seen[strings.ToLower(r)] {
			return
		}
		seen[strings.ToLower(r)] = true
		out = append(out, r)
	}
	if info != nil {
		add(info.PrimaryRole)
		for _, alt := range info.AlternativeRoles {
			add(alt)
		}
	}
	return append(out, otherRole)
}

func confirmRole(text string) (string, error) {
	info := parsing.DetectRoleAndIndustry(parsing.ParseResumeStructure(text), text)
	selectRole := promptui.Select{
		Label: fmt.Sprintf("Detected role (%s, %s). Confirm or choose another", info.Industry, info.Seniority),
		Items: roleChoices(info),
	}
	_, chosen, err := selectRole.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}
	if chosen != otherRole {
		return chosen, nil
	}
	input := promptui.Prompt{
		Label: "Role",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("role must not be empty")
			}
			return nil
		},
	}
	role, err := input.Run()
	if err != nil {
		return "", fmt.Errorf("role input cancelled: %w", err)
	}
	return strings.TrimSpace(role), nil
}

func printResult(w io.Writer, r *pipeline.Result) {
	p := observability.NewPrinter(w)
	p.PrintStructure(r.Context.Structure)
	p.PrintRoleAndFramework(r.Context.Role, r.Context.Framework)
	order := r.Context.Strategy.PassOrder
	if len(order) == 0 {
		order = types.AllCategories
	}
	p.PrintPassResults(order, r.Metadata.ByCategory())
	p.PrintExtractedData(r.Data)
	p.PrintValidation(&types.ValidationResult{
		Passed:             r.Validation.Passed,
		Confidence:         r.Validation.Confidence,
		Issues:             r.Validation.Issues,
		RequiresUserReview: r.Validation.RequiresUserReview,
		Recommendations:    r.Validation.Recommendations,
	})
	_, _ = fmt.Fprintf(w, "Session %s (%d ms, cost %d, %d retries)\n",
		r.SessionID, r.Metadata.DurationMs, r.Metadata.TotalCost, r.Metadata.RetryCount)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o600)
}
