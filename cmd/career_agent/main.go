// Package main provides the career_agent command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "career_agent",
	Short: "Career intelligence extraction from résumé text",
	Long: `career_agent extracts power phrases, skills, competencies and soft skills from résumé text,
validating and retrying each pass and recording every session for later reports.

Configuration is read from career_agent.yaml (or --config) and CAREER_* environment variables.`,
	SilenceUsage: true,
}

var (
	configPath string
	logDebug   bool
	logJSON    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file (default is career_agent.yaml in the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&logDebug, "debug", "d", false, "Verbose/debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "json", false, "JSON log output")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
