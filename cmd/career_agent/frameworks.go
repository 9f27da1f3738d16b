package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-extractor/internal/frameworks"
)

var frameworksCommand = &cobra.Command{
	Use:   "frameworks",
	Short: "List the competency frameworks, or show which one a role matches",
	RunE:  runFrameworks,
}

var (
	frameworksFile     string
	frameworksRole     string
	frameworksIndustry string
)

func init() {
	frameworksCommand.Flags().StringVar(&frameworksFile, "file", "", "Load frameworks from this YAML file instead of the built-in library")
	frameworksCommand.Flags().StringVar(&frameworksRole, "role", "", "Role to match")
	frameworksCommand.Flags().StringVar(&frameworksIndustry, "industry", "", "Industry to match")

	rootCmd.AddCommand(frameworksCommand)
}

func runFrameworks(cmd *cobra.Command, _ []string) error {
	var lib *frameworks.Library
	var err error
	if frameworksFile != "" {
		lib, err = frameworks.LoadLibrary(frameworksFile)
	} else {
		lib, err = frameworks.Default()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if frameworksRole == "" && frameworksIndustry == "" {
		for _, fw := range lib.List() {
			line := fmt.Sprintf("%-32s %-16s %d-%d yrs", fw.Role, fw.Industry, fw.ExperienceYears.Min, fw.ExperienceYears.Max)
			if len(fw.Aliases) > 0 {
				line += "  (" + strings.Join(fw.Aliases, ", ") + ")"
			}
			_, _ = fmt.Fprintln(out, line)
		}
		return nil
	}

	m := lib.Match(frameworksRole, frameworksIndustry)
	if m == nil || m.Framework == nil {
		_, _ = fmt.Fprintf(out, "No framework matches %q (%s)\n", frameworksRole, frameworksIndustry)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Framework:  %s / %s\n", m.Framework.Role, m.Framework.Industry)
	_, _ = fmt.Fprintf(out, "Match:      %s (score %.2f, confidence %.0f)\n", m.MatchQuality, m.MatchScore, m.Confidence)
	for _, note := range m.AdaptationNotes {
		_, _ = fmt.Fprintf(out, "  - %s\n", note)
	}
	return nil
}
