package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-extractor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer renders extraction results and session reports for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(shorten(line, inner), inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStructure summarizes the parsed résumé layout
func (p *Printer) PrintStructure(s *types.ResumeStructure) {
	if s == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Words: %d   Pages: %d   Sections: %d\n\n", s.WordCount, s.EstimatedPages, len(s.Sections))
	for _, sec := range s.Sections {
		kind := string(sec.Type)
		if kind == "" {
			kind = "other"
		}
		fmt.Fprintf(&sb, "• %-24s %-14s lines %d-%d\n", shorten(sec.Title, 24), kind, sec.StartLine, sec.EndLine)
	}
	p.printBox("RÉSUMÉ STRUCTURE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRoleAndFramework shows the detected role and matched framework
func (p *Printer) PrintRoleAndFramework(role *types.RoleInfo, fw *types.FrameworkContext) {
	if role == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Role:       %s (%s)\n", role.PrimaryRole, role.Source)
	fmt.Fprintf(&sb, "Industry:   %s\n", role.Industry)
	fmt.Fprintf(&sb, "Seniority:  %s\n", role.Seniority)
	fmt.Fprintf(&sb, "Confidence: %d\n", role.Confidence)
	if len(role.AlternativeRoles) > 0 {
		fmt.Fprintf(&sb, "Also:       %s\n", strings.Join(role.AlternativeRoles, ", "))
	}
	if fw != nil && fw.Framework != nil {
		fmt.Fprintf(&sb, "\nFramework:  %s / %s\n", fw.Framework.Role, fw.Framework.Industry)
		fmt.Fprintf(&sb, "Match:      %s (score %.1f, confidence %.0f)\n", fw.MatchQuality, fw.MatchScore, fw.Confidence)
	}
	p.printBox("ROLE & FRAMEWORK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExtractedData lists the first items of every bucket
func (p *Printer) PrintExtractedData(data *types.ExtractedData) {
	if data == nil {
		return
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, "Power phrases (%d):\n", len(data.PowerPhrases))
	for i := 0; i < min(len(data.PowerPhrases), maxItemsToShow); i++ {
		fmt.Fprintf(&sb, "  • %s\n", data.PowerPhrases[i].Statement)
	}
	more(&sb, len(data.PowerPhrases))

	names := make([]string, 0, len(data.Skills))
	for _, s := range data.Skills {
		names = append(names, s.Name)
	}
	fmt.Fprintf(&sb, "\nSkills (%d): %s\n", len(data.Skills), strings.Join(names, ", "))

	fmt.Fprintf(&sb, "\nCompetencies (%d):\n", len(data.Competencies))
	for i := 0; i < min(len(data.Competencies), maxItemsToShow); i++ {
		c := data.Competencies[i]
		fmt.Fprintf(&sb, "  • %s: %s\n", c.Area, c.InferredCapability)
	}
	more(&sb, len(data.Competencies))

	soft := make([]string, 0, len(data.SoftSkills))
	for _, s := range data.SoftSkills {
		soft = append(soft, s.Name)
	}
	fmt.Fprintf(&sb, "\nSoft skills (%d): %s", len(data.SoftSkills), strings.Join(soft, ", "))

	p.printBox("EXTRACTED CAREER DATA", sb.String())
}

// PrintPassResults shows how each pass ended
func (p *Printer) PrintPassResults(order []types.Category, results map[types.Category]types.RetryResult) {
	if len(results) == 0 {
		return
	}
	var sb strings.Builder
	for _, c := range order {
		r, ok := results[c]
		if !ok {
			fmt.Fprintf(&sb, "%-14s skipped\n", c)
			continue
		}
		status := "✓"
		if !r.Success {
			status = "✗"
		}
		conf := 0.0
		if r.Validation != nil {
			conf = r.Validation.Confidence
		}
		fmt.Fprintf(&sb, "%s %-14s conf %5.1f  attempts %d  via %s\n", status, c, conf, r.Metadata.Attempts, r.Metadata.FinalStrategy)
	}
	p.printBox("PASS RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the validation result, one line per issue
func (p *Printer) PrintValidation(result *types.ValidationResult) {
	if result == nil {
		return
	}
	var sb strings.Builder
	status := "PASSED"
	if !result.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(&sb, "%s   confidence %.0f", status, result.Confidence)
	if result.RequiresUserReview {
		sb.WriteString("   (review needed)")
	}
	sb.WriteString("\n")
	for _, issue := range result.Issues {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", issue.Severity, issue.Rule, issue.Message)
	}
	for _, rec := range result.Recommendations {
		fmt.Fprintf(&sb, "→ %s\n", rec)
	}
	p.printBox("VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs a session report
func (p *Printer) PrintReport(r *types.SessionReport) {
	if r == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session:    %s\n", r.SessionID)
	fmt.Fprintf(&sb, "Status:     %s   duration %dms\n", r.Status, r.DurationMs)
	fmt.Fprintf(&sb, "Tokens:     %d (prompt %d, completion %d)\n", r.TotalTokens, r.PromptTokens, r.CompletionTokens)
	fmt.Fprintf(&sb, "Cost:       $%.4f over %d response(s)\n", r.TotalCostUSD, r.ResponseCount)
	fmt.Fprintf(&sb, "Latency:    %.0fms avg   confidence %.1f avg\n", r.AverageLatencyMs, r.AverageConfidence)
	fmt.Fprintf(&sb, "Retries:    %d   events %d\n", r.RetryCount, r.EventCount)
	if len(r.ModelsUsed) > 0 {
		fmt.Fprintf(&sb, "Models:     %s\n", strings.Join(r.ModelsUsed, ", "))
	}
	if len(r.PromptVersions) > 0 {
		fmt.Fprintf(&sb, "Prompts:    %s\n", strings.Join(r.PromptVersions, ", "))
	}
	if r.FinalValidationPassed != nil {
		fmt.Fprintf(&sb, "Validation: passed=%t   critical issues %d\n", *r.FinalValidationPassed, r.CriticalIssues)
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&sb, "→ %s\n", rec)
	}
	p.printBox("SESSION REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

func more(sb *strings.Builder, total int) {
	if total > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", total-maxItemsToShow)
	}
}

// shorten truncates s to width runes
func shorten(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

// pad right-pads s to width runes
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
