package frameworks

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-extractor/internal/types"
)

// FormatForPrompt renders the matched framework as a reference block for extraction prompts.
// It returns "" when there is no framework to show.
func FormatForPrompt(ctx *types.FrameworkContext) string {
	if ctx == nil || ctx.Framework == nil {
		return ""
	}
	fw := ctx.Framework

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reference framework: %s (%s), match %s, confidence %.0f\n",
		fw.Role, fw.Industry, ctx.MatchQuality, ctx.Confidence))

	if len(fw.TechnicalCompetencies) > 0 {
		sb.WriteString("Expected competencies:\n")
		for _, c := range fw.TechnicalCompetencies {
			sb.WriteString(fmt.Sprintf("- %s (%s)", c.Name, c.RequiredLevel))
			if len(c.Keywords) > 0 {
				sb.WriteString(": " + strings.Join(c.Keywords, ", "))
			}
			sb.WriteString("\n")
		}
	}
	if len(fw.ManagementBenchmarks) > 0 {
		sb.WriteString("Management scope benchmarks:\n")
		for _, b := range fw.ManagementBenchmarks {
			sb.WriteString(fmt.Sprintf("- %s: typical %s %s (range %s-%s)\n",
				b.Aspect, formatAmount(b.Typical), b.Unit, formatAmount(b.Min), formatAmount(b.Max)))
		}
	}
	if len(fw.Certifications) > 0 {
		sb.WriteString("Common certifications: " + strings.Join(fw.Certifications, ", ") + "\n")
	}
	for _, note := range ctx.AdaptationNotes {
		sb.WriteString("Note: " + note + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatAmount(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.0fK", v/1e3)
	}
	return fmt.Sprintf("%.0f", v)
}
