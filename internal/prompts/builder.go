package prompts

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-extractor/internal/frameworks"
	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/types"
	"github.com/jonathan/career-extractor/internal/validation"
)

// PassInput is everything a pass prompt is assembled from.
type PassInput struct {
	Category   types.Category
	ResumeText string
	Role       *types.RoleInfo
	Framework  *types.FrameworkContext
	FocusAreas []string
	// UseFramework adds the framework reference block when true.
	UseFramework bool
}

// BuildPassPrompt assembles the prompt for one extraction pass over the whole résumé.
func BuildPassPrompt(in PassInput) (string, error) {
	return build(in, in.ResumeText, "")
}

// BuildSectionPrompt assembles a pass prompt restricted to a single section.
func BuildSectionPrompt(in PassInput, section types.Section) (string, error) {
	title := section.Title
	if title == "" {
		title = string(section.Type)
	}
	return build(in, section.Content, title)
}

func build(in PassInput, text, sectionTitle string) (string, error) {
	task, err := Get(ExtractionFile, string(in.Category)+".task")
	if err != nil {
		return "", fmt.Errorf("no prompt for category %q: %w", in.Category, err)
	}

	var desc strings.Builder
	desc.WriteString(task)
	desc.WriteString("\n")
	desc.WriteString(MustGet(ExtractionFile, "confidence"))

	if in.Role != nil && in.Role.PrimaryRole != "" {
		desc.WriteString("\n\n")
		desc.WriteString(Format(MustGet(ExtractionFile, "role"), map[string]string{
			"Role":      in.Role.PrimaryRole,
			"Industry":  in.Role.Industry,
			"Seniority": string(in.Role.Seniority),
		}))
	}

	if in.UseFramework {
		if block := frameworks.FormatForPrompt(in.Framework); block != "" {
			desc.WriteString("\n\n")
			desc.WriteString(Format(MustGet(ExtractionFile, "framework"), map[string]string{"Framework": block}))
		}
	}

	for _, focus := range in.FocusAreas {
		if line, err := Get(ExtractionFile, "focus."+focus); err == nil {
			desc.WriteString("\n")
			desc.WriteString(line)
		}
	}

	if sectionTitle != "" {
		desc.WriteString("\n\n")
		desc.WriteString(Format(MustGet(ExtractionFile, "section"), map[string]string{"Section": sectionTitle}))
	}

	schema := OutputSchema(in.Category)
	schema.Description = desc.String()
	return llm.BuildExtractionPrompt(schema, validation.QuoteResume(text)), nil
}

// Guidance renders corrective instructions for the given fix tags.
// Unknown tags are skipped; with nothing known a generic instruction is used.
func Guidance(fixes []string) string {
	var lines []string
	seen := make(map[string]bool, len(fixes))
	for _, fix := range fixes {
		if fix == "" || seen[fix] {
			continue
		}
		seen[fix] = true
		if line, err := Get(ExtractionFile, "guidance."+fix); err == nil {
			lines = append(lines, "- "+line)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "- "+MustGet(ExtractionFile, "guidance.default"))
	}
	return MustGet(ExtractionFile, "guidance.header") + "\n" + strings.Join(lines, "\n")
}

// WithGuidance appends corrective guidance to an existing prompt.
func WithGuidance(prompt string, fixes []string) string {
	return prompt + "\n\n" + Guidance(fixes)
}

// BuildRepairPrompt asks the service to re-emit its previous output as valid JSON.
func BuildRepairPrompt(category types.Category, previous string, parseErr error) string {
	msg := "invalid JSON"
	if parseErr != nil {
		msg = parseErr.Error()
	}
	return Format(MustGet(ExtractionFile, "repair"), map[string]string{
		"Category": string(category),
		"Error":    msg,
		"Output":   previous,
	})
}

// OutputSchema describes the JSON object expected for a category.
func OutputSchema(category types.Category) llm.ExtractionSchema {
	reasoning := llm.SchemaField{Name: "reasoning", Type: `"string"`, Description: "one or two sentences on how the résumé was read"}

	var items llm.SchemaField
	switch category {
	case types.CategoryPowerPhrases:
		items = llm.SchemaField{
			Name:        "power_phrases",
			Type:        `[{"statement": "string", "category": "string", "impact_metrics": {"metric": 0}, "keywords": ["string"], "confidence": 0.0}]`,
			Description: "one entry per quantified achievement",
			Required:    true,
		}
	case types.CategorySkills:
		items = llm.SchemaField{
			Name:        "skills",
			Type:        `[{"name": "string", "category": "string", "cross_functional_equivalent": "string", "confidence": 0.0}]`,
			Description: "one entry per distinct skill",
			Required:    true,
		}
	case types.CategoryCompetencies:
		items = llm.SchemaField{
			Name:        "competencies",
			Type:        `[{"area": "string", "inferred_capability": "string", "evidence_source": "string", "confidence": 0.0}]`,
			Description: "one entry per inferred competency",
			Required:    true,
		}
	default:
		items = llm.SchemaField{
			Name:        "soft_skills",
			Type:        `[{"name": "string", "behavioral_evidence": "string", "confidence": 0.0}]`,
			Description: "one entry per evidenced soft skill",
			Required:    true,
		}
	}
	return llm.ExtractionSchema{Name: string(category), Fields: []llm.SchemaField{items, reasoning}}
}
