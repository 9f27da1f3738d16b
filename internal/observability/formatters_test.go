package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/career-extractor/internal/types"
)

func TestPrintStructure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStructure(&types.ResumeStructure{
		WordCount:      420,
		EstimatedPages: 1,
		Sections: []types.Section{
			{Title: "Experience", Type: types.SectionExperience, StartLine: 3, EndLine: 20},
			{Title: "Hobbies", StartLine: 21, EndLine: 24},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "RÉSUMÉ STRUCTURE")
	assert.Contains(t, output, "Words: 420")
	assert.Contains(t, output, "experience")
	assert.Contains(t, output, "other")
}

func TestPrintRoleAndFramework(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	role := &types.RoleInfo{
		PrimaryRole:      "Engineering Manager",
		Industry:         "Technology",
		Seniority:        types.SenioritySenior,
		Confidence:       85,
		AlternativeRoles: []string{"Software Engineer"},
		Source:           types.RoleSourceDetected,
	}
	fw := &types.FrameworkContext{
		Framework:    &types.CompetencyFramework{Role: "Engineering Manager", Industry: "Technology"},
		MatchQuality: types.MatchExact,
		MatchScore:   100,
		Confidence:   95,
	}

	p.PrintRoleAndFramework(role, fw)
	output := buf.String()

	assert.Contains(t, output, "Engineering Manager (detected)")
	assert.Contains(t, output, "senior")
	assert.Contains(t, output, "Software Engineer")
	assert.Contains(t, output, "exact")
}

func TestPrintExtractedData(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	data := types.NewExtractedData()
	for i := 0; i < 7; i++ {
		data.PowerPhrases = append(data.PowerPhrases, types.PowerPhrase{Statement: "Shipped feature"})
	}
	data.Skills = []types.Skill{{Name: "Go"}, {Name: "Kubernetes"}}
	data.SoftSkills = []types.SoftSkill{{Name: "Mentoring"}}

	p.PrintExtractedData(data)
	output := buf.String()

	assert.Contains(t, output, "Power phrases (7)")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "Go, Kubernetes")
	assert.Contains(t, output, "Mentoring")
}

func TestPrintPassResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	results := map[types.Category]types.RetryResult{
		types.CategoryPowerPhrases: {
			Success:    true,
			Validation: &types.ValidationResult{Confidence: 85},
			Metadata:   types.RetryMetadata{Attempts: 2, FinalStrategy: "enhanced_prompt"},
		},
		types.CategorySkills: {Success: false, Metadata: types.RetryMetadata{Attempts: 3}},
	}

	p.PrintPassResults(types.AllCategories, results)
	output := buf.String()

	assert.Contains(t, output, "✓ power_phrases")
	assert.Contains(t, output, "enhanced_prompt")
	assert.Contains(t, output, "✗ skills")
	assert.Contains(t, output, "competencies   skipped")
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidation(&types.ValidationResult{
		Passed:             false,
		Confidence:         60,
		RequiresUserReview: true,
		Issues: []types.ValidationIssue{
			{Rule: "completeness", Severity: types.SeverityCritical, Message: "Only 2 power phrases"},
		},
		Recommendations: []string{"Extract more items"},
	})
	output := buf.String()

	assert.Contains(t, output, "FAILED")
	assert.Contains(t, output, "review needed")
	assert.Contains(t, output, "[critical] completeness: Only 2 power phrases")
	assert.Contains(t, output, "→ Extract more items")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	passed := true
	p.PrintReport(&types.SessionReport{
		SessionID:             uuid.New(),
		Status:                types.SessionCompleted,
		TotalTokens:           1200,
		ModelsUsed:            []string{"gemini-2.5-flash"},
		FinalValidationPassed: &passed,
		Recommendations:       []string{"1 pass(es) had low confidence"},
	})
	output := buf.String()

	assert.Contains(t, output, "SESSION REPORT")
	assert.Contains(t, output, "completed")
	assert.Contains(t, output, "gemini-2.5-flash")
	assert.Contains(t, output, "passed=true")
	assert.Contains(t, output, "low confidence")
}

func TestPrinter_NilInputs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStructure(nil)
	p.PrintRoleAndFramework(nil, nil)
	p.PrintExtractedData(nil)
	p.PrintPassResults(nil, nil)
	p.PrintValidation(nil)
	p.PrintReport(nil)

	assert.Empty(t, buf.String())
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TEST", strings.Repeat("é", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}
