package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedData_EmptyBucketsEncodeAsArrays(t *testing.T) {
	var data ExtractedData

	jsonBytes, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"power_phrases":[],"skills":[],"competencies":[],"soft_skills":[]}`, string(jsonBytes))
}

func TestExtractedData_NormalizeNil(t *testing.T) {
	var data *ExtractedData
	out := data.Normalize()
	require.NotNil(t, out)
	assert.NotNil(t, out.PowerPhrases)
	assert.NotNil(t, out.Skills)
	assert.NotNil(t, out.Competencies)
	assert.NotNil(t, out.SoftSkills)
}

func TestExtractedData_AppendAndCount(t *testing.T) {
	combined := NewExtractedData()
	pass := &ExtractedData{
		Skills:       []Skill{{Name: "Go"}, {Name: "SQL"}},
		PowerPhrases: []PowerPhrase{{Statement: "ignored"}},
	}

	combined.Append(CategorySkills, pass)

	assert.Equal(t, 2, combined.Count(CategorySkills))
	assert.Equal(t, 0, combined.Count(CategoryPowerPhrases))
	assert.Equal(t, 2, combined.Total())
}

func TestExtractedData_Only(t *testing.T) {
	data := &ExtractedData{
		Skills:     []Skill{{Name: "Go"}},
		SoftSkills: []SoftSkill{{Name: "Mentoring"}},
	}

	only := data.Only(CategorySoftSkills)
	assert.Empty(t, only.Skills)
	assert.Len(t, only.SoftSkills, 1)
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategoryCompetencies.Valid())
	assert.False(t, Category("hobbies").Valid())
}

func TestValidationResult_SuggestedFixes(t *testing.T) {
	result := &ValidationResult{Issues: []ValidationIssue{
		{Rule: "completeness", Severity: SeverityCritical, SuggestedFix: FixExtractMoreItems},
		{Rule: "completeness", Severity: SeverityWarning, SuggestedFix: FixExtractMoreSkills},
		{Rule: "redundancy", Severity: SeverityInfo, SuggestedFix: FixExtractMoreItems},
		{Rule: "consistency", Severity: SeverityWarning},
	}}

	assert.Equal(t, []string{FixExtractMoreItems, FixExtractMoreSkills}, result.SuggestedFixes())
	assert.Equal(t, 1, result.CountBySeverity(SeverityCritical))
	assert.Equal(t, 2, result.CountBySeverity(SeverityWarning))
}

func TestResumeStructure_SectionsOfType(t *testing.T) {
	s := &ResumeStructure{Sections: []Section{
		{Title: "Experience", Type: SectionExperience},
		{Title: "Skills", Type: SectionSkills},
		{Title: "Work History", Type: SectionExperience},
	}}

	got := s.SectionsOfType(SectionExperience)
	require.Len(t, got, 2)
	assert.Equal(t, "Work History", got[1].Title)
}

func TestExtractedData_AverageConfidence(t *testing.T) {
	var nilData *ExtractedData
	assert.Equal(t, 0.0, nilData.AverageConfidence())
	assert.Equal(t, 0.0, NewExtractedData().AverageConfidence())

	d := NewExtractedData()
	d.PowerPhrases = append(d.PowerPhrases, PowerPhrase{Statement: "a", Confidence: 0.9})
	d.Skills = append(d.Skills, Skill{Name: "Go", Confidence: 0.5})
	d.SoftSkills = append(d.SoftSkills, SoftSkill{Name: "Mentoring", Confidence: 0.7})
	assert.InDelta(t, 0.7, d.AverageConfidence(), 1e-9)
}
