package parsing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/career-extractor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestParseResumeStructure_Sections(t *testing.T) {
	text := loadFixture(t, "senior_pm.txt")

	structure := ParseResumeStructure(text)

	var got []types.SectionType
	for _, s := range structure.Sections {
		got = append(got, s.Type)
	}
	assert.Equal(t, []types.SectionType{
		types.SectionContact,
		types.SectionSummary,
		types.SectionExperience,
		types.SectionEducation,
		types.SectionSkills,
		types.SectionCertifications,
	}, got)

	assert.Equal(t, "Header", structure.Sections[0].Title)
	assert.True(t, structure.HasContact)
	assert.True(t, structure.HasSummary)
	assert.True(t, structure.HasWorkHistory)
	assert.True(t, structure.HasEducation)
	assert.True(t, structure.HasSkills)
	assert.True(t, structure.HasCertifications)
	assert.Equal(t, 1, structure.EstimatedPages)
	assert.Equal(t, len(strings.Fields(text)), structure.WordCount)
}

func TestParseResumeStructure_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\n\t"} {
		structure := ParseResumeStructure(text)
		require.NotNil(t, structure)
		assert.Empty(t, structure.Sections)
		assert.Zero(t, structure.WordCount)
		assert.Zero(t, structure.EstimatedPages)
		assert.False(t, structure.HasWorkHistory)
	}
}

func TestParseResumeStructure_DropsEmptySections(t *testing.T) {
	text := "Summary\n\nExperience\nSoftware Engineer at Initech\n"

	structure := ParseResumeStructure(text)

	require.Len(t, structure.Sections, 1)
	assert.Equal(t, types.SectionExperience, structure.Sections[0].Type)
	assert.False(t, structure.HasSummary)
}

func TestParseResumeStructure_HeaderVariants(t *testing.T) {
	tests := []struct {
		line     string
		expected types.SectionType
	}{
		{"WORK EXPERIENCE", types.SectionExperience},
		{"## Professional Experience", types.SectionExperience},
		{"Employment History:", types.SectionExperience},
		{"Core Competencies", types.SectionSkills},
		{"Technical Skills", types.SectionSkills},
		{"Licenses & Certifications", types.SectionCertifications},
		{"Education and Training", types.SectionEducation},
		{"Career Objective", types.SectionSummary},
		{"Contact Information", types.SectionContact},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := matchHeader(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseResumeStructure_LongLinesAreNotHeaders(t *testing.T) {
	_, ok := matchHeader("Experience " + strings.Repeat("with distributed systems ", 4))
	assert.False(t, ok)

	_, ok = matchHeader("Led the experience redesign")
	assert.False(t, ok)
}

func TestParseResumeStructure_CoversNonBlankLines(t *testing.T) {
	text := loadFixture(t, "senior_pm.txt")
	structure := ParseResumeStructure(text)

	lines := strings.Split(text, "\n")
	nonBlank, covered := 0, 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonBlank++
		for _, s := range structure.Sections {
			if i+1 >= s.StartLine && i+1 <= s.EndLine {
				covered++
				break
			}
		}
	}
	require.Positive(t, nonBlank)
	assert.GreaterOrEqual(t, float64(covered)/float64(nonBlank), 0.95)
}

func TestParseResumeStructure_Idempotent(t *testing.T) {
	text := loadFixture(t, "senior_pm.txt")
	assert.Equal(t, ParseResumeStructure(text), ParseResumeStructure(text))
}
