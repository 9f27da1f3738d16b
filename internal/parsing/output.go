package parsing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/schemas"
	"github.com/jonathan/career-extractor/internal/types"
)

// CategoryOutput is a parsed completion response for one pass
type CategoryOutput struct {
	Data      *types.ExtractedData
	Reasoning string
	// JSON is the cleaned document that passed schema validation
	JSON string
}

type rawOutput struct {
	PowerPhrases []types.PowerPhrase `json:"power_phrases"`
	Skills       []types.Skill       `json:"skills"`
	Competencies []types.Competency  `json:"competencies"`
	SoftSkills   []types.SoftSkill   `json:"soft_skills"`
	Reasoning    string              `json:"reasoning"`
}

// ParseCategoryOutput turns a completion response into the bucket for category.
// The response may be an object keyed by the category name or a bare array.
func ParseCategoryOutput(category types.Category, raw string) (*CategoryOutput, error) {
	if !category.Valid() {
		return nil, &ParseError{Message: fmt.Sprintf("unknown category %q", category)}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &ParseError{Message: "empty response"}
	}
	if !json.Valid([]byte(cleaned)) {
		return nil, &ParseError{Message: "response is not valid JSON"}
	}
	if strings.HasPrefix(cleaned, "[") {
		cleaned = fmt.Sprintf(`{%q: %s}`, string(category), cleaned)
	}

	if err := schemas.ValidateCategoryOutput(category, cleaned); err != nil {
		return nil, &SchemaError{Category: string(category), Cause: err}
	}

	var parsed rawOutput
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &ParseError{Message: "failed to decode response", Cause: err}
	}

	data := types.NewExtractedData()
	switch category {
	case types.CategoryPowerPhrases:
		for _, p := range parsed.PowerPhrases {
			p.Statement = strings.TrimSpace(p.Statement)
			if p.Statement == "" {
				continue
			}
			p.Confidence = clampConfidence(p.Confidence)
			data.PowerPhrases = append(data.PowerPhrases, p)
		}
	case types.CategorySkills:
		for i := range parsed.Skills {
			parsed.Skills[i].Confidence = clampConfidence(parsed.Skills[i].Confidence)
		}
		data.Skills = NormalizeSkills(parsed.Skills)
	case types.CategoryCompetencies:
		for _, c := range parsed.Competencies {
			c.Confidence = clampConfidence(c.Confidence)
			data.Competencies = append(data.Competencies, c)
		}
	case types.CategorySoftSkills:
		for _, s := range parsed.SoftSkills {
			s.Confidence = clampConfidence(s.Confidence)
			data.SoftSkills = append(data.SoftSkills, s)
		}
	}

	return &CategoryOutput{Data: data, Reasoning: strings.TrimSpace(parsed.Reasoning), JSON: cleaned}, nil
}

// clampConfidence maps item confidence into [0,1]; values in (1,100] are read as percentages
func clampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1 && v <= 100:
		return v / 100
	case v > 100:
		return 1
	}
	return v
}
