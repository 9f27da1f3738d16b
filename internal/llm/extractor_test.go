package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := ExtractionSchema{
		Name:        "Skills",
		Description: "Extract skills.",
		Fields: []SchemaField{
			{Name: "skills", Type: "[{\"name\": \"string\"}]", Description: "every skill", Required: true},
			{Name: "reasoning", Description: "short rationale"},
		},
	}

	prompt := BuildExtractionPrompt(schema, "<resume>\nGo, SQL\n</resume>")

	assert.Contains(t, prompt, "Extract skills.")
	assert.Contains(t, prompt, `"skills": [{"name": "string"}] (required) // every skill,`)
	assert.Contains(t, prompt, `"reasoning": "string" // short rationale`)
	assert.Contains(t, prompt, "Return ONLY the JSON object")
	assert.Contains(t, prompt, "<resume>\nGo, SQL\n</resume>")
}
