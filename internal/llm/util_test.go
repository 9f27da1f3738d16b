package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json code block", "```json\n{\"skills\": []}\n```", `{"skills": []}`},
		{"generic code block", "```\n[{\"name\": \"Go\"}]\n```", `[{"name": "Go"}]`},
		{"plain JSON", `{"skills": []}`, `{"skills": []}`},
		{"preamble before object", "Here are the extracted skills:\n{\"skills\": [{\"name\": \"SQL\"}]}", `{"skills": [{"name": "SQL"}]}`},
		{"preamble before fence", "Sure!\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"trailing commentary", "{\"a\": 1}\n\nLet me know if you need anything else.", `{"a": 1}`},
		{"braces inside strings", `Result: {"statement": "Cut {costs} by 20%"}`, `{"statement": "Cut {costs} by 20%"}`},
		{"escaped quotes", `{"statement": "Led the \"Atlas\" rollout"}`, `{"statement": "Led the \"Atlas\" rollout"}`},
		{"unbalanced is left for repair", "Output: {\"a\": [1, 2", `{"a": [1, 2`},
		{"no json at all", "  nothing here  ", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"outer": {"inner": 1}}`, extractJSONObject(`{"outer": {"inner": 1}} tail`))
	assert.Equal(t, "", extractJSONObject("not json"))
	assert.Equal(t, "", extractJSONObject(""))
	assert.Equal(t, "", extractJSONObject(`{"a": 1`))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[[1, 2], [3]]`, extractJSONArray(`[[1, 2], [3]] extra`))
	assert.Equal(t, "", extractJSONArray(`{"a": 1}`))
}
