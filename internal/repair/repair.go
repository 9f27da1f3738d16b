package repair

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/career-extractor/internal/llm"
)

// Action names recorded in Result.Actions
const (
	ActionStripWrapper   = "strip_wrapper"
	ActionTrailingCommas = "remove_trailing_commas"
	ActionCloseString    = "close_string"
	ActionDropCloser     = "drop_unmatched_closer"
	ActionBalance        = "balance_brackets"
)

// Result is a repaired document and the steps that produced it
type Result struct {
	JSON    string
	Actions []string
}

// Changed reports whether any repair step modified the input
func (r *Result) Changed() bool {
	return len(r.Actions) > 0
}

// JSON attempts to turn raw completion output into valid JSON
func JSON(raw string) (*Result, error) {
	result := &Result{}

	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &Error{Message: "input is empty"}
	}
	if cleaned := llm.CleanJSONBlock(text); cleaned != text {
		text = cleaned
		result.Actions = append(result.Actions, ActionStripWrapper)
	}
	if json.Valid([]byte(text)) {
		result.JSON = text
		return result, nil
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return nil, &Error{Message: "no JSON object or array found"}
	}
	text = text[start:]

	balanced, actions := balance(text)
	result.Actions = append(result.Actions, actions...)

	if fixed := removeTrailingCommas(balanced); fixed != balanced {
		balanced = fixed
		result.Actions = append(result.Actions, ActionTrailingCommas)
	}

	if !json.Valid([]byte(balanced)) {
		var probe any
		err := json.Unmarshal([]byte(balanced), &probe)
		return nil, &Error{Message: "output is still invalid after repair", Cause: err}
	}
	result.JSON = balanced
	return result, nil
}

// balance closes an unterminated string, drops closers that match nothing and
// appends closers for every bracket still open at the end of the input.
func balance(text string) (string, []string) {
	var (
		sb       strings.Builder
		stack    []byte
		inString bool
		escaped  bool
		actions  []string
		dropped  bool
	)

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			sb.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				dropped = true
				continue
			}
			stack = stack[:len(stack)-1]
		}
		sb.WriteByte(c)
	}

	if dropped {
		actions = append(actions, ActionDropCloser)
	}
	out := sb.String()
	if inString {
		if escaped {
			out = out[:len(out)-1]
		}
		out += `"`
		actions = append(actions, ActionCloseString)
	}
	if len(stack) > 0 {
		out = trimDangling(out)
		for i := len(stack) - 1; i >= 0; i-- {
			out += string(stack[i])
		}
		actions = append(actions, ActionBalance)
	}
	return out, actions
}

// trimDangling removes a trailing comma or a key with no value before closers are appended
func trimDangling(text string) string {
	for {
		trimmed := strings.TrimRight(text, " \t\r\n")
		switch {
		case strings.HasSuffix(trimmed, ","):
			text = trimmed[:len(trimmed)-1]
		case strings.HasSuffix(trimmed, ":"):
			// drop the orphaned key as well
			body := strings.TrimRight(trimmed[:len(trimmed)-1], " \t\r\n")
			if strings.HasSuffix(body, `"`) {
				if open := strings.LastIndex(body[:len(body)-1], `"`); open >= 0 {
					body = body[:open]
				}
			}
			text = body
		default:
			return trimmed
		}
	}
}

// removeTrailingCommas deletes commas that directly precede a closing brace or bracket
func removeTrailingCommas(text string) string {
	var sb strings.Builder
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			sb.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := i + 1
			for j < len(text) && strings.ContainsRune(" \t\r\n", rune(text[j])) {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
