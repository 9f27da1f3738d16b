// Package llm - util.go provides shared utilities for completion response processing.
package llm

import "strings"

// CleanJSONBlock strips markdown fences, conversational preamble and trailing
// text from a completion response, leaving the first JSON value it contains.
// Text without any balanced JSON value is returned trimmed but otherwise intact.
func CleanJSONBlock(text string) string {
	text = stripCodeFence(strings.TrimSpace(text))

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	var value string
	if text[start] == '{' {
		value = extractJSONObject(text[start:])
	} else {
		value = extractJSONArray(text[start:])
	}
	if value == "" {
		// Unbalanced; leave the tail for the repair step.
		return strings.TrimSpace(text[start:])
	}
	return value
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "```"); idx >= 0 {
			// Fence after a preamble line.
			text = strings.TrimSpace(text[idx:])
		} else {
			return text
		}
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractJSONObject returns the balanced object starting at text[0], or "" if none
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced array starting at text[0], or "" if none
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, closing byte) string {
	if text == "" || text[0] != open {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				if c != closing {
					return ""
				}
				return text[:i+1]
			}
		}
	}
	return ""
}
