package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object a structured-output prompt asks for.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "PowerPhrases")
	Description string        // Preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint, rendered verbatim
	Description string // Description for the model
	Required    bool
}

// WriteOutputSpec renders the "Return ONLY valid JSON" block for schema.
func WriteOutputSpec(sb *strings.Builder, schema ExtractionSchema) {
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		fmt.Fprintf(sb, "  \"%s\": %s%s", field.Name, typeHint, requiredHint)
		if field.Description != "" {
			fmt.Fprintf(sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
}

// BuildExtractionPrompt constructs a prompt from schema and already-quoted input.
func BuildExtractionPrompt(schema ExtractionSchema, quotedInput string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")
	WriteOutputSpec(&sb, schema)
	sb.WriteString("\nIMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent facts.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")
	sb.WriteString(quotedInput)
	sb.WriteString("\n")

	return sb.String()
}
