package insights

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Parse turns raw provider text into a validated Insight. It tolerates
// formatting noise (code fences, language hints, surrounding prose) but
// never attempts semantic repair: truncated or structurally invalid JSON
// fails with *ParseError.
func Parse(raw string) (*Insight, error) {
	cleaned := stripWrapping(raw)
	if cleaned == "" {
		return nil, &ParseError{Message: "empty response after stripping formatting"}
	}

	var in Insight
	if err := json.Unmarshal([]byte(cleaned), &in); err != nil {
		return nil, &ParseError{Message: "response is not valid JSON", Cause: err}
	}

	if err := validate.Struct(&in); err != nil {
		return nil, &ParseError{Message: "response is missing required fields", Cause: err}
	}

	return &in, nil
}

// stripWrapping removes markdown code fences (with optional language hints)
// and surrounding prose, leaving the JSON object body. Models often wrap
// JSON in ```json blocks even when instructed not to.
func stripWrapping(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		// Skip a language identifier on the fence line.
		if nl := strings.Index(text, "\n"); nl >= 0 {
			firstLine := strings.TrimSpace(text[:nl])
			if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {") {
				text = text[nl+1:]
			}
		}
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	// Drop prose around the outermost JSON object.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(text[start : end+1])
	}

	return text
}
