package translate

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

const outputSchema = `{"sections":[{"id":"...","title":"...","tasks":[{"id":"...","text":"..."}]}]}`

// BuildPrompt is deterministic: the same input always yields the same prompt.
func BuildPrompt(req types.TranslateRequest) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(struct {
		Sections []types.TranslationSection `json:"sections"`
	}{req.Sections}); err != nil {
		return "", err
	}

	return strings.Join([]string{
		"Translate all text values to " + req.TargetLanguage + " for a construction todo board.",
		"Keep ids exactly unchanged.",
		"Keep the same JSON structure and ordering.",
		"Return only strict JSON with this schema: " + outputSchema,
		"Input JSON: " + strings.TrimRight(buf.String(), "\n"),
	}, "\n"), nil
}

// ExtractJSON returns the first balanced JSON object in text that parses,
// ignoring any prose the model wrapped around it.
func ExtractJSON(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		candidate := balancedObject(text[i:])
		if candidate == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			return obj, nil
		}
	}
	return nil, ErrBadModelOutput
}

// balancedObject returns the prefix of s, which starts with '{', up to its
// matching '}', skipping braces inside string literals.
func balancedObject(s string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
