// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// ThoughtEmptyText is shown before the first intermediate note arrives.
const ThoughtEmptyText = "Astra's reasoning/steps will appear here as you chat"

// renderNoteBody formats one note. A trailing JSON object is decoded,
// nested JSON-in-string values included, and shown as YAML; any other
// text is returned as is.
func renderNoteBody(text string) string {
	start := strings.Index(text, "{")
	if start < 0 || !strings.HasSuffix(strings.TrimSpace(text), "}") {
		return text
	}
	candidate := strings.TrimSpace(text[start:])

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil || obj == nil {
		return text
	}
	expandNested(obj)

	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(obj); err != nil {
		return "Error converting to YAML."
	}
	enc.Close()

	prefix := strings.TrimSpace(text[:start])
	out := strings.TrimRight(b.String(), "\n")
	if prefix != "" {
		return prefix + "\n" + out
	}
	return out
}

// expandNested replaces string values holding a JSON object or array with
// the decoded value, recursively.
func expandNested(obj map[string]any) {
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(s)
		if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
			continue
		}
		var nested any
		if json.Unmarshal([]byte(trimmed), &nested) != nil || nested == nil {
			continue
		}
		if m, ok := nested.(map[string]any); ok {
			expandNested(m)
		}
		obj[k] = nested
	}
}
