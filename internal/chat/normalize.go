// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"strings"
)

// escapeReplacers expand literal escape sequences left in stored content.
// The pairs are applied as separate passes in this order, so "\\n" (an
// escaped backslash followed by n) becomes a newline preceded by a
// backslash.
var escapeReplacers = []*strings.Replacer{
	strings.NewReplacer(`\n`, "\n"),
	strings.NewReplacer(`\r`, "\r"),
	strings.NewReplacer(`\t`, "\t"),
	strings.NewReplacer(`\"`, `"`),
	strings.NewReplacer(`\'`, `'`),
	strings.NewReplacer(`\\`, `\`),
}

// NormalizeContent cleans stored message content for display.
//
// The text is trimmed. One layer of matching double or single quotes is
// unwrapped by decoding it as a JSON string literal (single quotes are
// rewritten to double quotes first), and the text is kept as-is if that
// decode fails. Literal \n \r \t \" \' \\ sequences are then expanded and the
// result trimmed again.
func NormalizeContent(raw string) string {
	content := strings.TrimSpace(raw)
	if content == "" {
		return ""
	}

	if unwrapped, ok := unquote(content); ok {
		content = unwrapped
	}

	for _, r := range escapeReplacers {
		content = r.Replace(content)
	}
	return strings.TrimSpace(content)
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	first, last := s[0], s[len(s)-1]
	if first != last || (first != '"' && first != '\'') {
		return "", false
	}

	literal := s
	if first == '\'' {
		literal = `"` + strings.ReplaceAll(s[1:len(s)-1], `"`, `\"`) + `"`
	}
	var out string
	if err := json.Unmarshal([]byte(literal), &out); err != nil {
		return "", false
	}
	return out, true
}
