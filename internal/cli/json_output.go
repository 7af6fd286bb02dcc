// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output envelope for --json mode.
package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jeranaias/astra-tui/internal/model"
)

// JSONResponse is the envelope every --json command prints.
type JSONResponse struct {
	Command   string      `json:"command"`
	Timestamp string      `json:"timestamp"`
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Command:   command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Success:   true,
		Data:      data,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	return &JSONResponse{
		Command:   command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Success:   false,
		Error:     err.Error(),
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// =============================================================================
// DATA TYPES
// =============================================================================

// VersionData is the version command payload.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// LoginData is the login command payload.
type LoginData struct {
	UserID int `json:"user_id"`
}

// HistoryData is the history command payload.
type HistoryData struct {
	SessionID string          `json:"session_id"`
	Messages  []model.Message `json:"messages"`
}

// AskData is the ask command payload.
type AskData struct {
	SessionID string                   `json:"session_id"`
	Query     string                   `json:"query"`
	Reply     string                   `json:"reply"`
	Errors    []string                 `json:"errors,omitempty"`
	Notes     []model.IntermediateNote `json:"notes,omitempty"`
	Duration  string                   `json:"duration"`
}

// ConfigData is the config show payload, keyed by dotted key.
type ConfigData struct {
	Path   string                 `json:"path"`
	Values map[string]interface{} `json:"values"`
}
