// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures astra's structured logger.
//
// Logs are JSON lines written to a file: the TUI owns the terminal, so
// nothing is ever logged to stdout. The logger is installed as the slog
// default, so packages may log through slog directly or through Logger.
//
// # Usage
//
//	closer, err := logging.Setup("info", path)
//	defer closer.Close()
//
//	ctx = logging.WithSessionID(ctx, id)
//	logging.FromContext(ctx).Info("history loaded", "count", n)
package logging
