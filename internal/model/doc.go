// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the chat controller,
// the backend client and the terminal views.
//
// # Key Types
//
//   - Thread: a persisted chat session as listed by the backend
//   - Message: one transcript entry with author, display timestamp and kind
//   - Kind: closed tagged variant (plain, streaming chunk, error, unknown)
//   - IntermediateNote: a progress/completion note for the thought panel
//   - ConnectionState: state of the single agent socket
//   - Profile, Note, Learning: account-side records
//
// # Usage
//
//	msg := model.NewMessage(model.AuthorSelf, "hello", model.KindPlain)
//	if msg.Kind == model.KindStreamingChunk { ... }
package model
