// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable key/value store astra keeps its
// client state in (the login token and user id).
//
// # Key Types
//
//   - SQLiteStore: file-backed store on modernc.org/sqlite
//   - MemoryStore: in-process store for tests and --ephemeral runs
//
// Both satisfy the same method set; consumers declare the interface they
// need.
//
// # Usage
//
//	store, err := storage.Open(path)
//	defer store.Close()
//	err = store.SetMany(map[string]string{"token": t, "userId": "7"})
//	tok, err := store.Get("token")
package storage
