// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the persisted login session: the bearer token and
// user id the backend hands out at login.
//
// # Key Types
//
//   - Session: an authenticated identity (token plus user id)
//   - Manager: loads, creates and clears the session in a key-value store
//
// # Usage
//
//	mgr := auth.NewManager(store, apiClient)
//	sess, err := mgr.Load()
//	if errors.Is(err, auth.ErrNotLoggedIn) {
//	    sess, err = mgr.Login(ctx, "abhishek")
//	}
//	ctx = auth.WithSession(ctx, sess)
package auth
