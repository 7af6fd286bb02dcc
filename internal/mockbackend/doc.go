// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mockbackend serves the Astra REST API and agent socket from
// memory, for local development and end-to-end tests.
//
// # Key Types
//
//   - Server: fiber app with every REST route plus /agents/ws
//   - Store: users, tokens, sessions, notes and learnings behind one mutex
//   - Options: chunking, pacing and the reply function of the fake agent
//
// # Agent Behavior
//
// The socket accepts the init envelope carrying the token issued at login
// and answers it with session_created. Every later query produces one
// intermediate event, the reply split into response_chunk events, and a
// completed event. The query, a planner record and the reply are stored
// in the session history the way the real agent stores them, so history
// reads exercise full_plan filtering and content normalization.
//
// # Usage
//
//	srv := mockbackend.New(mockbackend.Options{})
//	go srv.ListenAndServe("127.0.0.1:8000")
//	defer srv.Shutdown()
package mockbackend
