// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the client-side chat session controller: the
// thread list and active selection, the transcript, the single agent
// socket and the reassembly of streamed reply chunks.
//
// All state lives in one Controller guarded by one mutex. Socket events are
// read by a single goroutine per connection and applied in arrival order;
// timer callbacks take the same lock. Observers register with SetOnChange
// and read state through Snapshot; the callback runs outside the lock.
//
// # Usage
//
//	c := chat.New(chat.Options{
//	    Backend:   apiClient,
//	    Dialer:    stream.WSDialer{},
//	    URL:       cfg.Backend.WSURL,
//	    AgentName: cfg.Agent.Name,
//	    Identity:  chat.Identity{Token: tok, UserID: uid},
//	})
//	defer c.Close()
//
//	c.LoadThreads(ctx)
//	if err := c.Connect(ctx); err != nil { ... }
//	c.Send("summarize my notes")
package chat
