// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the Astra backend REST API.
//
// Every authenticated call sends "Authorization: Bearer <token>". Non-2xx
// statuses come back as *Error, which matches ErrUnauthorized (401),
// ErrNotFound (404) and ErrUnexpectedStatus (any) under errors.Is.
//
// # Usage
//
//	c := api.NewClient(cfg.Backend.APIURL).WithToken(tok)
//	threads, err := c.ListSessions(ctx)
//	if errors.Is(err, api.ErrUnauthorized) { ... }
package api
