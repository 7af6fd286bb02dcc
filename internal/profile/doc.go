// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile holds the current user's profile and the edit form for
// it.
//
// The Editor keeps the last fetched profile, an open/closed dialog flag
// and a form seeded from the profile when the dialog opens. Submit
// validates the form and writes it back; the stored profile only changes
// on success.
package profile
