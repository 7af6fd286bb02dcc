// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// Confirmer is a yes/no gate in front of destructive actions.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// AlwaysConfirm accepts every prompt. Use it once the caller has already
// asked (the TUI dialog, or --confirm on the CLI).
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })
