// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation handling for destructive commands.
//
// A single pattern:
//  1. If --confirm is present, proceed without prompting
//  2. In --json mode, require --confirm (no interactive prompts)
//  3. If stdin is not a TTY, require --confirm (can't prompt)
//  4. Otherwise, ask an interactive y/N question
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/astra-tui/internal/chat"
)

// Confirmation errors.
var (
	ErrConfirmJSON  = errors.New("confirmation required: use --confirm flag for destructive actions in JSON mode")
	ErrConfirmNoTTY = errors.New("confirmation required but stdin is not a terminal; use --confirm flag")
)

// ConfirmationOptions configures RequireConfirmation.
type ConfirmationOptions struct {
	// ConfirmFlag indicates --confirm was passed
	ConfirmFlag bool
	// JSONMode indicates --json was passed
	JSONMode bool
	// In and Out are the prompt streams.
	In  io.Reader
	Out io.Writer
	// IsTTY reports whether In is interactive; nil means stdin detection.
	IsTTY func() bool
}

// RequireConfirmation checks that the user has confirmed prompt.
// It returns (false, nil) when the user answers anything but y/yes and a
// non-nil error when a confirmation is needed but cannot be asked for.
func RequireConfirmation(prompt string, opts ConfirmationOptions) (bool, error) {
	if opts.ConfirmFlag {
		return true, nil
	}
	if opts.JSONMode {
		return false, ErrConfirmJSON
	}
	isTTY := opts.IsTTY
	if isTTY == nil {
		isTTY = IsTTY
	}
	if !isTTY() {
		return false, ErrConfirmNoTTY
	}

	fmt.Fprintf(opts.Out, "%s [y/N]: ", prompt)
	input, err := bufio.NewReader(opts.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}

// promptConfirmer adapts RequireConfirmation to chat.Confirmer. A refusal
// to prompt is remembered in err so the command can report it instead of a
// plain decline.
type promptConfirmer struct {
	opts ConfirmationOptions
	err  error
}

func (c *promptConfirmer) Confirm(prompt string) bool {
	ok, err := RequireConfirmation(prompt, c.opts)
	if err != nil {
		c.err = err
		return false
	}
	return ok
}

var _ chat.Confirmer = (*promptConfirmer)(nil)

// ShowCancellationMessage writes the standard cancellation line.
func ShowCancellationMessage(w io.Writer) {
	fmt.Fprintln(w, DimStyle.Render("Cancelled."))
}
