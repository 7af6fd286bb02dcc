// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and Lip Gloss styles of the Astra TUI.

Colors are AdaptiveColor pairs so the same palette reads on light and dark
terminals. The Theme bundles the panel, message and dialog styles and is
built once per program.

# Color System (colors.go)

  - Purple - Astra replies, selections
  - Cyan   - brand, the user's own messages, focus
  - Emerald - connected state
  - Amber  - progress notes, warnings
  - Rose   - errors, delete prompts

# Theme System (theme.go)

The background is detected with termenv unless ui.theme forces one:

	theme := styles.NewTheme("auto")
	if theme.IsDark {
		// dark terminal
	}
	box := theme.PanelFocused.Render(body)
*/
package styles
