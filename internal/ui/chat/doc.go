// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the three-panel chat screen of the TUI.

The screen is a Bubble Tea model over a chat.Controller: the thread list
on the left, the transcript with the input box in the middle and Astra's
thought process on the right. Controller state changes are delivered as
Bubble Tea messages through a one-slot channel, so the view re-renders
from a fresh Snapshot after every change.

# Key Bindings

	Tab        switch focus between threads and input
	Up/Down    move the thread cursor (threads) or scroll (input)
	Enter      open the thread under the cursor, or send the input
	n          start a new thread
	d          delete the thread under the cursor (asks first)
	Ctrl+B     minimize/expand the thread panel
	Ctrl+T     show/hide the thought panel
	Ctrl+R     reconnect the agent socket
	Ctrl+Y     copy the last Astra reply
*/
package chat
