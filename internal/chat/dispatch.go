// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/stream"
)

// =============================================================================
// INBOUND DISPATCH
// =============================================================================

type eventHandler func(c *Controller, in stream.Inbound)

// eventHandlers has one entry per known event tag. Frames with any other
// tag go to handleUnknown.
var eventHandlers = map[stream.EventType]eventHandler{
	stream.EventSessionCreated: func(*Controller, stream.Inbound) {},
	stream.EventResponseChunk: func(c *Controller, in stream.Inbound) {
		c.pushChunkLocked(in.ChunkText())
	},
	stream.EventError: func(c *Controller, in stream.Inbound) {
		c.appendMessageLocked(model.NewMessage(model.AuthorAgent, "Error: "+in.ErrorText(), model.KindError))
	},
	stream.EventIntermediate: func(c *Controller, in stream.Inbound) {
		c.notes = append(c.notes, model.NewIntermediateNote(progressPrefix+in.NoteText()))
	},
	stream.EventCompleted: func(c *Controller, in stream.Inbound) {
		c.notes = append(c.notes, model.NewIntermediateNote(completedPrefix+in.NoteText()))
	},
}

func handleUnknown(c *Controller, in stream.Inbound) {
	c.appendMessageLocked(model.NewMessage(model.AuthorAgent, in.EnvelopeJSON(), model.KindUnknown))
}

// dispatchLocked decodes one frame and applies it.
func (c *Controller) dispatchLocked(data []byte) {
	in, err := stream.Decode(data)
	if err != nil {
		c.appendMessageLocked(model.NewMessage(model.AuthorAgent, "Error: Invalid message format - "+string(data), model.KindError))
		return
	}
	handler, ok := eventHandlers[in.Type]
	if !ok {
		handler = handleUnknown
	}
	handler(c, in)
}

// IsCompletion reports whether note was produced by a completed event.
func IsCompletion(note model.IntermediateNote) bool {
	return strings.HasPrefix(note.Text, completedPrefix)
}
