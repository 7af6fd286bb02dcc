// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package learnings lists the knowledge the agent extracted for the user,
// filtered by knowledge type.
package learnings

import (
	"context"
	"sync"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/model"
)

// LoadFailedText is shown when a fetch error carries no message.
const LoadFailedText = "Failed to load learnings"

// Backend is the learnings slice of the REST API.
type Backend interface {
	ListLearnings(ctx context.Context, userID int, t model.LearningType) ([]model.Learning, error)
}

// List is the filtered learnings view.
type List struct {
	backend Backend
	userID  int

	mu      sync.Mutex
	filter  model.LearningType
	items   []model.Learning
	loading bool
	errText string
}

// NewList creates an empty list showing every type.
func NewList(backend Backend, userID int) *List {
	return &List{backend: backend, userID: userID, filter: model.LearningAll, items: []model.Learning{}}
}

// Filter returns the selected type.
func (l *List) Filter() model.LearningType {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Items returns a copy of the learnings.
func (l *List) Items() []model.Learning {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Learning(nil), l.items...)
}

// Loading reports whether a fetch is in flight.
func (l *List) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the last failure text, or "".
func (l *List) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errText
}

// SetFilter selects t and reloads. An empty t means LearningAll.
func (l *List) SetFilter(ctx context.Context, t model.LearningType) error {
	if t == "" {
		t = model.LearningAll
	}
	l.mu.Lock()
	l.filter = t
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// Refresh reloads the list for the current filter. On failure the list is
// emptied and the error slot set.
func (l *List) Refresh(ctx context.Context) error {
	l.mu.Lock()
	t := l.filter
	l.loading = true
	l.errText = ""
	l.mu.Unlock()

	items, err := l.backend.ListLearnings(ctx, l.userID, t)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if t != l.filter {
		// A newer SetFilter owns the result.
		return nil
	}
	if err != nil {
		logging.With("component", "learnings").Warn("learnings fetch failed", "type", string(t), "error", err)
		l.items = []model.Learning{}
		l.errText = api.MessageOf(err, LoadFailedText)
		return err
	}
	if items == nil {
		items = []model.Learning{}
	}
	l.items = items
	return nil
}

// Next returns the filter after t in display order, wrapping around.
func Next(t model.LearningType) model.LearningType {
	for i, lt := range model.LearningTypes {
		if lt == t {
			return model.LearningTypes[(i+1)%len(model.LearningTypes)]
		}
	}
	return model.LearningAll
}
