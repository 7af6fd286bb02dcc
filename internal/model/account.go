// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// PROFILE
// =============================================================================

// Profile is the current user's record from /users/me.
type Profile struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	ImageURL *string `json:"image_url"`
}

// DisplayName returns the full name when set, else the username.
func (p Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Username
}

// ProfileUpdate carries the fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// =============================================================================
// NOTE
// =============================================================================

// Note is a user-authored note.
type Note struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// DisplayTitle returns the title or "Untitled".
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return "Untitled"
	}
	return n.Title
}

// =============================================================================
// LEARNING
// =============================================================================

// LearningType is a knowledge category the backend files learnings under.
type LearningType string

const (
	LearningAll         LearningType = "all"
	LearningConcept     LearningType = "concept"
	LearningCodeFact    LearningType = "code_fact"
	LearningMentalModel LearningType = "mental_model"
	LearningWorkflow    LearningType = "workflow"
	LearningReference   LearningType = "reference"
	LearningOther       LearningType = "other"
)

// LearningTypes lists the filter choices in display order.
var LearningTypes = []LearningType{
	LearningAll,
	LearningConcept,
	LearningCodeFact,
	LearningMentalModel,
	LearningWorkflow,
	LearningReference,
	LearningOther,
}

// Label returns a title-cased label, e.g. "Mental Model".
func (t LearningType) Label() string {
	switch t {
	case LearningAll:
		return "All"
	case LearningConcept:
		return "Concept"
	case LearningCodeFact:
		return "Code Fact"
	case LearningMentalModel:
		return "Mental Model"
	case LearningWorkflow:
		return "Workflow"
	case LearningReference:
		return "Reference"
	case LearningOther:
		return "Other"
	default:
		return string(t)
	}
}

// ParseLearningType resolves s to a known type.
func ParseLearningType(s string) (LearningType, bool) {
	for _, t := range LearningTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Learning is a piece of knowledge the agent extracted for the user.
type Learning struct {
	ID            int    `json:"id"`
	UserID        int    `json:"user_id"`
	KnowledgeType string `json:"knowledge_type"`
	KnowledgeBlob string `json:"knowledge_blob,omitempty"`
	Content       string `json:"content,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// Body returns the blob, falling back to Content.
func (l Learning) Body() string {
	if l.KnowledgeBlob != "" {
		return l.KnowledgeBlob
	}
	return l.Content
}
