// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockbackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/astra-tui/internal/model"
)

// Storage errors, mapped onto HTTP statuses by the handlers.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// History roles written by the fake agent.
const (
	roleUserQuery = model.RoleUserQuery
	roleFullPlan  = model.RoleFullPlan
	roleResponse  = "response"
)

// record is one stored history row.
type record struct {
	ID        int
	Role      string
	Content   string
	Timestamp time.Time
}

type session struct {
	userID  int
	records []record
}

// Store holds all backend state in memory.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	nextID    int
	users     map[string]*model.Profile // by username
	tokens    map[string]int            // token -> user id
	sessions  map[string]*session
	notes     map[int]*model.Note
	learnings map[int][]model.Learning // by user id
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[string]*model.Profile),
		tokens:    make(map[string]int),
		sessions:  make(map[string]*session),
		notes:     make(map[int]*model.Note),
		learnings: make(map[int][]model.Learning),
	}
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// =============================================================================
// USERS AND TOKENS
// =============================================================================

// Login issues a new token for username, creating the user on first use.
func (s *Store) Login(username string) (token string, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		u = &model.Profile{ID: s.id(), Username: username, Email: username + "@astra.local"}
		s.users[username] = u
		s.seedLearningsLocked(u.ID)
	}
	token = uuid.NewString()
	s.tokens[token] = u.ID
	return token, u.ID
}

// UserForToken returns the user a token was issued to.
func (s *Store) UserForToken(token string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	return id, ok
}

func (s *Store) userLocked(id int) (*model.Profile, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// Profile returns a copy of userID's profile.
func (s *Store) Profile(userID int) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.userLocked(userID)
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return *u, nil
}

// UpdateProfile applies the non-nil fields of upd.
func (s *Store) UpdateProfile(userID int, upd model.ProfileUpdate) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.userLocked(userID)
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	if upd.Username != nil && *upd.Username != u.Username {
		if _, taken := s.users[*upd.Username]; taken {
			return model.Profile{}, fmt.Errorf("username %q is taken", *upd.Username)
		}
		delete(s.users, u.Username)
		u.Username = *upd.Username
		s.users[u.Username] = u
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FullName != nil {
		u.FullName = upd.FullName
	}
	if upd.ImageURL != nil {
		u.ImageURL = upd.ImageURL
	}
	return *u, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// Append stores one history row, creating the session on first use.
// content is stored JSON-encoded, as the agent stores its state.
func (s *Store) Append(sessionID string, userID int, role string, content any) error {
	data, err := json.Marshal(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{userID: userID}
		s.sessions[sessionID] = sess
	}
	if sess.userID != userID {
		return ErrForbidden
	}
	sess.records = append(sess.records, record{ID: s.id(), Role: role, Content: string(data), Timestamp: s.now()})
	return nil
}

// SessionSummary is one row of GET /chat/sessions.
type SessionSummary struct {
	SessionID       string `json:"session_id"`
	LastMessage     string `json:"last_message"`
	LastMessageRole string `json:"last_message_role"`
	LastActivity    string `json:"last_activity"`
}

// Sessions lists userID's sessions, most recent activity first.
func (s *Store) Sessions(userID int) []SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		SessionSummary
		at time.Time
	}
	var rows []row
	for id, sess := range s.sessions {
		if sess.userID != userID || len(sess.records) == 0 {
			continue
		}
		last := sess.records[len(sess.records)-1]
		rows = append(rows, row{SessionSummary{
			SessionID:       id,
			LastMessage:     last.Content,
			LastMessageRole: last.Role,
			LastActivity:    last.Timestamp.UTC().Format(time.RFC3339Nano),
		}, last.Timestamp})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].at.Equal(rows[j].at) {
			return rows[i].at.After(rows[j].at)
		}
		return rows[i].SessionID < rows[j].SessionID
	})
	out := make([]SessionSummary, len(rows))
	for i, r := range rows {
		out[i] = r.SessionSummary
	}
	return out
}

// HistoryRow is one element of GET /chat/session/:id/messages.
type HistoryRow struct {
	ID        int    `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// History returns a session's rows. Sessions of other users are
// reported as missing.
func (s *Store) History(userID int, sessionID string) ([]HistoryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.userID != userID {
		return nil, ErrNotFound
	}
	rows := make([]HistoryRow, len(sess.records))
	for i, r := range sess.records {
		rows[i] = HistoryRow{ID: r.ID, Role: r.Role, Content: r.Content, Timestamp: r.Timestamp.UTC().Format(time.RFC3339)}
	}
	return rows, nil
}

// DeleteSession removes a session owned by userID.
func (s *Store) DeleteSession(userID int, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.userID != userID {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// =============================================================================
// NOTES
// =============================================================================

// Notes lists userID's notes in creation order.
func (s *Store) Notes(userID int) []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Note{}
	for _, n := range s.notes {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateNote stores a note for userID.
func (s *Store) CreateNote(userID int, title, content string) model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.stamp()
	n := &model.Note{ID: s.id(), UserID: userID, Title: title, Content: content, CreatedAt: ts, UpdatedAt: ts}
	s.notes[n.ID] = n
	return *n
}

// UpdateNote replaces a note's title and content.
func (s *Store) UpdateNote(userID, noteID int, title, content string) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[noteID]
	if !ok || n.UserID != userID {
		return model.Note{}, ErrNotFound
	}
	n.Title, n.Content, n.UpdatedAt = title, content, s.stamp()
	return *n, nil
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(userID, noteID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[noteID]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(s.notes, noteID)
	return nil
}

// =============================================================================
// LEARNINGS
// =============================================================================

var seedLearnings = []struct {
	kind model.LearningType
	body string
}{
	{model.LearningConcept, "Streaming replies arrive as response_chunk events."},
	{model.LearningCodeFact, "The agent socket lives at /agents/ws."},
	{model.LearningWorkflow, "Log in, pick a thread, then ask."},
	{model.LearningReference, "History roles: user_query, full_plan, response."},
}

func (s *Store) seedLearningsLocked(userID int) {
	for _, l := range seedLearnings {
		s.learnings[userID] = append(s.learnings[userID], model.Learning{
			ID:            s.id(),
			UserID:        userID,
			KnowledgeType: string(l.kind),
			KnowledgeBlob: l.body,
			CreatedAt:     s.stamp(),
		})
	}
}

// AddLearning stores a learning for userID.
func (s *Store) AddLearning(userID int, kind model.LearningType, body string) model.Learning {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := model.Learning{ID: s.id(), UserID: userID, KnowledgeType: string(kind), KnowledgeBlob: body, CreatedAt: s.stamp()}
	s.learnings[userID] = append(s.learnings[userID], l)
	return l
}

// Learnings lists userID's learnings, restricted to kind unless kind is
// empty.
func (s *Store) Learnings(userID int, kind string) []model.Learning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Learning{}
	for _, l := range s.learnings[userID] {
		if kind == "" || l.KnowledgeType == kind {
			out = append(out, l)
		}
	}
	return out
}

// newSessionID names a session the client did not name, the way the agent
// does.
func (s *Store) newSessionID(userID int) string {
	return "agent-" + strconv.Itoa(userID) + "-" + s.now().Format("20060102150405")
}
