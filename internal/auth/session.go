// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/storage"
)

// Storage keys.
const (
	KeyToken  = "token"
	KeyUserID = "userId"
)

var (
	// ErrNotLoggedIn is returned when no complete session is stored.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrUsernameRequired is returned by Login for a blank username.
	ErrUsernameRequired = errors.New("username is required")

	// ErrInvalidResponse is returned when the login response lacks a token
	// or a user id.
	ErrInvalidResponse = errors.New("invalid response from server")
)

// Login screen texts.
const (
	// LoginFailedText is shown when a login error carries no backend message.
	LoginFailedText = "Failed to login. Please try again."
	// InvalidResponseText is shown for ErrInvalidResponse.
	InvalidResponseText = "Invalid response from server"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is an authenticated identity.
type Session struct {
	Token  string
	UserID int
}

// Valid reports whether both halves are present.
func (s Session) Valid() bool {
	return s.Token != "" && s.UserID != 0
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.Valid()
}

// =============================================================================
// MANAGER
// =============================================================================

// Store is the persistence the manager needs.
type Store interface {
	Get(key string) (string, error)
	SetMany(pairs map[string]string) error
	Delete(keys ...string) error
}

// Authenticator exchanges a username for credentials.
type Authenticator interface {
	Login(ctx context.Context, username string) (api.LoginResult, error)
}

// Manager owns the stored session.
type Manager struct {
	store Store
	authn Authenticator

	mu      sync.RWMutex
	current Session
}

// NewManager creates a manager. authn may be nil when only Load and
// Logout are used.
func NewManager(store Store, authn Authenticator) *Manager {
	return &Manager{store: store, authn: authn}
}

// Load reads the stored session. Both keys must be present and the user
// id must be an integer; otherwise ErrNotLoggedIn is returned.
func (m *Manager) Load() (Session, error) {
	token, err := m.store.Get(KeyToken)
	if err != nil {
		return Session{}, notLoggedIn(err)
	}
	rawID, err := m.store.Get(KeyUserID)
	if err != nil {
		return Session{}, notLoggedIn(err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return Session{}, fmt.Errorf("%w: stored user id %q: %v", ErrNotLoggedIn, rawID, err)
	}

	s := Session{Token: token, UserID: id}
	if !s.Valid() {
		return Session{}, ErrNotLoggedIn
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s, nil
}

func notLoggedIn(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotLoggedIn
	}
	return fmt.Errorf("failed to read session: %w", err)
}

// Login authenticates username and persists the resulting session.
func (m *Manager) Login(ctx context.Context, username string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Session{}, ErrUsernameRequired
	}
	if m.authn == nil {
		return Session{}, errors.New("no authenticator configured")
	}

	res, err := m.authn.Login(ctx, username)
	if err != nil {
		return Session{}, err
	}
	s := Session{Token: res.Token, UserID: res.UserID}
	if !s.Valid() {
		return Session{}, ErrInvalidResponse
	}

	if err := m.store.SetMany(map[string]string{
		KeyToken:  s.Token,
		KeyUserID: strconv.Itoa(s.UserID),
	}); err != nil {
		return Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	logging.With("component", "auth").Info("logged in", "user_id", s.UserID)
	return s, nil
}

// Logout removes both stored keys.
func (m *Manager) Logout() error {
	if err := m.store.Delete(KeyToken, KeyUserID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()
	return nil
}

// Current returns the last loaded or created session.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current.Valid()
}

// ErrorText returns the message to show for a failed Login.
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidResponse):
		return InvalidResponseText
	case errors.Is(err, ErrUsernameRequired):
		return err.Error()
	}
	return api.MessageOf(err, LoginFailedText)
}
