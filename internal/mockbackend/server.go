// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockbackend

import (
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/model"
)

// Defaults for Options.
const (
	DefaultChunkSize  = 8
	DefaultChunkDelay = 20 * time.Millisecond
	DefaultAgentName  = "astra"
)

// Locals keys set by the auth middleware.
const (
	localUserID = "user_id"
	localToken  = "token"
)

// Options configures a Server.
type Options struct {
	// ChunkSize is the number of runes per response_chunk.
	ChunkSize int
	// ChunkDelay separates chunks. Keep it below the client's idle window
	// for the chunks to coalesce into one message. Negative disables
	// pacing.
	ChunkDelay time.Duration
	// Reply computes the agent's answer. Defaults to an echo.
	Reply func(query string) string
	// Store, when nil, is a fresh NewStore.
	Store *Store
}

func (o *Options) setDefaults() {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkDelay < 0 {
		o.ChunkDelay = 0
	} else if o.ChunkDelay == 0 {
		o.ChunkDelay = DefaultChunkDelay
	}
	if o.Reply == nil {
		o.Reply = EchoReply
	}
	if o.Store == nil {
		o.Store = NewStore()
	}
}

// EchoReply answers with the query itself.
func EchoReply(query string) string {
	return "You said: " + query
}

// =============================================================================
// SERVER
// =============================================================================

// Server is the in-memory backend.
type Server struct {
	app   *fiber.App
	store *Store
	opts  Options
	log   *slog.Logger
}

// New builds a Server with every route registered.
func New(opts Options) *Server {
	opts.setDefaults()
	s := &Server{
		store: opts.Store,
		opts:  opts,
		log:   logging.With("component", "mockbackend"),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "astra-mock",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s
}

// App returns the fiber app, for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Store returns the backing store.
func (s *Server) Store() *Store { return s.store }

// ListenAndServe serves on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("mock backend listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops accepting requests and waits briefly for open ones.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(2 * time.Second)
}

func (s *Server) routes() {
	s.app.Post("/auth/login", s.handleLogin)

	s.app.Get("/chat/sessions", s.requireToken, s.handleSessions)
	s.app.Get("/chat/session/:id/messages", s.requireToken, s.handleHistory)
	s.app.Delete("/chat/session/:id", s.requireToken, s.handleDeleteSession)

	s.app.Get("/users/me", s.requireToken, s.handleGetProfile)
	s.app.Put("/users/me", s.requireToken, s.handleUpdateProfile)

	s.app.Post("/notes", s.requireToken, s.handleCreateNote)
	s.app.Get("/notes/user/:uid", s.requireToken, s.handleListNotes)
	s.app.Put("/notes/:id", s.requireToken, s.handleUpdateNote)
	s.app.Delete("/notes/:id", s.requireToken, s.handleDeleteNote)

	s.app.Get("/learning/fetch/:uid", s.requireToken, s.handleLearnings)
	s.app.Get("/learning/fetch/:uid/type/:type", s.requireToken, s.handleLearnings)

	s.app.Get("/agents/ws", s.requireToken, requireUpgrade, websocket.New(s.agentSocket))
}

func requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// requireToken accepts "Bearer <token>" for a token issued by Login.
func (s *Server) requireToken(c *fiber.Ctx) error {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || scheme != "Bearer" || token == "" {
		return fiber.ErrUnauthorized
	}
	uid, ok := s.store.UserForToken(token)
	if !ok {
		return fiber.ErrUnauthorized
	}
	c.Locals(localUserID, uid)
	c.Locals(localToken, token)
	return c.Next()
}

// handleError renders errors as {"error": message}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		code = fiber.StatusForbidden
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func userID(c *fiber.Ctx) int {
	uid, _ := c.Locals(localUserID).(int)
	return uid
}

// ownUser rejects paths naming another user's id.
func ownUser(c *fiber.Ctx) error {
	uid, err := c.ParamsInt("uid")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	if uid != userID(c) {
		return fiber.ErrForbidden
	}
	return nil
}

// =============================================================================
// REST HANDLERS
// =============================================================================

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	name := strings.TrimSpace(req.Username)
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "username is required")
	}
	token, uid := s.store.Login(name)
	s.log.Info("login", "username", name, "user_id", uid)
	return c.JSON(fiber.Map{"token": token, "user_id": uid})
}

func (s *Server) handleSessions(c *fiber.Ctx) error {
	return c.JSON(s.store.Sessions(userID(c)))
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	rows, err := s.store.History(userID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	if err := s.store.DeleteSession(userID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	p, err := s.store.Profile(userID(c))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var upd model.ProfileUpdate
	if err := c.BodyParser(&upd); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	p, err := s.store.UpdateProfile(userID(c), upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.JSON(p)
}

type noteBody struct {
	UserID  int    `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleCreateNote(c *fiber.Ctx) error {
	var body noteBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if body.UserID != userID(c) {
		return fiber.ErrForbidden
	}
	if strings.TrimSpace(body.Content) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "content is required")
	}
	n := s.store.CreateNote(body.UserID, body.Title, body.Content)
	return c.Status(fiber.StatusCreated).JSON(n)
}

func (s *Server) handleListNotes(c *fiber.Ctx) error {
	if err := ownUser(c); err != nil {
		return err
	}
	return c.JSON(s.store.Notes(userID(c)))
}

func (s *Server) handleUpdateNote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}
	var body noteBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	n, err := s.store.UpdateNote(userID(c), id, body.Title, body.Content)
	if err != nil {
		return err
	}
	return c.JSON(n)
}

func (s *Server) handleDeleteNote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}
	if err := s.store.DeleteNote(userID(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func (s *Server) handleLearnings(c *fiber.Ctx) error {
	if err := ownUser(c); err != nil {
		return err
	}
	kind := c.Params("type")
	if kind != "" {
		if _, ok := model.ParseLearningType(kind); !ok || kind == string(model.LearningAll) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown knowledge type "+kind)
		}
	}
	return c.JSON(s.store.Learnings(userID(c), kind))
}
