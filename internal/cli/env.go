// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Shared collaborators for astra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/auth"
	"github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/config"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/storage"
	"github.com/jeranaias/astra-tui/internal/stream"
)

// Store is the durable key/value store commands keep the session in.
type Store interface {
	auth.Store
	Close() error
}

// Env bundles what the commands need. Build one with OpenEnv; tests
// assemble it directly.
type Env struct {
	Config     *config.Config
	ConfigPath string
	Store      Store
	Auth       *auth.Manager
	Client     *api.Client // unauthenticated
	Dialer     stream.Dialer

	In   io.Reader
	Out  io.Writer
	Err  io.Writer
	JSON bool
	// IsTTY overrides stdin detection for confirmations.
	IsTTY func() bool

	logCloser io.Closer
}

// OpenEnv loads the configuration, sets up logging and opens the state
// database.
func OpenEnv(args Args) (*Env, error) {
	path := args.ConfigPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	level := cfg.Logging.Level
	if args.Verbose {
		level = "debug"
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	closer, err := logging.Setup(level, logPath)
	if err != nil {
		return nil, err
	}

	statePath, err := config.StatePath()
	if err != nil {
		closer.Close()
		return nil, err
	}
	store, err := storage.Open(statePath)
	if err != nil {
		closer.Close()
		return nil, err
	}

	env := NewEnv(cfg, store)
	env.ConfigPath = path
	env.JSON = args.JSON
	env.logCloser = closer
	return env, nil
}

// NewEnv assembles an Env over cfg and store writing to the standard
// streams.
func NewEnv(cfg *config.Config, store Store) *Env {
	client := api.NewClient(cfg.Backend.APIURL).WithTimeout(cfg.Backend.Timeout())
	return &Env{
		Config: cfg,
		Store:  store,
		Auth:   auth.NewManager(store, client),
		Client: client,
		Dialer: stream.WSDialer{},
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

// Close releases the store and the log file.
func (e *Env) Close() error {
	var errs []error
	if e.Store != nil {
		errs = append(errs, e.Store.Close())
	}
	if e.logCloser != nil {
		errs = append(errs, e.logCloser.Close())
	}
	return errors.Join(errs...)
}

// Session returns the stored session.
func (e *Env) Session() (auth.Session, error) {
	s, err := e.Auth.Load()
	if errors.Is(err, auth.ErrNotLoggedIn) {
		return auth.Session{}, fmt.Errorf("%w: run 'astra login <username>' first", err)
	}
	return s, err
}

// AuthedClient returns a REST client carrying the stored token.
func (e *Env) AuthedClient() (*api.Client, auth.Session, error) {
	s, err := e.Session()
	if err != nil {
		return nil, auth.Session{}, err
	}
	return e.Client.WithToken(s.Token), s, nil
}

// Controller builds a chat controller for the stored session.
func (e *Env) Controller() (*chat.Controller, error) {
	client, s, err := e.AuthedClient()
	if err != nil {
		return nil, err
	}
	return chat.New(chat.Options{
		Backend:      client,
		Dialer:       e.Dialer,
		URL:          e.Config.Backend.WSURL,
		AgentName:    e.Config.Agent.Name,
		Identity:     chat.Identity{Token: s.Token, UserID: s.UserID},
		ChunkIdle:    e.Config.Agent.ChunkIdle(),
		RefreshDelay: e.Config.Agent.RefreshDelay(),
	}), nil
}

// confirmer returns a Confirmer that prompts on e's streams.
func (e *Env) confirmer(confirmFlag bool) *promptConfirmer {
	return &promptConfirmer{opts: ConfirmationOptions{
		ConfirmFlag: confirmFlag,
		JSONMode:    e.JSON,
		In:          e.In,
		Out:         e.Out,
		IsTTY:       e.IsTTY,
	}}
}

// requestContext bounds a single REST round trip.
func (e *Env) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	d := e.Config.Backend.Timeout()
	if d <= 0 {
		d = 30 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// printJSON writes data in the standard envelope.
func (e *Env) printJSON(command string, data interface{}) error {
	return NewJSONResponse(command, data).Print(e.Out)
}

// Run opens an Env for args, runs fn and closes the Env.
func Run(args Args, fn func(ctx context.Context, env *Env, args Args) error) error {
	env, err := OpenEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(context.Background(), env, args)
}
