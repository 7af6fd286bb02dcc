// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for astra.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show (default)      Display current configuration
//	get <key>           Print one value
//	set <key> <value>   Set a value and save
//	path                Show configuration file path
//
// Examples:
//
//	astra config
//	astra config get agent.chunk_idle_ms
//	astra config set backend.api_url http://astra.local:8000
//	astra config set ui.theme light
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/astra-tui/internal/config"
)

var configSubcommands = []string{"show", "get", "set", "path"}

// HandleConfig handles "astra config". It does not open the state
// database, so it works before the first login.
func HandleConfig(args Args) error {
	path := args.ConfigPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}
	env := &Env{ConfigPath: path, JSON: args.JSON, Out: os.Stdout, Err: os.Stderr}
	return runConfig(context.Background(), env, args)
}

func runConfig(_ context.Context, env *Env, args Args) error {
	p := args.Parser()
	switch args.Subcommand {
	case "path":
		if env.JSON {
			return env.printJSON("config path", map[string]string{"path": env.ConfigPath})
		}
		fmt.Fprintln(env.Out, env.ConfigPath)
		return nil

	case "", "show":
		cfg, err := config.LoadFromPath(env.ConfigPath)
		if err != nil {
			return err
		}
		return showConfig(env, cfg)

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "astra config get agent.name")
		}
		cfg, err := config.LoadFromPath(env.ConfigPath)
		if err != nil {
			return err
		}
		v, err := cfg.Get(key)
		if err != nil {
			return NewValidationError("key", key, err.Error())
		}
		if env.JSON {
			return env.printJSON("config get", map[string]interface{}{key: v})
		}
		fmt.Fprintln(env.Out, v)
		return nil

	case "set":
		key, value := p.Positional(1), JoinPositionalArgs(p, 2)
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "astra config set ui.theme light")
		}
		cfg, err := loadFileOnly(env.ConfigPath)
		if err != nil {
			return err
		}
		if err := cfg.Set(key, value); err != nil {
			return NewValidationError("key", key, err.Error())
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.SaveTOML(cfg, env.ConfigPath); err != nil {
			return err
		}
		if env.JSON {
			return env.printJSON("config set", map[string]string{key: value})
		}
		fmt.Fprintf(env.Out, "%s %s = %s\n", SuccessStyle.Render("✓"), key, value)
		return nil
	}
	return ErrUnknownSubcommand("config", args.Subcommand, configSubcommands)
}

// loadFileOnly reads path without environment overrides, so that saving
// does not persist them.
func loadFileOnly(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

func showConfig(env *Env, cfg *config.Config) error {
	values := make(map[string]interface{})
	for _, k := range config.Keys() {
		v, err := cfg.Get(k)
		if err != nil {
			return err
		}
		values[k] = v
	}
	if env.JSON {
		return env.printJSON("config", ConfigData{Path: env.ConfigPath, Values: values})
	}

	fmt.Fprintln(env.Out, TitleStyle.Render("Configuration"))
	fmt.Fprintln(env.Out, DimStyle.Render(env.ConfigPath))
	section := ""
	for _, k := range config.Keys() {
		sec, field, _ := strings.Cut(k, ".")
		if sec != section {
			section = sec
			fmt.Fprintf(env.Out, "\n[%s]\n", sec)
		}
		fmt.Fprintf(env.Out, "  %-18s %v\n", field, values[k])
	}
	return nil
}
