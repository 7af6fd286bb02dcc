// astra-mock - In-memory Astra backend for local development.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Usage:
//
//	astra-mock [--addr 127.0.0.1:8000] [--chunk-size 8] [--chunk-delay-ms 20] [--log-level info]
//
// Point the client at it with:
//
//	astra config set backend.api_url http://127.0.0.1:8000
//	astra config set backend.ws_url ws://127.0.0.1:8000/agents/ws
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jeranaias/astra-tui/internal/cli"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/mockbackend"
)

const defaultAddr = "127.0.0.1:8000"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "astra-mock: %v\n", err)
		os.Exit(1)
	}
}

func run(raw []string) error {
	p := cli.NewArgParser(raw)
	if p.BoolFlag("help") {
		fmt.Println("usage: astra-mock [--addr HOST:PORT] [--chunk-size N] [--chunk-delay-ms N] [--log-level LEVEL]")
		return nil
	}

	logging.SetOutput(os.Stderr, p.FlagOrDefault("log-level", "info"))

	opts := mockbackend.Options{}
	if v := p.Flag("chunk-size"); v != "" {
		n, err := cli.ParseIntWithValidation(v, "chunk-size")
		if err != nil {
			return err
		}
		opts.ChunkSize = n
	}
	if v := p.Flag("chunk-delay-ms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cli.NewValidationError("chunk-delay-ms", v, "must be a non-negative integer")
		}
		opts.ChunkDelay = time.Duration(n) * time.Millisecond
		if n == 0 {
			opts.ChunkDelay = -1
		}
	}

	srv := mockbackend.New(opts)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logging.Logger().Info("shutting down")
		srv.Shutdown()
	}()

	return srv.ListenAndServe(p.FlagOrDefault("addr", defaultAddr))
}
