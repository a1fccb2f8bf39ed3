// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/opsdeck/opsdeck-tui/internal/api"
	"github.com/opsdeck/opsdeck-tui/internal/auth"
	"github.com/opsdeck/opsdeck-tui/internal/config"
	"github.com/opsdeck/opsdeck-tui/internal/model"
)

// parseConversationID parses a conversation id argument. Invalid input is
// treated as no conversation rather than aborting the command.
func parseConversationID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		fmt.Fprintf(os.Stderr, "Ignoring invalid conversation id %q\n", s)
		return model.NoConversation
	}
	return id
}

// effectiveConfig returns the global config with CLI flag overrides applied.
func effectiveConfig(args Args) *config.Config {
	cfg := config.Global()
	if args.Server != "" {
		cfg.Server.URL = args.Server
	}
	if args.Context != "" {
		cfg.Chat.Context = args.Context
	}
	return cfg
}

// authedClient builds an API client using stored credentials. It exits with
// a login hint when no credentials are present.
func authedClient(args Args) (*api.Client, *auth.Store, *config.Config) {
	cfg := effectiveConfig(args)

	store, err := auth.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !store.IsAuthenticated() {
		fmt.Fprintln(os.Stderr, "Not logged in. Run: opsdeck login")
		os.Exit(1)
	}

	transport := api.NewTransport(cfg.Server.URL, store)
	transport.SetOnAuthFailure(func() {
		// A rejected token is useless; drop it so the next run prompts.
		_ = store.Clear()
	})
	return api.NewClient(transport), store, cfg
}

// anonClient builds an API client that sends no credentials. Used for login.
func anonClient(args Args) (*api.Client, *config.Config) {
	cfg := effectiveConfig(args)
	transport := api.NewTransport(cfg.Server.URL, api.TokenFunc(func() string { return "" }))
	return api.NewClient(transport), cfg
}
