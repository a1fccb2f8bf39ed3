// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth.go - Login and logout command handlers.
//
// Command: login
// Short:   Authenticate against the backend and store credentials
//
// Examples:
//   opsdeck login                  Prompt for username and password
//   opsdeck login --user admin     Prompt for password only
//
// Credentials are stored in ~/.opsdeck/credentials.json with 0600
// permissions. Logout removes the file.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/opsdeck/opsdeck-tui/internal/api"
	"github.com/opsdeck/opsdeck-tui/internal/auth"
)

// HandleLogin handles the "login" command.
func HandleLogin(args Args) error {
	client, cfg := anonClient(args)

	username := args.Username
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	result, err := client.Login(ctx, username, password)
	if err != nil {
		if api.IsAuthError(err) {
			return fmt.Errorf("invalid username or password")
		}
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	store, err := auth.NewStore()
	if err != nil {
		return err
	}
	if err := store.Save(auth.Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Username:     result.User.Username,
		Email:        result.User.Email,
	}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	fmt.Printf("Logged in as %s\n", result.User.Username)
	return nil
}

// HandleLogout handles the "logout" command.
func HandleLogout(args Args) error {
	store, err := auth.NewStore()
	if err != nil {
		return err
	}
	if !store.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	username := store.Username()
	if err := store.Clear(); err != nil {
		return fmt.Errorf("remove credentials: %w", err)
	}

	if username != "" {
		fmt.Printf("Logged out %s.\n", username)
	} else {
		fmt.Println("Logged out.")
	}
	return nil
}

// readPassword reads a password without echoing it. Falls back to a plain
// line read when stdin is not a terminal (piped input in scripts).
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
