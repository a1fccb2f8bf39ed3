// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// conversations.go - Conversation listing command handler.
//
// Command: conversations
// Short:   List your conversations grouped by recency
// Aliases: convos, ls

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/opsdeck/opsdeck-tui/internal/api"
	"github.com/opsdeck/opsdeck-tui/internal/directory"
)

// HandleConversations handles the "conversations" command.
func HandleConversations(args Args) {
	client, _, cfg := authedClient(args)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	conversations, err := client.ListConversations(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), api.UserMessage(err))
		os.Exit(1)
	}

	if len(conversations) == 0 {
		fmt.Println(infoStyle.Render("No conversations yet. Start one with: opsdeck chat"))
		return
	}

	groups := directory.GroupByRecency(conversations, time.Now())
	for _, group := range groups {
		fmt.Println(headingStyle.Render(group.Label))
		for _, c := range group.Conversations {
			fmt.Printf("  %4d  %s\n", c.ID, c.DisplayTitle())
		}
		fmt.Println()
	}

	if !args.Quiet {
		fmt.Println(infoStyle.Render("Continue one with: opsdeck chat -c <id>"))
	}
}
