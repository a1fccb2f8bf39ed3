// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command handler.
//
// Command: ask
// Short:   Ask a single question and print the reply
//
// Examples:
//   opsdeck ask "what services are degraded?"
//   opsdeck ask --conversation 7 "and yesterday?"
//   opsdeck ask -q "uptime of the api service"
//
// Flags:
//   -c, --conversation ID   Continue an existing conversation
//   -q, --quiet             Print only the reply text

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/opsdeck/opsdeck-tui/internal/api"
	"github.com/opsdeck/opsdeck-tui/internal/model"
)

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) {
	if args.Query == "" {
		fmt.Fprintln(os.Stderr, "Usage: opsdeck ask \"your question\"")
		os.Exit(1)
	}

	client, _, cfg := authedClient(args)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SendTimeout())
	defer cancel()

	result, err := client.Send(ctx, args.Query, args.ConversationID, cfg.Chat.Context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), api.UserMessage(err))
		os.Exit(1)
	}

	fmt.Println(result.Reply)

	if !args.Quiet && args.ConversationID == model.NoConversation && result.ConversationID != model.NoConversation {
		fmt.Fprintf(os.Stderr, "\n%s\n",
			infoStyle.Render(fmt.Sprintf("Saved as conversation %d. Continue with: opsdeck ask -c %d \"...\"",
				result.ConversationID, result.ConversationID)))
	}
}
