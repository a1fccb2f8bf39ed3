// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler.
//
// Handles the "opsdeck chat" command which provides an interactive REPL
// against the backend assistant. Unlike the TUI this is line oriented and
// works over plain pipes and dumb terminals.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   opsdeck chat                    Start a new chat
//   opsdeck chat --conversation 7   Continue conversation 7
//
// Interactive commands (during chat):
//   /new          Start a new conversation
//   /history      Reprint the conversation so far
//   /help         Show available commands
//   /quit, /q     Exit chat
//   Ctrl+D        Exit chat

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/opsdeck/opsdeck-tui/internal/api"
	"github.com/opsdeck/opsdeck-tui/internal/config"
	"github.com/opsdeck/opsdeck-tui/internal/model"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history persisted under the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.Dir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.loadHistory()
	return cli
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists input history with owner-only permissions.
func (c *ChatCLI) saveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) {
	client, store, cfg := authedClient(args)

	input := NewChatCLI()
	defer input.Close()

	conversationID := args.ConversationID

	if !args.Quiet {
		fmt.Println(welcomeStyle.Render("OpsDeck chat"))
		fmt.Println(infoStyle.Render(fmt.Sprintf("Connected to %s as %s. Type /help for commands.",
			cfg.Server.URL, store.Username())))
		fmt.Println()
	}

	// Continuing an existing conversation: replay its history first.
	if conversationID != model.NoConversation {
		if err := printHistory(client, cfg, conversationID); err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), api.UserMessage(err))
			conversationID = model.NoConversation
		}
	}

	for {
		text, err := input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C aborts the prompt, Ctrl+D sends EOF. Both exit.
			fmt.Println()
			return
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			var done bool
			conversationID, done = handleSlashCommand(text, client, cfg, conversationID)
			if done {
				return
			}
			continue
		}

		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.SendTimeout())
		result, err := client.Send(ctx, text, conversationID, cfg.Chat.Context)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), api.UserMessage(err))
			if api.IsAuthError(err) {
				fmt.Fprintln(os.Stderr, infoStyle.Render("Run: opsdeck login"))
				return
			}
			continue
		}

		if conversationID == model.NoConversation && result.ConversationID != model.NoConversation {
			conversationID = result.ConversationID
			if !args.Quiet {
				fmt.Println(infoStyle.Render(fmt.Sprintf("[conversation %d]", conversationID)))
			}
		}

		fmt.Println(assistantStyle.Render(result.Reply))
		fmt.Println()
	}
}

// handleSlashCommand processes a /command. Returns the possibly changed
// conversation id and whether the REPL should exit.
func handleSlashCommand(text string, client *api.Client, cfg *config.Config, conversationID int64) (int64, bool) {
	cmd := strings.ToLower(strings.Fields(text)[0])

	switch cmd {
	case "/quit", "/q", "/exit":
		return conversationID, true

	case "/new", "/clear", "/c":
		fmt.Println(infoStyle.Render("Started a new conversation."))
		return model.NoConversation, false

	case "/history":
		if conversationID == model.NoConversation {
			fmt.Println(infoStyle.Render("No saved conversation yet."))
			return conversationID, false
		}
		if err := printHistory(client, cfg, conversationID); err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), api.UserMessage(err))
		}
		return conversationID, false

	case "/help", "/h":
		fmt.Println(headingStyle.Render("Commands"))
		fmt.Println("  /new       Start a new conversation")
		fmt.Println("  /history   Reprint the conversation so far")
		fmt.Println("  /quit      Exit chat")
		return conversationID, false

	default:
		fmt.Println(warningStyle.Render(fmt.Sprintf("Unknown command %s. Try /help.", cmd)))
		return conversationID, false
	}
}

// printHistory fetches and prints a conversation transcript.
func printHistory(client *api.Client, cfg *config.Config, conversationID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	messages, err := client.History(ctx, conversationID)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		label := promptStyle.Render("you>")
		if msg.Role == model.RoleAssistant {
			label = headingStyle.Render("assistant>")
		}
		fmt.Printf("%s %s\n", label, msg.Content)
	}
	fmt.Println()
	return nil
}
