// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck-tui/internal/model"
)

// chromeHeight is the number of terminal rows taken by the fixed chrome:
// header (2), input box (3), status bar (1). The viewport gets the rest.
// Keep in sync with SetSize.
const chromeHeight = 6

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat pane.
// Layout: header + messages (viewport) + input + status bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	messages := m.viewport.View()

	// Force the viewport section to its configured height so a content
	// mismatch cannot push the input off screen.
	availableHeight := m.height - lipgloss.Height(header) - lipgloss.Height(input) - lipgloss.Height(status)
	if availableHeight < 1 {
		availableHeight = 1
	}
	if lipgloss.Height(messages) != availableHeight {
		messages = lipgloss.NewStyle().
			Height(availableHeight).
			MaxHeight(availableHeight).
			Width(m.width).
			Render(messages)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		messages,
		input,
		status,
	)
}

// renderHeader renders the title bar with the active conversation state.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("OpsDeck Assistant")

	var subtitle string
	if m.session.ActiveID() == model.NoConversation {
		subtitle = m.theme.HeaderSubtitle.Render("New Chat")
	} else {
		subtitle = m.theme.HeaderSubtitle.Render(fmt.Sprintf("Conversation #%d", m.session.ActiveID()))
	}

	line := title + "  " + subtitle
	return m.theme.Header.Width(m.width).Render(line)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders the scrollback content for the viewport: the
// message list, the thinking indicator while a request is in flight, and
// the error banner when the last operation failed.
func (m Model) renderTranscript() string {
	messages := m.session.Messages()

	var parts []string

	if len(messages) == 0 && !m.session.IsLoading() && m.session.Error() == "" {
		parts = append(parts, m.renderWelcome())
	}

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleUser:
			parts = append(parts, m.renderUserMessage(msg))
		default:
			parts = append(parts, m.renderAssistantMessage(msg))
		}
	}

	if m.session.IsLoading() {
		parts = append(parts, m.renderThinking())
	}

	if errText := m.session.Error(); errText != "" {
		parts = append(parts, m.renderErrorBanner(errText))
	}

	return strings.Join(parts, "\n")
}

// renderUserMessage renders a user message right-aligned with a label line.
func (m Model) renderUserMessage(msg *model.Message) string {
	maxWidth := m.bubbleWidth()

	label := m.theme.MessageLabel.Render(msg.Role.DisplayName()) +
		" " + m.theme.MessageTime.Render(msg.Timestamp.Format("15:04"))

	bubble := m.theme.UserBubble.
		MaxWidth(maxWidth).
		Render(wrapText(msg.Content, maxWidth-4))

	block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)

	marginLeft := m.width - lipgloss.Width(block) - 2
	if marginLeft < 0 {
		marginLeft = 0
	}
	return lipgloss.NewStyle().
		MarginLeft(marginLeft).
		MarginTop(1).
		Render(block)
}

// renderAssistantMessage renders an assistant message left-aligned.
func (m Model) renderAssistantMessage(msg *model.Message) string {
	maxWidth := m.bubbleWidth()

	label := m.theme.MessageLabel.Render(msg.Role.DisplayName()) +
		" " + m.theme.MessageTime.Render(msg.Timestamp.Format("15:04"))

	bubble := m.theme.AssistantBubble.
		MaxWidth(maxWidth).
		Render(wrapText(msg.Content, maxWidth-4))

	block := lipgloss.JoinVertical(lipgloss.Left, label, bubble)
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(block)
}

// bubbleWidth caps message bubbles well inside the pane.
func (m Model) bubbleWidth() int {
	maxWidth := m.width * 3 / 4
	if maxWidth > m.width-4 {
		maxWidth = m.width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}
	return maxWidth
}

// renderThinking renders the animated waiting indicator.
func (m Model) renderThinking() string {
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(m.spinner.View() + " " + m.theme.ThinkingText.Render("Thinking..."))
}

// renderErrorBanner renders the dismissable error box under the transcript.
func (m Model) renderErrorBanner(text string) string {
	body := m.theme.ErrorTitle.Render("Error") + "\n" +
		text + "\n" +
		m.theme.ErrorHint.Render("Press Esc to dismiss")

	width := m.width - 6
	if width < 20 {
		width = 20
	}
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(m.theme.ErrorBox.MaxWidth(width).Render(body))
}

// renderWelcome renders the empty anonymous chat state with prompt ideas.
func (m Model) renderWelcome() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}
	if width > 72 {
		width = 72
	}

	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(center.Render(m.theme.WelcomeTitle.Render("Welcome to OpsDeck")))
	sb.WriteString("\n\n")
	sb.WriteString(center.Render(m.theme.WelcomeSubtitle.Render("Ask about your services, deployments, and alerts.")))
	sb.WriteString("\n\n")

	chips := []string{
		"What services are degraded?",
		"Summarize the last deployment",
		"Show recent alerts",
	}
	for _, chip := range chips {
		sb.WriteString(center.Render(m.theme.WelcomeChip.Render(chip)))
		sb.WriteString("\n")
	}

	return lipgloss.NewStyle().MarginLeft(2).Render(sb.String())
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

// renderInput renders the input box. The border dims when the pane is not
// focused so the sidebar focus state is obvious.
func (m Model) renderInput() string {
	style := m.theme.InputContainer.Width(m.width - 2)
	if !m.input.Focused() {
		style = style.BorderForeground(m.theme.InputPlaceholder.GetForeground())
	}
	return style.Render(m.input.View())
}

// renderStatusBar renders the bottom shortcut bar.
func (m Model) renderStatusBar() string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "send"},
		{"Tab", "sidebar"},
		{"C-n", "new chat"},
		{"C-l", "clear"},
		{"C-c", "quit"},
	}

	var parts []string
	for _, s := range shortcuts {
		parts = append(parts,
			m.theme.ShortcutKey.Render(s.key)+" "+m.theme.ShortcutDesc.Render(s.desc))
	}

	line := strings.Join(parts, "  ")
	return m.theme.StatusBar.Width(m.width).Render(line)
}

// =============================================================================
// TEXT UTILITIES
// =============================================================================

// wrapText word-wraps text to a maximum rune width, preserving existing
// line breaks. Words longer than the width are split rather than overflow.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, line)
			continue
		}

		var current []rune
		for _, word := range words {
			w := []rune(word)

			// Hard-split words that alone exceed the width.
			for len(w) > maxWidth {
				if len(current) > 0 {
					out = append(out, string(current))
					current = nil
				}
				out = append(out, string(w[:maxWidth]))
				w = w[maxWidth:]
			}
			if len(w) == 0 {
				continue
			}

			switch {
			case len(current) == 0:
				current = w
			case len(current)+1+len(w) <= maxWidth:
				current = append(current, ' ')
				current = append(current, w...)
			default:
				out = append(out, string(current))
				current = w
			}
		}
		if len(current) > 0 {
			out = append(out, string(current))
		}
	}

	return strings.Join(out, "\n")
}
