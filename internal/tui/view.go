package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"hubchat/internal/types"
)

const sidebarWidth = 34

func (m *model) layout() {
	sideHeight := (m.height - 4) / 2
	if sideHeight < 4 {
		sideHeight = 4
	}
	m.hubList.SetSize(sidebarWidth-2, sideHeight)
	m.convList.SetSize(sidebarWidth-2, sideHeight)

	mainWidth := m.width - sidebarWidth - 4
	if mainWidth < 20 {
		mainWidth = 20
	}
	m.transcript.Width = mainWidth
	m.transcript.Height = m.height - m.input.Height() - 6
	if m.transcript.Height < 4 {
		m.transcript.Height = 4
	}
	m.input.SetWidth(mainWidth)
}

func (m *model) syncTranscript() {
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
}

func (m *model) renderTranscript() string {
	messages := m.ctrl.Messages()
	if len(messages) == 0 {
		if m.ctrl.SelectedHub() == "" {
			return dimStyle.Render("Select a hub to start chatting")
		}
		if m.ctrl.CurrentConversationID() == "" {
			return dimStyle.Render("Select or create a conversation")
		}
		return dimStyle.Render("Ask a question about your documents")
	}

	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleUser:
			b.WriteString(userMsgStyle.Render("You"))
			b.WriteString("  " + dimStyle.Render(msg.Timestamp.Format("15:04")))
			b.WriteString("\n")
			b.WriteString(ansi.Wrap(msg.Content, m.transcript.Width, ""))
			b.WriteString("\n\n")
		default:
			b.WriteString(headerStyle.Render("Assistant"))
			b.WriteString("  " + dimStyle.Render(msg.Timestamp.Format("15:04")))
			b.WriteString("\n")
			b.WriteString(m.renderAnswer(msg.Content))
			b.WriteString(renderSources(msg.Sources))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *model) renderAnswer(content string) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(content); err == nil {
			return strings.TrimRight(out, "\n") + "\n"
		}
	}
	return ansi.Wrap(content, m.transcript.Width, "") + "\n"
}

func renderSources(sources []types.Source) string {
	if len(sources) == 0 {
		return ""
	}
	shown := sources
	if len(shown) > maxVisibleSources {
		shown = shown[:maxVisibleSources]
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render("Sources:"))
	b.WriteString("\n")
	for _, src := range shown {
		b.WriteString(sourceStyle.Render("- " + previewText(src.Content, 120)))
		b.WriteString("\n")
	}
	if hidden := len(sources) - len(shown); hidden > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (+%d more)", hidden)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	hubPane := borderStyle
	convPane := borderStyle
	inputPane := borderStyle
	switch m.focus {
	case focusHubs:
		hubPane = focusBorder
	case focusConversations:
		convPane = focusBorder
	case focusInput:
		inputPane = focusBorder
	}

	sidebar := lipgloss.JoinVertical(lipgloss.Left,
		hubPane.Render(m.hubList.View()),
		convPane.Render(m.convList.View()),
	)

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		borderStyle.Render(m.transcript.View()),
		inputPane.Render(m.input.View()),
		m.footerView(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
}

func (m model) headerView() string {
	hub := m.ctrl.SelectedHub()
	title := "hubchat"
	switch {
	case m.switching:
		title = m.spin.View() + " switching hub..."
	case hub != "":
		title = hub
		if m.ctrl.IsLoaded(hub) {
			title += " " + loadedStyle.Render("[loaded]")
		}
	}
	status := m.statusView()
	gap := m.width - sidebarWidth - lipgloss.Width(title) - lipgloss.Width(status) - 6
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Render(title) + strings.Repeat(" ", gap) + status
}

func (m model) statusView() string {
	switch m.ctrl.Status() {
	case types.StatusConnected:
		return connectedStyle.Render("connected")
	case types.StatusDisconnected:
		return downStyle.Render("disconnected")
	default:
		return dimStyle.Render("checking...")
	}
}

func (m model) footerView() string {
	if m.confirmDelete != "" {
		return confirmStyle.Render("Delete this conversation? (y/n)")
	}
	if m.notice != "" {
		return m.notice
	}
	if m.sending {
		return m.spin.View() + dimStyle.Render(" waiting for answer...")
	}
	help := "tab focus - enter select/send - n new chat - d delete - s sync - u unload - r refresh - q quit"
	return footerStyle.Render(help)
}
