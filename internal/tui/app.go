// Package tui is the terminal front end: hub picker, conversation
// sidebar, transcript viewport, and message input, all driven by the
// session controller.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"hubchat/internal/session"
	"hubchat/internal/types"
	"hubchat/internal/utils"
)

const (
	focusHubs = iota
	focusConversations
	focusInput
	focusCount
)

// maxVisibleSources caps how many evidence excerpts render under an
// assistant message; the full list stays in the store.
const maxVisibleSources = 3

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	confirmStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	userMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).PaddingLeft(2)
	loadedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	connectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	downStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	borderStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	focusBorder    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("39"))
)

type hubsMsg struct {
	hubs []types.Hub
	err  error
}

type switchedMsg struct {
	hub     string
	message string
	err     error
}

type chatResultMsg struct {
	message *types.Message
	err     error
}

type hubOpMsg struct {
	verb    string
	message string
	err     error
}

type healthMsg struct{ status types.ConnectionStatus }

type tickMsg time.Time

type noticeExpireMsg struct{ id int }

type model struct {
	ctrl   *session.Controller
	logger *utils.Logger

	width  int
	height int
	focus  int

	hubList   list.Model
	convList  list.Model
	transcript viewport.Model
	input     textarea.Model
	spin      spinner.Model

	renderer *glamour.TermRenderer

	sending   bool
	switching bool

	notice   string
	noticeID int

	confirmDelete string // conversation id pending deletion

	quitting bool
}

// Run starts the TUI and blocks until it exits. The controller's
// background timers are stopped on the way out.
func Run(ctrl *session.Controller, logger *utils.Logger) error {
	hubList := newListModel("Hubs")
	convList := newListModel("Conversations")

	input := textarea.New()
	input.Placeholder = "Select a hub first"
	input.Prompt = ""
	input.ShowLineNumbers = false
	input.SetHeight(3)

	spin := spinner.New()
	spin.Spinner = spinner.Line
	spin.Style = dimStyle

	m := model{
		ctrl:       ctrl,
		logger:     logger,
		focus:      focusHubs,
		hubList:    hubList,
		convList:   convList,
		transcript: viewport.New(0, 0),
		input:      input,
		spin:       spin,
	}

	ctrl.StartPolling()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	ctrl.Close()
	return err
}

func newListModel(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		fetchHubsCmd(m.ctrl),
		refreshLoadedCmd(m.ctrl),
		healthCmd(m.ctrl),
		tickCmd(),
		m.spin.Tick,
	)
}

func fetchHubsCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		hubs, err := ctrl.RefreshHubs(context.Background())
		return hubsMsg{hubs: hubs, err: err}
	}
}

func refreshLoadedCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.RefreshLoadedHubs(context.Background())
		return tickMsg(time.Now())
	}
}

func healthCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return healthMsg{status: ctrl.CheckConnection(context.Background())}
	}
}

func switchHubCmd(ctrl *session.Controller, hub string) tea.Cmd {
	return func() tea.Msg {
		message, err := ctrl.SwitchHub(context.Background(), hub)
		return switchedMsg{hub: hub, message: message, err: err}
	}
}

func sendCmd(ctrl *session.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		message, err := ctrl.SendMessage(context.Background(), text)
		return chatResultMsg{message: message, err: err}
	}
}

func unloadCmd(ctrl *session.Controller, hub string) tea.Cmd {
	return func() tea.Msg {
		message, err := ctrl.UnloadHub(context.Background(), hub)
		return hubOpMsg{verb: "unload", message: message, err: err}
	}
}

func syncCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		message, err := ctrl.SyncHub(context.Background())
		return hubOpMsg{verb: "sync", message: message, err: err}
	}
}

// tickCmd drives a light UI resync so poller results show up without
// user input. The network polling itself lives in the controller.
func tickCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func noticeExpireCmd(id int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return noticeExpireMsg{id: id}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.renderer = newRenderer(m.transcript.Width)
		m.syncTranscript()
		return m, nil

	case hubsMsg:
		if msg.err != nil {
			return m.withNotice(errStyle.Render(msg.err.Error()))
		}
		m.hubList.SetItems(buildHubItems(msg.hubs, m.ctrl))
		return m, nil

	case tickMsg:
		m.hubList.SetItems(buildHubItems(m.ctrl.Hubs(), m.ctrl))
		return m, tickCmd()

	case healthMsg:
		return m, nil

	case switchedMsg:
		m.switching = false
		if msg.err != nil {
			m.convList.SetItems(nil)
			m.syncTranscript()
			return m.withNotice(errStyle.Render(msg.err.Error()))
		}
		m.convList.SetItems(buildConversationItems(m.ctrl.Conversations()))
		m.input.Placeholder = "Ask a question about your documents..."
		m.syncTranscript()
		m.hubList.SetItems(buildHubItems(m.ctrl.Hubs(), m.ctrl))
		next, expire := m.withNotice(noticeStyle.Render(msg.message))
		return next, tea.Batch(expire, fetchHubsCmd(m.ctrl))

	case chatResultMsg:
		m.sending = false
		m.syncTranscript()
		m.convList.SetItems(buildConversationItems(m.ctrl.Conversations()))
		if msg.err != nil {
			return m.withNotice(errStyle.Render(errString(msg.err)))
		}
		return m, nil

	case hubOpMsg:
		if msg.err != nil {
			return m.withNotice(errStyle.Render(msg.err.Error()))
		}
		if msg.verb == "unload" {
			m.convList.SetItems(nil)
			m.input.Placeholder = "Select a hub first"
			m.syncTranscript()
		}
		next, expire := m.withNotice(noticeStyle.Render(msg.message))
		return next, tea.Batch(expire, fetchHubsCmd(m.ctrl))

	case noticeExpireMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.sending || m.switching {
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmDelete != "" {
		switch msg.String() {
		case "y", "enter":
			id := m.confirmDelete
			m.confirmDelete = ""
			if err := m.ctrl.DeleteConversation(id); err != nil {
				return m.withNotice(errStyle.Render(err.Error()))
			}
			m.convList.SetItems(buildConversationItems(m.ctrl.Conversations()))
			m.syncTranscript()
			return m, nil
		case "n", "esc":
			m.confirmDelete = ""
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % focusCount
		m.applyFocus()
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + focusCount - 1) % focusCount
		m.applyFocus()
		return m, nil
	}

	if m.focus == focusInput {
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.sending || m.ctrl.SelectedHub() == "" {
				return m, nil
			}
			m.input.Reset()
			m.sending = true
			m.syncTranscript()
			return m, tea.Batch(sendCmd(m.ctrl, text), m.spin.Tick)
		case "esc":
			m.focus = focusHubs
			m.applyFocus()
			return m, nil
		}
		return m.updateFocused(msg)
	}

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "r":
		return m, fetchHubsCmd(m.ctrl)
	case "s":
		if m.ctrl.SelectedHub() != "" {
			return m, syncCmd(m.ctrl)
		}
		return m, nil
	case "u":
		if hub := m.ctrl.SelectedHub(); hub != "" {
			return m, unloadCmd(m.ctrl, hub)
		}
		return m, nil
	case "n":
		if m.ctrl.SelectedHub() == "" {
			return m, nil
		}
		if _, err := m.ctrl.NewConversation(); err != nil {
			return m.withNotice(errStyle.Render(err.Error()))
		}
		m.convList.SetItems(buildConversationItems(m.ctrl.Conversations()))
		m.convList.Select(0)
		m.focus = focusInput
		m.applyFocus()
		m.syncTranscript()
		return m, nil
	case "d":
		if m.focus == focusConversations {
			if item, ok := m.convList.SelectedItem().(conversationItem); ok {
				m.confirmDelete = item.data.ID
			}
		}
		return m, nil
	case "enter":
		return m.handleSelect()
	}

	return m.updateFocused(msg)
}

func (m model) handleSelect() (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusHubs:
		item, ok := m.hubList.SelectedItem().(hubItem)
		if !ok || m.switching {
			return m, nil
		}
		m.switching = true
		return m, tea.Batch(switchHubCmd(m.ctrl, item.data.HubName), m.spin.Tick)
	case focusConversations:
		item, ok := m.convList.SelectedItem().(conversationItem)
		if !ok {
			return m, nil
		}
		if m.ctrl.SelectConversation(item.data.ID) {
			m.focus = focusInput
			m.applyFocus()
			m.syncTranscript()
		}
		return m, nil
	}
	return m, nil
}

func (m model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusHubs:
		m.hubList, cmd = m.hubList.Update(msg)
	case focusConversations:
		m.convList, cmd = m.convList.Update(msg)
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *model) applyFocus() {
	if m.focus == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m model) withNotice(text string) (model, tea.Cmd) {
	m.notice = text
	m.noticeID++
	return m, noticeExpireCmd(m.noticeID)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func newRenderer(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}
