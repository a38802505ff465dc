// Package chattui hosts the offer chat widget in a terminal, either as a
// full-screen bubbletea program or as a plain line-oriented stream.
package chattui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tOgg1/offerchat/internal/chat"
	"github.com/tOgg1/offerchat/internal/chattui/styles"
	"github.com/tOgg1/offerchat/internal/logging"
)

const (
	headerHeight = 2
	footerHeight = 3
	minBodyWidth = 10
	footerHelp   = "enter send · ctrl+r refresh · pgup/pgdn scroll · esc close"
)

// Controller is the part of the widget the model drives.
type Controller interface {
	Open(conversationID string, viewer chat.Viewer, title string)
	Send(ctx context.Context, text string) error
	Refresh(ctx context.Context) error
	Close()
}

type openRequest struct {
	conversationID string
	viewer         chat.Viewer
	title          string
}

type sendResultMsg struct{ err error }

type refreshResultMsg struct{ err error }

// Model renders whatever the widget pushes through ProgramSurface. It holds
// no conversation state of its own beyond the last rendered view.
type Model struct {
	ctx        context.Context
	controller Controller
	open       *openRequest
	logger     zerolog.Logger

	theme    styles.Theme
	chrome   styles.Chrome
	messages styles.MessageStyles

	width  int
	height int

	title           string
	visible         bool
	view            chat.View
	notice          string
	composerEnabled bool
	sending         bool

	viewport viewport.Model
	input    textinput.Model
}

// NewModel creates a model using the named theme.
func NewModel(ctx context.Context, theme string) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	selected := styles.Lookup(theme)
	chrome := styles.NewChrome(selected)

	input := textinput.New()
	input.Placeholder = "Write a message…"
	input.Prompt = "› "
	input.PromptStyle = chrome.Prompt
	input.CharLimit = 0

	return &Model{
		ctx:             ctx,
		logger:          logging.Component("chattui"),
		theme:           selected,
		chrome:          chrome,
		messages:        styles.NewMessageStyles(selected),
		composerEnabled: true,
		viewport:        viewport.New(0, 0),
		input:           input,
	}
}

// Bind attaches the widget and the conversation opened when the program starts.
func (m *Model) Bind(controller Controller, conversationID string, viewer chat.Viewer, title string) {
	m.controller = controller
	m.open = &openRequest{conversationID: conversationID, viewer: viewer, title: title}
}

func (m *Model) Init() tea.Cmd {
	if m.controller == nil || m.open == nil {
		return nil
	}
	req := *m.open
	controller := m.controller
	return tea.Batch(textinput.Blink, func() tea.Msg {
		controller.Open(req.conversationID, req.viewer, req.title)
		return nil
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(typed.Width, typed.Height)
		return m, nil
	case titleMsg:
		m.title = typed.title
		return m, nil
	case visibleMsg:
		m.visible = typed.visible
		return m, nil
	case viewMsg:
		m.view = typed.view
		m.refreshContent()
		return m, nil
	case scrollLatestMsg:
		m.viewport.GotoBottom()
		return m, nil
	case composerEnabledMsg:
		m.composerEnabled = typed.enabled
		if !typed.enabled {
			m.input.Blur()
		}
		return m, nil
	case clearDraftMsg:
		m.input.Reset()
		return m, nil
	case focusComposerMsg:
		return m, m.input.Focus()
	case noticeMsg:
		m.notice = typed.text
		return m, nil
	case dismissNoticeMsg:
		m.notice = ""
		return m, nil
	case sendResultMsg:
		m.sending = false
		m.logResult("send", typed.err)
		return m, nil
	case refreshResultMsg:
		m.logResult("refresh", typed.err)
		return m, nil
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(typed); handled {
			return m, cmd
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.composerEnabled {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit, true
	case "enter":
		return m.sendCmd(), true
	case "ctrl+r":
		return m.refreshCmd(), true
	case "pgup":
		m.viewport.ViewUp()
		return nil, true
	case "pgdown":
		m.viewport.ViewDown()
		return nil, true
	case "up":
		m.viewport.LineUp(1)
		return nil, true
	case "down":
		m.viewport.LineDown(1)
		return nil, true
	}
	return nil, false
}

// sendCmd hands the draft to the widget off the event loop; the widget
// reports back through the surface.
func (m *Model) sendCmd() tea.Cmd {
	if m.controller == nil || !m.composerEnabled || m.sending {
		return nil
	}
	draft := m.input.Value()
	if strings.TrimSpace(draft) == "" {
		return nil
	}
	m.sending = true
	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		return sendResultMsg{err: controller.Send(ctx, draft)}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	if m.controller == nil {
		return nil
	}
	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		return refreshResultMsg{err: controller.Refresh(ctx)}
	}
}

func (m *Model) logResult(op string, err error) {
	if err == nil || errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, context.Canceled) {
		return
	}
	m.logger.Debug().Err(err).Str("op", op).Msg("chat operation failed")
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = maxInt(1, width-lipgloss.Width(m.input.Prompt)-1)
	m.viewport.Width = maxInt(0, width)
	m.viewport.Height = maxInt(0, height-headerHeight-footerHeight)
	m.refreshContent()
}

func (m *Model) refreshContent() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages(m.viewport.Width))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessages(width int) string {
	if width <= 0 {
		width = 80
	}
	if m.view.Empty || len(m.view.Items) == 0 {
		placeholder := m.view.Placeholder
		if placeholder == "" {
			placeholder = chat.EmptyPlaceholder
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, m.messages.Empty.Render(placeholder))
	}

	bodyWidth := maxInt(minBodyWidth, width*3/4)
	blocks := make([]string, 0, len(m.view.Items))
	for _, item := range m.view.Items {
		header := m.messages.RenderHeader(SanitizeLine(item.Sender), item.TimeLabel, item.Self)
		body := m.messages.RenderBody(Sanitize(item.Text), bodyWidth)
		block := lipgloss.JoinVertical(lipgloss.Left, header, body)
		if item.Self {
			block = lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) View() string {
	if !m.visible {
		return m.chrome.Muted.Render("Conversation closed.") + "\n"
	}
	width := m.width
	if width <= 0 {
		width = 80
	}

	title := SanitizeLine(m.title)
	if title == "" {
		title = "Conversation"
	}
	header := m.chrome.Header.MaxWidth(width).Render(title)
	divider := m.chrome.Divider.Render(strings.Repeat("─", width))

	notice := ""
	if m.notice != "" {
		notice = m.chrome.Notice.MaxWidth(width).Render("! " + m.notice)
	}

	composer := m.input.View()
	if !m.composerEnabled {
		composer = m.chrome.Muted.Render("Sending…")
	}
	footer := m.chrome.Footer.MaxWidth(width).Render(footerHelp)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		divider,
		m.viewport.View(),
		notice,
		composer,
		footer,
	)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
