package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"classchat/internal/models"
	"classchat/internal/msgsync"
)

// Styles for the UI
var (
	appStyle    = lipgloss.NewStyle().Padding(1, 2)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).PaddingBottom(1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A")).PaddingTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	unreadStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	inputStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A3A3A3")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginRight(2)
	msgStyle  = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), false, false, false, true)
	userStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	selfStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	timeStyle = lipgloss.NewStyle().Faint(true)
	fileStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#5FAFFF"))

	memberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3A3A3"))
)

// Messages delivered to the program by the synchronizer handlers
type (
	MessagesMsg []models.Message
	NotifyMsg   models.Message
	ErrorMsg    struct{ Err error }
)

// sentMsg reports the outcome of a send or manual refresh
type sentMsg struct{ err error }

// Sender posts text messages to a room
type Sender interface {
	SendText(ctx context.Context, roomID, sender, content string) (*models.Message, error)
}

// Refresher triggers an out-of-band poll
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Options configures the room view
type Options struct {
	Username  string
	Room      string
	Sender    Sender
	Refresher Refresher
	Members   []models.Member
	// Bell receives "\a" per notification. It defaults to os.Stdout, the
	// terminal the program renders to.
	Bell      io.Writer
	Timeout   time.Duration
}

type keyMap struct {
	Send    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// chatModel represents the room view
type chatModel struct {
	opts     Options
	keys     keyMap
	viewport viewport.Model
	textarea textarea.Model
	messages []models.Message
	unread   int
	err      error
	ready    bool
	width    int
}

// Handlers bridges synchronizer output into a running program. send is
// usually (*tea.Program).Send, which returns once the program has exited.
func Handlers(send func(tea.Msg)) msgsync.Handlers {
	return msgsync.Handlers{
		Notify:            func(m models.Message) { send(NotifyMsg(m)) },
		OnMessagesUpdated: func(ms []models.Message) { send(MessagesMsg(ms)) },
		OnError:           func(err error) { send(ErrorMsg{Err: err}) },
	}
}

// NewModel creates the room view model
func NewModel(opts Options) tea.Model {
	if opts.Bell == nil {
		opts.Bell = os.Stdout
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Prompt = "│ "
	ta.Focus()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.CharLimit = 1000

	return chatModel{
		opts: opts,
		keys: keyMap{
			Send:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("Ctrl+S", "send message")),
			Refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("Ctrl+R", "refresh")),
			Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("Ctrl+C", "quit")),
		},
		textarea: ta,
		messages: []models.Message{},
	}
}

// Init initializes the chat model
func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles model updates
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.unread = 0
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Send):
			return m.sendMessage()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width-6, msg.Height-m.chromeHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 6
			m.viewport.Height = msg.Height - m.chromeHeight()
		}
		m.textarea.SetWidth(msg.Width - 6)
		m.viewport.SetContent(formatMessages(m.messages, m.width, m.opts.Username))

	case MessagesMsg:
		m.messages = []models.Message(msg)
		m.err = nil
		m.viewport.SetContent(formatMessages(m.messages, m.width, m.opts.Username))
		m.viewport.GotoBottom()
		return m, nil

	case NotifyMsg:
		m.unread++
		return m, ringBell(m.opts.Bell)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case sentMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// sendMessage posts the input and refreshes the room
func (m chatModel) sendMessage() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.textarea.Value())
	if content == "" || m.opts.Sender == nil {
		return m, nil
	}
	m.textarea.Reset()

	opts := m.opts
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()

		if _, err := opts.Sender.SendText(ctx, opts.Room, opts.Username, content); err != nil {
			return sentMsg{err: err}
		}
		return sentMsg{err: refreshNow(ctx, opts.Refresher)}
	}
}

func (m chatModel) refresh() tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		return sentMsg{err: refreshNow(ctx, opts.Refresher)}
	}
}

// refreshNow polls once; fetch failures already arrive through ErrorMsg
func refreshNow(ctx context.Context, r Refresher) error {
	if r == nil {
		return nil
	}
	if err := r.Refresh(ctx); err != nil && !errors.Is(err, msgsync.ErrFetchFailure) {
		return err
	}
	return nil
}

func ringBell(w io.Writer) tea.Cmd {
	return func() tea.Msg {
		_, _ = io.WriteString(w, "\a")
		return nil
	}
}

// View renders the chat interface
func (m chatModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	title := fmt.Sprintf("💬 %s - %s", m.opts.Room, m.opts.Username)
	if len(m.opts.Members) > 0 {
		title += "\n" + memberStyle.Render(formatMembers(m.opts.Members))
	}
	view := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		m.viewport.View(),
		lipgloss.NewStyle().PaddingTop(1).Render(inputStyle.Render(m.textarea.View())),
		m.statusLine(),
	)

	return appStyle.Render(view)
}

func (m chatModel) statusLine() string {
	parts := []string{"Ctrl+S to send • Ctrl+R to refresh • Ctrl+C to quit"}
	if m.unread > 0 {
		parts = append(parts, unreadStyle.Render(fmt.Sprintf("%d new", m.unread)))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	return statusStyle.Render(strings.Join(parts, " • "))
}

// chromeHeight is the number of rows around the message pane
func (m chatModel) chromeHeight() int {
	if len(m.opts.Members) > 0 {
		return 10
	}
	return 9
}

func formatMembers(members []models.Member) string {
	names := make([]string, 0, len(members))
	for _, mb := range members {
		names = append(names, mb.String())
	}
	return fmt.Sprintf("%d members: %s", len(members), strings.Join(names, ", "))
}

// formatMessages formats messages for display
func formatMessages(messages []models.Message, width int, self string) string {
	var formatted strings.Builder
	contentWidth := width - 30
	if contentWidth < 10 {
		contentWidth = 10
	}

	for _, msg := range messages {
		user := userStyle.Render(msg.Sender + ":")
		if msg.Sender == self {
			user = selfStyle.Render(msg.Sender + ":")
		}
		ts := timeStyle.Render(msg.Timestamp.Local().Format("15:04"))

		body := msg.Content
		if msg.IsFile() {
			name := msg.FileName
			if name == "" {
				name = "file"
			}
			body = fileStyle.Render(fmt.Sprintf("[%s] %s", name, msg.FileURL))
			if msg.Content != "" {
				body = msg.Content + "\n" + body
			}
		}
		content := msgStyle.Render(lipgloss.NewStyle().Width(contentWidth).Render(body))

		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			lipgloss.NewStyle().Width(25).Render(lipgloss.JoinVertical(lipgloss.Left, user, ts)),
			content,
		)
		formatted.WriteString(line + "\n")
	}
	return formatted.String()
}
