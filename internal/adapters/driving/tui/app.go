package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/pantry-labs/gourmet-cli/internal/adapters/driving/tui/keymap"
	"github.com/pantry-labs/gourmet-cli/internal/adapters/driving/tui/styles"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driving"
)

// turnDoneMsg signals that one conversation turn finished.
type turnDoneMsg struct {
	err error
}

// App is the chat TUI application. It implements tea.Model.
type App struct {
	conversation driving.Conversation
	transcript   *Transcript
	sessionID    string

	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	input    textinput.Model
	viewport viewport.Model

	err    error
	busy   bool
	ready  bool
	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the chat application. Each run gets a fresh session.
func NewApp(conversation driving.Conversation, transcript *Transcript) *App {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Focus()
	input.CharLimit = 256

	return &App{
		conversation: conversation,
		transcript:   transcript,
		sessionID:    uuid.NewString(),
		ctx:          context.Background(),
		styles:       styles.DefaultStyles(),
		keys:         keymap.DefaultKeyMap(),
		input:        input,
	}
}

// WithContext sets the context used for conversation turns.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// SessionID returns the session identifier for this run.
func (a *App) SessionID() string {
	return a.sessionID
}

// Init implements tea.Model. The conversation opens with a greeting.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("gourmet - Recipe Chat"),
		textinput.Blink,
		a.turn("/start"),
	)
}

// turn runs one conversation turn off the UI goroutine.
func (a *App) turn(text string) tea.Cmd {
	return func() tea.Msg {
		return turnDoneMsg{err: a.conversation.HandleMessage(a.ctx, a.sessionID, text)}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Header, options hint, input box and help line take five rows.
		vpHeight := msg.Height - 7
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !a.ready {
			a.viewport = viewport.New(msg.Width, vpHeight)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = vpHeight
		}
		a.input.Width = msg.Width - 6
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, a.keys.Send):
			text := strings.TrimSpace(a.input.Value())
			if text == "" || a.busy {
				return a, nil
			}
			a.transcript.appendUser(text)
			a.input.Reset()
			a.busy = true
			a.refresh()
			return a, a.turn(text)

		case key.Matches(msg, a.keys.ScrollUp):
			a.viewport.HalfViewUp()
			return a, nil

		case key.Matches(msg, a.keys.ScrollDown):
			a.viewport.HalfViewDown()
			return a, nil
		}

	case turnDoneMsg:
		a.busy = false
		a.err = msg.err
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// refresh re-renders the transcript into the viewport and follows the
// latest message.
func (a *App) refresh() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	var b strings.Builder
	for _, e := range a.transcript.snapshot() {
		switch e.role {
		case roleUser:
			b.WriteString(a.styles.User.Width(a.width).Render("You: " + e.text))
		default:
			b.WriteString(a.styles.Bot.Render(e.text))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// optionsHint renders the latest quick-reply options as a one-line hint.
func (a *App) optionsHint() string {
	entries := a.transcript.snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].role != roleBot {
			continue
		}
		if len(entries[i].options) == 0 {
			return ""
		}
		var labels []string
		for _, row := range entries[i].options {
			labels = append(labels, row...)
		}
		return a.styles.Options.Render("Replies: " + strings.Join(labels, " | "))
	}
	return ""
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Gourmet Bot"))
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if hint := a.optionsHint(); hint != "" {
		b.WriteString(hint)
	}
	b.WriteString("\n")
	b.WriteString(a.styles.InputField.Render(a.input.View()))
	b.WriteString("\n")

	status := "enter send | pgup/pgdn scroll | esc quit"
	if a.busy {
		status = "thinking..."
	}
	if a.err != nil {
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
		b.WriteString("  ")
	}
	b.WriteString(a.styles.Help.Render(status))
	return b.String()
}
