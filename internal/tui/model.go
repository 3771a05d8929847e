package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/moolen/fitaura/internal/orchestrator"
)

// Runner executes one orchestration run.
type Runner interface {
	Run(ctx context.Context, userID, message string, opts ...orchestrator.RunOption) (*orchestrator.Result, error)
}

type entryKind int

const (
	entryUser entryKind = iota
	entryAgent
	entryAnswer
	entryError
)

// entry is one block of the transcript.
type entry struct {
	kind  entryKind
	agent string
	text  string
}

// Model is the Bubble Tea model for the chat.
type Model struct {
	ctx    context.Context
	runner Runner
	userID string

	// send delivers progress messages from the run goroutine.
	send func(tea.Msg)

	width  int
	height int

	transcript  []entry
	activeAgent string

	textArea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	mdRenderer *glamour.TermRenderer

	ready      bool
	quitting   bool
	processing bool
	lastError  error
}

// NewModel creates a chat model running messages for userID through runner.
func NewModel(ctx context.Context, runner Runner, userID string) *Model {
	ta := textarea.New()
	ta.Placeholder = "How are you feeling today?"
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(2)
	ta.MaxHeight = 10
	ta.ShowLineNumbers = false
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "  "
	})
	ta.FocusedStyle.Prompt = inputPromptStyle
	ta.BlurredStyle.Prompt = inputPromptStyle
	// enter submits
	ta.KeyMap.InsertNewline.SetKeys("shift+enter")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	vp := viewport.New(80, 20)
	vp.SetContent("")
	vp.MouseWheelEnabled = true

	mdRenderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)

	return &Model{
		ctx:        ctx,
		runner:     runner,
		userID:     userID,
		send:       func(tea.Msg) {},
		textArea:   ta,
		viewport:   vp,
		spinner:    s,
		mdRenderer: mdRenderer,
	}
}

// SetSender sets the function used to push progress messages into the
// program while a run is in flight.
func (m *Model) SetSender(send func(tea.Msg)) {
	if send != nil {
		m.send = send
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), textarea.Blink)
}

// runCmd runs message through the orchestrator. Agent progress is pushed
// through send; the returned message carries the outcome.
func (m *Model) runCmd(message string) tea.Cmd {
	ctx, runner, userID, send := m.ctx, m.runner, m.userID, m.send
	return func() tea.Msg {
		observer := orchestrator.ObserverFunc(func(_ context.Context, ev orchestrator.Event) {
			switch ev.Type {
			case orchestrator.EventAgentStarted:
				send(AgentStartedMsg{Agent: ev.Agent.String(), Step: ev.Step})
			case orchestrator.EventAgentCompleted:
				send(AgentCompletedMsg{Agent: ev.Agent.String(), Text: ev.Text})
			}
		})

		res, err := runner.Run(ctx, userID, message, orchestrator.WithObserver(observer))
		if err != nil {
			return RunFailedMsg{Err: err}
		}
		return RunFinishedMsg{Result: res}
	}
}
