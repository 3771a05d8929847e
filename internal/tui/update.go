package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// Update handles all incoming messages and updates the model accordingly.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.ready = true
		if m.mdRenderer == nil || m.width != msg.Width {
			m.mdRenderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(max(msg.Width-8, 20)),
			)
		}
		m.width = msg.Width
		m.height = msg.Height
		m.textArea.SetWidth(max(msg.Width-4, 10))

		// header, two separators, input, help and margins
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-9, 3)
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.processing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateViewport()
		return m, cmd

	case AgentStartedMsg:
		m.activeAgent = msg.Agent
		m.updateViewport()
		return m, nil

	case AgentCompletedMsg:
		m.activeAgent = ""
		m.transcript = append(m.transcript, entry{kind: entryAgent, agent: msg.Agent, text: msg.Text})
		m.updateViewport()
		return m, nil

	case RunFinishedMsg:
		m.processing = false
		m.activeAgent = ""
		if msg.Result != nil {
			m.transcript = append(m.transcript, entry{kind: entryAnswer, text: msg.Result.FinalText})
		}
		m.textArea.Focus()
		m.updateViewport()
		return m, nil

	case RunFailedMsg:
		m.processing = false
		m.activeAgent = ""
		m.lastError = msg.Err
		m.transcript = append(m.transcript, entry{kind: entryError, text: msg.Err.Error()})
		m.textArea.Focus()
		m.updateViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.textArea, cmd = m.textArea.Update(msg)
	return m, cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.processing {
			return m, nil
		}
		input := strings.TrimSpace(m.textArea.Value())
		if input == "" {
			return m, nil
		}
		m.textArea.Reset()
		m.textArea.Blur()
		m.lastError = nil
		m.processing = true
		m.transcript = append(m.transcript, entry{kind: entryUser, text: input})
		m.updateViewport()
		return m, tea.Batch(m.runCmd(input), m.spinner.Tick)
	}

	if m.processing {
		return m, nil
	}
	var cmd tea.Cmd
	m.textArea, cmd = m.textArea.Update(msg)
	return m, cmd
}

// updateViewport re-renders the transcript and keeps it scrolled to the
// bottom.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
