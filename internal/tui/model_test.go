package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/reasoning/reasoningtest"
	"github.com/moolen/fitaura/internal/store"
)

func newOrchestrator(t *testing.T, agents ...string) *orchestrator.Orchestrator {
	t.Helper()
	decisions := make([]string, 0, len(agents))
	for _, a := range agents {
		decisions = append(decisions, fmt.Sprintf(`{"next_agent": %q}`, a))
	}
	supervisor := reasoningtest.NewScript(decisions...)
	supervisor.Fallback = `{"next_agent": "FINISH"}`

	st := store.NewMemory()
	orch, err := orchestrator.New(orchestrator.Deps{
		Classifier:  agent.NewIntentClassifier(reasoningtest.Repeat(`{"is_wellness": true}`)),
		Router:      agent.NewSupervisor(supervisor),
		Team:        agent.NewTeam(reasoningtest.Repeat("drink water")),
		Synthesizer: agent.NewSynthesizer(reasoningtest.Repeat("Drink a glass of water.")),
		Profiles:    st,
		History:     st,
	})
	require.NoError(t, err)
	return orch
}

type failingRunner struct{ err error }

func (r failingRunner) Run(context.Context, string, string, ...orchestrator.RunOption) (*orchestrator.Result, error) {
	return nil, r.err
}

type msgSink struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *msgSink) send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *msgSink) all() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestModel_SubmitStartsRun(t *testing.T) {
	m := sized(NewModel(context.Background(), newOrchestrator(t), "u1"))
	m.textArea.SetValue("  I feel tired  ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, m.processing)
	assert.Empty(t, m.textArea.Value())
	require.Len(t, m.transcript, 1)
	assert.Equal(t, entry{kind: entryUser, text: "I feel tired"}, m.transcript[0])
}

func TestModel_SubmitIgnored(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		processing bool
	}{
		{name: "blank input", input: "   "},
		{name: "run in flight", input: "hello", processing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sized(NewModel(context.Background(), newOrchestrator(t), "u1"))
			m.textArea.SetValue(tt.input)
			m.processing = tt.processing

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

			assert.Nil(t, cmd)
			assert.Empty(t, m.transcript)
		})
	}
}

func TestModel_RunCmdStreamsAgents(t *testing.T) {
	m := NewModel(context.Background(), newOrchestrator(t, "DietAgent", "FitnessAgent"), "u1")
	sink := &msgSink{}
	m.SetSender(sink.send)

	msg := m.runCmd("I want more energy")()

	finished, ok := msg.(RunFinishedMsg)
	require.True(t, ok, "expected RunFinishedMsg, got %T", msg)
	assert.Equal(t, "Drink a glass of water.", finished.Result.FinalText)

	assert.Equal(t, []tea.Msg{
		AgentStartedMsg{Agent: "DietAgent", Step: 1},
		AgentCompletedMsg{Agent: "DietAgent", Text: "drink water"},
		AgentStartedMsg{Agent: "FitnessAgent", Step: 2},
		AgentCompletedMsg{Agent: "FitnessAgent", Text: "drink water"},
	}, sink.all())
}

func TestModel_RunCmdFailure(t *testing.T) {
	boom := errors.New("backend down")
	m := NewModel(context.Background(), failingRunner{err: boom}, "u1")

	msg := m.runCmd("hello")()

	failed, ok := msg.(RunFailedMsg)
	require.True(t, ok, "expected RunFailedMsg, got %T", msg)
	assert.ErrorIs(t, failed.Err, boom)
}

func TestModel_RunMessages(t *testing.T) {
	m := sized(NewModel(context.Background(), newOrchestrator(t), "u1"))
	m.processing = true

	m.Update(AgentStartedMsg{Agent: "DietAgent", Step: 1})
	assert.Equal(t, "DietAgent", m.activeAgent)
	assert.Contains(t, m.renderTranscript(), "Diet agent is working")

	m.Update(AgentCompletedMsg{Agent: "DietAgent", Text: "eat oats"})
	assert.Empty(t, m.activeAgent)

	m.Update(RunFinishedMsg{Result: &orchestrator.Result{FinalText: "Eat oats."}})
	assert.False(t, m.processing)
	require.Len(t, m.transcript, 2)
	assert.Equal(t, entryAgent, m.transcript[0].kind)
	assert.Equal(t, entry{kind: entryAnswer, text: "Eat oats."}, m.transcript[1])

	m.processing = true
	m.Update(RunFailedMsg{Err: errors.New("timeout")})
	assert.False(t, m.processing)
	assert.EqualError(t, m.lastError, "timeout")
	assert.Contains(t, m.renderTranscript(), "Error: timeout")
}

func TestModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := NewModel(context.Background(), newOrchestrator(t), "u1")
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
		assert.True(t, m.quitting)
		assert.Empty(t, m.View())
	}
}

func TestFormatAgentName(t *testing.T) {
	assert.Equal(t, "Symptom agent", formatAgentName("SymptomAgent"))
	assert.Equal(t, "FINISH", formatAgentName("FINISH"))
	assert.Equal(t, "Agent", formatAgentName("Agent"))
}

func TestRun_RequiresRunnerAndUser(t *testing.T) {
	assert.Error(t, Run(context.Background(), Config{UserID: "u1"}))
	assert.Error(t, Run(context.Background(), Config{Runner: failingRunner{}}))
}
