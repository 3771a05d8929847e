package audit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/reasoning/reasoningtest"
)

func TestLogger_RecordsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")
	logger, err := NewLogger(path)
	require.NoError(t, err)

	supervisor := reasoningtest.NewScript(`{"next_agent": "DietAgent"}`, `{"next_agent": "FINISH"}`)
	orch, err := orchestrator.New(orchestrator.Deps{
		Classifier:  agent.NewIntentClassifier(reasoningtest.Repeat(`{"is_wellness": true, "category": "diet"}`)),
		Router:      agent.NewSupervisor(supervisor),
		Team:        agent.NewTeam(reasoningtest.Repeat("eat more fiber")),
		Synthesizer: agent.NewSynthesizer(reasoningtest.Repeat("Eat more fiber.")),
	}, orchestrator.WithObservers(logger))
	require.NoError(t, err)

	_, err = orch.Run(context.Background(), "alice", "I feel bloated", orchestrator.WithRunID("run-1"))
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	records, err := ReadRecords(path)
	require.NoError(t, err)

	types := make([]string, 0, len(records))
	for _, rec := range records {
		assert.Equal(t, "run-1", rec.RunID)
		assert.Equal(t, "alice", rec.UserID)
		assert.False(t, rec.Timestamp.IsZero())
		types = append(types, rec.Type)
	}
	assert.Equal(t, []string{
		"run_started", "intent_classified", "supervisor_decision",
		"agent_started", "agent_completed", "supervisor_decision", "run_completed",
	}, types)

	assert.Equal(t, "I feel bloated", records[0].Data["message"])
	assert.Equal(t, "diet", records[1].Data["category"])
	assert.Equal(t, "DietAgent", records[2].Agent)
	assert.Equal(t, "eat more fiber", records[4].Data["output"])
	assert.Equal(t, "FINISH", records[5].Agent)

	final := records[6].Data
	assert.Equal(t, "finished", final["termination"])
	assert.Equal(t, []interface{}{"DietAgent"}, final["agents_used"])
	assert.Equal(t, "Eat more fiber.", final["answer"])
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, WithRedaction())

	logger.OnEvent(context.Background(), orchestrator.Event{
		Type:  orchestrator.EventRunStarted,
		RunID: "r",
		Time:  time.Now(),
		Text:  "my private symptoms",
	})

	line := buf.String()
	assert.NotContains(t, line, "private")
	assert.Contains(t, line, `"message_chars":19`)
}

func TestLogger_FailureAndUnknownAgent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf)
	ctx := context.Background()

	logger.OnEvent(ctx, orchestrator.Event{Type: orchestrator.EventSupervisorDecision, RunID: "r", Step: 2, Agent: agent.Unknown, Text: "SleepAgent"})
	logger.OnEvent(ctx, orchestrator.Event{Type: orchestrator.EventRunFailed, RunID: "r", Err: errors.New("backend down"), Duration: 1500 * time.Millisecond})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"unknown_agent":"SleepAgent"`)
	assert.Contains(t, lines[0], `"step":2`)
	assert.NotContains(t, lines[0], `"agent":`)
	assert.Contains(t, lines[1], `"error":"backend down"`)
	assert.Contains(t, lines[1], `"duration_ms":1500`)
}

func TestLogger_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	for i := 0; i < 2; i++ {
		logger, err := NewLogger(path)
		require.NoError(t, err)
		require.NoError(t, logger.Write(Record{Type: "run_started", RunID: "r"}))
		require.NoError(t, logger.Close())
	}

	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReadRecords_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"type\":\"run_started\"}\nnot json\n"), 0o600))

	_, err := ReadRecords(path)
	assert.ErrorContains(t, err, "line 2")
}
