package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/reasoning/reasoningtest"
	"github.com/moolen/fitaura/internal/store"
)

func newTestServer(t *testing.T, st *store.Memory, agents ...string) *Server {
	t.Helper()
	decisions := make([]string, 0, len(agents))
	for _, a := range agents {
		decisions = append(decisions, fmt.Sprintf(`{"next_agent": %q}`, a))
	}
	supervisor := reasoningtest.NewScript(decisions...)
	supervisor.Fallback = `{"next_agent": "FINISH"}`

	orch, err := orchestrator.New(orchestrator.Deps{
		Classifier:  agent.NewIntentClassifier(reasoningtest.Repeat(`{"is_wellness": true}`)),
		Router:      agent.NewSupervisor(supervisor),
		Team:        agent.NewTeam(reasoningtest.Repeat("walk 20 minutes")),
		Synthesizer: agent.NewSynthesizer(reasoningtest.Repeat("Take a short walk after meals.")),
		Profiles:    st,
		History:     st,
	})
	require.NoError(t, err)
	return NewServer(orch, st, "test")
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := s.createToolHandler(name, s.tools[name])(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestWellnessAsk(t *testing.T) {
	st := store.NewMemory()
	s := newTestServer(t, st, "FitnessAgent")

	res := callTool(t, s, ToolAsk, map[string]any{"message": "How do I get fitter?", "user_id": "u1"})
	require.False(t, res.IsError, resultText(t, res))

	var out AskOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "Take a short walk after meals.", out.Answer)
	assert.Equal(t, []string{"FitnessAgent"}, out.AgentsUsed)
	assert.Equal(t, orchestrator.TerminationFinished, out.Termination)
	assert.NotEmpty(t, out.RunID)

	turns, err := st.History(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestWellnessAsk_Errors(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	for _, args := range []map[string]any{{}, {"message": "   "}, {"message": 42}} {
		res := callTool(t, s, ToolAsk, args)
		assert.True(t, res.IsError, "args %v", args)
	}
}

func TestWellnessProfile(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Put(context.Background(), "u1", agent.Profile{"goal": "run a 10k"}))
	s := newTestServer(t, st)

	res := callTool(t, s, ToolProfile, map[string]any{"user_id": "u1"})
	require.False(t, res.IsError)
	var out ProfileOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "run a 10k", out.Profile["goal"])

	res = callTool(t, s, ToolProfile, map[string]any{"user_id": "unknown"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"profile": {}`)

	res = callTool(t, s, ToolProfile, map[string]any{})
	assert.True(t, res.IsError)
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	resp := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.Contains(t, string(raw), ToolAsk)
	assert.Contains(t, string(raw), ToolProfile)
}

func TestServeStdio(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.ServeStdio(ctx, inR, outW) }()

	go func() {
		_, _ = io.WriteString(inW, `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`+"\n")
	}()

	buf := make([]byte, 64*1024)
	n, err := outR.Read(buf)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(buf[:n]), ToolAsk))

	cancel()
	_ = inW.Close()
	_ = outR.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stdio server did not stop")
	}
}
