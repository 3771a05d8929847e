package orchestrator

import (
	"context"
	"time"

	"github.com/moolen/fitaura/internal/agent"
)

// EventType names a point in the lifecycle of a run.
type EventType string

// Events are delivered in this order; run_failed replaces run_completed when
// the run returns an error.
const (
	EventRunStarted         EventType = "run_started"
	EventIntentClassified   EventType = "intent_classified"
	EventSupervisorDecision EventType = "supervisor_decision"
	EventAgentStarted       EventType = "agent_started"
	EventAgentCompleted     EventType = "agent_completed"
	EventRunCompleted       EventType = "run_completed"
	EventRunFailed          EventType = "run_failed"
)

// Event is one progress notification.
type Event struct {
	Type   EventType
	RunID  string
	UserID string
	Time   time.Time

	// Step is the 1-based supervisor call the event belongs to.
	Step int

	// Agent is set for decision and agent events. An unknown decision has
	// Agent == agent.Unknown and the raw name in Text.
	Agent agent.AgentID

	// Text carries the message (run_started), the specialist output
	// (agent_completed), the final answer (run_completed) or the raw
	// unknown agent name.
	Text string

	InDomain    bool
	Category    string
	Termination Termination
	AgentsUsed  []agent.AgentID
	Duration    time.Duration
	Err         error
}

// Observer receives events synchronously on the run goroutine and must not
// block for long.
type Observer interface {
	OnEvent(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}
