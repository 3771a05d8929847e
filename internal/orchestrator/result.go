package orchestrator

import (
	"github.com/moolen/fitaura/internal/agent"
)

// Termination explains why a run stopped.
type Termination string

const (
	// TerminationFinished means the supervisor returned FINISH.
	TerminationFinished Termination = "finished"
	// TerminationDuplicateAgent means the supervisor picked an agent that
	// already ran.
	TerminationDuplicateAgent Termination = "duplicate_agent"
	// TerminationUnknownAgent means the supervisor named an agent outside
	// the known set.
	TerminationUnknownAgent Termination = "unknown_agent"
	// TerminationMaxSteps means the step budget ran out.
	TerminationMaxSteps Termination = "max_steps"
	// TerminationOutOfDomain means the intent gate rejected the message.
	TerminationOutOfDomain Termination = "out_of_domain"
)

// Fixed replies and notes.
const (
	OutOfDomainReply = "This message is not related to wellness. I only help with basic health, diet, fitness and lifestyle tips."
	MaxStepsNote     = "The orchestration reached the maximum number of steps and was finished automatically."
	unknownAgentNote = "The supervisor selected an unknown agent (%s), so the orchestration was stopped early."
)

// Result is the outcome of one run.
type Result struct {
	RunID     string `json:"run_id"`
	FinalText string `json:"answer"`

	// AgentsUsed lists the specialists in invocation order, without
	// duplicates.
	AgentsUsed []agent.AgentID `json:"agents_used"`

	InDomain       bool                 `json:"in_domain"`
	Classification agent.Classification `json:"classification"`

	// Steps is the number of supervisor calls made.
	Steps       int         `json:"steps"`
	Termination Termination `json:"termination"`

	// State is the final orchestration state, note included.
	State map[string]string `json:"state,omitempty"`
}

// AgentNames returns AgentsUsed as wire names.
func (r *Result) AgentNames() []string {
	return agent.Names(r.AgentsUsed)
}
