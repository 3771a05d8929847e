// Package tui provides the interactive terminal chat for Fitaura using
// Bubble Tea.
package tui

import (
	"github.com/moolen/fitaura/internal/orchestrator"
)

// AgentStartedMsg is sent when a specialist begins work.
type AgentStartedMsg struct {
	Agent string
	Step  int
}

// AgentCompletedMsg is sent when a specialist produced its contribution.
type AgentCompletedMsg struct {
	Agent string
	Text  string
}

// RunFinishedMsg is sent when a run produced a reply.
type RunFinishedMsg struct {
	Result *orchestrator.Result
}

// RunFailedMsg is sent when a run aborted.
type RunFailedMsg struct {
	Err error
}
