package agent

import (
	"context"
	"fmt"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/reasoning"
)

// Supervisor chooses the next agent with one reasoning call per decision.
// It keeps no memory between calls; every decision sees the latest state.
type Supervisor struct {
	svc    reasoning.Service
	logger *logging.Logger
}

// NewSupervisor creates a Supervisor backed by svc.
func NewSupervisor(svc reasoning.Service) *Supervisor {
	return &Supervisor{
		svc:    svc,
		logger: logging.GetLogger("agent.supervisor"),
	}
}

// Decide returns the next agent for message given profile and state.
//
// Errors: a failed completion is returned wrapped; an unparseable completion
// yields *MalformedDecisionError; a name outside the agent set yields
// *UnknownAgentError.
func (s *Supervisor) Decide(ctx context.Context, message string, profile Profile, state *State) (AgentID, error) {
	raw, err := s.svc.Complete(ctx, buildSupervisorPrompt(message, profile, state))
	if err != nil {
		return Unknown, fmt.Errorf("supervisor completion: %w", err)
	}

	id, err := ParseDecision(raw)
	if err != nil {
		s.logger.WithContext(ctx).WarnWithFields("supervisor returned an unusable decision",
			logging.Field("error", err.Error()),
			logging.Field("raw_chars", len(raw)),
		)
		return Unknown, err
	}

	s.logger.WithContext(ctx).Debug("supervisor chose %s (state keys: %d)", id, state.Len())
	return id, nil
}
