package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/moolen/fitaura/internal/reasoning"
)

// Input is what a specialist receives for one invocation. State is read-only
// for specialists; the orchestrator writes their output back.
type Input struct {
	Message string
	Profile Profile
	State   *State
}

// Specialist is a domain agent that turns an Input into advice text.
type Specialist interface {
	ID() AgentID
	Run(ctx context.Context, in Input) (string, error)
}

type promptFunc func(in Input) string

type specialist struct {
	id     AgentID
	svc    reasoning.Service
	prompt promptFunc
}

func (s *specialist) ID() AgentID { return s.id }

func (s *specialist) Run(ctx context.Context, in Input) (string, error) {
	text, err := s.svc.Complete(ctx, s.prompt(in))
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", s.id, err)
	}
	return strings.TrimSpace(text), nil
}

// NewSymptomAgent creates the agent for discomfort and low energy. It works
// from the raw message and the profile.
func NewSymptomAgent(svc reasoning.Service) Specialist {
	return &specialist{id: Symptom, svc: svc, prompt: func(in Input) string {
		return fmt.Sprintf(SymptomPrompt, in.Message, in.Profile.Render())
	}}
}

// NewLifestyleAgent creates the agent for sleep, stress and routine. It works
// from the raw message and the profile.
func NewLifestyleAgent(svc reasoning.Service) Specialist {
	return &specialist{id: Lifestyle, svc: svc, prompt: func(in Input) string {
		return fmt.Sprintf(LifestylePrompt, in.Message, in.Profile.Render())
	}}
}

// NewDietAgent creates the nutrition agent. It works from the profile and
// the accumulated state.
func NewDietAgent(svc reasoning.Service) Specialist {
	return &specialist{id: Diet, svc: svc, prompt: func(in Input) string {
		return fmt.Sprintf(DietPrompt, in.Profile.Render(), stateContext(in))
	}}
}

// NewFitnessAgent creates the exercise agent. It works from the profile and
// the accumulated state.
func NewFitnessAgent(svc reasoning.Service) Specialist {
	return &specialist{id: Fitness, svc: svc, prompt: func(in Input) string {
		return fmt.Sprintf(FitnessPrompt, in.Profile.Render(), stateContext(in))
	}}
}

// stateContext renders the state for the state-driven specialists. When they
// run first the state is empty, so the raw message is appended to give them
// something to work from.
func stateContext(in Input) string {
	if in.State != nil && !in.State.IsEmpty() {
		return in.State.Render()
	}
	return fmt.Sprintf("(empty)\n\nUser message:\n\"\"\"%s\"\"\"", in.Message)
}

// Team maps every specialist id to its implementation.
type Team map[AgentID]Specialist

// NewTeam builds the default team with all four specialists sharing svc.
func NewTeam(svc reasoning.Service) Team {
	return Team{
		Symptom:   NewSymptomAgent(svc),
		Diet:      NewDietAgent(svc),
		Fitness:   NewFitnessAgent(svc),
		Lifestyle: NewLifestyleAgent(svc),
	}
}

// Validate checks that each specialist is registered under its own id.
func (t Team) Validate() error {
	for _, id := range Specialists {
		s, ok := t[id]
		if !ok || s == nil {
			return fmt.Errorf("team is missing %s", id)
		}
		if s.ID() != id {
			return fmt.Errorf("team entry %s reports id %s", id, s.ID())
		}
	}
	for id := range t {
		if !id.IsSpecialist() {
			return fmt.Errorf("team contains non-specialist %s", id)
		}
	}
	return nil
}
