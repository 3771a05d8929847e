package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/fitaura/internal/reasoning/reasoningtest"
)

func TestSpecialists_PromptInputs(t *testing.T) {
	const message = "my knees ache after running"
	profile := Profile{"age": 41}

	filled := NewState()
	require.NoError(t, filled.Put(StateKeySymptoms, "rest and ice"))

	tests := []struct {
		name          string
		build         func(svc *reasoningtest.Script) Specialist
		state         *State
		wantMessage   bool
		wantStateText bool
	}{
		{name: "symptom reads message", build: func(s *reasoningtest.Script) Specialist { return NewSymptomAgent(s) }, state: filled, wantMessage: true},
		{name: "lifestyle reads message", build: func(s *reasoningtest.Script) Specialist { return NewLifestyleAgent(s) }, state: filled, wantMessage: true},
		{name: "diet reads state", build: func(s *reasoningtest.Script) Specialist { return NewDietAgent(s) }, state: filled, wantStateText: true},
		{name: "fitness reads state", build: func(s *reasoningtest.Script) Specialist { return NewFitnessAgent(s) }, state: filled, wantStateText: true},
		{name: "diet first gets message", build: func(s *reasoningtest.Script) Specialist { return NewDietAgent(s) }, state: NewState(), wantMessage: true},
		{name: "fitness first gets message", build: func(s *reasoningtest.Script) Specialist { return NewFitnessAgent(s) }, state: NewState(), wantMessage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := reasoningtest.Repeat("  tip one\ntip two  ")
			s := tt.build(svc)

			out, err := s.Run(context.Background(), Input{Message: message, Profile: profile, State: tt.state})
			require.NoError(t, err)
			assert.Equal(t, "tip one\ntip two", out)

			prompt := svc.LastPrompt()
			assert.Contains(t, prompt, "- age: 41")
			assert.Equal(t, tt.wantMessage, strings.Contains(prompt, message), "message presence in prompt")
			assert.Equal(t, tt.wantStateText, strings.Contains(prompt, "rest and ice"), "state presence in prompt")
		})
	}
}

func TestSpecialist_ErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	s := NewDietAgent(reasoningtest.Failing(boom))

	_, err := s.Run(context.Background(), Input{Message: "x", State: NewState()})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "DietAgent")
}

func TestTeam_Validate(t *testing.T) {
	svc := reasoningtest.Repeat("ok")
	team := NewTeam(svc)
	require.NoError(t, team.Validate())

	for _, id := range Specialists {
		assert.Equal(t, id, team[id].ID())
	}

	missing := NewTeam(svc)
	delete(missing, Fitness)
	assert.ErrorContains(t, missing.Validate(), "missing FitnessAgent")

	swapped := NewTeam(svc)
	swapped[Diet] = NewFitnessAgent(svc)
	assert.Error(t, swapped.Validate())
}
