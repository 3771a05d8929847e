package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/store"
)

// AskInput is the wellness_ask argument object.
type AskInput struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// AskOutput is returned by wellness_ask.
type AskOutput struct {
	Answer      string                   `json:"answer"`
	AgentsUsed  []string                 `json:"agents_used"`
	Termination orchestrator.Termination `json:"termination"`
	RunID       string                   `json:"run_id"`
}

type askTool struct {
	runner Runner
}

func (t *askTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var in AskInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, errors.New("message is required")
	}

	res, err := t.runner.Run(ctx, in.UserID, in.Message)
	if err != nil {
		return nil, err
	}
	return AskOutput{
		Answer:      res.FinalText,
		AgentsUsed:  res.AgentNames(),
		Termination: res.Termination,
		RunID:       res.RunID,
	}, nil
}

// ProfileInput is the wellness_profile argument object.
type ProfileInput struct {
	UserID string `json:"user_id"`
}

// ProfileOutput is returned by wellness_profile.
type ProfileOutput struct {
	UserID  string        `json:"user_id"`
	Profile agent.Profile `json:"profile"`
}

type profileTool struct {
	profiles store.ProfileStore
}

func (t *profileTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var in ProfileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, store.ErrInvalidUserID
	}

	profile, err := t.profiles.Get(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return ProfileOutput{UserID: in.UserID, Profile: profile.Clone()}, nil
}
