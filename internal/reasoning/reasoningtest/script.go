// Package reasoningtest provides deterministic reasoning backends for tests.
package reasoningtest

import (
	"context"
	"fmt"
	"sync"
)

// Script replays canned completions in order and records every prompt.
// When the script runs out it keeps returning Fallback, or an error if
// Fallback is empty.
type Script struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	next      int

	// Fallback is returned once the scripted responses are exhausted.
	Fallback string

	// Err, when set, is returned from every call instead of a completion.
	Err error
}

// NewScript returns a Script that yields responses in order.
func NewScript(responses ...string) *Script {
	return &Script{responses: responses}
}

// Repeat returns a Script that always answers text.
func Repeat(text string) *Script {
	return &Script{Fallback: text}
}

// Failing returns a Script whose every call fails with err.
func Failing(err error) *Script {
	return &Script{Err: err}
}

// Complete implements reasoning.Service.
func (s *Script) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	if s.next < len(s.responses) {
		r := s.responses[s.next]
		s.next++
		return r, nil
	}
	if s.Fallback != "" {
		return s.Fallback, nil
	}
	return "", fmt.Errorf("script exhausted after %d responses", len(s.responses))
}

// Calls returns the number of Complete invocations.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns a copy of every prompt received.
func (s *Script) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "".
func (s *Script) LastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}
