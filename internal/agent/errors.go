package agent

import (
	"errors"
	"fmt"
)

// ErrStateKeyExists is returned when a state key is written twice in a run.
var ErrStateKeyExists = errors.New("state key already set")

// MalformedDecisionError reports a supervisor completion that could not be
// turned into a routing decision.
type MalformedDecisionError struct {
	// Raw is the unmodified completion text.
	Raw string
	// Reason describes which step of the parse failed.
	Reason string
	// Err is the underlying decode error, if any.
	Err error
}

func (e *MalformedDecisionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed supervisor decision: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed supervisor decision: %s", e.Reason)
}

func (e *MalformedDecisionError) Unwrap() error {
	return e.Err
}

// UnknownAgentError reports an agent name outside the closed agent set.
type UnknownAgentError struct {
	Name string
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("unknown agent %q", e.Name)
}

// IsMalformedDecision reports whether err carries a *MalformedDecisionError.
func IsMalformedDecision(err error) bool {
	var target *MalformedDecisionError
	return errors.As(err, &target)
}

// IsUnknownAgent reports whether err carries an *UnknownAgentError.
func IsUnknownAgent(err error) bool {
	var target *UnknownAgentError
	return errors.As(err, &target)
}
