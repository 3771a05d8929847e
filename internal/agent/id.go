// Package agent implements the participants of a wellness orchestration run:
// the intent classifier, the routing supervisor, the four specialist agents
// and the synthesizer that merges their output into one reply.
package agent

import (
	"fmt"
	"strings"
)

// AgentID identifies one participant the supervisor can route to. The set is
// closed: the four specialists plus the Finish sentinel.
type AgentID uint8

const (
	// Unknown is the zero value and never a valid routing target.
	Unknown AgentID = iota
	Symptom
	Diet
	Fitness
	Lifestyle
	// Finish tells the orchestrator that no further specialist is needed.
	Finish
)

// Specialists lists every dispatchable agent in canonical order.
var Specialists = [...]AgentID{Symptom, Diet, Fitness, Lifestyle}

// Wire names used by the supervisor protocol and the public API.
const (
	nameSymptom   = "SymptomAgent"
	nameDiet      = "DietAgent"
	nameFitness   = "FitnessAgent"
	nameLifestyle = "LifestyleAgent"
	nameFinish    = "FINISH"
)

func (id AgentID) String() string {
	switch id {
	case Symptom:
		return nameSymptom
	case Diet:
		return nameDiet
	case Fitness:
		return nameFitness
	case Lifestyle:
		return nameLifestyle
	case Finish:
		return nameFinish
	default:
		return "unknown"
	}
}

// Domain returns the state key a specialist writes its contribution under.
// Finish and Unknown have no domain.
func (id AgentID) Domain() string {
	switch id {
	case Symptom:
		return StateKeySymptoms
	case Diet:
		return StateKeyDiet
	case Fitness:
		return StateKeyFitness
	case Lifestyle:
		return StateKeyLifestyle
	default:
		return ""
	}
}

// IsSpecialist reports whether id names a dispatchable agent.
func (id AgentID) IsSpecialist() bool {
	return id.Domain() != ""
}

// MarshalText encodes the agent as its wire name.
func (id AgentID) MarshalText() ([]byte, error) {
	if id == Unknown {
		return nil, fmt.Errorf("cannot marshal unknown agent id")
	}
	return []byte(id.String()), nil
}

// UnmarshalText decodes a wire name.
func (id *AgentID) UnmarshalText(text []byte) error {
	parsed, err := ParseAgentID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseAgentID maps a wire name to an AgentID. Surrounding whitespace is
// ignored, case is not. Names outside the closed set yield *UnknownAgentError.
func ParseAgentID(name string) (AgentID, error) {
	switch strings.TrimSpace(name) {
	case nameSymptom:
		return Symptom, nil
	case nameDiet:
		return Diet, nil
	case nameFitness:
		return Fitness, nil
	case nameLifestyle:
		return Lifestyle, nil
	case nameFinish:
		return Finish, nil
	default:
		return Unknown, &UnknownAgentError{Name: name}
	}
}

// Names converts a slice of ids to their wire names.
func Names(ids []AgentID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.String())
	}
	return names
}
