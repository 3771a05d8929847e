package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// State keys. Each specialist owns exactly one; note is reserved for abnormal
// termination.
const (
	StateKeySymptoms  = "symptoms"
	StateKeyDiet      = "diet"
	StateKeyFitness   = "fitness"
	StateKeyLifestyle = "lifestyle"
	StateKeyNote      = "note"
)

var canonicalKeys = []string{
	StateKeySymptoms,
	StateKeyDiet,
	StateKeyFitness,
	StateKeyLifestyle,
	StateKeyNote,
}

// State accumulates specialist contributions during one run. It is
// append-only: a key can be written once. State is not safe for concurrent
// use; a run owns its State exclusively.
type State struct {
	values map[string]string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{values: make(map[string]string)}
}

// Put stores text under key. Writing an existing key returns ErrStateKeyExists
// and leaves the original value in place.
func (s *State) Put(key, text string) error {
	if _, ok := s.values[key]; ok {
		return fmt.Errorf("%w: %s", ErrStateKeyExists, key)
	}
	s.values[key] = text
	return nil
}

// Get returns the value for key.
func (s *State) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of keys, including note.
func (s *State) Len() int {
	return len(s.values)
}

// Contributions returns the number of specialist keys present.
func (s *State) Contributions() int {
	n := 0
	for k := range s.values {
		if k != StateKeyNote {
			n++
		}
	}
	return n
}

// IsEmpty reports whether nothing has been written yet.
func (s *State) IsEmpty() bool {
	return len(s.values) == 0
}

// Keys returns the present keys, canonical keys first in pipeline order and
// anything else sorted after them.
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.values))
	seen := make(map[string]bool, len(canonicalKeys))
	for _, k := range canonicalKeys {
		seen[k] = true
		if _, ok := s.values[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range s.values {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Snapshot returns a copy of the state as a plain map.
func (s *State) Snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Render formats the state for inclusion in a prompt.
func (s *State) Render() string {
	if s.IsEmpty() {
		return "(empty)"
	}
	var b strings.Builder
	for _, k := range s.Keys() {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", k, s.values[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

// MarshalJSON encodes the state as a JSON object.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.values)
}
