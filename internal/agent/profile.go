package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Profile holds the wellness attributes of one user (age, activity_level,
// diet_type, health_conditions, ...). It is read-only during a run; callers
// hand out clones.
type Profile map[string]any

// Clone returns a shallow copy. A nil profile clones to an empty one.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Render formats the profile as sorted "key: value" lines for prompts.
func (p Profile) Render() string {
	if len(p) == 0 {
		return "(no profile)"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, p[k])
	}
	return strings.TrimRight(b.String(), "\n")
}
