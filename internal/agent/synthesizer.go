package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/reasoning"
)

// GenericReply is returned when a run finishes without any contribution.
const GenericReply = "I could not put together specific advice for this message. " +
	"Tell me a little more about how you feel, what you eat, how you move or how you sleep, and I will try again."

var sectionTitles = map[string]string{
	StateKeySymptoms:  "Symptoms",
	StateKeyDiet:      "Diet",
	StateKeyFitness:   "Fitness",
	StateKeyLifestyle: "Lifestyle",
	StateKeyNote:      "Note",
}

// Synthesizer merges the state of a finished run into the final reply.
type Synthesizer struct {
	svc    reasoning.Service
	logger *logging.Logger
}

// NewSynthesizer creates a Synthesizer backed by svc.
func NewSynthesizer(svc reasoning.Service) *Synthesizer {
	return &Synthesizer{
		svc:    svc,
		logger: logging.GetLogger("agent.synthesizer"),
	}
}

// Merge produces the final reply for state. An empty state yields
// GenericReply without a reasoning call; a blank completion falls back to
// FallbackMerge.
func (s *Synthesizer) Merge(ctx context.Context, state *State) (string, error) {
	if state.IsEmpty() {
		return GenericReply, nil
	}

	text, err := s.svc.Complete(ctx, buildSynthesizerPrompt(state))
	if err != nil {
		return "", fmt.Errorf("synthesizer completion: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.WithContext(ctx).Warn("synthesizer returned an empty reply, joining %d sections", state.Len())
		return FallbackMerge(state), nil
	}
	return text, nil
}

// FallbackMerge joins the state sections as markdown without a reasoning call.
func FallbackMerge(state *State) string {
	if state.IsEmpty() {
		return GenericReply
	}
	sections := make([]string, 0, state.Len())
	for _, key := range state.Keys() {
		value, _ := state.Get(key)
		title, ok := sectionTitles[key]
		if !ok {
			title = key
		}
		sections = append(sections, fmt.Sprintf("**%s**\n%s", title, strings.TrimSpace(value)))
	}
	return strings.Join(sections, "\n\n")
}
