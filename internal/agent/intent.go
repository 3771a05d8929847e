package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/reasoning"
)

// Classification is the outcome of the intent gate.
type Classification struct {
	IsWellness bool   `json:"is_wellness"`
	Category   string `json:"category,omitempty"`
	Reason     string `json:"reason,omitempty"`
	// Defaulted is set when the completion could not be parsed and the
	// message was let through as in-domain.
	Defaulted bool `json:"defaulted,omitempty"`
}

type classificationPayload struct {
	IsWellness *bool  `json:"is_wellness"`
	Category   string `json:"category"`
	Reason     string `json:"reason"`
}

// IntentClassifier decides whether a message belongs to the wellness domain
// before any orchestration starts.
type IntentClassifier struct {
	svc    reasoning.Service
	logger *logging.Logger
}

// NewIntentClassifier creates a classifier backed by svc.
func NewIntentClassifier(svc reasoning.Service) *IntentClassifier {
	return &IntentClassifier{
		svc:    svc,
		logger: logging.GetLogger("agent.intent"),
	}
}

// Classify classifies message. A backend failure is returned as an error;
// an unparseable answer is treated as in-domain with Defaulted set.
func (c *IntentClassifier) Classify(ctx context.Context, message string) (Classification, error) {
	raw, err := c.svc.Complete(ctx, buildIntentPrompt(message))
	if err != nil {
		return Classification{}, fmt.Errorf("intent classification: %w", err)
	}

	result, ok := parseClassification(raw)
	if !ok {
		c.logger.WithContext(ctx).Warn("intent classifier answer not parseable, treating message as wellness-related")
		return Classification{IsWellness: true, Defaulted: true}, nil
	}
	return result, nil
}

func parseClassification(raw string) (Classification, bool) {
	payload, ok := ExtractPayload(raw)
	if !ok {
		return Classification{}, false
	}
	var p classificationPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil || p.IsWellness == nil {
		return Classification{}, false
	}
	return Classification{
		IsWellness: *p.IsWellness,
		Category:   p.Category,
		Reason:     p.Reason,
	}, true
}
