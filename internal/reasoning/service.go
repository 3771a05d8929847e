// Package reasoning defines the narrow boundary to the external language
// model: a prompt goes in, a text completion comes out. Backends for
// Anthropic and Gemini live here, together with a wrapper that adds
// timeouts, tracing and metrics around any backend.
package reasoning

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service produces a text completion for a prompt. Implementations must be
// safe for concurrent use; one handle is shared by every component.
type Service interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Service.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete implements Service.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrUnavailable matches every failure to obtain a completion from a backend.
var ErrUnavailable = errors.New("reasoning service unavailable")

// UnavailableError wraps a backend failure. It satisfies
// errors.Is(err, ErrUnavailable).
type UnavailableError struct {
	Backend string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("reasoning backend %s unavailable: %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnavailable) true.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Backend names accepted by New.
const (
	BackendAnthropic = "anthropic"
	BackendGemini    = "gemini"
)

// Config configures a backend.
type Config struct {
	// Backend selects the provider ("anthropic" or "gemini").
	Backend string `yaml:"backend"`

	// Model is the provider model identifier.
	Model string `yaml:"model"`

	// APIKey overrides the provider's environment variable when set.
	APIKey string `yaml:"api_key"`

	// MaxTokens caps the completion length.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls sampling randomness.
	Temperature float64 `yaml:"temperature"`

	// Timeout bounds a single completion call. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendAnthropic,
		Model:       defaultAnthropicModel,
		MaxTokens:   1024,
		Temperature: 0.2,
		Timeout:     60 * time.Second,
	}
}

// New builds the backend selected by cfg.Backend. The result is not
// instrumented; wrap it with Instrument.
func New(ctx context.Context, cfg Config) (Service, error) {
	switch cfg.Backend {
	case BackendAnthropic, "":
		return NewAnthropic(cfg)
	case BackendGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported reasoning backend %q", cfg.Backend)
	}
}

// wrapCallError classifies a provider error. Caller cancellation and
// deadlines keep their identity; everything else becomes unavailability.
func wrapCallError(ctx context.Context, backend string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s completion aborted: %w", backend, ctxErr)
	}
	return &UnavailableError{Backend: backend, Err: err}
}
