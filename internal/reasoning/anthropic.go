package reasoning

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// Anthropic implements Service using the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	config Config
}

// NewAnthropic creates an Anthropic backend. The API key is read from the
// ANTHROPIC_API_KEY environment variable unless cfg.APIKey is set. Extra
// request options (base URL, retries) are passed to the client.
func NewAnthropic(cfg Config, opts ...option.RequestOption) (*Anthropic, error) {
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}

	if cfg.APIKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	}

	return &Anthropic{
		client: anthropic.NewClient(opts...),
		config: cfg,
	}, nil
}

// Complete implements Service.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.config.Model),
		MaxTokens:   int64(a.config.MaxTokens),
		Temperature: anthropic.Float(a.config.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", wrapCallError(ctx, BackendAnthropic, err)
	}

	var parts []string
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", &UnavailableError{Backend: BackendAnthropic, Err: errors.New("response contained no text blocks")}
	}
	return strings.Join(parts, ""), nil
}

// Name returns the backend name.
func (a *Anthropic) Name() string {
	return BackendAnthropic
}

// Model returns the configured model identifier.
func (a *Anthropic) Model() string {
	return a.config.Model
}
