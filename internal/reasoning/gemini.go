package reasoning

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini implements Service using the Gemini API.
type Gemini struct {
	client *genai.Client
	config Config
}

// NewGemini creates a Gemini backend. Without cfg.APIKey the client falls
// back to GOOGLE_API_KEY / GEMINI_API_KEY from the environment.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.Model == "" || cfg.Model == defaultAnthropicModel {
		cfg.Model = defaultGeminiModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client, config: cfg}, nil
}

// Complete implements Service.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.config.Temperature)),
		MaxOutputTokens: int32(g.config.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", wrapCallError(ctx, BackendGemini, err)
	}

	text := resp.Text()
	if text == "" {
		return "", &UnavailableError{Backend: BackendGemini, Err: errors.New("response contained no text")}
	}
	return text, nil
}

// Name returns the backend name.
func (g *Gemini) Name() string {
	return BackendGemini
}

// Model returns the configured model identifier.
func (g *Gemini) Model() string {
	return g.config.Model
}
