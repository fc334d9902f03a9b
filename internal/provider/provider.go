// Package provider calls generative-language APIs on behalf of the card generator.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rcliao/flashcards/internal/config"
)

// Result is one completed generation.
type Result struct {
	Text string          // the model's reply text
	Raw  json.RawMessage // full response body, kept for debugging
}

// Generator produces text from a prompt with a single request. Implementations never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
	Name() string
}

// RemoteAPIError is a non-2xx reply from the provider.
type RemoteAPIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Body)
}

// ResponseShapeError is a 2xx reply missing the fields the provider promises.
type ResponseShapeError struct {
	Provider string
	Missing  string          // path of the first missing field
	Raw      json.RawMessage // body as received, possibly not JSON
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("unexpected response format from %s: missing %s", e.Provider, e.Missing)
}

// New builds the configured generator. apiKey overrides the key from cfg
// when non-empty.
func New(cfg *config.Config, apiKey string) (Generator, error) {
	client := &http.Client{}
	if cfg.Provider.HTTPTimeout > 0 {
		client.Timeout = cfg.Provider.HTTPTimeout
	}

	switch cfg.Provider.Name {
	case "", "gemini":
		if apiKey == "" {
			apiKey = cfg.Gemini.APIKey
		}
		return NewGeminiGenerator(GeminiConfig{
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Gemini.Model,
			APIKey:  apiKey,
			Client:  client,
		}), nil
	case "openai":
		if apiKey == "" {
			apiKey = cfg.OpenAI.APIKey
		}
		return NewOpenAIGenerator(OpenAIConfig{
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			APIKey:  apiKey,
			Client:  client,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: gemini, openai)", cfg.Provider.Name)
	}
}

// defaultClient has no timeout of its own, leaving the transport defaults.
func defaultClient() *http.Client {
	return &http.Client{}
}
