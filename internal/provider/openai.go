package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openaiName = "openai"

// OpenAIConfig configures an OpenAIGenerator.
type OpenAIConfig struct {
	BaseURL string // any OpenAI-compatible /v1 endpoint
	Model   string
	APIKey  string
	Client  *http.Client
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator backed by the go-openai SDK.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Client != nil {
		c.HTTPClient = cfg.Client
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(c),
		model:  cfg.Model,
	}
}

func (g *OpenAIGenerator) Name() string { return openaiName }

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	raw, _ := json.Marshal(resp)
	if len(resp.Choices) == 0 {
		return nil, &ResponseShapeError{Provider: openaiName, Missing: "choices[0]", Raw: raw}
	}
	return &Result{Text: resp.Choices[0].Message.Content, Raw: raw}, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &RemoteAPIError{Provider: openaiName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &RemoteAPIError{Provider: openaiName, StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return fmt.Errorf("openai request failed: %w", err)
}
