package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const geminiName = "gemini"

// GeminiConfig configures a GeminiGenerator.
type GeminiConfig struct {
	BaseURL string // default https://generativelanguage.googleapis.com
	Model   string // default gemini-2.0-flash
	APIKey  string
	Client  *http.Client
}

// GeminiGenerator calls the generateContent endpoint of the Gemini API.
type GeminiGenerator struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// Pointers distinguish absent fields from empty ones.
type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGeminiGenerator creates a generator for the Gemini API.
func NewGeminiGenerator(cfg GeminiConfig) *GeminiGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Client == nil {
		cfg.Client = defaultClient()
	}
	return &GeminiGenerator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		client:  cfg.Client,
	}
}

func (g *GeminiGenerator) Name() string { return geminiName }

func (g *GeminiGenerator) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	body, _ := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteAPIError{Provider: geminiName, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	text, shapeErr := extractGeminiText(raw)
	if shapeErr != nil {
		shapeErr.Raw = json.RawMessage(raw)
		return nil, shapeErr
	}
	return &Result{Text: text, Raw: json.RawMessage(raw)}, nil
}

// extractGeminiText returns candidates[0].content.parts[0].text.
func extractGeminiText(raw []byte) (string, *ResponseShapeError) {
	var r geminiResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return "", &ResponseShapeError{Provider: geminiName, Missing: "JSON body"}
	}
	switch {
	case len(r.Candidates) == 0:
		return "", &ResponseShapeError{Provider: geminiName, Missing: "candidates[0]"}
	case r.Candidates[0].Content == nil:
		return "", &ResponseShapeError{Provider: geminiName, Missing: "candidates[0].content"}
	case len(r.Candidates[0].Content.Parts) == 0:
		return "", &ResponseShapeError{Provider: geminiName, Missing: "candidates[0].content.parts[0]"}
	case r.Candidates[0].Content.Parts[0].Text == nil:
		return "", &ResponseShapeError{Provider: geminiName, Missing: "candidates[0].content.parts[0].text"}
	}
	return *r.Candidates[0].Content.Parts[0].Text, nil
}
