package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geminiOK = `{"candidates":[{"content":{"parts":[{"text":"CARD 1:\nFront: Q\nBack: A\n"}],"role":"model"}}]}`

func newGeminiServer(t *testing.T, status int, body string, check func(r *http.Request, payload geminiRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload geminiRequest
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &payload)
		if check != nil {
			check(r, payload)
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey, gotPrompt, gotContentType string
	srv := newGeminiServer(t, http.StatusOK, geminiOK, func(r *http.Request, p geminiRequest) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		if len(p.Contents) == 1 && len(p.Contents[0].Parts) == 1 {
			gotPrompt = p.Contents[0].Parts[0].Text
		}
	})

	g := NewGeminiGenerator(GeminiConfig{BaseURL: srv.URL + "/", Model: "gemini-2.0-flash", APIKey: "k&y"})
	res, err := g.Generate(context.Background(), "make cards")
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "k&y", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "make cards", gotPrompt)
	assert.Equal(t, "CARD 1:\nFront: Q\nBack: A\n", res.Text)
	assert.JSONEq(t, geminiOK, string(res.Raw))
	assert.Equal(t, "gemini", g.Name())
}

func TestGeminiNon2xx(t *testing.T) {
	srv := newGeminiServer(t, http.StatusBadRequest, `{"error":{"message":"API key not valid"}}`, nil)

	g := NewGeminiGenerator(GeminiConfig{BaseURL: srv.URL, APIKey: "bad"})
	_, err := g.Generate(context.Background(), "p")
	require.Error(t, err)

	var apiErr *RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "API key not valid")
	assert.Contains(t, err.Error(), "(400)")
}

func TestGeminiResponseShape(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing string
	}{
		{"not json", `<html>`, "JSON body"},
		{"no candidates", `{}`, "candidates[0]"},
		{"empty candidates", `{"candidates":[]}`, "candidates[0]"},
		{"no content", `{"candidates":[{}]}`, "candidates[0].content"},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`, "candidates[0].content.parts[0]"},
		{"no text", `{"candidates":[{"content":{"parts":[{}]}}]}`, "candidates[0].content.parts[0].text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeminiServer(t, http.StatusOK, tt.body, nil)
			g := NewGeminiGenerator(GeminiConfig{BaseURL: srv.URL, APIKey: "k"})
			_, err := g.Generate(context.Background(), "p")

			var shapeErr *ResponseShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.missing, shapeErr.Missing)
			assert.Equal(t, tt.body, string(shapeErr.Raw))
		})
	}
}

func TestGeminiEmptyTextIsNotAShapeError(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`, nil)
	g := NewGeminiGenerator(GeminiConfig{BaseURL: srv.URL, APIKey: "k"})
	res, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "", res.Text)
}

func TestGeminiDefaults(t *testing.T) {
	g := NewGeminiGenerator(GeminiConfig{APIKey: "abc"})
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=abc",
		g.endpoint())
}
