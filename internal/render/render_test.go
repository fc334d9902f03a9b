package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/flashcards/internal/model"
)

func sample() model.FlashCard {
	return model.FlashCard{
		ID:      1700000000000,
		Front:   "What is the capital of France?",
		Back:    "Paris",
		Tags:    []string{"geography", "europe"},
		Created: "2023-11-14T22:13:20.000Z",
		Source:  "France is a country...",
	}
}

func TestCardsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Cards(&buf, []model.FlashCard{sample()}, FormatJSON))

	var got []model.FlashCard
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, sample(), got[0])
	assert.Contains(t, buf.String(), "\n  {")
}

func TestCardsJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Cards(&buf, nil, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestCardsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Cards(&buf, []model.FlashCard{sample()}, FormatText))

	out := buf.String()
	assert.Contains(t, out, "What is the capital of France?")
	assert.Contains(t, out, "Paris")
	assert.Contains(t, out, "#geography")
	assert.Contains(t, out, "#1700000000000")
}

func TestCardsTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Cards(&buf, nil, FormatText))
	assert.Contains(t, buf.String(), "no cards")
}

func TestCardJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Card(&buf, sample(), FormatJSON))
	assert.Contains(t, buf.String(), `"lastReviewed": null`)
}

func TestMarkdownBlank(t *testing.T) {
	assert.Equal(t, "", Markdown("  \n", 40))
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("json"))
	assert.True(t, ValidFormat("text"))
	assert.False(t, ValidFormat("yaml"))
}
