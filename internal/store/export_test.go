package store

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/flashcards/internal/model"
)

func TestWriteExportKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, []model.FlashCard{card(7, "Q", "A", "t")}))

	want := `[
  {
    "id": 7,
    "front": "Q",
    "back": "A",
    "tags": [
      "t"
    ],
    "created": "2025-03-01T10:00:00.000Z",
    "source": "source text",
    "lastReviewed": null
  }
]
`
	assert.Equal(t, want, buf.String())
}

func TestWriteExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	reviewed := "2025-05-05T05:05:05.000Z"
	withReview := card(3, "Q3", "A3\nmultiline", "x", "y")
	withReview.LastReviewed = &reviewed
	cards := []model.FlashCard{card(1, "Q1", "A1", "a"), card(2, "Q2", "A2"), withReview}
	_, err := src.SaveCards(ctx, cards)
	require.NoError(t, err)

	exported, err := src.ExportAll(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, exported))

	decoded, err := ReadExport(&buf)
	require.NoError(t, err)
	assert.ElementsMatch(t, cards, decoded)

	dst := newTestStore(t)
	n, err := dst.Import(ctx, decoded)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := dst.AllCards(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, cards, all)

	// Importing again skips existing ids.
	n, err = dst.Import(ctx, decoded)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReadExportRejectsIncompleteCards(t *testing.T) {
	_, err := ReadExport(strings.NewReader(`[{"id":1,"front":"Q","back":""}]`))
	assert.Error(t, err)

	_, err = ReadExport(strings.NewReader(`[{"id":1,"front":"  ","back":"A"}]`))
	assert.Error(t, err)

	_, err = ReadExport(strings.NewReader(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestReadExportNullTags(t *testing.T) {
	cards, err := ReadExport(strings.NewReader(`[{"id":1,"front":"Q","back":"A","tags":null}]`))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.NotNil(t, cards[0].Tags)

	b, err := json.Marshal(cards[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"tags":[]`)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveCards(ctx, []model.FlashCard{
		card(1, "Q", "A", "go", "db"),
		card(2, "Q", "A", "go"),
	})
	require.NoError(t, err)
	_, err = s.AddPending(ctx, "t", "m")
	require.NoError(t, err)
	require.NoError(t, s.SetSetting(ctx, "k", "v"))

	st, err := s.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Cards)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, 1, st.Settings)
	assert.Equal(t, []TagStats{{Tag: "go", Count: 2}, {Tag: "db", Count: 1}}, st.Tags)
}
