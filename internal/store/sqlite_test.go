package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/flashcards/internal/model"
)

func newTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"), opts...)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func card(id int64, front, back string, tags ...string) model.FlashCard {
	if tags == nil {
		tags = []string{}
	}
	return model.FlashCard{
		ID:      id,
		Front:   front,
		Back:    back,
		Tags:    tags,
		Created: "2025-03-01T10:00:00.000Z",
		Source:  "source text",
	}
}

type countRecorder struct {
	mu     sync.Mutex
	totals []int
}

func (r *countRecorder) CardCountChanged(_ context.Context, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals = append(r.totals, total)
}

func TestSaveAndGetAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.SaveCards(ctx, []model.FlashCard{
		card(1, "Q1", "A1", "a", "b"),
		card(2, "Q2", "A2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.AllCards(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, card(1, "Q1", "A1", "a", "b"), all[0])
	assert.Equal(t, card(2, "Q2", "A2"), all[1])
	assert.NotNil(t, all[1].Tags)
	assert.Nil(t, all[0].LastReviewed)
}

func TestSaveDuplicateIDFailsWholeBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveCards(ctx, []model.FlashCard{card(1, "Q", "A")})
	require.NoError(t, err)

	_, err = s.SaveCards(ctx, []model.FlashCard{card(2, "Q2", "A2"), card(1, "dup", "dup")})
	require.Error(t, err)
	var werr *WriteError
	assert.ErrorAs(t, err, &werr)

	all, err := s.AllCards(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "batch must be all-or-nothing")
	assert.Equal(t, "Q", all[0].Front)
}

func TestSaveNotifiesObserver(t *testing.T) {
	ctx := context.Background()
	rec := &countRecorder{}
	s := newTestStore(t, WithCountObserver(rec))

	_, err := s.SaveCards(ctx, []model.FlashCard{card(1, "Q", "A"), card(2, "Q", "A")})
	require.NoError(t, err)
	_, err = s.SaveCards(ctx, []model.FlashCard{card(3, "Q", "A")})
	require.NoError(t, err)
	require.NoError(t, s.DeleteCard(ctx, 1))

	assert.Equal(t, []int{2, 3, 2}, rec.totals)
}

func TestFailedSaveDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	rec := &countRecorder{}
	s := newTestStore(t, WithCountObserver(rec))

	_, err := s.SaveCards(ctx, []model.FlashCard{card(1, "Q", "A"), card(1, "Q", "A")})
	require.Error(t, err)
	assert.Empty(t, rec.totals)
}

func TestDeleteMissingCardSucceeds(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.DeleteCard(context.Background(), 424242))
}

func TestDeleteCard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveCards(ctx, []model.FlashCard{card(1, "Q", "A", "x")})
	require.NoError(t, err)
	require.NoError(t, s.DeleteCard(ctx, 1))

	_, err = s.GetCard(ctx, 1)
	assert.True(t, errors.Is(err, ErrCardNotFound))

	st, err := s.Stats(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, st.Tags, "tag index rows cascade with the card")
}

func TestUpdateCardUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveCards(ctx, []model.FlashCard{card(1, "Q", "A", "old")})
	require.NoError(t, err)

	updated := card(1, "Q edited", "A edited", "new")
	require.NoError(t, s.UpdateCard(ctx, updated))

	got, err := s.GetCard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated, *got)

	old, err := s.ListCards(ctx, ListParams{Tag: "old"})
	require.NoError(t, err)
	assert.Empty(t, old)

	// Unknown id is inserted.
	require.NoError(t, s.UpdateCard(ctx, card(9, "new", "card")))
	n, err := s.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListCards(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	older := card(1, "What is Go?", "A language", "go")
	older.Created = "2025-01-01T00:00:00.000Z"
	newer := card(2, "What is SQL?", "A query language", "sql", "db")
	newer.Created = "2025-02-01T00:00:00.000Z"
	newest := card(3, "What is WAL?", "Write-ahead log", "db")
	newest.Created = "2025-03-01T00:00:00.000Z"

	_, err := s.SaveCards(ctx, []model.FlashCard{older, newer, newest})
	require.NoError(t, err)

	all, err := s.ListCards(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].ID, all[1].ID, all[2].ID})

	db, err := s.ListCards(ctx, ListParams{Tag: "db"})
	require.NoError(t, err)
	assert.Len(t, db, 2)

	q, err := s.ListCards(ctx, ListParams{Query: "language"})
	require.NoError(t, err)
	assert.Len(t, q, 2)

	both, err := s.ListCards(ctx, ListParams{Tag: "db", Query: "query"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, int64(2), both[0].ID)

	limited, err := s.ListCards(ctx, ListParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(3), limited[0].ID)
}

func TestLastReviewedRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := card(1, "Q", "A")
	reviewed := "2025-04-01T00:00:00.000Z"
	c.LastReviewed = &reviewed
	require.NoError(t, s.UpdateCard(ctx, c))

	got, err := s.GetCard(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.LastReviewed)
	assert.Equal(t, reviewed, *got.LastReviewed)
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	s.Close()

	_, err = os.Stat(dbPath)
	assert.False(t, os.IsNotExist(err), "expected db file to be created")
}

func TestReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	_, err = s.SaveCards(ctx, []model.FlashCard{card(1, "Q", "A")})
	require.NoError(t, err)
	s.Close()

	s, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow(`PRAGMA user_version`).Scan(&version))
	assert.Equal(t, schemaVersion, version)

	n, err := s.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInitErrorOnUnusablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewSQLiteStore(filepath.Join(blocker, "test.db"))
	require.Error(t, err)
	var ierr *InitError
	assert.ErrorAs(t, err, &ierr)
}

func TestBlankCardsRejected(t *testing.T) {
	ctx := context.Background()
	rec := &countRecorder{}
	s := newTestStore(t, WithCountObserver(rec))

	blank := []model.FlashCard{
		{ID: 1, Front: "", Back: ""},
		card(2, "Q", "  \n"),
		card(3, "\t", "A"),
	}
	for _, c := range blank {
		n, err := s.SaveCards(ctx, []model.FlashCard{card(10, "Q", "A"), c})
		var werr *WriteError
		require.ErrorAs(t, err, &werr, "card %d", c.ID)
		assert.ErrorIs(t, err, ErrEmptyCard)
		assert.Equal(t, 0, n)
	}

	all, err := s.AllCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "a blank card fails its whole batch")
	assert.Empty(t, rec.totals)

	_, err = s.SaveCards(ctx, []model.FlashCard{card(4, "Q", "A")})
	require.NoError(t, err)
	err = s.UpdateCard(ctx, card(4, "Q", " "))
	assert.ErrorIs(t, err, ErrEmptyCard)

	got, err := s.GetCard(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Back)

	_, err = s.Import(ctx, []model.FlashCard{card(5, "", "A")})
	assert.ErrorIs(t, err, ErrEmptyCard)
}

func TestStatsClosedStore(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Stats(context.Background(), "")
	var rerr *ReadError
	assert.ErrorAs(t, err, &rerr)
}
