package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rcliao/flashcards/internal/model"
)

// ExportFileName is the default name of the export artifact.
const ExportFileName = "flashcards.json"

// ExportAll returns every card, newest first, ready for WriteExport.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.FlashCard, error) {
	return s.ListCards(ctx, ListParams{})
}

// Import inserts cards from an export. Cards whose id already exists are
// skipped; the count of newly inserted cards is returned.
func (s *SQLiteStore) Import(ctx context.Context, cards []model.FlashCard) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &WriteError{Op: "import", Err: err}
	}
	defer tx.Rollback()

	imported := 0
	for _, c := range cards {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE id = ?`, c.ID).Scan(&exists)
		if err != nil {
			return 0, &WriteError{Op: "import", Err: err}
		}
		if exists > 0 {
			continue
		}
		if err := insertCard(ctx, tx, c, false); err != nil {
			return 0, &WriteError{Op: fmt.Sprintf("import card %d", c.ID), Err: err}
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, &WriteError{Op: "import", Err: err}
	}

	if imported > 0 {
		s.logger.Info("cards imported", "count", imported)
		s.notifyCount(ctx)
	}
	return imported, nil
}

// WriteExport writes cards as an indented JSON array.
func WriteExport(w io.Writer, cards []model.FlashCard) error {
	if cards == nil {
		cards = []model.FlashCard{}
	}
	b, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// ReadExport decodes a JSON array produced by WriteExport. Cards without a
// front or back are rejected.
func ReadExport(r io.Reader) ([]model.FlashCard, error) {
	var cards []model.FlashCard
	if err := json.NewDecoder(r).Decode(&cards); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	for i := range cards {
		if strings.TrimSpace(cards[i].Front) == "" || strings.TrimSpace(cards[i].Back) == "" {
			return nil, fmt.Errorf("card %d: front and back are required", cards[i].ID)
		}
		if cards[i].Tags == nil {
			cards[i].Tags = []string{}
		}
	}
	return cards, nil
}
