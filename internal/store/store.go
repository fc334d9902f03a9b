// Package store provides the flash card storage interface and SQLite implementation.
package store

import (
	"context"
	"encoding/json"

	"github.com/rcliao/flashcards/internal/model"
)

// ListParams holds parameters for listing cards.
type ListParams struct {
	Tag   string // exact tag match
	Query string // substring of front or back
	Limit int    // 0 means no limit
}

// CountObserver is told the new card total after cards are saved or deleted.
type CountObserver interface {
	CardCountChanged(ctx context.Context, total int)
}

// Store defines the flash card storage interface.
type Store interface {
	// SaveCards inserts cards in one transaction. A duplicate id fails the whole batch.
	SaveCards(ctx context.Context, cards []model.FlashCard) (int, error)

	// AllCards returns every stored card. Order is not part of the contract.
	AllCards(ctx context.Context) ([]model.FlashCard, error)

	// ListCards returns cards newest first, filtered by p.
	ListCards(ctx context.Context, p ListParams) ([]model.FlashCard, error)

	// GetCard returns one card or ErrCardNotFound.
	GetCard(ctx context.Context, id int64) (*model.FlashCard, error)

	// DeleteCard removes a card. Deleting a missing id succeeds.
	DeleteCard(ctx context.Context, id int64) error

	// UpdateCard inserts or replaces a card by id.
	UpdateCard(ctx context.Context, card model.FlashCard) error

	// GetSetting returns the stored JSON value, or nil when the key is absent.
	GetSetting(ctx context.Context, key string) (json.RawMessage, error)

	// GetSettings returns a value (possibly nil) for every requested key.
	GetSettings(ctx context.Context, keys []string) (map[string]json.RawMessage, error)

	// SetSetting stores value as JSON, overwriting any previous value.
	SetSetting(ctx context.Context, key string, value any) error

	// AddPending queues selection text the user still has to act on.
	AddPending(ctx context.Context, text, message string) (*model.Pending, error)

	// ListPending returns queued entries, oldest first.
	ListPending(ctx context.Context) ([]model.Pending, error)

	// GetPending returns one entry or ErrPendingNotFound.
	GetPending(ctx context.Context, id string) (*model.Pending, error)

	// RemovePending deletes an entry. Missing ids succeed.
	RemovePending(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
