package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/flashcards/internal/model"
)

const timeLayout = time.RFC3339Nano

func (s *SQLiteStore) newID(t time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// AddPending stores a new hand-off entry under its own id, so concurrent
// callers never overwrite each other.
func (s *SQLiteStore) AddPending(ctx context.Context, text, message string) (*model.Pending, error) {
	now := s.now().UTC()
	p := &model.Pending{
		ID:        s.newID(now),
		Text:      text,
		Message:   message,
		CreatedAt: now,
	}

	var msg *string
	if message != "" {
		msg = &p.Message
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending (id, text, message, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Text, msg, now.Format(timeLayout))
	if err != nil {
		return nil, &WriteError{Op: "add pending", Err: err}
	}
	return p, nil
}

func (s *SQLiteStore) ListPending(ctx context.Context) ([]model.Pending, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, message, created_at FROM pending ORDER BY id`)
	if err != nil {
		return nil, &ReadError{Op: "list pending", Err: err}
	}
	defer rows.Close()

	entries := []model.Pending{}
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, &ReadError{Op: "list pending", Err: err}
		}
		entries = append(entries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &ReadError{Op: "list pending", Err: err}
	}
	return entries, nil
}

func (s *SQLiteStore) GetPending(ctx context.Context, id string) (*model.Pending, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, message, created_at FROM pending WHERE id = ?`, id)
	p, err := scanPending(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrPendingNotFound, id)
	}
	if err != nil {
		return nil, &ReadError{Op: "get pending", Err: err}
	}
	return &p, nil
}

func (s *SQLiteStore) RemovePending(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending WHERE id = ?`, id); err != nil {
		return &WriteError{Op: "remove pending", Err: err}
	}
	return nil
}

func scanPending(row scanner) (model.Pending, error) {
	var p model.Pending
	var message sql.NullString
	var createdAt string
	if err := row.Scan(&p.ID, &p.Text, &message, &createdAt); err != nil {
		return p, err
	}
	if message.Valid {
		p.Message = message.String
	}
	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return p, nil
}
