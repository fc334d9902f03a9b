package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/flashcards/internal/logging"
	"github.com/rcliao/flashcards/internal/model"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	idMu     sync.Mutex
	entropy  *ulid.MonotonicEntropy
	logger   *slog.Logger
	observer CountObserver
	now      func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SQLiteStore) { s.logger = logger }
}

// WithCountObserver registers o to hear about card total changes.
func WithCountObserver(o CountObserver) Option {
	return func(s *SQLiteStore) { s.observer = o }
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// Opening an existing database is a no-op migration.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &InitError{Path: dbPath, Err: fmt.Errorf("create db dir: %w", err)}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &InitError{Path: dbPath, Err: fmt.Errorf("open db: %w", err)}
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.Default(s.logger).With("component", "store")

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &InitError{Path: dbPath, Err: fmt.Errorf("migrate: %w", err)}
	}

	s.logger.Debug("store opened", "path", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version >= schemaVersion {
		return nil
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cards (
		id            INTEGER PRIMARY KEY,
		front         TEXT NOT NULL,
		back          TEXT NOT NULL,
		tags          TEXT NOT NULL DEFAULT '[]',
		created       TEXT NOT NULL,
		source        TEXT NOT NULL DEFAULT '',
		last_reviewed TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_cards_created ON cards(created DESC);

	CREATE TABLE IF NOT EXISTS card_tags (
		card_id INTEGER NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		tag     TEXT NOT NULL,
		PRIMARY KEY (card_id, tag)
	);
	CREATE INDEX IF NOT EXISTS idx_card_tags_tag ON card_tags(tag);

	CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pending (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		message    TEXT,
		created_at TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// PRAGMA does not take bind parameters.
	_, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

func (s *SQLiteStore) SaveCards(ctx context.Context, cards []model.FlashCard) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &WriteError{Op: "save cards", Err: err}
	}
	defer tx.Rollback()

	for _, c := range cards {
		if err := insertCard(ctx, tx, c, false); err != nil {
			return 0, &WriteError{Op: fmt.Sprintf("save card %d", c.ID), Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &WriteError{Op: "save cards", Err: err}
	}

	s.logger.Info("cards saved", "count", len(cards))
	s.notifyCount(ctx)
	return len(cards), nil
}

func (s *SQLiteStore) AllCards(ctx context.Context) ([]model.FlashCard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, front, back, tags, created, source, last_reviewed FROM cards ORDER BY id`)
	if err != nil {
		return nil, &ReadError{Op: "all cards", Err: err}
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, &ReadError{Op: "all cards", Err: err}
	}
	return cards, nil
}

func (s *SQLiteStore) ListCards(ctx context.Context, p ListParams) ([]model.FlashCard, error) {
	var where []string
	var args []interface{}

	if p.Tag != "" {
		where = append(where, "c.id IN (SELECT card_id FROM card_tags WHERE tag = ?)")
		args = append(args, p.Tag)
	}
	if p.Query != "" {
		q := "%" + p.Query + "%"
		where = append(where, "(c.front LIKE ? OR c.back LIKE ?)")
		args = append(args, q, q)
	}

	query := `SELECT c.id, c.front, c.back, c.tags, c.created, c.source, c.last_reviewed FROM cards c`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.created DESC, c.id DESC"
	if p.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ReadError{Op: "list cards", Err: err}
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, &ReadError{Op: "list cards", Err: err}
	}
	return cards, nil
}

func (s *SQLiteStore) GetCard(ctx context.Context, id int64) (*model.FlashCard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, front, back, tags, created, source, last_reviewed FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrCardNotFound, id)
	}
	if err != nil {
		return nil, &ReadError{Op: "get card", Err: err}
	}
	return &c, nil
}

func (s *SQLiteStore) DeleteCard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return &WriteError{Op: fmt.Sprintf("delete card %d", id), Err: err}
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Info("card deleted", "id", id)
	}
	s.notifyCount(ctx)
	return nil
}

func (s *SQLiteStore) UpdateCard(ctx context.Context, card model.FlashCard) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &WriteError{Op: "update card", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM card_tags WHERE card_id = ?`, card.ID); err != nil {
		return &WriteError{Op: fmt.Sprintf("update card %d", card.ID), Err: err}
	}
	if err := insertCard(ctx, tx, card, true); err != nil {
		return &WriteError{Op: fmt.Sprintf("update card %d", card.ID), Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &WriteError{Op: "update card", Err: err}
	}
	return nil
}

// CountCards returns the number of stored cards.
func (s *SQLiteStore) CountCards(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, &ReadError{Op: "count cards", Err: err}
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) notifyCount(ctx context.Context) {
	if s.observer == nil {
		return
	}
	total, err := s.CountCards(ctx)
	if err != nil {
		s.logger.Warn("count cards for observer", "err", err)
		return
	}
	s.observer.CardCountChanged(ctx, total)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// insertCard writes the card row and its tag index. Without upsert a
// duplicate id is a constraint error.
func insertCard(ctx context.Context, db execer, c model.FlashCard, upsert bool) error {
	if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
		return ErrEmptyCard
	}
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO cards (id, front, back, tags, created, source, last_reviewed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			front = excluded.front, back = excluded.back, tags = excluded.tags,
			created = excluded.created, source = excluded.source,
			last_reviewed = excluded.last_reviewed`
	}
	_, err = db.ExecContext(ctx, query,
		c.ID, c.Front, c.Back, string(tagsJSON), c.Created, c.Source, c.LastReviewed)
	if err != nil {
		return err
	}

	for _, tag := range tags {
		_, err = db.ExecContext(ctx,
			`INSERT OR IGNORE INTO card_tags (card_id, tag) VALUES (?, ?)`, c.ID, tag)
		if err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row scanner) (model.FlashCard, error) {
	var c model.FlashCard
	var tagsJSON string
	var lastReviewed sql.NullString

	err := row.Scan(&c.ID, &c.Front, &c.Back, &tagsJSON, &c.Created, &c.Source, &lastReviewed)
	if err != nil {
		return c, err
	}

	c.Tags = []string{}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return c, fmt.Errorf("decode tags for card %d: %w", c.ID, err)
		}
	}
	if lastReviewed.Valid {
		v := lastReviewed.String
		c.LastReviewed = &v
	}
	return c, nil
}

func scanCards(rows *sql.Rows) ([]model.FlashCard, error) {
	cards := []model.FlashCard{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
