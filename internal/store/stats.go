package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string     `json:"db_path"`
	DBSizeBytes int64      `json:"db_size_bytes"`
	Cards       int        `json:"cards"`
	Pending     int        `json:"pending"`
	Settings    int        `json:"settings"`
	Tags        []TagStats `json:"tags"`
}

// TagStats holds per-tag counts.
type TagStats struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Tags: []TagStats{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		table string
		dest  *int
	}{
		{"cards", &st.Cards},
		{"pending", &st.Pending},
		{"settings", &st.Settings},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return nil, &ReadError{Op: "count " + c.table, Err: err}
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, COUNT(*) AS cnt
		FROM card_tags
		GROUP BY tag ORDER BY cnt DESC, tag`)
	if err != nil {
		return nil, &ReadError{Op: "tag stats", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var ts TagStats
		if err := rows.Scan(&ts.Tag, &ts.Count); err != nil {
			return nil, &ReadError{Op: "tag stats", Err: err}
		}
		st.Tags = append(st.Tags, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, &ReadError{Op: "tag stats", Err: err}
	}

	return st, nil
}
