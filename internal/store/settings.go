package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &ReadError{Op: fmt.Sprintf("get setting %s", key), Err: err}
	}
	return rawValue(value), nil
}

func (s *SQLiteStore) GetSettings(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]interface{}, len(keys))
	for i, k := range keys {
		out[k] = nil
		args[i] = k
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, &ReadError{Op: "get settings", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, &ReadError{Op: "get settings", Err: err}
		}
		out[key] = rawValue(value)
	}
	if err := rows.Err(); err != nil {
		return nil, &ReadError{Op: "get settings", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key string, value any) error {
	var b []byte
	switch v := value.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			return &WriteError{Op: fmt.Sprintf("set setting %s", key), Err: fmt.Errorf("invalid JSON value")}
		}
		b = v
	default:
		var err error
		b, err = json.Marshal(value)
		if err != nil {
			return &WriteError{Op: fmt.Sprintf("set setting %s", key), Err: err}
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(b), s.now().UTC().Format(timeLayout))
	if err != nil {
		return &WriteError{Op: fmt.Sprintf("set setting %s", key), Err: err}
	}
	return nil
}

// DeleteSetting removes a key. Missing keys succeed.
func (s *SQLiteStore) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return &WriteError{Op: fmt.Sprintf("delete setting %s", key), Err: err}
	}
	return nil
}

// GetStringSetting reads a setting stored as a JSON string. Absent, null
// and non-string values all yield "".
func GetStringSetting(ctx context.Context, s Store, key string) (string, error) {
	raw, err := s.GetSetting(ctx, key)
	if err != nil || raw == nil {
		return "", err
	}
	var v string
	if json.Unmarshal(raw, &v) != nil {
		return "", nil
	}
	return v, nil
}

// rawValue maps SQL NULL and JSON null to an absent value.
func rawValue(v sql.NullString) json.RawMessage {
	if !v.Valid || v.String == "" || v.String == "null" {
		return nil
	}
	return json.RawMessage(v.String)
}
