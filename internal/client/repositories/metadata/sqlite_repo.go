package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/hirenest/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata`)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

type entry struct {
	key   string
	value []byte
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := dbx.QueryAll(ctx, r.db, func(rows *sql.Rows) (entry, error) {
		var e entry
		err := rows.Scan(&e.key, &e.value)
		return e, err
	}, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	result := make(map[string][]byte, len(rows))
	for _, e := range rows {
		result[e.key] = e.value
	}
	return result, nil
}

// GetString reads key as a string; ok is false when the key is absent.
func GetString(ctx context.Context, r Repository, key string) (value string, ok bool, err error) {
	b, err := r.Get(ctx, key)
	if err != nil || b == nil {
		return "", false, err
	}
	return string(b), true, nil
}

// GetInt reads key as a decimal integer; ok is false when the key is absent
// or does not hold a number.
func GetInt(ctx context.Context, r Repository, key string) (value int, ok bool, err error) {
	s, ok, err := GetString(ctx, r, key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(s)
	if convErr != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func SetInt(ctx context.Context, r Repository, key string, value int) error {
	return r.Set(ctx, key, []byte(strconv.Itoa(value)))
}
