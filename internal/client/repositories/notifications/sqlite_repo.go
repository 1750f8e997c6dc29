package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, n models.Notification, keep int) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO notifications (id, title, message, severity, created_at, read)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				message = excluded.message,
				severity = excluded.severity,
				created_at = excluded.created_at,
				read = excluded.read`

		_, err := tx.ExecContext(ctx, query,
			n.ID, n.Title, n.Message, string(n.Severity), n.CreatedAt.UnixMilli(), boolToInt(n.Read))
		if err != nil {
			return fmt.Errorf("failed to save notification: %w", err)
		}

		if keep <= 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM notifications WHERE id NOT IN (
				SELECT id FROM notifications ORDER BY created_at DESC, rowid DESC LIMIT ?
			)`, keep)
		if err != nil {
			return fmt.Errorf("failed to trim notifications: %w", err)
		}

		return nil
	})
}

func scanNotification(rows *sql.Rows) (models.Notification, error) {
	var (
		item     models.Notification
		severity string
		created  int64
		read     int
	)
	if err := rows.Scan(&item.ID, &item.Title, &item.Message, &severity, &created, &read); err != nil {
		return item, err
	}
	item.Severity = models.Severity(severity)
	item.CreatedAt = time.UnixMilli(created)
	item.Read = read != 0
	return item, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Notification, error) {
	query := `SELECT id, title, message, severity, created_at, read
		FROM notifications ORDER BY created_at DESC, rowid DESC`

	result, err := dbx.QueryAll(ctx, r.db, scanNotification, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) MarkRead(ctx context.Context, id string) error {
	err := dbx.ExecOne(ctx, r.db, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if errors.Is(err, dbx.ErrNoRowsAffected) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkAllRead(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE read = 0`); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
