package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/hirenest/internal/client/migrations"
	"github.com/dmitrijs2005/hirenest/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hirenest/internal/client/repositories/notifications"
	"github.com/dmitrijs2005/hirenest/internal/filex"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the local stores. Access tokens are never written
// to any of them.
type Repositories struct {
	DB            *sql.DB
	Metadata      metadata.Repository
	Notifications notifications.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn (the caller must import a
// "sqlite" driver) and applies migrations.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer at a time; the driver serialises anyway.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &Repositories{
		DB:            db,
		Metadata:      metadata.NewSQLiteRepository(db),
		Notifications: notifications.NewSQLiteRepository(db),
	}, nil
}
