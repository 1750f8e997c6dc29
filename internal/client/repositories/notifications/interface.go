// Package notifications persists the in-app notification history so it
// survives client restarts.
package notifications

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
)

var ErrNotFound = errors.New("notification not found")

// Repository stores notifications newest first.
type Repository interface {
	// Save inserts n and trims the history to the newest keep rows.
	// keep <= 0 disables trimming.
	Save(ctx context.Context, n models.Notification, keep int) error

	// List returns every stored notification, newest first.
	List(ctx context.Context) ([]models.Notification, error)

	// MarkRead flags a single notification. Returns ErrNotFound for an
	// unknown id.
	MarkRead(ctx context.Context, id string) error

	MarkAllRead(ctx context.Context) error
	Clear(ctx context.Context) error
}
