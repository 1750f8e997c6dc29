// Package metadata is a small key/value store in the local client database.
// It keeps poll baselines between runs so a status change that happened
// while the client was closed is still reported. Tokens are never stored.
package metadata

import (
	"context"
)

// Well-known keys. The poll baselines are per account; combine them with
// AccountKey.
const (
	KeyVerificationStatus = "verification.last_status"
	KeyPendingCount       = "admin.pending_count"
	// KeyNotificationsOwner names the account the stored notification
	// history belongs to.
	KeyNotificationsOwner = "notifications.owner"
)

// AccountKey scopes key to account. An empty account leaves key unchanged.
func AccountKey(key, account string) string {
	if account == "" {
		return key
	}
	return key + ":" + account
}

// Repository stores opaque byte values by key. Get returns (nil, nil) for
// an absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
