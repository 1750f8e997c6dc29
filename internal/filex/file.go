// Package filex holds filesystem helpers for the local store.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DatabasePath returns the filesystem path behind a SQLite DSN, or "" for
// in-memory databases. A "file:" prefix and any "?query" are stripped.
func DatabasePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if p == "" || strings.HasPrefix(p, ":memory:") || strings.Contains(p, "mode=memory") {
		return ""
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

// EnsureParentDir creates the directory that will hold the database file
// named by dsn. In-memory DSNs and files in the working directory are left
// alone.
func EnsureParentDir(dsn string) error {
	p := DatabasePath(dsn)
	if p == "" {
		return nil
	}

	dir := filepath.Dir(p)
	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
