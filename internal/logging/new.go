package logging

import (
	"fmt"
	"io"
)

// New builds a logger for the configured backend ("slog" or "zap") and
// format ("text" or "json"). The slog backend writes to w; zap writes to
// stderr. The returned flush func must be called before exit.
func New(backend, format, level string, w io.Writer) (Logger, func() error, error) {
	switch backend {
	case "", "slog":
		if format == "json" {
			return NewJSONLogger(w, level), func() error { return nil }, nil
		}
		return NewTextLogger(w, level), func() error { return nil }, nil
	case "zap":
		z, err := NewZapLogger(level, format)
		if err != nil {
			return nil, nil, err
		}
		return z, z.Sync, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
