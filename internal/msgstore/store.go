package msgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pebblestore "github.com/rzbill/greetd/internal/storage/pebble"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("msgstore: closed")

// ErrCorrupt reports a stored record whose checksum does not match.
var ErrCorrupt = errors.New("checksum mismatch")

// Message is a persisted greeting. Backends that allow NULL text or marker
// columns report them as zero values.
type Message struct {
	ID      int64
	Text    string
	Updated int64
}

// Store is a durable append-only message log. Implementations are safe for
// concurrent use.
type Store interface {
	// Append persists text and returns the stored record.
	Append(ctx context.Context, text string) (Message, error)
	// List returns every stored message in append order.
	List(ctx context.Context) ([]Message, error)
	// Ping reports whether the backend can serve requests.
	Ping(ctx context.Context) error
	Close() error
}

// Options tunes backends that support it.
type Options struct {
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	// PebbleMetrics observes Pebble reads and commits. Optional.
	PebbleMetrics pebblestore.MetricsHook
}

// Open dispatches on the URL scheme and opens the matching backend.
func Open(ctx context.Context, url string, opts Options) (Store, error) {
	switch {
	case url == "":
		return nil, errors.New("msgstore: empty store url")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(ctx, url)
	case strings.HasPrefix(url, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "pebble://"):
		return OpenPebble(strings.TrimPrefix(url, "pebble://"), opts)
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("msgstore: unsupported store url %q", url)
	default:
		return OpenPebble(url, opts)
	}
}

// Texts extracts the text of each message, preserving order.
func Texts(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}
