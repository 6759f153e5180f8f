package msgstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/greetd/internal/storage/pebble"
)

// PebbleStore keeps messages in an embedded Pebble database. Appends are
// serialized so ids are dense and strictly increasing.
type PebbleStore struct {
	db *pebblestore.DB

	// life guards closed; operations hold it shared so Close waits for them.
	life   sync.RWMutex
	closed bool

	mu          sync.Mutex
	lastID      int64
	lastUpdated int64
}

// nowMs is swapped in tests.
var nowMs = func() int64 { return time.Now().UnixMilli() }

// OpenPebble opens (or creates) a Pebble-backed store in dir.
func OpenPebble(dir string, opts Options) (*PebbleStore, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       dir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       opts.PebbleMetrics,
	})
	if err != nil {
		return nil, err
	}
	s := &PebbleStore{db: db}
	meta, err := db.Get(metaKey)
	switch {
	case err == nil && len(meta) >= 8:
		s.lastID = int64(binary.BigEndian.Uint64(meta[:8]))
	case err != nil && !errors.Is(err, pebble.ErrNotFound):
		_ = db.Close()
		return nil, fmt.Errorf("msgstore: load meta: %w", err)
	}
	return s, nil
}

// Append implements Store.
func (s *PebbleStore) Append(ctx context.Context, text string) (Message, error) {
	s.life.RLock()
	defer s.life.RUnlock()
	if s.closed {
		return Message{}, ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.lastID + 1
	updated := nowMs()
	if updated < s.lastUpdated {
		updated = s.lastUpdated
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(entryKey(id), encodeRecord(updated, text), nil); err != nil {
		return Message{}, err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], uint64(id))
	if err := b.Set(metaKey, meta[:], nil); err != nil {
		return Message{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return Message{}, fmt.Errorf("msgstore: append: %w", err)
	}
	s.lastID, s.lastUpdated = id, updated
	return Message{ID: id, Text: text, Updated: updated}, nil
}

// List implements Store. A record failing its checksum fails the whole
// listing with ErrCorrupt.
func (s *PebbleStore) List(ctx context.Context) ([]Message, error) {
	s.life.RLock()
	defer s.life.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	var out []Message
	err := s.db.Scan(entryPrefix, func(k, v []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, ok := idFromKey(k)
		if !ok {
			return nil
		}
		updated, text, ok := decodeRecord(v)
		if !ok {
			return fmt.Errorf("record %d: %w", id, ErrCorrupt)
		}
		out = append(out, Message{ID: id, Text: text, Updated: updated})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("msgstore: list: %w", err)
	}
	return out, nil
}

// Ping implements Store.
func (s *PebbleStore) Ping(context.Context) error {
	s.life.RLock()
	defer s.life.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.Ping()
}

// Close implements Store.
func (s *PebbleStore) Close() error {
	s.life.Lock()
	defer s.life.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
