package msgstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// backends returns a fresh store per backend available in this environment.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	out := map[string]func(t *testing.T) Store{
		"pebble": func(t *testing.T) Store {
			s, err := OpenPebble(t.TempDir(), Options{})
			if err != nil {
				t.Fatalf("open pebble: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "greetd.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
	if url := os.Getenv("GREETD_TEST_POSTGRES_URL"); url != "" {
		out["postgres"] = func(t *testing.T) Store {
			s, err := OpenPostgres(context.Background(), url)
			if err != nil {
				t.Fatalf("open postgres: %v", err)
			}
			if _, err := s.pool.Exec(context.Background(), `TRUNCATE messages RESTART IDENTITY`); err != nil {
				t.Fatalf("truncate: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		}
	}
	return out
}

func TestAppendListOrder(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			var lastID int64
			for _, text := range []string{"Hello Alice!", "Hello Bob!", ""} {
				m, err := s.Append(ctx, text)
				if err != nil {
					t.Fatalf("append %q: %v", text, err)
				}
				if m.ID <= lastID {
					t.Fatalf("id %d not greater than %d", m.ID, lastID)
				}
				if m.Text != text {
					t.Fatalf("text=%q want %q", m.Text, text)
				}
				lastID = m.ID
			}
			all, err := s.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if diff := cmp.Diff([]string{"Hello Alice!", "Hello Bob!", ""}, Texts(all)); diff != "" {
				t.Fatalf("texts mismatch (-want +got):\n%s", diff)
			}
			if err := s.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
		})
	}
}

func TestConcurrentAppendsKeepDenseIDs(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			const writers, each = 8, 25
			var wg sync.WaitGroup
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < each; i++ {
						if _, err := s.Append(context.Background(), fmt.Sprintf("w%d-%d", w, i)); err != nil {
							t.Errorf("append: %v", err)
							return
						}
					}
				}(w)
			}
			wg.Wait()
			all, err := s.List(context.Background())
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(all) != writers*each {
				t.Fatalf("got %d messages want %d", len(all), writers*each)
			}
			for i := 1; i < len(all); i++ {
				if all[i].ID <= all[i-1].ID {
					t.Fatalf("ids out of order at %d: %d <= %d", i, all[i].ID, all[i-1].ID)
				}
			}
		})
	}
}

func TestPebbleReopenContinuesIDs(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenPebble(dir, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first, err := s.Append(context.Background(), "one")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Append(context.Background(), "late"); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}

	s, err = OpenPebble(dir, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	second, err := s.Append(context.Background(), "two")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.ID != first.ID+1 {
		t.Fatalf("id after reopen=%d want %d", second.ID, first.ID+1)
	}
	all, _ := s.List(context.Background())
	if diff := cmp.Diff([]string{"one", "two"}, Texts(all)); diff != "" {
		t.Fatalf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestPebbleUpdatedNeverRegresses(t *testing.T) {
	clock := int64(5000)
	nowMs = func() int64 { return clock }
	defer func() { nowMs = func() int64 { return time.Now().UnixMilli() } }()

	s, err := OpenPebble(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	a, _ := s.Append(context.Background(), "a")
	clock = 4000
	b, _ := s.Append(context.Background(), "b")
	if b.Updated < a.Updated {
		t.Fatalf("updated regressed: %d < %d", b.Updated, a.Updated)
	}
}

func TestRecordChecksum(t *testing.T) {
	rec := encodeRecord(42, "Hello Alice!")
	updated, text, ok := decodeRecord(rec)
	if !ok || updated != 42 || text != "Hello Alice!" {
		t.Fatalf("decode=%d,%q,%v", updated, text, ok)
	}
	rec[9] ^= 0xff
	if _, _, ok := decodeRecord(rec); ok {
		t.Fatalf("corrupted record decoded")
	}
	if _, _, ok := decodeRecord([]byte{1, 2}); ok {
		t.Fatalf("short record decoded")
	}
}

func TestPebbleListFailsOnCorruptRecord(t *testing.T) {
	ctx := context.Background()
	s, err := OpenPebble(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	for _, text := range []string{"Hello Alice!", "Hello Bob!"} {
		if _, err := s.Append(ctx, text); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	raw, err := s.db.Get(entryKey(1))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	bad := append([]byte(nil), raw...)
	bad[len(bad)-1] ^= 0xff
	b := s.db.NewBatch()
	if err := b.Set(entryKey(1), bad, nil); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	_ = b.Close()

	msgs, err := s.List(ctx)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("list = %v, %v; want %v", msgs, err, ErrCorrupt)
	}
	if msgs != nil {
		t.Fatalf("partial history returned: %v", msgs)
	}
}

func TestOpenDispatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, "pebble://"+filepath.Join(dir, "p"), Options{})
	if err != nil {
		t.Fatalf("pebble url: %v", err)
	}
	if _, ok := s.(*PebbleStore); !ok {
		t.Fatalf("got %T want *PebbleStore", s)
	}
	_ = s.Close()

	s, err = Open(ctx, filepath.Join(dir, "bare"), Options{})
	if err != nil {
		t.Fatalf("bare path: %v", err)
	}
	_ = s.Close()

	s, err = Open(ctx, "sqlite://"+filepath.Join(dir, "x.db"), Options{})
	if err != nil {
		t.Fatalf("sqlite url: %v", err)
	}
	if _, ok := s.(*SQLiteStore); !ok {
		t.Fatalf("got %T want *SQLiteStore", s)
	}
	_ = s.Close()

	if _, err := Open(ctx, "", Options{}); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := Open(ctx, "redis://localhost", Options{}); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}

type opRecorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *opRecorder) ObserveStoreOp(op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		op += ":err"
	}
	r.ops = append(r.ops, op)
}

func TestInstrument(t *testing.T) {
	inner, err := OpenPebble(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rec := &opRecorder{}
	s := Instrument(inner, rec)
	_, _ = s.Append(context.Background(), "x")
	_, _ = s.List(context.Background())
	_ = s.Close()
	_, _ = s.Append(context.Background(), "y")
	if diff := cmp.Diff([]string{"append", "list", "append:err"}, rec.ops); diff != "" {
		t.Fatalf("ops mismatch (-want +got):\n%s", diff)
	}
	if Instrument(inner, nil) != Store(inner) {
		t.Fatalf("nil metrics should return the store unchanged")
	}
}
