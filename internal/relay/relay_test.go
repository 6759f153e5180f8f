package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rzbill/greetd/internal/msgstore"
)

type inItem struct {
	name string
	err  error
}

// scriptInbound replays items, then reports io.EOF or blocks until ctx ends.
type scriptInbound struct {
	ctx   context.Context
	items []inItem
	hold  bool
}

func (s *scriptInbound) Recv() (string, error) {
	if len(s.items) == 0 {
		if s.hold {
			<-s.ctx.Done()
			return "", s.ctx.Err()
		}
		return "", io.EOF
	}
	it := s.items[0]
	s.items = s.items[1:]
	return it.name, it.err
}

type recordingSink struct {
	ctx     context.Context
	sendErr error

	mu   sync.Mutex
	sent []string
}

func (s *recordingSink) Context() context.Context { return s.ctx }
func (s *recordingSink) Flush() error             { return nil }

func (s *recordingSink) Send(text string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	s.sent = append(s.sent, text)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

type memAppender struct {
	err error

	mu    sync.Mutex
	texts []string
}

func (m *memAppender) Append(_ context.Context, text string) (msgstore.Message, error) {
	if m.err != nil {
		return msgstore.Message{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return msgstore.Message{ID: int64(len(m.texts)), Text: text}, nil
}

func (m *memAppender) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

func greet(name string) string { return fmt.Sprintf("Hello %s!", name) }

func names(ns ...string) []inItem {
	out := make([]inItem, len(ns))
	for i, n := range ns {
		out[i] = inItem{name: n}
	}
	return out
}

func TestStreamRelayAcksPersistsAndPublishesInOrder(t *testing.T) {
	hub := NewBroadcaster()
	watcher := hub.Subscribe()
	defer watcher.Close()
	store := &memAppender{}
	r := NewStreamRelay(store, hub, StreamOptions{Reply: greet})

	sink := &recordingSink{ctx: context.Background()}
	in := &scriptInbound{items: names("Alice", "Bob", "Carol")}
	if err := r.Run(in, sink); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"Hello Alice!", "Hello Bob!", "Hello Carol!"}
	if diff := cmp.Diff(want, sink.Sent()); diff != "" {
		t.Fatalf("acks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, store.Texts()); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, drain(t, watcher, 3)); diff != "" {
		t.Fatalf("broadcast mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamRelayDefaultReplyEchoes(t *testing.T) {
	r := NewStreamRelay(&memAppender{}, NewBroadcaster(), StreamOptions{})
	sink := &recordingSink{ctx: context.Background()}
	if err := r.Run(&scriptInbound{items: names("ping")}, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"ping"}, sink.Sent()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamRelayBenignDisconnectEndsQuietly(t *testing.T) {
	store := &memAppender{}
	r := NewStreamRelay(store, NewBroadcaster(), StreamOptions{Reply: greet})
	sink := &recordingSink{ctx: context.Background()}
	in := &scriptInbound{items: []inItem{
		{name: "Alice"},
		{err: fmt.Errorf("transport: %w", syscall.EPIPE)},
		{name: "never"},
	}}

	if err := r.Run(in, sink); err != nil {
		t.Fatalf("run = %v, want nil for a broken pipe", err)
	}
	if diff := cmp.Diff([]string{"Hello Alice!"}, sink.Sent()); diff != "" {
		t.Fatalf("acks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Hello Alice!"}, store.Texts()); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamRelayPropagatesOtherErrors(t *testing.T) {
	r := NewStreamRelay(&memAppender{}, NewBroadcaster(), StreamOptions{Reply: greet})
	sink := &recordingSink{ctx: context.Background()}
	failure := status.Error(codes.DataLoss, "corrupt frame")
	in := &scriptInbound{items: []inItem{{name: "Alice"}, {name: "Bob"}, {err: failure}}}

	err := r.Run(in, sink)
	if status.Code(err) != codes.DataLoss {
		t.Fatalf("run = %v, want DataLoss", err)
	}
	if diff := cmp.Diff([]string{"Hello Alice!", "Hello Bob!"}, sink.Sent()); diff != "" {
		t.Fatalf("acks before error mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamRelayAppendFailureStillPublishes(t *testing.T) {
	hub := NewBroadcaster()
	watcher := hub.Subscribe()
	defer watcher.Close()
	r := NewStreamRelay(&memAppender{err: errors.New("disk full")}, hub, StreamOptions{Reply: greet})
	sink := &recordingSink{ctx: context.Background()}

	if err := r.Run(&scriptInbound{items: names("Alice")}, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello Alice!"}, sink.Sent()); diff != "" {
		t.Fatalf("acks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Hello Alice!"}, drain(t, watcher, 1)); diff != "" {
		t.Fatalf("broadcast mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamRelayStopsWhenPeerRejectsWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewStreamRelay(&memAppender{}, NewBroadcaster(), StreamOptions{Reply: greet})
	sink := &recordingSink{ctx: ctx, sendErr: io.ErrClosedPipe}
	in := &scriptInbound{ctx: ctx, items: names("Alice"), hold: true}

	done := make(chan error, 1)
	go func() { done <- r.Run(in, sink) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after a failed write")
	}
}

func TestStreamRelaySessionsAreIsolated(t *testing.T) {
	hub := NewBroadcaster()
	store := &memAppender{}
	r := NewStreamRelay(store, hub, StreamOptions{Reply: greet})

	var wg sync.WaitGroup
	var badErr error
	bad := &recordingSink{ctx: context.Background()}
	good := &recordingSink{ctx: context.Background()}
	wg.Add(2)
	go func() {
		defer wg.Done()
		badErr = r.Run(&scriptInbound{items: []inItem{{err: status.Error(codes.Internal, "boom")}}}, bad)
	}()
	go func() {
		defer wg.Done()
		if err := r.Run(&scriptInbound{items: names("Alice", "Bob")}, good); err != nil {
			t.Errorf("good session: %v", err)
		}
	}()
	wg.Wait()

	if status.Code(badErr) != codes.Internal {
		t.Fatalf("bad session = %v, want Internal", badErr)
	}
	if len(bad.Sent()) != 0 {
		t.Fatalf("bad session acks = %v, want none", bad.Sent())
	}
	if diff := cmp.Diff([]string{"Hello Alice!", "Hello Bob!"}, good.Sent()); diff != "" {
		t.Fatalf("good session mismatch (-want +got):\n%s", diff)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubscriptionRelayForwardsLiveBroadcasts(t *testing.T) {
	hub := NewBroadcaster()
	hub.Publish("before")
	ctx, cancel := context.WithCancel(context.Background())
	sink := &recordingSink{ctx: ctx}
	r := NewSubscriptionRelay(hub, FeedOptions{})

	done := make(chan error, 1)
	go func() { done <- r.Run(sink) }()
	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })

	hub.Publish("Hello Alice!")
	hub.Publish("Hello Bob!")
	waitFor(t, "two broadcasts", func() bool { return len(sink.Sent()) == 2 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello Alice!", "Hello Bob!"}, sink.Sent()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := hub.Subscribers(); got != 0 {
		t.Fatalf("subscribers = %d after disconnect, want 0", got)
	}
}

func TestSubscriptionRelayStopsOnWriteFailure(t *testing.T) {
	hub := NewBroadcaster()
	sink := &recordingSink{ctx: context.Background(), sendErr: io.ErrClosedPipe}
	r := NewSubscriptionRelay(hub, FeedOptions{})

	done := make(chan error, 1)
	go func() { done <- r.Run(sink) }()
	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })
	hub.Publish("x")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after a failed write")
	}
	waitFor(t, "unsubscribe", func() bool { return hub.Subscribers() == 0 })
}

func TestSubscriptionRelayEndsWhenBroadcasterCloses(t *testing.T) {
	hub := NewBroadcaster()
	sink := &recordingSink{ctx: context.Background()}
	r := NewSubscriptionRelay(hub, FeedOptions{})

	done := make(chan error, 1)
	go func() { done <- r.Run(sink) }()
	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })
	hub.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not end on broadcaster close")
	}
}
