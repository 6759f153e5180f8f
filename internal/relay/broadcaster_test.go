package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func drain(t *testing.T, sub *Subscription, n int) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var got []string
	for i := 0; i < n; i++ {
		text, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		got = append(got, text)
	}
	return got
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBroadcaster()
	if n := b.Publish("nobody"); n != 0 {
		t.Fatalf("publish reached %d subscribers, want 0", n)
	}
}

func TestSubscribersSeePublishOrder(t *testing.T) {
	b := NewBroadcaster()
	s1, s2 := b.Subscribe(), b.Subscribe()
	defer s1.Close()
	defer s2.Close()

	for _, text := range []string{"a", "b", "c"} {
		if n := b.Publish(text); n != 2 {
			t.Fatalf("publish %q reached %d, want 2", text, n)
		}
	}
	want := []string{"a", "b", "c"}
	if diff := cmp.Diff(want, drain(t, s1, 3)); diff != "" {
		t.Fatalf("s1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, drain(t, s2, 3)); diff != "" {
		t.Fatalf("s2 mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscribeDoesNotReplay(t *testing.T) {
	b := NewBroadcaster()
	b.Publish("before")
	sub := b.Subscribe()
	defer sub.Close()
	b.Publish("after")

	if diff := cmp.Diff([]string{"after"}, drain(t, sub, 1)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	b := NewBroadcaster(WithSubscriberBuffer(4))
	slow := b.Subscribe()
	defer slow.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			b.Publish(fmt.Sprintf("m%d", i))
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	want := []string{"m6", "m7", "m8", "m9"}
	if diff := cmp.Diff(want, drain(t, slow, 4)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := slow.Dropped(); got != 6 {
		t.Fatalf("dropped = %d, want 6", got)
	}
}

func TestSubscriptionCloseUnregisters(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	if got := b.Subscribers(); got != 1 {
		t.Fatalf("subscribers = %d, want 1", got)
	}
	sub.Close()
	sub.Close()
	if got := b.Subscribers(); got != 0 {
		t.Fatalf("subscribers = %d, want 0", got)
	}
	if n := b.Publish("x"); n != 0 {
		t.Fatalf("publish reached %d, want 0", n)
	}
	if _, err := sub.Next(context.Background()); !errors.Is(err, ErrSubscriptionClosed) {
		t.Fatalf("next after close: %v", err)
	}
}

func TestBroadcasterCloseDrainsThenEnds(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	b.Publish("last")
	b.Close()

	if diff := cmp.Diff([]string{"last"}, drain(t, sub, 1)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := sub.Next(context.Background()); !errors.Is(err, ErrSubscriptionClosed) {
		t.Fatalf("next after drain: %v", err)
	}

	late := b.Subscribe()
	if _, err := late.Next(context.Background()); !errors.Is(err, ErrSubscriptionClosed) {
		t.Fatalf("subscribe after close: %v", err)
	}
	if n := b.Publish("ignored"); n != 0 {
		t.Fatalf("publish after close reached %d", n)
	}
}

func TestNextHonorsContext(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := sub.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("next = %v, want deadline exceeded", err)
	}
}

func TestConcurrentPublishAndChurn(t *testing.T) {
	b := NewBroadcaster(WithSubscriberBuffer(8))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				b.Publish(fmt.Sprintf("p%d-%d", p, i))
			}
		}(p)
	}
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sub := b.Subscribe()
				short, stop := context.WithTimeout(ctx, time.Millisecond)
				_, _ = sub.Next(short)
				stop()
				sub.Close()
			}
		}()
	}
	wg.Wait()
	if got := b.Subscribers(); got != 0 {
		t.Fatalf("subscribers = %d after churn, want 0", got)
	}
}
