package relay

import (
	"context"
	"errors"
	"sync"
)

// ErrSubscriptionClosed is returned by Next once a subscription is closed
// and its queue is drained.
var ErrSubscriptionClosed = errors.New("relay: subscription closed")

// Subscription is one consumer's view of a Broadcaster: a bounded ring of
// pending texts in publish order. When the ring is full the oldest pending
// text is dropped.
type Subscription struct {
	id  uint64
	hub *Broadcaster

	mu      sync.Mutex
	buf     []string
	head    int
	n       int
	dropped uint64
	closed  bool

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newSubscription(id uint64, capacity int, hub *Broadcaster) *Subscription {
	return &Subscription{
		id:     id,
		hub:    hub,
		buf:    make([]string, capacity),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// ID identifies the subscription within its Broadcaster.
func (s *Subscription) ID() uint64 { return s.id }

// push enqueues text and reports whether an older text was evicted.
func (s *Subscription) push(text string) (dropped bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if s.n == len(s.buf) {
		s.buf[s.head] = ""
		s.head = (s.head + 1) % len(s.buf)
		s.n--
		s.dropped++
		dropped = true
	}
	s.buf[(s.head+s.n)%len(s.buf)] = text
	s.n++
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return dropped
}

// Next blocks until a text is available, the subscription is closed, or ctx
// is done. Texts queued before a close are still returned.
func (s *Subscription) Next(ctx context.Context) (string, error) {
	for {
		s.mu.Lock()
		if s.n > 0 {
			text := s.buf[s.head]
			s.buf[s.head] = ""
			s.head = (s.head + 1) % len(s.buf)
			s.n--
			s.mu.Unlock()
			return text, nil
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return "", ErrSubscriptionClosed
		}

		select {
		case <-s.notify:
		case <-s.done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Dropped returns how many texts were evicted because the consumer lagged.
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close unregisters the subscription. It is idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.shut()
		s.hub.remove(s.id)
	})
}

// markClosed closes a subscription that was never registered.
func (s *Subscription) markClosed() {
	s.once.Do(s.shut)
}

func (s *Subscription) shut() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	close(s.done)
}
