package relay

import (
	"sync"
	"sync/atomic"
)

// DefaultSubscriberBuffer is the per-subscription queue capacity.
const DefaultSubscriberBuffer = 16

// BroadcasterOption configures a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithSubscriberBuffer sets the per-subscription queue capacity.
func WithSubscriberBuffer(n int) BroadcasterOption {
	return func(b *Broadcaster) { b.bufLen = n }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) BroadcasterOption {
	return func(b *Broadcaster) {
		if m != nil {
			b.metrics = m
		}
	}
}

// Broadcaster fans published texts out to every live Subscription.
//
// The subscriber registry is copy-on-write: Subscribe and Close build a new
// slice under mu and publish it atomically, so Publish iterates an immutable
// snapshot without taking any registry lock. Delivery into each subscription
// never blocks; a full subscription drops its oldest event.
type Broadcaster struct {
	bufLen  int
	metrics Metrics

	mu     sync.Mutex
	subs   atomic.Pointer[[]*Subscription]
	nextID uint64
	closed bool
}

// NewBroadcaster returns an open Broadcaster with no subscribers.
func NewBroadcaster(opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{bufLen: DefaultSubscriberBuffer, metrics: NoopMetrics{}}
	for _, opt := range opts {
		opt(b)
	}
	if b.bufLen <= 0 {
		b.bufLen = DefaultSubscriberBuffer
	}
	empty := []*Subscription{}
	b.subs.Store(&empty)
	return b
}

// Publish delivers text to every current subscriber and returns how many it
// reached. With no subscribers it is a no-op.
func (b *Broadcaster) Publish(text string) int {
	subs := *b.subs.Load()
	for _, s := range subs {
		if s.push(text) {
			b.metrics.ObserveDrop()
		}
	}
	b.metrics.ObservePublish(len(subs))
	return len(subs)
}

// Subscribe registers a consumer that sees every text published from now on.
// Subscribing to a closed Broadcaster returns an already-closed Subscription.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := newSubscription(b.nextID, b.bufLen, b)
	if b.closed {
		s.markClosed()
		return s
	}
	cur := *b.subs.Load()
	next := make([]*Subscription, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, s)
	b.subs.Store(&next)
	b.metrics.ObserveSubscribers(len(next))
	return s
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	return len(*b.subs.Load())
}

// Close closes every subscription. Later publishes are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	cur := *b.subs.Load()
	empty := []*Subscription{}
	b.subs.Store(&empty)
	b.mu.Unlock()

	for _, s := range cur {
		s.Close()
	}
	b.metrics.ObserveSubscribers(0)
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := *b.subs.Load()
	next := make([]*Subscription, 0, len(cur))
	for _, s := range cur {
		if s.id != id {
			next = append(next, s)
		}
	}
	if len(next) == len(cur) {
		return
	}
	b.subs.Store(&next)
	b.metrics.ObserveSubscribers(len(next))
}
