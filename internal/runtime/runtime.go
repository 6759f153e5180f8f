package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	cfgpkg "github.com/rzbill/greetd/internal/config"
	"github.com/rzbill/greetd/internal/metrics"
	"github.com/rzbill/greetd/internal/msgstore"
	"github.com/rzbill/greetd/internal/relay"
	pebblestore "github.com/rzbill/greetd/internal/storage/pebble"
	"github.com/rzbill/greetd/pkg/log"
)

var errRuntimeClosed = errors.New("runtime: closed")

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger log.Logger
	// Metrics is created when nil.
	Metrics *metrics.Metrics
	// Store overrides the store named by Config. The runtime takes ownership.
	Store msgstore.Store
}

// Runtime wires storage, the broadcaster, config and metrics for a
// single-node instance.
type Runtime struct {
	store   msgstore.Store
	hub     *relay.Broadcaster
	config  cfgpkg.Config
	logger  log.Logger
	metrics *metrics.Metrics
	closers []func() error
	closed  atomic.Bool
}

// Open initializes the message store and broadcaster and returns a Runtime.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	store := opts.Store
	if store == nil {
		fsync, err := pebblestore.ParseFsyncMode(opts.Config.Fsync)
		if err != nil {
			return nil, err
		}
		url := opts.Config.ResolvedStoreURL()
		store, err = msgstore.Open(ctx, url, msgstore.Options{
			Fsync:         fsync,
			FsyncInterval: 5 * time.Millisecond,
			PebbleMetrics: m,
		})
		if err != nil {
			return nil, fmt.Errorf("runtime: open store: %w", err)
		}
		logger.Info("message store opened", log.Str("store", redact(url)))
	}

	hub := relay.NewBroadcaster(
		relay.WithSubscriberBuffer(opts.Config.Broadcast.SubscriberBuffer),
		relay.WithMetrics(m),
	)
	return &Runtime{
		store:   msgstore.Instrument(store, m),
		hub:     hub,
		config:  opts.Config,
		logger:  logger.WithComponent("runtime"),
		metrics: m,
	}, nil
}

// Close closes the broadcaster, ending every live feed, then the store and
// any closers registered with OnClose, in reverse registration order. The
// store stays reachable afterwards; its operations fail with the backend's
// closed error. Close is idempotent.
func (r *Runtime) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if r.hub != nil {
		r.hub.Close()
	}
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, r.closers[i]())
	}
	r.closers = nil
	if r.store != nil {
		err = multierr.Append(err, r.store.Close())
	}
	return err
}

// OnClose registers fn to run when the runtime closes.
func (r *Runtime) OnClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

// CheckHealth reports whether the store can serve requests.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.closed.Load() {
		return errRuntimeClosed
	}
	return r.store.Ping(ctx)
}

// Store returns the instrumented message store.
func (r *Runtime) Store() msgstore.Store { return r.store }

// Broadcaster returns the process-wide live feed.
func (r *Runtime) Broadcaster() *relay.Broadcaster { return r.hub }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the root logger.
func (r *Runtime) Logger() log.Logger { return r.logger }

// Metrics returns the collectors shared by all components.
func (r *Runtime) Metrics() *metrics.Metrics { return r.metrics }

// redact hides credentials embedded in a store URL.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		return scheme + "://***@" + rest[i+1:]
	}
	return url
}
