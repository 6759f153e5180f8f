package relay

import (
	"errors"

	"github.com/google/uuid"

	"github.com/rzbill/greetd/pkg/log"
)

// FeedOptions configures a SubscriptionRelay.
type FeedOptions struct {
	Logger  log.Logger
	Metrics Metrics
}

// SubscriptionRelay forwards live broadcasts to one subscriber stream.
type SubscriptionRelay struct {
	hub     *Broadcaster
	logger  log.Logger
	metrics Metrics
}

// NewSubscriptionRelay returns a relay reading from hub.
func NewSubscriptionRelay(hub *Broadcaster, opts FeedOptions) *SubscriptionRelay {
	r := &SubscriptionRelay{hub: hub, logger: opts.Logger, metrics: opts.Metrics}
	if r.logger == nil {
		r.logger = log.NewNopLogger()
	}
	if r.metrics == nil {
		r.metrics = NoopMetrics{}
	}
	r.logger = r.logger.WithComponent("feed-relay")
	return r
}

// Run subscribes and writes every broadcast published from now on to out
// until the peer goes away or the Broadcaster closes. Nothing published
// before the call is replayed. Events a slow peer could not keep up with are
// skipped.
func (r *SubscriptionRelay) Run(out Sink) error {
	ctx := out.Context()
	sub := r.hub.Subscribe()
	defer sub.Close()

	logger := r.logger.With(log.Str(log.SessionKey, uuid.NewString()))
	r.metrics.ObserveSession("feed", 1)
	defer r.metrics.ObserveSession("feed", -1)
	logger.Debug("subscriber attached", log.Uint64("subscription", sub.ID()))

	defer func() {
		if n := sub.Dropped(); n > 0 {
			logger.Info("subscriber lagged", log.Uint64("dropped", n))
		}
	}()

	for {
		text, err := sub.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrSubscriptionClosed) {
				logger.Debug("broadcaster closed")
			}
			return nil
		}
		if err := out.Send(text); err != nil {
			logger.Debug("subscriber went away", log.Err(err))
			return nil
		}
		if err := out.Flush(); err != nil {
			return nil
		}
	}
}
