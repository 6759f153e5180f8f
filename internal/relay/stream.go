package relay

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/rzbill/greetd/internal/msgstore"
	"github.com/rzbill/greetd/pkg/log"
)

const (
	// DefaultOutboundBuffer bounds acknowledgements waiting for the writer.
	DefaultOutboundBuffer = 128
	// DefaultEffectsBuffer bounds messages waiting to be persisted and published.
	DefaultEffectsBuffer = 128
)

// Inbound is the receive half of a client stream. Recv returns io.EOF when
// the client half-closes cleanly.
type Inbound interface {
	Recv() (string, error)
}

// Sink is the send half of a stream to one peer.
type Sink interface {
	Send(text string) error
	Context() context.Context
	Flush() error
}

// Appender persists accepted messages.
type Appender interface {
	Append(ctx context.Context, text string) (msgstore.Message, error)
}

// StreamOptions configures a StreamRelay.
type StreamOptions struct {
	// Reply builds the acknowledgement for an inbound name. Defaults to echo.
	Reply          func(name string) string
	OutboundBuffer int
	EffectsBuffer  int
	Logger         log.Logger
	Metrics        Metrics
}

// StreamRelay pumps one bidirectional connection: every inbound name is
// acknowledged to the sender in order, then appended to the store and
// published to the Broadcaster in the same order.
type StreamRelay struct {
	store   Appender
	hub     *Broadcaster
	reply   func(string) string
	outLen  int
	fxLen   int
	logger  log.Logger
	metrics Metrics
}

// NewStreamRelay returns a relay that persists into store and publishes on hub.
func NewStreamRelay(store Appender, hub *Broadcaster, opts StreamOptions) *StreamRelay {
	r := &StreamRelay{
		store:   store,
		hub:     hub,
		reply:   opts.Reply,
		outLen:  opts.OutboundBuffer,
		fxLen:   opts.EffectsBuffer,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if r.reply == nil {
		r.reply = func(name string) string { return name }
	}
	if r.outLen <= 0 {
		r.outLen = DefaultOutboundBuffer
	}
	if r.fxLen <= 0 {
		r.fxLen = DefaultEffectsBuffer
	}
	if r.logger == nil {
		r.logger = log.NewNopLogger()
	}
	if r.metrics == nil {
		r.metrics = NoopMetrics{}
	}
	r.logger = r.logger.WithComponent("stream-relay")
	return r
}

type outItem struct {
	text string
	err  error
}

// Run relays one connection until the inbound side ends or the peer stops
// accepting writes. A clean half-close or a benign disconnect returns nil
// after queued acknowledgements are written. Any other receive error is
// returned once the acknowledgements before it are written.
//
// Persistence and publishing run on a worker detached from the connection:
// they complete for every acknowledged message even if the peer is gone.
func (r *StreamRelay) Run(in Inbound, out Sink) error {
	ctx, cancel := context.WithCancel(out.Context())
	defer cancel()

	logger := r.logger.With(log.Str(log.SessionKey, uuid.NewString()))
	r.metrics.ObserveSession("stream", 1)
	defer r.metrics.ObserveSession("stream", -1)
	logger.Debug("stream session opened")

	acks := make(chan outItem, r.outLen)
	effects := make(chan string, r.fxLen)
	effectsDone := make(chan struct{})

	go func() {
		defer close(effectsDone)
		r.applyEffects(context.WithoutCancel(ctx), effects, logger)
	}()
	go r.read(ctx, in, acks, effects, logger)

	var final error
	for it := range acks {
		if it.err != nil {
			final = it.err
			continue
		}
		if err := out.Send(it.text); err != nil {
			logger.Debug("peer stopped accepting writes", log.Err(err))
			cancel()
			return nil
		}
		if err := out.Flush(); err != nil {
			logger.Debug("flush failed", log.Err(err))
			cancel()
			return nil
		}
	}

	<-effectsDone
	logger.Debug("stream session closed")
	return final
}

func (r *StreamRelay) read(ctx context.Context, in Inbound, acks chan<- outItem, effects chan<- string, logger log.Logger) {
	defer close(effects)
	defer close(acks)
	for {
		if ctx.Err() != nil {
			return
		}
		name, err := in.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if Classify(err) == BenignDisconnect {
				logger.Info("client disconnected: broken pipe", log.Err(err))
				return
			}
			logger.Warn("inbound stream failed", log.Err(err))
			select {
			case acks <- outItem{err: err}:
			case <-ctx.Done():
			}
			return
		}

		text := r.reply(name)
		select {
		case acks <- outItem{text: text}:
		case <-ctx.Done():
			return
		}
		effects <- text
	}
}

func (r *StreamRelay) applyEffects(ctx context.Context, effects <-chan string, logger log.Logger) {
	for text := range effects {
		if _, err := r.store.Append(ctx, text); err != nil {
			r.metrics.ObserveAppendError()
			logger.Error("failed to persist message", log.Err(err))
		}
		r.hub.Publish(text)
	}
}
