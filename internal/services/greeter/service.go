package greetersvc

import (
	"context"
	"fmt"

	"github.com/rzbill/greetd/internal/msgstore"
	"github.com/rzbill/greetd/internal/relay"
	"github.com/rzbill/greetd/internal/runtime"
	"github.com/rzbill/greetd/pkg/log"
)

// Greeting is the acknowledgement for name. It is also the text persisted
// and broadcast.
func Greeting(name string) string { return "Hello " + name + "!" }

// Service implements the greeter operations on top of a Runtime. It is
// transport neutral: the gRPC server and the HTTP gateway share one instance.
//
// Tunables come from the runtime config at construction time:
//   - relay.outboundBuffer: acknowledgements queued per streaming session.
//   - relay.effectsBuffer: pending append/publish work per streaming session.
//   - broadcast.subscriberBuffer: live feed backlog per subscriber, applied by
//     the runtime's Broadcaster.
type Service struct {
	rt     *runtime.Runtime
	stream *relay.StreamRelay
	feed   *relay.SubscriptionRelay
	logger log.Logger
}

// New returns a Service bound to rt's store, broadcaster, logger and metrics.
func New(rt *runtime.Runtime) *Service {
	cfg := rt.Config()
	logger := rt.Logger()
	return &Service{
		rt: rt,
		stream: relay.NewStreamRelay(rt.Store(), rt.Broadcaster(), relay.StreamOptions{
			Reply:          Greeting,
			OutboundBuffer: cfg.Relay.OutboundBuffer,
			EffectsBuffer:  cfg.Relay.EffectsBuffer,
			Logger:         logger,
			Metrics:        rt.Metrics(),
		}),
		feed: relay.NewSubscriptionRelay(rt.Broadcaster(), relay.FeedOptions{
			Logger:  logger,
			Metrics: rt.Metrics(),
		}),
		logger: logger.WithComponent("greeter"),
	}
}

// SendMessage greets name, persists and broadcasts the greeting, and returns
// it. A failed append is logged; the reply and the broadcast still happen.
func (s *Service) SendMessage(ctx context.Context, name string) string {
	reply := Greeting(name)
	if _, err := s.rt.Store().Append(ctx, reply); err != nil {
		s.rt.Metrics().ObserveAppendError()
		s.logger.Error("failed to persist message", log.Err(err))
	}
	s.rt.Broadcaster().Publish(reply)
	return reply
}

// SendMessageStream relays one bidirectional stream until it ends.
func (s *Service) SendMessageStream(in relay.Inbound, out relay.Sink) error {
	return s.stream.Run(in, out)
}

// ListMessages returns every persisted text in storage order.
func (s *Service) ListMessages(ctx context.Context) ([]string, error) {
	msgs, err := s.rt.Store().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgstore.Texts(msgs), nil
}

// ListMessagesStream writes live broadcasts to out until the peer goes away.
func (s *Service) ListMessagesStream(out relay.Sink) error {
	return s.feed.Run(out)
}
