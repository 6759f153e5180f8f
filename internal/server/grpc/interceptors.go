package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/rzbill/greetd/internal/metrics"
	"github.com/rzbill/greetd/pkg/log"
)

// observer logs every call with its peer address and counts it by status.
type observer struct {
	logger  log.Logger
	metrics *metrics.Metrics
}

func (o *observer) unary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	o.done(ctx, info.FullMethod, start, err)
	return resp, err
}

func (o *observer) stream(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	o.logger.Debug("stream opened", log.Str(log.MethodKey, info.FullMethod), log.Str(log.PeerKey, peerAddr(ss.Context())))
	err := handler(srv, ss)
	o.done(ss.Context(), info.FullMethod, start, err)
	return err
}

func (o *observer) done(ctx context.Context, method string, start time.Time, err error) {
	code := status.Code(err)
	if o.metrics != nil {
		o.metrics.ObserveRPC(method, code.String())
	}
	fields := []log.Field{
		log.Str(log.MethodKey, method),
		log.Str(log.PeerKey, peerAddr(ctx)),
		log.Str("code", code.String()),
		log.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		o.logger.Warn("request failed", append(fields, log.Err(err))...)
		return
	}
	o.logger.Info("request served", fields...)
}

func peerAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}
