package grpcserver

import (
	"context"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rzbill/greetd/internal/runtime"
)

// healthSvc reports NOT_SERVING whenever the store fails its ping, on top of
// the statuses tracked by the stock health server.
type healthSvc struct {
	*health.Server
	rt *runtime.Runtime
}

func newHealthSvc(rt *runtime.Runtime) *healthSvc {
	h := &healthSvc{Server: health.NewServer(), rt: rt}
	h.SetServingStatus("greeter.v1.Greeter", healthpb.HealthCheckResponse_SERVING)
	return h
}

func (h *healthSvc) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if err := h.rt.CheckHealth(ctx); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return h.Server.Check(ctx, req)
}
