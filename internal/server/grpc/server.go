package grpcserver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	greeterv1 "github.com/rzbill/greetd/api/greeter/v1"
	cfgpkg "github.com/rzbill/greetd/internal/config"
	"github.com/rzbill/greetd/internal/runtime"
	greetersvc "github.com/rzbill/greetd/internal/services/greeter"
	"github.com/rzbill/greetd/pkg/log"
)

const gracePeriod = 5 * time.Second

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	grpc   *grpc.Server
	health *healthSvc
	logger log.Logger

	mu    sync.Mutex
	lis   net.Listener
	bound chan struct{}
}

// New constructs a gRPC server and registers services. Logging and metrics
// interceptors are installed ahead of any caller-supplied options.
func New(rt *runtime.Runtime, svc *greetersvc.Service, logger log.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.WithComponent("grpc")
	obs := &observer{logger: logger, metrics: rt.Metrics()}
	base := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(obs.unary),
		grpc.ChainStreamInterceptor(obs.stream),
	}

	s := &Server{
		rt:     rt,
		grpc:   grpc.NewServer(append(base, opts...)...),
		health: newHealthSvc(rt),
		logger: logger,
		bound:  make(chan struct{}),
	}
	greeterv1.RegisterGreeterServer(s.grpc, &greeterSvc{svc: svc})
	healthpb.RegisterHealthServer(s.grpc, s.health)
	if rt.Config().Reflection {
		reflection.Register(s.grpc)
	}
	return s
}

// TLSOptions returns the server option enabling TLS from PEM files, or no
// options when TLS is not configured.
func TLSOptions(cfg cfgpkg.TLSConfig) ([]grpc.ServerOption, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	creds, err := credentials.NewServerTLSFromFile(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("grpc: load tls: %w", err)
	}
	return []grpc.ServerOption{grpc.Creds(creds)}, nil
}

// Serve serves on an existing listener until the server stops.
func (s *Server) Serve(l net.Listener) error {
	return s.grpc.Serve(l)
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.setListener(l)
	s.logger.Info("grpc listening", log.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close marks the service not serving, ends live feeds, and stops the
// server. Streams still open after the grace period are cut.
func (s *Server) Close() {
	if s.health != nil {
		s.health.Shutdown()
	}
	s.rt.Broadcaster().Close()
	if s.grpc != nil {
		done := make(chan struct{})
		go func() {
			s.grpc.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(gracePeriod):
			s.logger.Warn("graceful stop timed out; closing open streams")
			s.grpc.Stop()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func (s *Server) setListener(l net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		close(s.bound)
	}
	s.lis = l
}

// Addr waits for ListenAndServe to bind and returns the listener address.
// It returns "" if ctx ends first.
func (s *Server) Addr(ctx context.Context) string {
	select {
	case <-s.bound:
	case <-ctx.Done():
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lis.Addr().String()
}
