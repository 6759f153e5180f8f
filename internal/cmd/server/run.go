package serverrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	cfgpkg "github.com/rzbill/greetd/internal/config"
	"github.com/rzbill/greetd/internal/runtime"
	grpcserver "github.com/rzbill/greetd/internal/server/grpc"
	httpserver "github.com/rzbill/greetd/internal/server/http"
	greetersvc "github.com/rzbill/greetd/internal/services/greeter"
	logpkg "github.com/rzbill/greetd/pkg/log"
)

type Options struct {
	Config cfgpkg.Config
	// Logger overrides the logger built from Config.Log.
	Logger logpkg.Logger
	// Ready, when set, is called with the bound addresses once both
	// listeners are up.
	Ready func(grpcAddr, httpAddr string)
}

// Run starts the gRPC server and, when an HTTP address is configured, the
// HTTP gateway. It blocks until ctx is cancelled or a server fails.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if cfg.DataDir == "" {
		cfg.DataDir = cfgpkg.DefaultDataDir()
	}
	if cfg.StoreURL == "" {
		cfg.StoreURL = filepath.Join(cfg.DataDir, "store")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = logpkg.ApplyConfig(&cfg.Log); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}
	// Pebble and net/http report through the standard logger.
	restore := logpkg.RedirectStdLog(logger)
	defer restore()

	grpcOpts, err := grpcserver.TLSOptions(cfg.TLS)
	if err != nil {
		return err
	}

	rt, err := runtime.Open(sctx, runtime.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("runtime close", logpkg.Err(err))
		}
	}()

	logger.Info("Starting greetd server",
		logpkg.Str("grpc", cfg.GRPCAddr),
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Bool("tls", cfg.TLS.Enabled()),
		logpkg.Bool("reflection", cfg.Reflection),
		logpkg.Int("subscriber_buffer", cfg.Broadcast.SubscriberBuffer),
		logpkg.Str("level", cfg.Log.Level),
		logpkg.Str("format", cfg.Log.Format),
	)

	svc := greetersvc.New(rt)
	gsrv := grpcserver.New(rt, svc, logger, grpcOpts...)
	var hsrv *httpserver.Server
	if cfg.HTTPAddr != "" {
		hsrv = httpserver.New(rt, svc, logger)
	}

	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		if err := gsrv.ListenAndServe(gctx, cfg.GRPCAddr); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	if hsrv != nil {
		g.Go(func() error {
			if err := hsrv.ListenAndServe(gctx, cfg.HTTPAddr); err != nil {
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
	}
	if opts.Ready != nil {
		g.Go(func() error {
			grpcAddr := gsrv.Addr(gctx)
			httpAddr := ""
			if hsrv != nil {
				httpAddr = hsrv.Addr(gctx)
			}
			if gctx.Err() == nil {
				opts.Ready(grpcAddr, httpAddr)
			}
			return nil
		})
	}
	err = g.Wait()
	logger.Info("greetd server stopped")
	return err
}
