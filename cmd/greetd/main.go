package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/greetd/internal/cmd/client"
	serverrun "github.com/rzbill/greetd/internal/cmd/server"
	cfgpkg "github.com/rzbill/greetd/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "greetd",
		Short:         "greetd greeter service CLI",
		Long:          "greetd serves the Greeter gRPC API with a live feed, and talks to a running server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverCmd.AddCommand(newServerStartCommand())
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(clientcmd.Commands()...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(1)
	}
}

func newServerStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Short:   "Start greetd server (gRPC and HTTP)",
		Aliases: []string{"run"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(path)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			applyFlags(cmd, &cfg)
			if err := serverrun.Run(cmd.Context(), serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("config", os.Getenv("GREETD_CONFIG"), "Config file (.json, .yaml or .yml)")
	f.String("grpc", "", "gRPC listen address (default :50051)")
	f.String("http", "", "HTTP listen address (default :8080; \"-\" disables the gateway)")
	f.String("store", "", "Store URL: a Pebble directory, sqlite://PATH or postgres://...")
	f.String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	f.String("fsync", "", "Fsync mode for Pebble: always|interval|never")
	f.String("log-level", "", "Log level: debug|info|warn|error")
	f.String("log-format", "", "Log format: text|json|logfmt")
	f.String("tls-cert", "", "PEM certificate; enables TLS with --tls-key")
	f.String("tls-key", "", "PEM private key")
	f.Bool("reflection", true, "Register the gRPC reflection service")
	f.Int("subscriber-buffer", 0, "Per-subscriber live feed buffer")
	return cmd
}

// applyFlags overlays flags the user set explicitly; file and env values
// survive otherwise.
func applyFlags(cmd *cobra.Command, cfg *cfgpkg.Config) {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("grpc", &cfg.GRPCAddr)
	str("http", &cfg.HTTPAddr)
	if cfg.HTTPAddr == "-" {
		cfg.HTTPAddr = ""
	}
	str("store", &cfg.StoreURL)
	str("data-dir", &cfg.DataDir)
	str("fsync", &cfg.Fsync)
	str("log-level", &cfg.Log.Level)
	str("log-format", &cfg.Log.Format)
	str("tls-cert", &cfg.TLS.CertFile)
	str("tls-key", &cfg.TLS.KeyFile)
	if f.Changed("reflection") {
		cfg.Reflection, _ = f.GetBool("reflection")
	}
	if f.Changed("subscriber-buffer") {
		cfg.Broadcast.SubscriberBuffer, _ = f.GetInt("subscriber-buffer")
	}
}
