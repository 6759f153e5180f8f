package client

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"

	greeterv1 "github.com/rzbill/greetd/api/greeter/v1"
	"github.com/rzbill/greetd/internal/cmd/client/transports"
)

// grpcAddrFromEnv returns the gRPC server address from GREETD_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("GREETD_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// httpURLFromEnv returns the gateway base URL from GREETD_HTTP or a default.
func httpURLFromEnv() string {
	if u := os.Getenv("GREETD_HTTP"); u != "" {
		return u
	}
	return "http://127.0.0.1:8080"
}

// dialGRPCContext builds a client for the greetd gRPC endpoint. Without a CA
// file the connection is plaintext, for local/dev.
func dialGRPCContext(_ context.Context, addr, caFile string) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if caFile != "" {
		tc, err := credentials.NewClientTLSFromFile(caFile, "")
		if err != nil {
			return nil, fmt.Errorf("load ca: %w", err)
		}
		creds = tc
	}
	return grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
}

func addConnFlags(cmd *cobra.Command) {
	cmd.Flags().String("transport", "grpc", "Transport: grpc|http")
	cmd.Flags().String("addr", "", "gRPC address (default $GREETD_GRPC or 127.0.0.1:50051)")
	cmd.Flags().String("url", "", "HTTP base URL (default $GREETD_HTTP or http://127.0.0.1:8080)")
	cmd.Flags().String("ca-file", "", "PEM CA bundle; enables TLS for gRPC")
	cmd.Flags().StringP("output", "o", "text", "Output format: text|json")
}

// getTransport returns the transport selected by --transport.
func getTransport(cmd *cobra.Command) (transports.GreeterTransport, error) {
	kind, _ := cmd.Flags().GetString("transport")
	switch kind {
	case "grpc", "":
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = grpcAddrFromEnv()
		}
		caFile, _ := cmd.Flags().GetString("ca-file")
		return transports.NewGrpcTransport(func(ctx context.Context) (*grpc.ClientConn, error) {
			return dialGRPCContext(ctx, addr, caFile)
		}), nil
	case "http":
		u, _ := cmd.Flags().GetString("url")
		if u == "" {
			u = httpURLFromEnv()
		}
		return transports.NewHTTPTransport(u, nil), nil
	default:
		return nil, fmt.Errorf("invalid --transport %q; use grpc|http", kind)
	}
}

// printer writes greetings in the format chosen by --output.
type printer func(text string) error

func newPrinter(cmd *cobra.Command) (printer, error) {
	format, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()
	switch format {
	case "text", "":
		return func(text string) error {
			_, err := fmt.Fprintln(out, text)
			return err
		}, nil
	case "json":
		return func(text string) error {
			b, err := protojson.Marshal(greeterv1.NewSendMessageResponse(text))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(b))
			return err
		}, nil
	default:
		return nil, fmt.Errorf("invalid --output %q; use text|json", format)
	}
}

func printList(cmd *cobra.Command, msgs []string) error {
	format, _ := cmd.Flags().GetString("output")
	if format == "json" {
		b, err := protojson.MarshalOptions{Multiline: true, Indent: "  ", EmitUnpopulated: true}.Marshal(greeterv1.NewListMessagesResponse(msgs))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return err
	}
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if err := p(m); err != nil {
			return err
		}
	}
	return nil
}
