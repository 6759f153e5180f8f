// Package client provides the greetd command-line client.
//
// The CLI talks to the greetd gRPC endpoint or its HTTP gateway to exercise
// the greeter from a terminal.
//
// # Address configuration
//
// The gRPC address comes from --addr, then GREETD_GRPC (default
// 127.0.0.1:50051). The HTTP base URL comes from --url, then GREETD_HTTP
// (default http://127.0.0.1:8080). --ca-file enables TLS for gRPC.
//
// Usage
//
//	greetd send Alice
//	greetd send Alice --transport http -o json
//
//	# one session; names from args or stdin
//	greetd chat Alice Bob
//	printf 'Alice\nBob\n' | greetd chat
//
//	greetd list -o json
//
//	# follow the live feed; only greetings published after connecting
//	greetd watch --limit 5
//
// Notes
//
//   - chat over --transport http posts each name separately.
//   - watch over --transport http reads the SSE feed at /v1/messages/stream.
package client
