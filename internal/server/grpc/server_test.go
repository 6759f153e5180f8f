package grpcserver

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	rpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	greeterv1 "github.com/rzbill/greetd/api/greeter/v1"
	cfgpkg "github.com/rzbill/greetd/internal/config"
	"github.com/rzbill/greetd/internal/msgstore"
	"github.com/rzbill/greetd/internal/runtime"
	greetersvc "github.com/rzbill/greetd/internal/services/greeter"
)

const bufSize = 1 << 20

type harness struct {
	rt   *runtime.Runtime
	conn *grpc.ClientConn
}

func start(t *testing.T, store msgstore.Store) *harness {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.DataDir = t.TempDir()
	rt, err := runtime.Open(context.Background(), runtime.Options{Config: cfg, Store: store})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	srv := New(rt, greetersvc.New(rt), nil)

	lis := bufconn.Listen(bufSize)
	go func() { _ = srv.Serve(lis) }()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Close()
		_ = rt.Close()
	})
	return &harness{rt: rt, conn: conn}
}

func (h *harness) waitSubscribers(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.rt.Broadcaster().Subscribers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers = %d, want %d", h.rt.Broadcaster().Subscribers(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealthOverGRPC(t *testing.T) {
	h := start(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := healthpb.NewHealthClient(h.conn)
	for _, svc := range []string{"", "greeter.v1.Greeter"} {
		res, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
		if err != nil {
			t.Fatalf("check %q: %v", svc, err)
		}
		if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("check %q status = %v", svc, res.GetStatus())
		}
	}
}

func TestSendMessageThenList(t *testing.T) {
	h := start(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := greeterv1.NewGreeterClient(h.conn)

	res, err := c.SendMessage(ctx, greeterv1.NewSendMessageRequest("Alice"))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.GetMessage() != "Hello Alice!" {
		t.Fatalf("message = %q", res.GetMessage())
	}
	list, err := c.ListMessages(ctx, new(greeterv1.ListMessagesRequest))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello Alice!"}, list.GetMessages()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestAliceBobStreamReachesWatcher(t *testing.T) {
	h := start(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := greeterv1.NewGreeterClient(h.conn)

	watch, err := c.ListMessagesStream(ctx, new(greeterv1.ListMessagesRequest))
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	h.waitSubscribers(t, 1)

	chat, err := c.SendMessageStream(ctx)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	for _, name := range []string{"Alice", "Bob"} {
		if err := chat.Send(greeterv1.NewSendMessageRequest(name)); err != nil {
			t.Fatalf("send %s: %v", name, err)
		}
	}
	if err := chat.CloseSend(); err != nil {
		t.Fatalf("close send: %v", err)
	}
	var acks []string
	for {
		res, err := chat.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("recv ack: %v", err)
		}
		acks = append(acks, res.GetMessage())
	}
	want := []string{"Hello Alice!", "Hello Bob!"}
	if diff := cmp.Diff(want, acks); diff != "" {
		t.Fatalf("acks mismatch (-want +got):\n%s", diff)
	}

	var seen []string
	for len(seen) < 2 {
		res, err := watch.Recv()
		if err != nil {
			t.Fatalf("watch recv: %v", err)
		}
		seen = append(seen, res.GetMessage())
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("watcher mismatch (-want +got):\n%s", diff)
	}

	list, err := c.ListMessages(ctx, new(greeterv1.ListMessagesRequest))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff(want, list.GetMessages()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcherGetsNoReplay(t *testing.T) {
	h := start(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := greeterv1.NewGreeterClient(h.conn)

	if _, err := c.SendMessage(ctx, greeterv1.NewSendMessageRequest("Early")); err != nil {
		t.Fatalf("send: %v", err)
	}
	watch, err := c.ListMessagesStream(ctx, new(greeterv1.ListMessagesRequest))
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	h.waitSubscribers(t, 1)
	if _, err := c.SendMessage(ctx, greeterv1.NewSendMessageRequest("Late")); err != nil {
		t.Fatalf("send: %v", err)
	}
	res, err := watch.Recv()
	if err != nil {
		t.Fatalf("watch recv: %v", err)
	}
	if res.GetMessage() != "Hello Late!" {
		t.Fatalf("first broadcast = %q, want Hello Late!", res.GetMessage())
	}
}

func TestWatcherDisconnectUnsubscribes(t *testing.T) {
	h := start(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	c := greeterv1.NewGreeterClient(h.conn)

	if _, err := c.ListMessagesStream(ctx, new(greeterv1.ListMessagesRequest)); err != nil {
		t.Fatalf("watch: %v", err)
	}
	h.waitSubscribers(t, 1)
	cancel()
	h.waitSubscribers(t, 0)
}

type brokenStore struct{}

func (brokenStore) Append(context.Context, string) (msgstore.Message, error) {
	return msgstore.Message{}, errors.New("connection refused")
}
func (brokenStore) List(context.Context) ([]msgstore.Message, error) {
	return nil, errors.New("connection refused")
}
func (brokenStore) Ping(context.Context) error { return errors.New("connection refused") }
func (brokenStore) Close() error               { return nil }

func TestStoreFailures(t *testing.T) {
	h := start(t, brokenStore{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := greeterv1.NewGreeterClient(h.conn)

	res, err := c.SendMessage(ctx, greeterv1.NewSendMessageRequest("Alice"))
	if err != nil {
		t.Fatalf("send should succeed despite store failure: %v", err)
	}
	if res.GetMessage() != "Hello Alice!" {
		t.Fatalf("message = %q", res.GetMessage())
	}
	if _, err := c.ListMessages(ctx, new(greeterv1.ListMessagesRequest)); status.Code(err) != codes.Internal {
		t.Fatalf("list err = %v, want Internal", err)
	}
	hc, err := healthpb.NewHealthClient(h.conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if hc.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("health = %v, want NOT_SERVING", hc.GetStatus())
	}
}

func TestReflectionListsGreeter(t *testing.T) {
	h := start(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stream, err := rpb.NewServerReflectionClient(h.conn).ServerReflectionInfo(ctx)
	if err != nil {
		t.Fatalf("reflection: %v", err)
	}
	if err := stream.Send(&rpb.ServerReflectionRequest{
		MessageRequest: &rpb.ServerReflectionRequest_ListServices{ListServices: ""},
	}); err != nil {
		t.Fatalf("send: %v", err)
	}
	res, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	found := false
	for _, svc := range res.GetListServicesResponse().GetService() {
		if svc.GetName() == "greeter.v1.Greeter" {
			found = true
		}
	}
	if !found {
		t.Fatalf("greeter.v1.Greeter not listed: %v", res.GetListServicesResponse())
	}
}
