// Package runtime wires the message store, the broadcaster, config and
// metrics into a single-node greetd instance. It exposes Open/Close and a
// health check used by the gRPC and HTTP health endpoints.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(ctx, runtime.Options{Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(ctx)
//	_, _ = rt.Store().Append(ctx, "Hello Alice!")
//	rt.Broadcaster().Publish("Hello Alice!")
package runtime
