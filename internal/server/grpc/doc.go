// Package grpcserver hosts the greetd gRPC server, registering the Greeter,
// Health and (optionally) reflection services and delegating to the shared
// services layer.
//
// Example:
//
//	rt, _ := runtime.Open(ctx, runtime.Options{Config: config.Default()})
//	svc := greetersvc.New(rt)
//	s := grpcserver.New(rt, svc, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
