// Package httpserver provides a small REST gateway for greetd: health, JSON
// send and list endpoints, an SSE live feed and the Prometheus scrape target.
//
// Example:
//
//	rt, _ := runtime.Open(ctx, runtime.Options{Config: config.Default()})
//	s := httpserver.New(rt, greetersvc.New(rt), logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
