package msgstore

import (
	"context"
	"time"
)

// OpMetrics observes the latency and outcome of store operations.
type OpMetrics interface {
	ObserveStoreOp(op string, elapsed time.Duration, err error)
}

// Instrument wraps s so every Append and List is reported to m.
func Instrument(s Store, m OpMetrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, m: m}
}

type instrumented struct {
	Store
	m OpMetrics
}

func (s *instrumented) Append(ctx context.Context, text string) (Message, error) {
	start := time.Now()
	msg, err := s.Store.Append(ctx, text)
	s.m.ObserveStoreOp("append", time.Since(start), err)
	return msg, err
}

func (s *instrumented) List(ctx context.Context) ([]Message, error) {
	start := time.Now()
	msgs, err := s.Store.List(ctx)
	s.m.ObserveStoreOp("list", time.Since(start), err)
	return msgs, err
}
