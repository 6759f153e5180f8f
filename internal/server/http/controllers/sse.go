package controllers

import (
	"context"
	"encoding/json"
	"net/http"
)

// sseSink implements relay.Sink for Server-Sent Events.
//
// It formats each broadcast as an SSE data event for real-time streaming
// to web clients.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send formats and sends a greeting as an SSE data event.
//
// The greeting is JSON-encoded and sent with the "data: " prefix followed by
// two newlines as required by the SSE specification.
func (s sseSink) Send(text string) error {
	b, err := json.Marshal(messageResp{Message: text})
	if err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	return nil
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}

// Flush flushes the HTTP response writer if it supports flushing.
//
// This ensures that SSE events are immediately sent to the client.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
