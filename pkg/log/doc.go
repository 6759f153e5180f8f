// Package log provides greetd's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. It is backed by zap cores so the
// same call sites can emit console text, JSON or logfmt.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat(log.FormatText),
//	)
//	l = l.With(log.Component("relay"), log.Str("session", "s-1"))
//	l.Info("stream opened", log.Int("buffer", 128))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config (level, format,
// output path).
//
// # Interop
//
// Libraries writing through the standard library logger (Pebble, net/http)
// can be captured with RedirectStdLog.
package log
