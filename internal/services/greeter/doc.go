// Package greetersvc implements the greeter operations on top of the runtime:
// unary and streaming sends, the persisted history and the live feed. It is
// transport-agnostic; the gRPC and HTTP servers adapt their streams to the
// relay.Inbound and relay.Sink interfaces.
package greetersvc
