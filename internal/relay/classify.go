package relay

import (
	"io"
	"syscall"

	"golang.org/x/net/http2"
)

// Class is the disposition of an inbound stream error.
type Class int

const (
	// Propagate means the error ends the session and is reported to the peer.
	Propagate Class = iota
	// BenignDisconnect means the peer went away uncleanly; the session ends
	// quietly.
	BenignDisconnect
)

func (c Class) String() string {
	switch c {
	case BenignDisconnect:
		return "benign-disconnect"
	default:
		return "propagate"
	}
}

// maxCauses bounds the cause walk so cyclic or very deep chains terminate.
const maxCauses = 64

// Classify decides whether err is a benign client disconnect. It searches the
// cause graph of err breadth-first for the first low-level I/O fault; only a
// broken pipe, a connection reset or a closed pipe is benign.
func Classify(err error) Class {
	if err == nil {
		return Propagate
	}
	fault := firstIOFault(err)
	if fault != nil && isPeerGone(fault) {
		return BenignDisconnect
	}
	return Propagate
}

func firstIOFault(err error) error {
	queue := []error{err}
	for visited := 0; len(queue) > 0 && visited < maxCauses; visited++ {
		e := queue[0]
		queue = queue[1:]
		if isIOFault(e) {
			return e
		}
		queue = append(queue, causes(e)...)
	}
	return nil
}

// causes returns the errors directly wrapped by err.
func causes(err error) []error {
	switch e := err.(type) {
	case http2.StreamError:
		return nonNil(e.Cause)
	case *http2.StreamError:
		if e == nil {
			return nil
		}
		return nonNil(e.Cause)
	case interface{ Unwrap() []error }:
		return e.Unwrap()
	case interface{ Unwrap() error }:
		return nonNil(e.Unwrap())
	}
	return nil
}

func nonNil(err error) []error {
	if err == nil {
		return nil
	}
	return []error{err}
}

func isIOFault(err error) bool {
	if errno, ok := err.(syscall.Errno); ok {
		return errno != 0
	}
	return err == io.ErrClosedPipe
}

func isPeerGone(fault error) bool {
	switch fault {
	case syscall.EPIPE, syscall.ECONNRESET, io.ErrClosedPipe:
		return true
	}
	return false
}
