package rag

import (
	"errors"
	"sync"
)

// Errors returned by ResultSink.
var (
	ErrAlreadyDelivered = errors.New("rag: result already delivered")
	ErrSessionClosed    = errors.New("rag: session closed")
)

// ResultSink is a single-use delivery channel for a tool-call result.
// It guarantees the underlying send runs at most once, and turns delivery
// after session teardown into a safe discard instead of a write to a dead
// connection.
type ResultSink struct {
	mu        sync.Mutex
	delivered bool
	closed    bool
	send      func(result string) error
}

// NewResultSink wraps a send function, typically the orchestrator's
// SubmitToolResult bound to a call ID.
func NewResultSink(send func(result string) error) *ResultSink {
	return &ResultSink{send: send}
}

// Deliver sends the result exactly once. A second call returns
// ErrAlreadyDelivered; a call after Close returns ErrSessionClosed and the
// result is discarded.
func (s *ResultSink) Deliver(result string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.delivered {
		s.mu.Unlock()
		return ErrAlreadyDelivered
	}
	s.delivered = true
	send := s.send
	s.mu.Unlock()

	return send(result)
}

// Close marks the session as torn down. Subsequent Deliver calls discard.
func (s *ResultSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
