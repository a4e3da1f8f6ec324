// Package stream provides the live output stream attached to a running
// command. A Stream is created by the process that owns the command and is
// borrowed by its session for the lifetime of the execution.
package stream

import (
	"errors"
	"strings"
	"sync"
)

// ErrClosed is returned when writing to a closed stream.
var ErrClosed = errors.New("stream: closed")

// Stream accumulates command output and signals readers when data arrives.
type Stream struct {
	mu      sync.Mutex
	buf     strings.Builder
	closed  bool
	updates chan struct{}
	done    chan struct{}
}

// New creates an open, empty stream.
func New() *Stream {
	return &Stream{
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Write appends a chunk of output. Implements io.Writer for use with
// command pipes and file tails.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	s.buf.Write(p)
	s.mu.Unlock()

	// Coalesce: one pending signal is enough.
	select {
	case s.updates <- struct{}{}:
	default:
	}
	return len(p), nil
}

// Text returns everything written so far.
func (s *Stream) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Len returns the number of bytes written so far.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// Updates signals when new data has been written. Signals are coalesced;
// after receiving one, read Text and compare against what was already seen.
func (s *Stream) Updates() <-chan struct{} {
	return s.updates
}

// Done is closed when the stream is closed.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Close marks the end of the stream. Further writes fail with ErrClosed.
// Close is idempotent.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Closed reports whether the stream has ended.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
