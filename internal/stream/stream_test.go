package stream

import (
	"testing"
	"time"
)

func TestStreamWriteAndText(t *testing.T) {
	s := New()
	if s.Text() != "" {
		t.Fatalf("new stream not empty: %q", s.Text())
	}

	if _, err := s.Write([]byte("hello ")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.Write([]byte("world")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := s.Text(); got != "hello world" {
		t.Errorf("Text = %q, want %q", got, "hello world")
	}
	if got := s.Len(); got != len("hello world") {
		t.Errorf("Len = %d, want %d", got, len("hello world"))
	}
}

func TestStreamUpdateSignal(t *testing.T) {
	s := New()
	s.Write([]byte("a"))
	s.Write([]byte("b")) // coalesced with the first signal

	select {
	case <-s.Updates():
	case <-time.After(time.Second):
		t.Fatal("expected an update signal")
	}
	if got := s.Text(); got != "ab" {
		t.Errorf("Text = %q, want %q", got, "ab")
	}
}

func TestStreamClose(t *testing.T) {
	s := New()
	if s.Closed() {
		t.Fatal("new stream reports closed")
	}
	s.Close()
	s.Close() // idempotent
	if !s.Closed() {
		t.Fatal("stream not closed after Close")
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel not closed")
	}

	if _, err := s.Write([]byte("x")); err != ErrClosed {
		t.Errorf("write after close: err = %v, want ErrClosed", err)
	}
}
