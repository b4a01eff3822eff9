package rag

import (
	"errors"
	"sync"
	"testing"
)

func TestResultSinkDeliversOnce(t *testing.T) {
	var got []string
	sink := NewResultSink(func(result string) error {
		got = append(got, result)
		return nil
	})

	if err := sink.Deliver("first"); err != nil {
		t.Fatalf("first Deliver failed: %v", err)
	}
	if err := sink.Deliver("second"); !errors.Is(err, ErrAlreadyDelivered) {
		t.Fatalf("second Deliver = %v, want ErrAlreadyDelivered", err)
	}

	if len(got) != 1 || got[0] != "first" {
		t.Errorf("sent %v, want [first]", got)
	}
}

func TestResultSinkClosedDiscards(t *testing.T) {
	sent := false
	sink := NewResultSink(func(string) error {
		sent = true
		return nil
	})

	sink.Close()
	if err := sink.Deliver("late"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Deliver after Close = %v, want ErrSessionClosed", err)
	}
	if sent {
		t.Error("send ran after Close")
	}
}

func TestResultSinkSendErrorPropagates(t *testing.T) {
	sendErr := errors.New("connection reset")
	sink := NewResultSink(func(string) error { return sendErr })

	if err := sink.Deliver("x"); !errors.Is(err, sendErr) {
		t.Fatalf("Deliver = %v, want send error", err)
	}
	// The attempt consumed the sink even though the send failed.
	if err := sink.Deliver("x"); !errors.Is(err, ErrAlreadyDelivered) {
		t.Fatalf("retry = %v, want ErrAlreadyDelivered", err)
	}
}

func TestResultSinkConcurrentDeliver(t *testing.T) {
	var mu sync.Mutex
	count := 0
	sink := NewResultSink(func(string) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Deliver("race")
		}()
	}
	wg.Wait()

	if count != 1 {
		t.Errorf("send ran %d times, want 1", count)
	}
}
