package events

import (
	"testing"
)

func TestBusSubscribePublish(t *testing.T) {
	bus := NewBus(10)

	var got []Event
	bus.Subscribe(KindCommandSubmitted, func(e Event) {
		got = append(got, e)
	})

	bus.Publish(NewCommandSubmitted(1, "ls -la", ""))
	bus.Publish(NewStreamOpened(1)) // different kind, not delivered

	if len(got) != 1 {
		t.Fatalf("received %d events, want 1", len(got))
	}
	cs, ok := got[0].(CommandSubmitted)
	if !ok {
		t.Fatalf("event type = %T, want CommandSubmitted", got[0])
	}
	if cs.Command != "ls -la" || cs.EventSession() != 1 {
		t.Errorf("unexpected event payload: %+v", cs)
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus(10)

	count := 0
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(NewCommandSubmitted(1, "pwd", ""))
	bus.Publish(NewCommandCompleted(1, 0, true))
	bus.Publish(NewRunFailed(2, nil))

	if count != 3 {
		t.Errorf("wildcard handler saw %d events, want 3", count)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(10)

	count := 0
	unsub := bus.Subscribe(KindStreamOpened, func(Event) { count++ })

	bus.Publish(NewStreamOpened(1))
	unsub()
	bus.Publish(NewStreamOpened(1))

	if count != 1 {
		t.Errorf("handler ran %d times, want 1", count)
	}
	if n := bus.SubscriberCount(KindStreamOpened); n != 0 {
		t.Errorf("subscriber count = %d, want 0", n)
	}
}

func TestBusHistoryNewestFirst(t *testing.T) {
	bus := NewBus(3)

	for i := 0; i < 5; i++ {
		bus.Publish(NewCommandCompleted(i, 0, false))
	}

	hist := bus.History(0)
	if len(hist) != 3 {
		t.Fatalf("history length = %d, want 3 (capped)", len(hist))
	}
	// Newest first: sessions 4, 3, 2.
	for i, want := range []int{4, 3, 2} {
		if hist[i].EventSession() != want {
			t.Errorf("history[%d].session = %d, want %d", i, hist[i].EventSession(), want)
		}
	}
}

func TestBusHistoryLimit(t *testing.T) {
	bus := NewBus(10)
	for i := 0; i < 4; i++ {
		bus.Publish(NewStreamOpened(i))
	}
	if got := len(bus.History(2)); got != 2 {
		t.Errorf("History(2) length = %d, want 2", got)
	}
}
