package store

import (
	"testing"
	"time"
)

func TestStreamDeliversCurrentValueOnSubscribe(t *testing.T) {
	t.Parallel()
	s := newStream(42)
	ch, cancel := s.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		if v != 42 {
			t.Fatalf("initial value = %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial value delivered")
	}
}

func TestStreamDeliversSubsequentValues(t *testing.T) {
	t.Parallel()
	s := newStream("a")
	ch, cancel := s.Subscribe()
	defer cancel()
	<-ch // initial

	s.publish("b")
	select {
	case v := <-ch:
		if v != "b" {
			t.Fatalf("value = %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("published value not delivered")
	}
}

func TestStreamConflatesWhenSubscriberLags(t *testing.T) {
	t.Parallel()
	s := newStream(0)
	ch, cancel := s.Subscribe()
	defer cancel()

	// Subscriber never reads while three values land; it must observe the
	// latest, not block the publisher.
	s.publish(1)
	s.publish(2)
	s.publish(3)

	var last int
	for {
		select {
		case v := <-ch:
			last = v
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}
	if last != 3 {
		t.Fatalf("last observed = %d, want 3", last)
	}
	if s.Value() != 3 {
		t.Fatalf("Value() = %d", s.Value())
	}
}

func TestStreamCancelClosesChannel(t *testing.T) {
	t.Parallel()
	s := newStream(1)
	ch, cancel := s.Subscribe()
	<-ch
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	// Cancelling twice must not panic.
	cancel()
	s.publish(2)
}
