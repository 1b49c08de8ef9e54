package store

import "sync"

// Stream is a behavior-subject style observable: a subscriber receives the
// current value immediately and every value published afterwards. Slow
// subscribers are conflated to the latest value rather than blocking
// publishers, which is the right trade for UI state.
type Stream[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]chan T
	nextID int
}

func newStream[T any](initial T) *Stream[T] {
	return &Stream[T]{value: initial, subs: make(map[int]chan T)}
}

// Value returns the most recently published value.
func (s *Stream[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe registers an observer. The returned channel carries the current
// value immediately, then every subsequent publish; the cancel func removes
// the subscription and closes the channel.
func (s *Stream[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan T, 1)
	ch <- s.value
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// publish replaces the current value and fans it out. Publishing is
// serialised under the stream mutex, so the drop-then-send below never
// blocks: each channel has capacity one and a single producer.
func (s *Stream[T]) publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}
