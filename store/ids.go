package store

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// idSource hands out process-unique positive identities for locally created
// items. The counter is seeded from UUID entropy so two processes sharing a
// backend are unlikely to collide, and incremented atomically so one process
// never can.
type idSource struct {
	counter atomic.Int64
}

func newIDSource() *idSource {
	s := &idSource{}
	// Keep well inside int32 range; the backend's id columns are integers.
	s.counter.Store(int64(uuid.New().ID() % 1_000_000_000))
	return s
}

func (s *idSource) Next() int {
	return int(s.counter.Add(1))
}
