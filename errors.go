package callo

import (
	"github.com/rishikanchi/Callo/assistant"
	"github.com/rishikanchi/Callo/gateway"
	"github.com/rishikanchi/Callo/internal/shardqueue"
	"github.com/rishikanchi/Callo/store"
)

// Shared sentinel errors re-exported so callers compare against a single
// symbol.
var (
	// ErrNotFound reports that a backend lookup matched no row.
	ErrNotFound = gateway.ErrNotFound

	// ErrNoUser reports that an operation needing a signed-in user ran
	// without one.
	ErrNoUser = store.ErrNoUser

	// ErrConversationNotFound reports an unknown conversation id.
	ErrConversationNotFound = assistant.ErrConversationNotFound

	// ErrBackPressure reports that the background queue rejected a job
	// because its shard stayed full past the enqueue timeout.
	ErrBackPressure = shardqueue.ErrQueueFull
)
