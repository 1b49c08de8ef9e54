package assistant

import (
	"sync"
	"time"

	"github.com/rishikanchi/Callo/internal/types"
)

// Conversation is an ordered, independently addressable message log with an
// optional pinned system directive. Appends preserve chronology; the only
// structural edit allowed is replacing the system directive.
type Conversation struct {
	mu       sync.Mutex
	messages []types.Message
	pinnedAt time.Time // when the system directive was last set
}

func newConversation() *Conversation {
	return &Conversation{}
}

// Append adds one message to the end of the log.
func (c *Conversation) Append(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, types.Message{Role: role, Content: content})
}

// Messages returns a copy of the ordered log.
func (c *Conversation) Messages() []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Message{}, c.messages...)
}

// Clear empties the log in place, pinned system directive included. The
// conversation itself stays alive.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = c.messages[:0]
	c.pinnedAt = time.Time{}
}

// PinSystem removes every system-role message, then inserts exactly one new
// system message at the head of the log.
func (c *Conversation) PinSystem(content string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]types.Message, 0, len(c.messages)+1)
	kept = append(kept, types.Message{Role: types.RoleSystem, Content: content})
	for _, m := range c.messages {
		if m.Role != types.RoleSystem {
			kept = append(kept, m)
		}
	}
	c.messages = kept
	c.pinnedAt = at
}

// SystemContext returns the pinned directive's content and when it was set;
// ok is false when no system message is present.
func (c *Conversation) SystemContext() (content string, at time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.messages {
		if m.Role == types.RoleSystem {
			return m.Content, c.pinnedAt, true
		}
	}
	return "", time.Time{}, false
}
