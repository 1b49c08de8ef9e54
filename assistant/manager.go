// Package assistant manages multi-turn AI conversations: it multiplexes
// independent message histories, pins per-conversation system directives
// built from productivity-data snapshots, and drives the completion client.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rishikanchi/Callo/completion"
	"github.com/rishikanchi/Callo/internal/shardqueue"
	"github.com/rishikanchi/Callo/internal/types"
)

// ErrConversationNotFound reports an unknown conversation id. Every
// conversation-addressed operation fails with it rather than silently
// no-opping.
var ErrConversationNotFound = errors.New("assistant: conversation not found")

// Completer is the completion client surface the manager needs.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (*completion.Response, error)
}

// Executor serializes chat turns per conversation.
type Executor interface {
	Submit(ctx context.Context, key string, job shardqueue.Job) error
}

// Manager owns zero or more independent conversations. Safe for concurrent
// use; chat turns against the same conversation are serialized, turns against
// different conversations may run in parallel.
type Manager struct {
	client Completer
	exec   Executor // nil runs chat turns inline
	log    zerolog.Logger

	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// Option configures a Manager during construction.
type Option func(*Manager)

// WithExecutor routes chat turns through the given runner, keyed by
// conversation id.
func WithExecutor(exec Executor) Option {
	return func(m *Manager) { m.exec = exec }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager constructs a Manager backed by the given completion client.
func NewManager(client Completer, opts ...Option) *Manager {
	m := &Manager{
		client:        client,
		log:           zerolog.Nop(),
		conversations: make(map[string]*Conversation),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewConversation allocates a fresh conversation and returns its id. A
// non-empty systemContext is pinned as the sole starting message.
func (m *Manager) NewConversation(systemContext string) string {
	id := newConversationID()
	conv := newConversation()
	if systemContext != "" {
		conv.PinSystem(systemContext, time.Now())
	}
	m.mu.Lock()
	m.conversations[id] = conv
	m.mu.Unlock()
	m.log.Debug().Str("conversation_id", id).Msg("conversation created")
	return id
}

// NewConversationFromSnapshot allocates a conversation pinned to a rendered
// data snapshot, preserving the snapshot's build time for staleness
// reporting.
func (m *Manager) NewConversationFromSnapshot(cs ContextSnapshot) string {
	id := newConversationID()
	conv := newConversation()
	conv.PinSystem(cs.Text, cs.BuiltAt)
	m.mu.Lock()
	m.conversations[id] = conv
	m.mu.Unlock()
	return id
}

// SetSystemContext replaces the conversation's system directive with exactly
// one system message carrying text.
func (m *Manager) SetSystemContext(id, text string) error {
	conv, err := m.lookup(id)
	if err != nil {
		return err
	}
	conv.PinSystem(text, time.Now())
	return nil
}

// SystemContext returns the pinned directive and the time it was built, so
// callers can judge how stale the underlying data snapshot is.
func (m *Manager) SystemContext(id string) (text string, builtAt time.Time, err error) {
	conv, err := m.lookup(id)
	if err != nil {
		return "", time.Time{}, err
	}
	text, builtAt, _ = conv.SystemContext()
	return text, builtAt, nil
}

// AskQuestion is a stateless one-shot: a single user message with no history,
// no conversation touched.
func (m *Manager) AskQuestion(ctx context.Context, question, model string, temperature float64) (string, error) {
	resp, err := m.client.Complete(ctx, completion.NewRequest(
		model,
		[]types.Message{{Role: types.RoleUser, Content: question}},
		temperature,
	))
	if err != nil {
		return "", fmt.Errorf("ask question: %w", err)
	}
	reply, err := resp.FirstChoice()
	if err != nil {
		return "", fmt.Errorf("ask question: %w", err)
	}
	return reply, nil
}

// Chat appends a user turn to the conversation, sends the entire ordered log
// to the completion client, appends the reply as an assistant turn and
// returns it. Turns for the same conversation never interleave. On completion
// failure the user turn stays in the log and the error is returned wrapped.
func (m *Manager) Chat(ctx context.Context, id, userMessage, model string, temperature float64) (string, error) {
	conv, err := m.lookup(id)
	if err != nil {
		return "", err
	}

	type outcome struct {
		reply string
		err   error
	}
	done := make(chan outcome, 1)
	turn := shardqueue.JobFunc(func(ctx context.Context) error {
		reply, err := m.runTurn(ctx, conv, userMessage, model, temperature)
		done <- outcome{reply, err}
		// The error is delivered to the waiting caller; the queue only
		// provides ordering here, so it must not retry on its own.
		return nil
	})

	if m.exec != nil {
		if err := m.exec.Submit(ctx, id, turn); err != nil {
			return "", fmt.Errorf("chat: %w", err)
		}
	} else {
		_ = turn.Run(ctx)
	}

	select {
	case out := <-done:
		if out.err != nil {
			return "", fmt.Errorf("chat: %w", out.err)
		}
		return out.reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// History returns the conversation's ordered message log.
func (m *Manager) History(id string) ([]types.Message, error) {
	conv, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return conv.Messages(), nil
}

// Clear empties the conversation's log, pinned system directive included,
// leaving the conversation alive.
func (m *Manager) Clear(id string) error {
	conv, err := m.lookup(id)
	if err != nil {
		return err
	}
	conv.Clear()
	return nil
}

// Delete removes the conversation entirely. Deleting an unknown id is a
// no-op; deletion is idempotent.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.conversations, id)
	m.mu.Unlock()
}

// ------------------------------
// internals
// ------------------------------

func (m *Manager) lookup(id string) (*Conversation, error) {
	m.mu.RLock()
	conv, ok := m.conversations[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	return conv, nil
}

func (m *Manager) runTurn(ctx context.Context, conv *Conversation, userMessage, model string, temperature float64) (string, error) {
	conv.Append(types.RoleUser, userMessage)

	resp, err := m.client.Complete(ctx, completion.NewRequest(model, conv.Messages(), temperature))
	if err != nil {
		return "", err
	}
	reply, err := resp.FirstChoice()
	if err != nil {
		return "", err
	}
	conv.Append(types.RoleAssistant, reply)
	return reply, nil
}

// newConversationID builds an id from the wall clock plus a UUID-derived
// tie-breaker, unique for all practical purposes within and across processes.
func newConversationID() string {
	return fmt.Sprintf("conv-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
