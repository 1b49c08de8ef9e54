package assistant_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishikanchi/Callo/assistant"
	"github.com/rishikanchi/Callo/completion"
	"github.com/rishikanchi/Callo/internal/shardqueue"
	"github.com/rishikanchi/Callo/internal/types"
	"github.com/rishikanchi/Callo/store"
)

// scriptedCompleter replies with a canned function of the request, recording
// every request it sees.
type scriptedCompleter struct {
	mu       sync.Mutex
	requests []completion.Request
	reply    func(req completion.Request) (*completion.Response, error)
}

func (f *scriptedCompleter) Complete(ctx context.Context, req completion.Request) (*completion.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.reply(req)
}

func (f *scriptedCompleter) seen() []completion.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completion.Request{}, f.requests...)
}

func echoCompleter() *scriptedCompleter {
	return &scriptedCompleter{reply: func(req completion.Request) (*completion.Response, error) {
		last := req.Messages[len(req.Messages)-1]
		return &completion.Response{
			Choices: []completion.Choice{{
				Message: types.Message{Role: types.RoleAssistant, Content: "echo: " + last.Content},
			}},
		}, nil
	}}
}

func TestNewConversationWithContext(t *testing.T) {
	t.Parallel()
	m := assistant.NewManager(echoCompleter())

	id := m.NewConversation("be helpful")
	history, err := m.History(id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, types.RoleSystem, history[0].Role)
	assert.Equal(t, "be helpful", history[0].Content)
}

func TestNewConversationWithoutContext(t *testing.T) {
	t.Parallel()
	m := assistant.NewManager(echoCompleter())

	id := m.NewConversation("")
	history, err := m.History(id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConversationIDsUnique(t *testing.T) {
	t.Parallel()
	m := assistant.NewManager(echoCompleter())
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := m.NewConversation("")
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSetSystemContextIdempotent(t *testing.T) {
	t.Parallel()
	m := assistant.NewManager(echoCompleter())
	id := m.NewConversation("old directive")

	require.NoError(t, m.SetSystemContext(id, "new directive"))
	require.NoError(t, m.SetSystemContext(id, "new directive"))

	history, err := m.History(id)
	require.NoError(t, err)
	systems := 0
	for _, msg := range history {
		if msg.Role == types.RoleSystem {
			systems++
			assert.Equal(t, "new directive", msg.Content)
		}
	}
	assert.Equal(t, 1, systems)
}

func TestSetSystemContextKeepsOtherTurns(t *testing.T) {
	t.Parallel()
	m := assistant.NewManager(echoCompleter())
	id := m.NewConversation("v1")
	_, err := m.Chat(context.Background(), id, "hello", "llama3.1-8b", 0)
	require.NoError(t, err)

	require.NoError(t, m.SetSystemContext(id, "v2"))
	history, err := m.History(id)
	require.NoError(t, err)
	require.Len(t, history, 3) // system + user + assistant
	assert.Equal(t, "v2", history[0].Content)
	assert.Equal(t, types.RoleUser, history[1].Role)
}

func TestChatAppendsUserThenAssistant(t *testing.T) {
	t.Parallel()
	fc := echoCompleter()
	m := assistant.NewManager(fc)
	id := m.NewConversation("S")

	reply, err := m.Chat(context.Background(), id, "hi", "llama3.1-8b", 0)
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", reply)

	history, err := m.History(id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []types.Message{
		{Role: types.RoleSystem, Content: "S"},
		{Role: types.RoleUser, Content: "hi"},
		{Role: types.RoleAssistant, Content: "echo: hi"},
	}, history)

	// The full ordered log, pinned directive included, went out on the wire.
	reqs := fc.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, history[:2], reqs[0].Messages)
}

func TestChatFailureKeepsUserTurn(t *testing.T) {
	t.Parallel()
	fc := &scriptedCompleter{reply: func(completion.Request) (*completion.Response, error) {
		return nil, &completion.Error{Message: "status 503: overloaded"}
	}}
	m := assistant.NewManager(fc)
	id := m.NewConversation("")

	_, err := m.Chat(context.Background(), id, "hi", "llama3.1-8b", 0)
	require.Error(t, err)
	var ce *completion.Error
	assert.ErrorAs(t, err, &ce)

	history, herr := m.History(id)
	require.NoError(t, herr)
	require.Len(t, history, 1)
	assert.Equal(t, types.RoleUser, history[0].Role)
}

func TestChatEmptyChoices(t *testing.T) {
	t.Parallel()
	fc := &scriptedCompleter{reply: func(completion.Request) (*completion.Response, error) {
		return &completion.Response{}, nil
	}}
	m := assistant.NewManager(fc)
	id := m.NewConversation("")

	_, err := m.Chat(context.Background(), id, "hi", "llama3.1-8b", 0)
	assert.ErrorIs(t, err, completion.ErrNoChoices)
}

func TestUnknownConversationID(t *testing.T) {
	t.Parallel()
	m := assistant.NewManager(echoCompleter())

	_, err := m.History("conv-0-missing")
	assert.ErrorIs(t, err, assistant.ErrConversationNotFound)

	assert.ErrorIs(t, m.SetSystemContext("conv-0-missing", "x"), assistant.ErrConversationNotFound)
	assert.ErrorIs(t, m.Clear("conv-0-missing"), assistant.ErrConversationNotFound)

	_, err = m.Chat(context.Background(), "conv-0-missing", "hi", "llama3.1-8b", 0)
	assert.ErrorIs(t, err, assistant.ErrConversationNotFound)
}

func TestAskQuestionStateless(t *testing.T) {
	t.Parallel()
	fc := echoCompleter()
	m := assistant.NewManager(fc)

	reply, err := m.AskQuestion(context.Background(), "what day is it?", "llama3.1-8b", 0)
	require.NoError(t, err)
	assert.Equal(t, "echo: what day is it?", reply)

	reqs := fc.seen()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 1)
	assert.Equal(t, types.RoleUser, reqs[0].Messages[0].Role)
}

func TestDeleteConversation(t *testing.T) {
	t.Parallel()
	m := assistant.NewManager(echoCompleter())
	id := m.NewConversation("x")

	m.Delete(id)
	_, err := m.History(id)
	assert.ErrorIs(t, err, assistant.ErrConversationNotFound)

	// Deleting again is a no-op.
	m.Delete(id)
}

// End to end: system context, one chat turn, then clear drops everything
// including the pinned directive.
func TestConversationLifecycle(t *testing.T) {
	t.Parallel()
	m := assistant.NewManager(echoCompleter())
	id := m.NewConversation("S")

	_, err := m.Chat(context.Background(), id, "hi", "llama3.1-8b", 0)
	require.NoError(t, err)

	history, err := m.History(id)
	require.NoError(t, err)
	require.Len(t, history, 3)

	require.NoError(t, m.Clear(id))
	history, err = m.History(id)
	require.NoError(t, err)
	assert.Empty(t, history)

	// Conversation is still alive and usable after Clear.
	_, err = m.Chat(context.Background(), id, "again", "llama3.1-8b", 0)
	require.NoError(t, err)
}

func TestChatSerializedPerConversation(t *testing.T) {
	t.Parallel()
	exec := shardqueue.New(shardqueue.Config{Shards: 2, QueueSize: 32})
	defer exec.Stop()

	var inFlight, maxInFlight int32
	var mu sync.Mutex
	fc := &scriptedCompleter{reply: func(req completion.Request) (*completion.Response, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return &completion.Response{Choices: []completion.Choice{{
			Message: types.Message{Role: types.RoleAssistant, Content: "ok"},
		}}}, nil
	}}

	m := assistant.NewManager(fc, assistant.WithExecutor(exec))
	id := m.NewConversation("")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = m.Chat(context.Background(), id, fmt.Sprintf("msg %d", i), "llama3.1-8b", 0)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), maxInFlight, "turns for one conversation must not overlap")

	history, err := m.History(id)
	require.NoError(t, err)
	assert.Len(t, history, 16) // 8 user + 8 assistant turns
}

func TestBuildContext(t *testing.T) {
	t.Parallel()
	s := store.New(store.WithDemoData())
	require.NoError(t, s.SignUp(context.Background(), "Rishi", "rishi@example.com", "pw"))

	cs, err := assistant.BuildContext(s.Snapshot())
	require.NoError(t, err)
	assert.False(t, cs.BuiltAt.IsZero())
	assert.Contains(t, cs.Text, "Lunch with Client")
	assert.Contains(t, cs.Text, "Prepare Presentation")
	assert.Contains(t, cs.Text, "Morning Meditation")
	assert.Contains(t, cs.Text, "User's Name: Rishi")
}

func TestBuildContextRequiresUser(t *testing.T) {
	t.Parallel()
	s := store.New(store.WithDemoData())
	_, err := assistant.BuildContext(s.Snapshot())
	assert.ErrorIs(t, err, store.ErrNoUser)
}

func TestSnapshotContextDoesNotTrackStore(t *testing.T) {
	t.Parallel()
	s := store.New(store.WithDemoData())
	ctx := context.Background()
	require.NoError(t, s.SignUp(ctx, "Rishi", "rishi@example.com", "pw"))

	cs, err := assistant.BuildContext(s.Snapshot())
	require.NoError(t, err)
	m := assistant.NewManager(echoCompleter())
	id := m.NewConversationFromSnapshot(cs)

	// Mutating the store afterwards must not change the pinned directive.
	_, err = s.CreateTask(ctx, types.Task{Title: "Brand New Task", DueDate: types.Today()})
	require.NoError(t, err)

	text, builtAt, err := m.SystemContext(id)
	require.NoError(t, err)
	assert.NotContains(t, text, "Brand New Task")
	assert.Equal(t, cs.BuiltAt, builtAt)
}
