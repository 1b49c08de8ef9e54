package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rishikanchi/Callo/gateway"
	"github.com/rishikanchi/Callo/internal/types"
	"github.com/rishikanchi/Callo/store"
)

func demoStore() *store.Store {
	return store.New(store.WithDemoData())
}

func TestToggleTaskTwiceRestoresFlag(t *testing.T) {
	t.Parallel()
	s := demoStore()
	ctx := context.Background()

	before := s.Tasks().Value()[0]
	s.ToggleTask(ctx, before.ID)
	require.Equal(t, !before.IsCompleted, s.Tasks().Value()[0].IsCompleted)

	s.ToggleTask(ctx, before.ID)
	require.Equal(t, before.IsCompleted, s.Tasks().Value()[0].IsCompleted)
}

func TestToggleTaskUnknownIDIsNoop(t *testing.T) {
	t.Parallel()
	s := demoStore()
	before := s.Tasks().Value()
	s.ToggleTask(context.Background(), 999999)
	assert.Equal(t, before, s.Tasks().Value())
}

func TestToggleHabitTwiceRestoresDateSet(t *testing.T) {
	t.Parallel()
	s := demoStore()
	ctx := context.Background()
	today := types.Today()

	find := func(id int) types.Habit {
		for _, h := range s.Habits().Value() {
			if h.ID == id {
				return h
			}
		}
		t.Fatalf("habit %d missing", id)
		return types.Habit{}
	}

	// Habit 2 ("Exercise") starts with no completions; habit 1 starts with
	// today already present. Double-toggle must restore both.
	for _, id := range []int{1, 2} {
		before := find(id)
		wasDone := before.CompletedOn(today)

		s.ToggleHabit(ctx, id)
		require.Equal(t, !wasDone, find(id).CompletedOn(today), "habit %d after first toggle", id)

		s.ToggleHabit(ctx, id)
		after := find(id)
		require.Equal(t, wasDone, after.CompletedOn(today), "habit %d after second toggle", id)
		require.Len(t, after.DatesCompleted, len(before.DatesCompleted), "habit %d set size", id)
	}
}

func TestCreateEventValidatesOrdering(t *testing.T) {
	t.Parallel()
	s := store.New()
	_, err := s.CreateEvent(context.Background(), types.Event{
		Title:     "Backwards",
		StartTime: types.NewDateTime(2024, time.December, 12, 11, 0),
		EndTime:   types.NewDateTime(2024, time.December, 12, 10, 0),
	})
	require.Error(t, err)
}

func TestCreateAssignsIdentityAndOwner(t *testing.T) {
	t.Parallel()
	s := store.New()
	ctx := context.Background()
	require.NoError(t, s.SignUp(ctx, "Demo", "demo@example.com", "pw"))
	u, err := s.RequireUser()
	require.NoError(t, err)

	task, err := s.CreateTask(ctx, types.Task{Title: "Prepare Presentation", DueDate: types.Today()})
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.Equal(t, u.ID, task.UserID)
}

func TestCreateIDsUniqueUnderConcurrency(t *testing.T) {
	t.Parallel()
	s := store.New()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	ids := make(chan int, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			task, err := s.CreateTask(ctx, types.Task{Title: "t", DueDate: types.Today()})
			if err == nil {
				ids <- task.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
}

func TestUpdateEventReplacesInPlace(t *testing.T) {
	t.Parallel()
	s := demoStore()
	ctx := context.Background()

	events := s.Events().Value()
	updated := events[1]
	updated.Title = "Lunch moved"
	s.UpdateEvent(ctx, updated)

	got := s.Events().Value()
	assert.Equal(t, "Lunch moved", got[1].Title)
	assert.Equal(t, events[0], got[0])
	assert.Len(t, got, len(events))
}

func TestDeleteEvent(t *testing.T) {
	t.Parallel()
	s := demoStore()
	s.DeleteEvent(context.Background(), 2)
	for _, e := range s.Events().Value() {
		assert.NotEqual(t, 2, e.ID)
	}
	assert.Len(t, s.Events().Value(), 2)
}

func TestDeleteTaskAndHabit(t *testing.T) {
	t.Parallel()
	s := demoStore()
	ctx := context.Background()

	s.DeleteTask(ctx, 3)
	assert.Len(t, s.Tasks().Value(), 3)

	s.DeleteHabit(ctx, 2)
	assert.Len(t, s.Habits().Value(), 2)
}

func TestSubscribersSeeMutations(t *testing.T) {
	t.Parallel()
	s := demoStore()
	ch, cancel := s.Tasks().Subscribe()
	defer cancel()

	initial := <-ch
	require.Len(t, initial, 4)

	s.ToggleTask(context.Background(), 1)
	select {
	case next := <-ch:
		assert.True(t, next[0].IsCompleted)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestRequireUserWithoutLogin(t *testing.T) {
	t.Parallel()
	s := store.New()
	_, err := s.RequireUser()
	require.ErrorIs(t, err, store.ErrNoUser)
}

func TestSignUpAndLogoutDemoMode(t *testing.T) {
	t.Parallel()
	s := store.New()
	ctx := context.Background()

	require.NoError(t, s.SignUp(ctx, "Ada", "ada@example.com", "secret"))
	u, err := s.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	// Stored credential must be a hash, never the plaintext.
	assert.NotEqual(t, "secret", u.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))
	assert.Equal(t, store.PhaseSuccess, s.UIState().Value().Phase)

	s.Logout()
	_, err = s.RequireUser()
	require.ErrorIs(t, err, store.ErrNoUser)
	assert.Equal(t, store.PhaseInitial, s.UIState().Value().Phase)
}

// usersBackend serves a single-table users API good enough for login tests.
func usersBackend(t *testing.T, users []types.User) *gateway.Gateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/users" || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(users)
	}))
	t.Cleanup(srv.Close)
	return gateway.New(srv.URL, "anon")
}

func TestLoginScenarios(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	gw := usersBackend(t, []types.User{{ID: 9, Name: "B", Email: "a@b.com", Password: string(hash)}})

	s := store.New(store.WithGateway(gw))
	ctx := context.Background()

	status, err := s.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, store.LoginOk, status)
	u, err := s.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, 9, u.ID)
	assert.Equal(t, store.PhaseSuccess, s.UIState().Value().Phase)

	s.Logout()

	status, err = s.Login(ctx, "a@b.com", "wrong")
	require.NoError(t, err)
	assert.Equal(t, store.LoginInvalidCredentials, status)
	_, err = s.RequireUser()
	assert.ErrorIs(t, err, store.ErrNoUser) // current user unchanged
	state := s.UIState().Value()
	assert.Equal(t, store.PhaseError, state.Phase)
	assert.Equal(t, "Invalid password", state.Message)

	status, err = s.Login(ctx, "nouser@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, store.LoginUserNotFound, status)
	assert.Equal(t, "User not found", s.UIState().Value().Message)
}

func TestLoginTransportErrorIsNotUserNotFound(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	s := store.New(store.WithGateway(gateway.New(srv.URL, "anon")))

	_, err := s.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	assert.Equal(t, "Login failed", s.UIState().Value().Message)
}

func TestMutationsWriteThroughGateway(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	user := types.User{ID: 7, Name: "B", Email: "a@b.com", Password: string(hash)}

	type call struct{ method, query string }
	var mu sync.Mutex
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/users":
			_ = json.NewEncoder(w).Encode([]types.User{user})
		case "/rest/v1/tasks":
			mu.Lock()
			calls = append(calls, call{r.Method, r.URL.RawQuery})
			mu.Unlock()
			switch r.Method {
			case http.MethodPost:
				var task types.Task
				require.NoError(t, json.NewDecoder(r.Body).Decode(&task))
				w.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(w).Encode([]types.Task{task})
			default:
				w.WriteHeader(http.StatusNoContent)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	// No executor: persistence runs inline, so every write is visible to the
	// fake by the time the mutation returns.
	s := store.New(store.WithGateway(gateway.New(srv.URL, "anon")))
	ctx := context.Background()

	status, err := s.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)
	require.Equal(t, store.LoginOk, status)

	task, err := s.CreateTask(ctx, types.Task{Title: "Ship it", DueDate: types.Today()})
	require.NoError(t, err)
	assert.Equal(t, 7, task.UserID)
	s.ToggleTask(ctx, task.ID)
	s.DeleteTask(ctx, task.ID)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 3)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, http.MethodPatch, calls[1].method)
	assert.Contains(t, calls[1].query, "id=eq.")
	assert.Equal(t, http.MethodDelete, calls[2].method)
	assert.Contains(t, calls[2].query, "id=eq.")
}

func TestRefreshLoadsSignedInUsersData(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	user := types.User{ID: 7, Name: "B", Email: "a@b.com", Password: string(hash)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/users":
			_ = json.NewEncoder(w).Encode([]types.User{user})
		case "/rest/v1/events":
			_ = json.NewEncoder(w).Encode([]types.Event{
				{ID: 1, Title: "Mine", UserID: 7},
				{ID: 2, Title: "Someone else's", UserID: 8},
			})
		case "/rest/v1/tasks":
			_ = json.NewEncoder(w).Encode([]types.Task{{ID: 3, Title: "Theirs", UserID: 8}})
		case "/rest/v1/habits":
			_ = json.NewEncoder(w).Encode([]types.Habit{{ID: 4, Title: "Mine", UserID: 7}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	s := store.New(store.WithGateway(gateway.New(srv.URL, "anon")))
	ctx := context.Background()

	require.ErrorIs(t, s.Refresh(ctx), store.ErrNoUser)

	_, err = s.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)
	require.NoError(t, s.Refresh(ctx))

	events := s.Events().Value()
	require.Len(t, events, 1)
	assert.Equal(t, "Mine", events[0].Title)
	assert.Empty(t, s.Tasks().Value())
	require.Len(t, s.Habits().Value(), 1)
	assert.Equal(t, store.PhaseSuccess, s.UIState().Value().Phase)
}

func TestSnapshotIsStable(t *testing.T) {
	t.Parallel()
	s := demoStore()
	snap := s.Snapshot()
	require.False(t, snap.TakenAt.IsZero())
	require.Len(t, snap.Events, 3)

	s.DeleteEvent(context.Background(), 1)
	assert.Len(t, snap.Events, 3, "snapshot must not track later mutations")
}
