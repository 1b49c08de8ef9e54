// Package store is the in-memory, observable repository of the current
// user's productivity data. It is the single source of truth a UI reads
// from: three item streams plus the current-user slot, each a
// behavior-subject style subscription. Mutations apply locally first; when a
// gateway is attached, they are also persisted through the per-user work
// queue.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rishikanchi/Callo/gateway"
	"github.com/rishikanchi/Callo/internal/shardqueue"
	"github.com/rishikanchi/Callo/internal/types"
)

// ErrNoUser reports that an operation needing a signed-in user ran without
// one.
var ErrNoUser = errors.New("store: no signed-in user")

// LoginStatus is the tri-state outcome of a Login call, meaningful only when
// the accompanying error is nil.
type LoginStatus int

const (
	LoginOk LoginStatus = iota + 1
	LoginInvalidCredentials
	LoginUserNotFound
)

// Executor is the async job runner used for gateway writes and sign-up.
type Executor interface {
	Submit(ctx context.Context, key string, job shardqueue.Job) error
}

// Store holds the observable productivity state. All exported methods are
// safe for concurrent use; observers see whole-value snapshots, never shared
// slices.
type Store struct {
	mu  sync.Mutex
	log zerolog.Logger

	gw   *gateway.Gateway // nil in demo mode
	exec Executor         // nil runs persistence jobs inline

	events  *Stream[[]types.Event]
	tasks   *Stream[[]types.Task]
	habits  *Stream[[]types.Habit]
	user    *Stream[*types.User]
	uiState *Stream[UIState]

	ids *idSource
}

// Option configures a Store during construction.
type Option func(*Store)

// WithGateway attaches the remote store; mutations are then persisted as
// well as applied locally.
func WithGateway(gw *gateway.Gateway) Option {
	return func(s *Store) { s.gw = gw }
}

// WithExecutor routes persistence jobs through the given runner instead of
// executing them inline.
func WithExecutor(exec Executor) Option {
	return func(s *Store) { s.exec = exec }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithDemoData seeds the store with the sample events, tasks and habits used
// by the demo build.
func WithDemoData() Option {
	return func(s *Store) {
		s.events.publish(demoEvents())
		s.tasks.publish(demoTasks())
		s.habits.publish(demoHabits())
	}
}

// New constructs a Store. Without options it starts empty, in-memory only.
func New(opts ...Option) *Store {
	s := &Store{
		log:     zerolog.Nop(),
		events:  newStream([]types.Event{}),
		tasks:   newStream([]types.Task{}),
		habits:  newStream([]types.Habit{}),
		user:    newStream[*types.User](nil),
		uiState: newStream(uiInitial()),
		ids:     newIDSource(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ------------------------------
// Streams
// ------------------------------

// Events is the observable event list.
func (s *Store) Events() *Stream[[]types.Event] { return s.events }

// Tasks is the observable task list.
func (s *Store) Tasks() *Stream[[]types.Task] { return s.tasks }

// Habits is the observable habit list.
func (s *Store) Habits() *Stream[[]types.Habit] { return s.habits }

// CurrentUser is the observable signed-in user slot; nil while signed out.
func (s *Store) CurrentUser() *Stream[*types.User] { return s.user }

// UIState is the observable transient feedback state.
func (s *Store) UIState() *Stream[UIState] { return s.uiState }

// RequireUser returns the signed-in user or ErrNoUser.
func (s *Store) RequireUser() (*types.User, error) {
	u := s.user.Value()
	if u == nil {
		return nil, ErrNoUser
	}
	return u, nil
}

// ------------------------------
// Items
// ------------------------------

// CreateEvent appends an event and republishes the list. A zero id is
// replaced with a locally generated one; a zero owner with the signed-in
// user's id. With a gateway attached the event is persisted asynchronously.
func (s *Store) CreateEvent(ctx context.Context, event types.Event) (types.Event, error) {
	if err := types.ValidateTitle(event.Title, "title"); err != nil {
		return types.Event{}, err
	}
	if event.EndTime.Before(event.StartTime) {
		return types.Event{}, fmt.Errorf("event %q ends before it starts", event.Title)
	}

	s.mu.Lock()
	s.fillIdentity(&event.ID, &event.UserID)
	s.events.publish(append(s.events.Value(), event))
	s.mu.Unlock()

	s.persist(ctx, event.UserID, func(ctx context.Context) error {
		_, err := s.gw.CreateEvent(ctx, event, event.UserID)
		return err
	})
	return event, nil
}

// CreateTask appends a task and republishes the list.
func (s *Store) CreateTask(ctx context.Context, task types.Task) (types.Task, error) {
	if err := types.ValidateTitle(task.Title, "title"); err != nil {
		return types.Task{}, err
	}

	s.mu.Lock()
	s.fillIdentity(&task.ID, &task.UserID)
	s.tasks.publish(append(s.tasks.Value(), task))
	s.mu.Unlock()

	s.persist(ctx, task.UserID, func(ctx context.Context) error {
		_, err := s.gw.CreateTask(ctx, task, task.UserID)
		return err
	})
	return task, nil
}

// CreateHabit appends a habit and republishes the list.
func (s *Store) CreateHabit(ctx context.Context, habit types.Habit) (types.Habit, error) {
	if err := types.ValidateTitle(habit.Title, "title"); err != nil {
		return types.Habit{}, err
	}

	s.mu.Lock()
	s.fillIdentity(&habit.ID, &habit.UserID)
	s.habits.publish(append(s.habits.Value(), habit))
	s.mu.Unlock()

	s.persist(ctx, habit.UserID, func(ctx context.Context) error {
		_, err := s.gw.CreateHabit(ctx, habit, habit.UserID)
		return err
	})
	return habit, nil
}

// ToggleTask flips the completion flag of the task with the given id. Absent
// ids are a no-op.
func (s *Store) ToggleTask(ctx context.Context, id int) {
	s.mu.Lock()
	var changed *types.Task
	next := make([]types.Task, 0, len(s.tasks.Value()))
	for _, t := range s.tasks.Value() {
		if t.ID == id {
			t.IsCompleted = !t.IsCompleted
			changed = &t
		}
		next = append(next, t)
	}
	if changed != nil {
		s.tasks.publish(next)
	}
	s.mu.Unlock()

	if changed != nil {
		task := *changed
		s.persist(ctx, task.UserID, func(ctx context.Context) error {
			return s.gw.UpdateTask(ctx, task.ID, task)
		})
	}
}

// ToggleHabit flips today's membership in the habit's completion-date set,
// using the wall clock in the caller's local timezone. Absent ids are a
// no-op.
func (s *Store) ToggleHabit(ctx context.Context, id int) {
	today := types.Today()

	s.mu.Lock()
	var changed *types.Habit
	next := make([]types.Habit, 0, len(s.habits.Value()))
	for _, h := range s.habits.Value() {
		if h.ID == id {
			if h.CompletedOn(today) {
				kept := make([]types.Date, 0, len(h.DatesCompleted))
				for _, d := range h.DatesCompleted {
					if !d.Equal(today) {
						kept = append(kept, d)
					}
				}
				h.DatesCompleted = kept
			} else {
				h.DatesCompleted = append(append([]types.Date{}, h.DatesCompleted...), today)
			}
			changed = &h
		}
		next = append(next, h)
	}
	if changed != nil {
		s.habits.publish(next)
	}
	s.mu.Unlock()

	if changed != nil {
		habit := *changed
		s.persist(ctx, habit.UserID, func(ctx context.Context) error {
			return s.gw.UpdateHabit(ctx, habit.ID, habit)
		})
	}
}

// UpdateEvent replaces the event with a matching id in place. Absent ids are
// a no-op.
func (s *Store) UpdateEvent(ctx context.Context, updated types.Event) {
	s.mu.Lock()
	found := false
	next := make([]types.Event, 0, len(s.events.Value()))
	for _, e := range s.events.Value() {
		if e.ID == updated.ID {
			e = updated
			found = true
		}
		next = append(next, e)
	}
	if found {
		s.events.publish(next)
	}
	s.mu.Unlock()

	if found {
		s.persist(ctx, updated.UserID, func(ctx context.Context) error {
			return s.gw.UpdateEvent(ctx, updated.ID, updated)
		})
	}
}

// DeleteEvent removes the event with the given id.
func (s *Store) DeleteEvent(ctx context.Context, id int) {
	s.mu.Lock()
	found := false
	owner := 0
	next := make([]types.Event, 0, len(s.events.Value()))
	for _, e := range s.events.Value() {
		if e.ID == id {
			found, owner = true, e.UserID
			continue
		}
		next = append(next, e)
	}
	if found {
		s.events.publish(next)
	}
	s.mu.Unlock()

	if found {
		s.persist(ctx, owner, func(ctx context.Context) error {
			return s.gw.DeleteEvent(ctx, id)
		})
	}
}

// DeleteTask removes the task with the given id.
func (s *Store) DeleteTask(ctx context.Context, id int) {
	s.mu.Lock()
	found := false
	owner := 0
	next := make([]types.Task, 0, len(s.tasks.Value()))
	for _, t := range s.tasks.Value() {
		if t.ID == id {
			found, owner = true, t.UserID
			continue
		}
		next = append(next, t)
	}
	if found {
		s.tasks.publish(next)
	}
	s.mu.Unlock()

	if found {
		s.persist(ctx, owner, func(ctx context.Context) error {
			return s.gw.DeleteTask(ctx, id)
		})
	}
}

// DeleteHabit removes the habit with the given id.
func (s *Store) DeleteHabit(ctx context.Context, id int) {
	s.mu.Lock()
	found := false
	owner := 0
	next := make([]types.Habit, 0, len(s.habits.Value()))
	for _, h := range s.habits.Value() {
		if h.ID == id {
			found, owner = true, h.UserID
			continue
		}
		next = append(next, h)
	}
	if found {
		s.habits.publish(next)
	}
	s.mu.Unlock()

	if found {
		s.persist(ctx, owner, func(ctx context.Context) error {
			return s.gw.DeleteHabit(ctx, id)
		})
	}
}

// Refresh reloads all three item lists for the signed-in user from the
// gateway. It is a no-op in demo mode.
func (s *Store) Refresh(ctx context.Context) error {
	if s.gw == nil {
		return nil
	}
	u, err := s.RequireUser()
	if err != nil {
		return err
	}

	s.uiState.publish(uiLoading())
	events, err := s.gw.GetUserEvents(ctx, u.ID)
	if err != nil {
		s.uiState.publish(uiError("Failed to load events"))
		return err
	}
	tasks, err := s.gw.GetUserTasks(ctx, u.ID)
	if err != nil {
		s.uiState.publish(uiError("Failed to load tasks"))
		return err
	}
	habits, err := s.gw.GetUserHabits(ctx, u.ID)
	if err != nil {
		s.uiState.publish(uiError("Failed to load habits"))
		return err
	}

	s.mu.Lock()
	s.events.publish(events)
	s.tasks.publish(tasks)
	s.habits.publish(habits)
	s.mu.Unlock()
	s.uiState.publish(uiSuccess())
	return nil
}

// ------------------------------
// Accounts
// ------------------------------

// Login resolves the user by email, verifies the password against the stored
// bcrypt hash, and on success publishes the user and a Success state. The
// whole round trip is bounded by ctx; the Loading state is observable while
// it runs. The returned status distinguishes "unknown email" from "wrong
// password" for caller branching; err is non-nil only for transport-level
// failures.
func (s *Store) Login(ctx context.Context, email, password string) (LoginStatus, error) {
	if s.gw == nil {
		return 0, fmt.Errorf("login requires a gateway")
	}
	s.uiState.publish(uiLoading())

	u, err := s.gw.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		s.uiState.publish(uiError("User not found"))
		return LoginUserNotFound, nil
	case err != nil:
		s.uiState.publish(uiError("Login failed"))
		return 0, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		s.uiState.publish(uiError("Invalid password"))
		return LoginInvalidCredentials, nil
	}

	s.user.publish(u)
	s.uiState.publish(uiSuccess())
	s.log.Info().Int("user_id", u.ID).Msg("login succeeded")
	return LoginOk, nil
}

// SignUp creates an account with a bcrypt-hashed password. With a gateway
// attached the account is created remotely and the current user refreshed by
// the assigned id once the write lands; without one the account exists only
// in memory, which is what the demo build wants.
func (s *Store) SignUp(ctx context.Context, name, email, password string) error {
	if err := types.ValidateEmail(email); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := types.User{Name: name, Email: email, Password: string(hash)}

	if s.gw == nil {
		user.ID = s.ids.Next()
		s.user.publish(&user)
		s.uiState.publish(uiSuccess())
		return nil
	}

	s.uiState.publish(uiLoading())
	return s.submit(ctx, "signup-"+email, func(ctx context.Context) error {
		id, err := s.gw.CreateUser(ctx, user)
		if err != nil {
			s.uiState.publish(uiError("Sign up failed"))
			return err
		}
		created, err := s.gw.GetUser(ctx, id)
		if err != nil {
			s.uiState.publish(uiError("Sign up failed"))
			return err
		}
		s.user.publish(created)
		s.uiState.publish(uiSuccess())
		return nil
	})
}

// Logout clears the current user and resets the feedback state.
func (s *Store) Logout() {
	s.user.publish(nil)
	s.uiState.publish(uiInitial())
}

// ------------------------------
// Snapshots
// ------------------------------

// Snapshot is a point-in-time copy of the store, used to build assistant
// context. TakenAt makes the staleness of any derived context explicit.
type Snapshot struct {
	Events  []types.Event
	Tasks   []types.Task
	Habits  []types.Habit
	User    *types.User
	TakenAt time.Time
}

// Snapshot copies the current state. The copy never changes after return.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Events:  append([]types.Event{}, s.events.Value()...),
		Tasks:   append([]types.Task{}, s.tasks.Value()...),
		Habits:  append([]types.Habit{}, s.habits.Value()...),
		User:    s.user.Value(),
		TakenAt: time.Now(),
	}
}

// ------------------------------
// internals
// ------------------------------

// fillIdentity assigns a generated id and the signed-in owner where the
// caller left them zero. Caller holds s.mu.
func (s *Store) fillIdentity(id, owner *int) {
	if *id == 0 {
		*id = s.ids.Next()
	}
	if *owner == 0 {
		if u := s.user.Value(); u != nil {
			*owner = u.ID
		}
	}
}

// persist runs a gateway write when one is attached, keyed by owner so writes
// for one account stay ordered.
func (s *Store) persist(ctx context.Context, ownerID int, job func(context.Context) error) {
	if s.gw == nil {
		return
	}
	wrapped := func(ctx context.Context) error {
		if err := job(ctx); err != nil {
			s.log.Error().Err(err).Msg("persist failed")
			return err
		}
		return nil
	}
	if err := s.submit(ctx, "user-"+strconv.Itoa(ownerID), wrapped); err != nil {
		s.uiState.publish(uiError("Failed to save changes"))
	}
}

func (s *Store) submit(ctx context.Context, key string, job func(context.Context) error) error {
	if s.exec == nil {
		return job(ctx)
	}
	return s.exec.Submit(ctx, key, shardqueue.JobFunc(job))
}
