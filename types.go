package callo

import "github.com/rishikanchi/Callo/internal/types"

// Public type aliases so SDK consumers can import only the callo package.
type (
	// Domain entities
	User  = types.User
	Event = types.Event
	Task  = types.Task
	Habit = types.Habit

	// CalendarItem is the closed interface over Event, Task and Habit.
	CalendarItem = types.CalendarItem

	// Conversation payloads
	Message = types.Message

	// Wire time formats
	Date     = types.Date
	DateTime = types.DateTime
)

// Conversation roles.
const (
	RoleSystem    = types.RoleSystem
	RoleUser      = types.RoleUser
	RoleAssistant = types.RoleAssistant
)

// NewDate builds a Date from calendar components.
var NewDate = types.NewDate

// Today is the current local date.
var Today = types.Today

// NewDateTime builds a DateTime from calendar components.
var NewDateTime = types.NewDateTime
