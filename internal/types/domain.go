package types

import (
	"fmt"
	"time"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// User represents an account in the remote store. Password holds a bcrypt
// hash, never the plaintext credential.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CalendarItem is the capability shared by Event, Task and Habit. The
// unexported method keeps the set of implementations closed.
type CalendarItem interface {
	ItemID() int
	ItemTitle() string
	OwnerID() int

	calendarItem()
}

// Event is a scheduled block of time on the calendar.
type Event struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	UserID      int      `json:"user_id"`
	Description string   `json:"description"`
	StartTime   DateTime `json:"start_time"`
	EndTime     DateTime `json:"end_time"`
}

func (e Event) ItemID() int       { return e.ID }
func (e Event) ItemTitle() string { return e.Title }
func (e Event) OwnerID() int      { return e.UserID }
func (Event) calendarItem()       {}

// Task is a one-off to-do with a due date.
type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	UserID      int    `json:"user_id"`
	DueDate     Date   `json:"due_date"`
	IsCompleted bool   `json:"is_completed"`
}

func (t Task) ItemID() int       { return t.ID }
func (t Task) ItemTitle() string { return t.Title }
func (t Task) OwnerID() int      { return t.UserID }
func (Task) calendarItem()       {}

// Habit tracks a recurring activity by the set of dates it was completed on.
// DatesCompleted is semantically a set; membership is what matters.
type Habit struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	UserID         int    `json:"user_id"`
	DatesCompleted []Date `json:"dates_completed"`
}

func (h Habit) ItemID() int       { return h.ID }
func (h Habit) ItemTitle() string { return h.Title }
func (h Habit) OwnerID() int      { return h.UserID }
func (Habit) calendarItem()       {}

// CompletedOn reports whether the habit was completed on the given date.
func (h Habit) CompletedOn(d Date) bool {
	for _, done := range h.DatesCompleted {
		if done.Equal(d) {
			return true
		}
	}
	return false
}

// ------------------------------
// Chat Messages
// ------------------------------

// Message roles understood by the completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation. Immutable once created;
// ordering within a conversation is significant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ------------------------------
// Wire time formats
// ------------------------------

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Date is a timezone-naive calendar date. It marshals as "2006-01-02",
// matching the remote store's date columns.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in the caller's local timezone.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// AddDays returns the date shifted by n days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Equal reports whether two dates name the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) String() string { return d.t.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %q", s)
	}
	t, err := time.Parse(dateLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

// DateTime is a timezone-naive local date-time. It marshals as
// "2006-01-02T15:04:05", matching the remote store's timestamp columns.
type DateTime struct {
	t time.Time
}

// NewDateTime builds a DateTime from calendar components.
func NewDateTime(year int, month time.Month, day, hour, min int) DateTime {
	return DateTime{t: time.Date(year, month, day, hour, min, 0, 0, time.UTC)}
}

// Equal reports whether two date-times name the same instant.
func (d DateTime) Equal(o DateTime) bool { return d.t.Equal(o.t) }

// Before reports whether d is earlier than o.
func (d DateTime) Before(o DateTime) bool { return d.t.Before(o.t) }

func (d DateTime) String() string { return d.t.Format(dateTimeLayout) }

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(dateTimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid datetime %q", s)
	}
	t, err := time.Parse(dateTimeLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	d.t = t
	return nil
}
