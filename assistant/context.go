package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/rishikanchi/Callo/store"
)

// ContextSnapshot is a rendered system directive plus the instant the
// underlying productivity data was copied. Conversations pinned to it do not
// refresh when the data changes later; BuiltAt makes that staleness explicit
// instead of implicit.
type ContextSnapshot struct {
	Text    string
	BuiltAt time.Time
}

// BuildContext renders a store snapshot into the assistant's system
// directive. It requires a signed-in user; the directive addresses the user
// by name.
func BuildContext(snap store.Snapshot) (ContextSnapshot, error) {
	if snap.User == nil {
		return ContextSnapshot{}, store.ErrNoUser
	}

	var b strings.Builder
	b.WriteString("You are an AI assistant for the Callo productivity app. Here is the current data:\n")

	b.WriteString("Events:\n")
	for _, e := range snap.Events {
		fmt.Fprintf(&b, "- %s (%s to %s)\n", e.Title, e.StartTime, e.EndTime)
	}
	b.WriteString("Tasks:\n")
	for _, t := range snap.Tasks {
		fmt.Fprintf(&b, "- %s (due: %s)\n", t.Title, t.DueDate)
	}
	b.WriteString("Habits:\n")
	for _, h := range snap.Habits {
		fmt.Fprintf(&b, "- %s\n", h.Title)
	}

	fmt.Fprintf(&b, "Current date/time: %s\n", snap.TakenAt.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, "User's Name: %s\n\n", snap.User.Name)

	b.WriteString("Your role is to help users manage their tasks, events, and habits. Be concise, helpful, and friendly.\n")
	b.WriteString("Try to be friendly and act like a fellow human friend, in terms of texting style and content (however, be brief).\n")
	b.WriteString("Most importantly, make sure you double-check that you are providing correct answers by doing your math correctly with respect to dates and times.")

	return ContextSnapshot{Text: b.String(), BuiltAt: snap.TakenAt}, nil
}
