package store

import (
	"time"

	"github.com/rishikanchi/Callo/internal/types"
)

// Sample data for the demo build. Owner ids all reference the demo account.

func demoEvents() []types.Event {
	return []types.Event{
		{
			ID: 1, Title: "Run Code", UserID: 1,
			Description: "Run",
			StartTime:   types.NewDateTime(2024, time.December, 12, 10, 0),
			EndTime:     types.NewDateTime(2024, time.December, 12, 11, 0),
		},
		{
			ID: 2, Title: "Lunch with Client", UserID: 1,
			Description: "Project discussion over lunch",
			StartTime:   types.NewDateTime(2024, time.December, 12, 12, 30),
			EndTime:     types.NewDateTime(2024, time.December, 12, 13, 30),
		},
		{
			ID: 3, Title: "Project Review", UserID: 1,
			Description: "End of sprint review",
			StartTime:   types.NewDateTime(2024, time.December, 13, 14, 0),
			EndTime:     types.NewDateTime(2024, time.December, 13, 15, 30),
		},
	}
}

func demoTasks() []types.Task {
	return []types.Task{
		{ID: 1, Title: "Prepare Presentation", UserID: 1, DueDate: types.NewDate(2024, time.December, 13)},
		{ID: 2, Title: "Review Code", UserID: 1, DueDate: types.NewDate(2024, time.December, 12)},
		{ID: 3, Title: "Update Documentation", UserID: 1, DueDate: types.NewDate(2024, time.December, 14)},
		{ID: 4, Title: "Team Meeting Notes", UserID: 1, DueDate: types.NewDate(2024, time.December, 12)},
	}
}

func demoHabits() []types.Habit {
	today := types.Today()
	return []types.Habit{
		{
			ID: 1, Title: "Morning Meditation", UserID: 1,
			DatesCompleted: []types.Date{
				today, today.AddDays(-1), today.AddDays(-2), today.AddDays(-5), today.AddDays(-8),
			},
		},
		{
			ID: 3, Title: "Read 30 Minutes", UserID: 1,
			DatesCompleted: []types.Date{
				today.AddDays(-1), today.AddDays(-2), today.AddDays(-23), today.AddDays(-15),
			},
		},
		{ID: 2, Title: "Exercise", UserID: 1},
	}
}
