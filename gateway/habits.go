package gateway

import (
	"context"
	"fmt"

	"github.com/rishikanchi/Callo/internal/types"
)

// CreateHabit inserts a habit owned by userID and returns the stored row's id.
func (g *Gateway) CreateHabit(ctx context.Context, habit types.Habit, userID int) (int, error) {
	if err := types.ValidateTitle(habit.Title, "title"); err != nil {
		return 0, err
	}
	habit.UserID = userID
	var rows []types.Habit
	if err := g.insert(ctx, "habits", habit, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("insert habits: empty representation")
	}
	return rows[0].ID, nil
}

// GetHabit fetches the habit with the given id.
func (g *Gateway) GetHabit(ctx context.Context, id int) (*types.Habit, error) {
	var rows []types.Habit
	if err := g.selectAll(ctx, "habits", &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetUserHabits returns every habit owned by userID, in table order.
func (g *Gateway) GetUserHabits(ctx context.Context, userID int) ([]types.Habit, error) {
	var rows []types.Habit
	if err := g.selectAll(ctx, "habits", &rows); err != nil {
		return nil, err
	}
	out := make([]types.Habit, 0, len(rows))
	for _, h := range rows {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

// UpdateHabit rewrites the mutable fields of the habit row with the given id.
func (g *Gateway) UpdateHabit(ctx context.Context, id int, habit types.Habit) error {
	return g.updateByID(ctx, "habits", id, map[string]any{
		"title":           habit.Title,
		"dates_completed": habit.DatesCompleted,
		"user_id":         habit.UserID,
	})
}

// DeleteHabit removes the habit row with the given id.
func (g *Gateway) DeleteHabit(ctx context.Context, id int) error {
	return g.deleteByID(ctx, "habits", id)
}

// AddHabitToUser reassigns an existing habit to userID.
func (g *Gateway) AddHabitToUser(ctx context.Context, userID, habitID int) error {
	habit, err := g.GetHabit(ctx, habitID)
	if err != nil {
		return err
	}
	habit.UserID = userID
	return g.UpdateHabit(ctx, habitID, *habit)
}
