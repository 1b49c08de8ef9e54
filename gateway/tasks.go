package gateway

import (
	"context"
	"fmt"

	"github.com/rishikanchi/Callo/internal/types"
)

// CreateTask inserts a task owned by userID and returns the stored row's id.
func (g *Gateway) CreateTask(ctx context.Context, task types.Task, userID int) (int, error) {
	if err := types.ValidateTitle(task.Title, "title"); err != nil {
		return 0, err
	}
	task.UserID = userID
	var rows []types.Task
	if err := g.insert(ctx, "tasks", task, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("insert tasks: empty representation")
	}
	return rows[0].ID, nil
}

// GetTask fetches the task with the given id.
func (g *Gateway) GetTask(ctx context.Context, id int) (*types.Task, error) {
	var rows []types.Task
	if err := g.selectAll(ctx, "tasks", &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetUserTasks returns every task owned by userID, in table order.
func (g *Gateway) GetUserTasks(ctx context.Context, userID int) ([]types.Task, error) {
	var rows []types.Task
	if err := g.selectAll(ctx, "tasks", &rows); err != nil {
		return nil, err
	}
	out := make([]types.Task, 0, len(rows))
	for _, t := range rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateTask rewrites the mutable fields of the task row with the given id.
func (g *Gateway) UpdateTask(ctx context.Context, id int, task types.Task) error {
	return g.updateByID(ctx, "tasks", id, map[string]any{
		"title":        task.Title,
		"due_date":     task.DueDate,
		"is_completed": task.IsCompleted,
		"user_id":      task.UserID,
	})
}

// DeleteTask removes the task row with the given id.
func (g *Gateway) DeleteTask(ctx context.Context, id int) error {
	return g.deleteByID(ctx, "tasks", id)
}

// AddTaskToUser reassigns an existing task to userID.
func (g *Gateway) AddTaskToUser(ctx context.Context, userID, taskID int) error {
	task, err := g.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	task.UserID = userID
	return g.UpdateTask(ctx, taskID, *task)
}
