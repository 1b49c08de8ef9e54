package gateway

import (
	"context"
	"fmt"

	"github.com/rishikanchi/Callo/internal/types"
)

// CreateEvent inserts an event owned by userID and returns the stored row's id.
func (g *Gateway) CreateEvent(ctx context.Context, event types.Event, userID int) (int, error) {
	if err := types.ValidateTitle(event.Title, "title"); err != nil {
		return 0, err
	}
	event.UserID = userID
	var rows []types.Event
	if err := g.insert(ctx, "events", event, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("insert events: empty representation")
	}
	return rows[0].ID, nil
}

// GetEvent fetches the event with the given id.
func (g *Gateway) GetEvent(ctx context.Context, id int) (*types.Event, error) {
	var rows []types.Event
	if err := g.selectAll(ctx, "events", &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetUserEvents returns every event owned by userID, in table order.
func (g *Gateway) GetUserEvents(ctx context.Context, userID int) ([]types.Event, error) {
	var rows []types.Event
	if err := g.selectAll(ctx, "events", &rows); err != nil {
		return nil, err
	}
	out := make([]types.Event, 0, len(rows))
	for _, e := range rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// UpdateEvent rewrites the mutable fields of the event row with the given id.
func (g *Gateway) UpdateEvent(ctx context.Context, id int, event types.Event) error {
	return g.updateByID(ctx, "events", id, map[string]any{
		"title":       event.Title,
		"description": event.Description,
		"start_time":  event.StartTime,
		"end_time":    event.EndTime,
		"user_id":     event.UserID,
	})
}

// DeleteEvent removes the event row with the given id.
func (g *Gateway) DeleteEvent(ctx context.Context, id int) error {
	return g.deleteByID(ctx, "events", id)
}

// AddEventToUser reassigns an existing event to userID.
func (g *Gateway) AddEventToUser(ctx context.Context, userID, eventID int) error {
	event, err := g.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	event.UserID = userID
	return g.UpdateEvent(ctx, eventID, *event)
}
