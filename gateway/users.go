package gateway

import (
	"context"

	"github.com/rishikanchi/Callo/internal/types"
)

// CreateUser inserts a row and resolves the assigned identity by re-querying
// on the unique email, since the users table does not return representations
// to anonymous writers.
func (g *Gateway) CreateUser(ctx context.Context, user types.User) (int, error) {
	if err := types.ValidateEmail(user.Email); err != nil {
		return 0, err
	}
	if err := g.insert(ctx, "users", user, nil); err != nil {
		return 0, err
	}
	created, err := g.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

// GetUser fetches the user with the given id.
func (g *Gateway) GetUser(ctx context.Context, id int) (*types.User, error) {
	var rows []types.User
	if err := g.selectAll(ctx, "users", &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByEmail fetches the user with the given email. Emails are compared
// exactly as stored, case-sensitively.
func (g *Gateway) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var rows []types.User
	if err := g.selectAll(ctx, "users", &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Email == email {
			return &rows[i], nil
		}
	}
	return nil, ErrNotFound
}

// UpdateUser rewrites the mutable fields of the user row with the given id.
func (g *Gateway) UpdateUser(ctx context.Context, id int, user types.User) error {
	return g.updateByID(ctx, "users", id, map[string]any{
		"name":     user.Name,
		"email":    user.Email,
		"password": user.Password,
	})
}

// DeleteUser removes the user row with the given id.
func (g *Gateway) DeleteUser(ctx context.Context, id int) error {
	return g.deleteByID(ctx, "users", id)
}
