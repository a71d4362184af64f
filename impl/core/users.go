package core

import (
	"context"

	"campusconnect/entity"
)

func (c *Core) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return c.db.ListUsers(ctx)
}

func (c *Core) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return c.db.GetUser(ctx, id)
}

func (c *Core) UpdateUser(ctx context.Context, id string, req *entity.UserUpdateRequest) (*entity.User, error) {
	return c.db.UpdateUser(ctx, id, req)
}

func (c *Core) DeleteUser(ctx context.Context, id string) error {
	return c.db.DeleteUser(ctx, id)
}

// UpdateProfile writes the self-service fields; role and guest code
// stay as they are regardless of the payload.
func (c *Core) UpdateProfile(ctx context.Context, user *entity.User, req *entity.ProfileUpdateRequest) (*entity.User, error) {
	return c.db.UpdateProfile(ctx, user.Id, req)
}
