package core

import (
	"context"
	"fmt"

	"campusconnect/entity"
)

// AuthService is the delegated identity concern: credential checks
// and bearer-token issuance.
type AuthService interface {
	Signup(ctx context.Context, req *entity.SignupRequest) (*entity.AuthToken, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthToken, error)
	AuthenticateByToken(token string) (*entity.User, error)
}

func (c *Core) SetAuthService(auth AuthService) {
	c.auth = auth
}

func (c *Core) AuthenticateByToken(token string) (*entity.User, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.AuthenticateByToken(token)
}

func (c *Core) Signup(ctx context.Context, req *entity.SignupRequest) (*entity.AuthToken, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.Signup(ctx, req)
}

func (c *Core) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthToken, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.Login(ctx, req)
}
