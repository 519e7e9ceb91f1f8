package ports

import (
	"context"

	"expense-tracker/internal/model"
)

type AuthenticationService interface {
	Login(ctx context.Context, username, password string) (*model.TokensPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshToken string) (bool, error)
	LogoutAll(ctx context.Context, accessToken string) (int64, error)
	ResolveCurrentUser(ctx context.Context, accessToken string) (*model.User, error)
}
