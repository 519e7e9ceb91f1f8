package ports

import (
	"context"
	"time"

	"expense-tracker/internal/model"

	"github.com/jmoiron/sqlx"
)

// RefreshTokenRepository : SQL слой таблицы refresh_tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, token *model.RefreshToken) error
	FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error)
	RevokeAllByUser(ctx context.Context, exec sqlx.ExtContext, userUUID string) (int64, error)
	RevokeActive(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (string, error)
	DeleteStale(ctx context.Context, exec sqlx.ExtContext, cutoff time.Time) (int64, error)
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

type RefreshTokenStore interface {
	Create(ctx context.Context, userUUID string, now time.Time) (string, error)
	Validate(ctx context.Context, token string, now time.Time) (string, error)
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAll(ctx context.Context, userUUID string) (int64, error)
	Cleanup(ctx context.Context, now time.Time) (int64, error)
	Rotate(ctx context.Context, token string, now time.Time) (string, string, error)
}
