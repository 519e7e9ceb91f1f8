package ports

import (
	"context"

	"expense-tracker/internal/model"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (bool, error)
	ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error)
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

// CredentialStore : регистрация и проверка учетных данных
type CredentialStore interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Verify(ctx context.Context, username, password string) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
}
