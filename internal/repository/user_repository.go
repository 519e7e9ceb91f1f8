package repository

import (
	"context"
	"database/sql"
	"errors"

	"expense-tracker/config"
	"expense-tracker/internal/common"
	"expense-tracker/internal/model"

	"github.com/jmoiron/sqlx"
)

const (
	usersUsernameConstraint = "users_username_key"
	usersEmailConstraint    = "users_email_key"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя.
// Гонка двух регистраций разрешается уникальными индексами.
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, username, email, password_hash, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING uuid, username, email, password_hash, created_at
	`

	createdUser := &model.User{}
	err := exec.QueryRowxContext(ctx, query, user.UUID, user.Username, user.Email, user.PasswordHash, user.CreatedAt).
		StructScan(createdUser)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case usersUsernameConstraint:
				return nil, common.ErrDuplicateUsername
			case usersEmailConstraint:
				return nil, common.ErrDuplicateEmail
			default:
				return nil, common.ErrDuplicateUser
			}
		}
		return nil, common.StoreError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : nil без ошибки, если пользователя нет
func (r *UserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	query := `SELECT uuid, username, email, password_hash, created_at FROM users WHERE uuid = $1`
	return r.findOne(ctx, exec, query, uuid)
}

// FindByUsername : nil без ошибки, если пользователя нет
func (r *UserRepository) FindByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (*model.User, error) {
	query := `SELECT uuid, username, email, password_hash, created_at FROM users WHERE username = $1`
	return r.findOne(ctx, exec, query, username)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (bool, error) {
	return r.exists(ctx, exec, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error) {
	return r.exists(ctx, exec, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	return beginTX(ctx, r.DB)
}

func (r *UserRepository) findOne(ctx context.Context, exec sqlx.ExtContext, query string, arg string) (*model.User, error) {
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, common.StoreError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

func (r *UserRepository) exists(ctx context.Context, exec sqlx.ExtContext, query string, arg string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, exec, &exists, query, arg); err != nil {
		return false, common.StoreError("[UserRepo] ошибка проверки существования пользователя", err)
	}
	return exists, nil
}

func beginTX(ctx context.Context, db *sqlx.DB) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, common.StoreError("не удалось начать транзакцию", err)
	}
	return tx, tx.Rollback, tx.Commit, nil
}
