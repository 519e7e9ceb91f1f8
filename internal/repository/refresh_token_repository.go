package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"expense-tracker/config"
	"expense-tracker/internal/common"
	"expense-tracker/internal/model"

	"github.com/jmoiron/sqlx"
)

type RefreshTokenRepository struct {
	*config.Database
}

func NewRefreshTokenRepository(database *config.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{database}
}

// Create сохраняет refresh-токен
func (r *RefreshTokenRepository) Create(ctx context.Context, exec sqlx.ExtContext, token *model.RefreshToken) error {
	query := `
	INSERT INTO refresh_tokens (token, user_uuid, expires_at, is_active, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := exec.ExecContext(ctx, query,
		token.Token,
		token.UserUUID,
		token.ExpiresAt,
		token.IsActive,
		token.CreatedAt,
	)
	if err != nil {
		return common.StoreError("[RefreshTokenRepo] ошибка вставки токена в БД", err)
	}

	return nil
}

// FindByToken возвращает ErrTokenNotFound, если строки нет
func (r *RefreshTokenRepository) FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.RefreshToken, error) {
	query := `SELECT token, user_uuid, expires_at, is_active, created_at FROM refresh_tokens WHERE token = $1`

	var refreshToken model.RefreshToken
	err := sqlx.GetContext(ctx, exec, &refreshToken, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrTokenNotFound
		}
		return nil, common.StoreError("[RefreshTokenRepo] ошибка при выполнении запроса", err)
	}

	return &refreshToken, nil
}

// Revoke деактивирует токен; false, если он уже неактивен или не существует
func (r *RefreshTokenRepository) Revoke(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error) {
	query := `UPDATE refresh_tokens SET is_active = FALSE WHERE token = $1 AND is_active = TRUE`

	affected, err := r.execAffected(ctx, exec, query, token)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RevokeAllByUser деактивирует все активные токены пользователя
func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, exec sqlx.ExtContext, userUUID string) (int64, error) {
	query := `UPDATE refresh_tokens SET is_active = FALSE WHERE user_uuid = $1 AND is_active = TRUE`
	return r.execAffected(ctx, exec, query, userUUID)
}

// RevokeActive атомарно деактивирует действующий токен и возвращает владельца.
// ErrTokenRevoked, если токен уже деактивирован, истек или отсутствует.
func (r *RefreshTokenRepository) RevokeActive(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (string, error) {
	query := `
	UPDATE refresh_tokens SET is_active = FALSE
	WHERE token = $1 AND is_active = TRUE AND expires_at > $2
	RETURNING user_uuid
	`

	var userUUID string
	err := exec.QueryRowxContext(ctx, query, token, now).Scan(&userUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrTokenRevoked
		}
		return "", common.StoreError("[RefreshTokenRepo] не удалось деактивировать токен", err)
	}

	return userUUID, nil
}

// DeleteStale удаляет строки с expires_at < cutoff
func (r *RefreshTokenRepository) DeleteStale(ctx context.Context, exec sqlx.ExtContext, cutoff time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`
	return r.execAffected(ctx, exec, query, cutoff)
}

func (r *RefreshTokenRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	return beginTX(ctx, r.DB)
}

func (r *RefreshTokenRepository) execAffected(ctx context.Context, exec sqlx.ExtContext, query string, args ...any) (int64, error) {
	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, common.StoreError("[RefreshTokenRepo] не удалось обновить токены", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, common.StoreError("[RefreshTokenRepo] не удалось проверить число измененных строк", err)
	}

	return rowsAffected, nil
}
