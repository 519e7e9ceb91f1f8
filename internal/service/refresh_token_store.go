package service

import (
	"context"
	"fmt"
	"time"

	"expense-tracker/internal/common"
	"expense-tracker/internal/logging"
	"expense-tracker/internal/model"
	"expense-tracker/internal/ports"
	"expense-tracker/internal/security"

	"github.com/jmoiron/sqlx"
)

type RefreshTokenStore struct {
	repository ports.RefreshTokenRepository
	db         sqlx.ExtContext
	ttl        time.Duration
	retention  time.Duration
	logger     logging.Logger

	generate func() (string, error)
}

func NewRefreshTokenStore(
	repository ports.RefreshTokenRepository,
	db sqlx.ExtContext,
	ttl time.Duration,
	retention time.Duration,
	logger logging.Logger,
) *RefreshTokenStore {
	return &RefreshTokenStore{
		repository: repository,
		db:         db,
		ttl:        ttl,
		retention:  retention,
		logger:     logger.With("module", "refresh_tokens"),
		generate:   security.GenerateRefreshToken,
	}
}

// Create выпускает новый токен сессии со сроком now+ttl
func (s *RefreshTokenStore) Create(ctx context.Context, userUUID string, now time.Time) (string, error) {
	return s.create(ctx, s.db, userUUID, now)
}

func (s *RefreshTokenStore) create(ctx context.Context, exec sqlx.ExtContext, userUUID string, now time.Time) (string, error) {
	token, err := s.generate()
	if err != nil {
		return "", err
	}

	err = s.repository.Create(ctx, exec, &model.RefreshToken{
		Token:     token,
		UserUUID:  userUUID,
		ExpiresAt: now.Add(s.ttl),
		IsActive:  true,
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("[RefreshTokenStore] не удалось сохранить токен: %w", err)
	}

	return token, nil
}

// Validate возвращает владельца токена. Только чтение: истекший токен
// остается в таблице до очистки. Отзыв проверяется раньше срока.
func (s *RefreshTokenStore) Validate(ctx context.Context, token string, now time.Time) (string, error) {
	if token == "" {
		return "", common.ErrTokenNotFound
	}

	stored, err := s.repository.FindByToken(ctx, s.db, token)
	if err != nil {
		return "", fmt.Errorf("[RefreshTokenStore] %w", err)
	}

	if !stored.IsActive {
		return "", common.ErrTokenRevoked
	}
	if stored.Expired(now) {
		return "", common.ErrTokenExpired
	}

	return stored.UserUUID, nil
}

// Revoke : true, если токен был активен и теперь отозван
func (s *RefreshTokenStore) Revoke(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	revoked, err := s.repository.Revoke(ctx, s.db, token)
	if err != nil {
		return false, fmt.Errorf("[RefreshTokenStore] %w", err)
	}
	return revoked, nil
}

// RevokeAll отзывает все активные токены одного пользователя
func (s *RefreshTokenStore) RevokeAll(ctx context.Context, userUUID string) (int64, error) {
	count, err := s.repository.RevokeAllByUser(ctx, s.db, userUUID)
	if err != nil {
		return 0, fmt.Errorf("[RefreshTokenStore] %w", err)
	}
	return count, nil
}

// Cleanup удаляет записи с expires_at + retention < now, в том числе
// отозванные. Повторный запуск безопасен.
func (s *RefreshTokenStore) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	deleted, err := s.repository.DeleteStale(ctx, s.db, now.Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("[RefreshTokenStore] %w", err)
	}
	return deleted, nil
}

// Rotate атомарно заменяет действующий токен новым. Из двух одновременных
// ротаций одного токена успешна только одна, вторая получает ErrTokenRevoked.
func (s *RefreshTokenStore) Rotate(ctx context.Context, token string, now time.Time) (string, string, error) {
	if _, err := s.Validate(ctx, token, now); err != nil {
		return "", "", err
	}

	exec, rollback, commit, err := s.repository.BeginTX(ctx)
	if err != nil {
		return "", "", fmt.Errorf("[RefreshTokenStore] %w", err)
	}
	defer func() { _ = rollback() }()

	userUUID, err := s.repository.RevokeActive(ctx, exec, token, now)
	if err != nil {
		return "", "", fmt.Errorf("[RefreshTokenStore] %w", err)
	}

	newToken, err := s.create(ctx, exec, userUUID, now)
	if err != nil {
		return "", "", err
	}

	if err := commit(); err != nil {
		return "", "", common.StoreError("[RefreshTokenStore] не удалось зафиксировать ротацию", err)
	}

	return userUUID, newToken, nil
}
