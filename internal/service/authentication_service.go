package service

import (
	"context"
	"fmt"

	"expense-tracker/internal/logging"
	"expense-tracker/internal/model"
	"expense-tracker/internal/ports"
)

// AuthenticationService : жизненный цикл сессии поверх трех хранилищ.
// Новых видов ошибок не вводит, первая же ошибка прерывает операцию.
type AuthenticationService struct {
	credentials   ports.CredentialStore
	refreshTokens ports.RefreshTokenStore
	accessTokens  ports.AccessTokenIssuer
	clock         ports.Clock
	logger        logging.Logger

	// ротация refresh токена при каждом refresh
	rotate bool
}

func NewAuthenticationService(
	credentials ports.CredentialStore,
	refreshTokens ports.RefreshTokenStore,
	accessTokens ports.AccessTokenIssuer,
	clock ports.Clock,
	logger logging.Logger,
	rotate bool,
) *AuthenticationService {
	return &AuthenticationService{
		credentials:   credentials,
		refreshTokens: refreshTokens,
		accessTokens:  accessTokens,
		clock:         clock,
		logger:        logger.With("module", "auth"),
		rotate:        rotate,
	}
}

// Login проверяет учетные данные и открывает новую сессию.
// Каждый вход создает независимый refresh токен (отдельное устройство).
func (s *AuthenticationService) Login(ctx context.Context, username, password string) (*model.TokensPair, error) {
	user, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		s.logger.Info(ctx, "вход отклонен", "kind", err.Error())
		return nil, fmt.Errorf("login: %w", err)
	}

	now := s.clock.Now()

	refreshToken, err := s.refreshTokens.Create(ctx, user.UUID, now)
	if err != nil {
		s.logger.Error(ctx, "не удалось создать сессию", "user_uuid", user.UUID, "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	accessToken, err := s.accessTokens.Mint(user.UUID, now)
	if err != nil {
		s.logger.Error(ctx, "не удалось выпустить access токен", "user_uuid", user.UUID, "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info(ctx, "сессия создана", "user_uuid", user.UUID)
	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    model.TokenTypeBearer,
	}, nil
}

// Refresh выпускает новый access токен по refresh токену. Без ротации
// refresh токен не меняется и в ответ не попадает.
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	now := s.clock.Now()

	var (
		userUUID string
		newToken string
		err      error
	)
	if s.rotate {
		userUUID, newToken, err = s.refreshTokens.Rotate(ctx, refreshToken, now)
	} else {
		userUUID, err = s.refreshTokens.Validate(ctx, refreshToken, now)
	}
	if err != nil {
		s.logger.Info(ctx, "refresh отклонен", "kind", err.Error())
		return nil, fmt.Errorf("refresh: %w", err)
	}

	accessToken, err := s.accessTokens.Mint(userUUID, now)
	if err != nil {
		s.logger.Error(ctx, "не удалось выпустить access токен", "user_uuid", userUUID, "error", err)
		return nil, fmt.Errorf("refresh: %w", err)
	}

	s.logger.Debug(ctx, "access токен обновлен", "user_uuid", userUUID, "rotated", s.rotate)
	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: newToken,
		TokenType:    model.TokenTypeBearer,
	}, nil
}

// Logout завершает одну сессию. Повторный вызов не ошибка: вернет false.
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	revoked, err := s.refreshTokens.Revoke(ctx, refreshToken)
	if err != nil {
		s.logger.Error(ctx, "не удалось отозвать токен", "error", err)
		return false, fmt.Errorf("logout: %w", err)
	}

	s.logger.Info(ctx, "сессия завершена", "revoked", revoked)
	return revoked, nil
}

// LogoutAll завершает все сессии владельца access токена.
// Уже выданные access токены действуют до своего exp.
func (s *AuthenticationService) LogoutAll(ctx context.Context, accessToken string) (int64, error) {
	userUUID, err := s.accessTokens.Verify(accessToken, s.clock.Now())
	if err != nil {
		s.logger.Info(ctx, "logout-all отклонен", "kind", err.Error())
		return 0, fmt.Errorf("logout all: %w", err)
	}

	count, err := s.refreshTokens.RevokeAll(ctx, userUUID)
	if err != nil {
		s.logger.Error(ctx, "не удалось отозвать сессии", "user_uuid", userUUID, "error", err)
		return 0, fmt.Errorf("logout all: %w", err)
	}

	s.logger.Info(ctx, "все сессии завершены", "user_uuid", userUUID, "revoked_count", count)
	return count, nil
}

func (s *AuthenticationService) ResolveCurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	userUUID, err := s.accessTokens.Verify(accessToken, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	user, err := s.credentials.FindByUUID(ctx, userUUID)
	if err != nil {
		s.logger.Info(ctx, "владелец токена не найден", "user_uuid", userUUID, "kind", err.Error())
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return user, nil
}
