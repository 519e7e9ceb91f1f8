package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"expense-tracker/internal/common"
	"expense-tracker/internal/logging"
	"expense-tracker/internal/model"
	"expense-tracker/internal/ports"
	"expense-tracker/internal/security"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxUsernameLength = 64

type CredentialService struct {
	userRepository ports.UserRepository
	db             sqlx.ExtContext
	clock          ports.Clock
	logger         logging.Logger

	// хэш, с которым сравнивается пароль несуществующего пользователя
	dummyHash string
}

func NewCredentialService(
	userRepository ports.UserRepository,
	db sqlx.ExtContext,
	clock ports.Clock,
	logger logging.Logger,
) (*CredentialService, error) {
	dummyHash, err := security.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}

	return &CredentialService{
		userRepository: userRepository,
		db:             db,
		clock:          clock,
		logger:         logger.With("module", "credentials"),
		dummyHash:      dummyHash,
	}, nil
}

// Register создает пользователя. Проверки занятости username и email идут
// в одной транзакции; гонку двух регистраций ловят уникальные индексы.
func (s *CredentialService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = normalizeUsername(username)
	email = strings.TrimSpace(email)

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[CredentialService] %w", err)
	}

	exec, rollback, commit, err := s.userRepository.BeginTX(ctx)
	if err != nil {
		return nil, fmt.Errorf("[CredentialService] %w", err)
	}
	defer func() { _ = rollback() }()

	taken, err := s.userRepository.ExistsByUsername(ctx, exec, username)
	if err != nil {
		return nil, fmt.Errorf("[CredentialService] %w", err)
	}
	if taken {
		return nil, common.ErrDuplicateUsername
	}

	taken, err = s.userRepository.ExistsByEmail(ctx, exec, email)
	if err != nil {
		return nil, fmt.Errorf("[CredentialService] %w", err)
	}
	if taken {
		return nil, common.ErrDuplicateEmail
	}

	created, err := s.userRepository.CreateUser(ctx, exec, &model.User{
		UUID:         uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("[CredentialService] ошибка создания пользователя: %w", err)
	}

	if err := commit(); err != nil {
		return nil, common.StoreError("[CredentialService] не удалось зафиксировать транзакцию", err)
	}

	s.logger.Info(ctx, "пользователь зарегистрирован", "user_uuid", created.UUID)
	return created, nil
}

// Verify : ErrInvalidCredentials и для неизвестного пользователя, и для
// неверного пароля. Время ответа в обоих случаях определяется bcrypt.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepository.FindByUsername(ctx, s.db, normalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("[CredentialService] %w", err)
	}

	if user == nil {
		_, _ = security.CheckPassword(s.dummyHash, password)
		return nil, common.ErrInvalidCredentials
	}

	ok, err := security.CheckPassword(user.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "поврежденный хэш пароля", "user_uuid", user.UUID, "error", err)
		return nil, common.ErrInvalidCredentials
	}
	// bcrypt смотрит только на первые 72 байта
	if !ok || len(password) > security.MaxPasswordBytes {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// normalizeUsername : одно правило для регистрации и входа
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// FindByUUID : ErrInvalidCredentials, если пользователя больше нет
func (s *CredentialService) FindByUUID(ctx context.Context, userUUID string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, s.db, userUUID)
	if err != nil {
		return nil, fmt.Errorf("[CredentialService] %w", err)
	}
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

func validateRegistration(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("%w: username, email и password обязательны", common.ErrInvalidInput)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username длиннее %d символов", common.ErrInvalidInput, maxUsernameLength)
	}

	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return fmt.Errorf("%w: некорректный email", common.ErrInvalidInput)
	}

	if len(password) > security.MaxPasswordBytes {
		return fmt.Errorf("%w: пароль длиннее %d байт", common.ErrInvalidInput, security.MaxPasswordBytes)
	}

	return nil
}
