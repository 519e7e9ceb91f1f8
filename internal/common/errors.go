// Package common содержит sentinel-ошибки подсистемы аутентификации.
// Сравнивать их нужно через errors.Is: сервисы оборачивают их через %w,
// но вид ошибки по пути наверх не меняется.
package common

import (
	"errors"
	"fmt"
)

var (
	// Учетные данные
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrDuplicateUsername  = fmt.Errorf("username already registered: %w", ErrDuplicateUser)
	ErrDuplicateEmail     = fmt.Errorf("email already registered: %w", ErrDuplicateUser)

	// Жизненный цикл токенов
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenRevoked      = errors.New("token revoked")
	ErrTokenNotFound     = errors.New("token not found")
	ErrMalformedToken    = errors.New("malformed token")
	ErrSignatureMismatch = errors.New("signature mismatch")

	// Хранилище недоступно; единственный вид ошибки, который имеет смысл повторять
	ErrStoreUnavailable = errors.New("store unavailable")

	// Невалидные данные на границе системы
	ErrInvalidInput = errors.New("invalid input")
)

var tokenErrors = []error{
	ErrTokenExpired,
	ErrTokenRevoked,
	ErrTokenNotFound,
	ErrMalformedToken,
	ErrSignatureMismatch,
}

// IsTokenError : true, если err относится к одному из видов ошибок токена.
// Снаружи все они выглядят одинаково: "не аутентифицирован".
func IsTokenError(err error) bool {
	for _, target := range tokenErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotAuthenticated : ошибки, которые клиент должен видеть как единый 401
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || IsTokenError(err)
}

// StoreError оборачивает ошибку драйвера в ErrStoreUnavailable,
// сохраняя исходный текст для логов.
func StoreError(message string, err error) error {
	return fmt.Errorf("%s: %w: %v", message, ErrStoreUnavailable, err)
}
