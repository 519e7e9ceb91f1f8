package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const refreshTokenBytes = 32

// GenerateRefreshToken : 32 случайных байта в base64url без паддинга (43 символа)
func GenerateRefreshToken() (string, error) {
	tokenBytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("ошибка генерации рефреш токена: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}
