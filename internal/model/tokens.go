package model

import "time"

// TokenTypeBearer : значение поля token_type в ответах
const TokenTypeBearer = "bearer"

// RefreshToken : строка таблицы refresh_tokens.
// IsActive меняется только true -> false, обратно токен не оживает.
type RefreshToken struct {
	Token     string    `db:"token"`
	UserUUID  string    `db:"user_uuid"`
	ExpiresAt time.Time `db:"expires_at"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired : истек ли токен к моменту now (граница включительно)
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// Refresh токен; пустой, если при refresh токен не ротировался
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refresh_token,omitempty"`

	// Всегда "bearer"
	TokenType string `json:"token_type"`
}
