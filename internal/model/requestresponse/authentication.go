package requestresponse

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// LoginResponse : ответ на успешную аутентификацию
type LoginResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ..."`
	TokenType    string `json:"token_type" example:"bearer"`
}

// RefreshTokenRequest : запрос на новый access токен
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ..."`
}

// RefreshTokenResponse : ответ на успешный refresh.
// RefreshToken заполняется только при включенной ротации.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token,omitempty" example:"vcSi0369y1I62wOpxZFpgZ..."`
	TokenType    string `json:"token_type" example:"bearer"`
}

// LogoutRequest : завершение одной сессии
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ..."`
}

// LogoutResponse : revoked=false, если токен уже был отозван или не существует
type LogoutResponse struct {
	Revoked bool `json:"revoked" example:"true"`
}

// LogoutAllResponse : сколько активных сессий было отозвано
type LogoutAllResponse struct {
	RevokedCount int64 `json:"revoked_count" example:"2"`
}
