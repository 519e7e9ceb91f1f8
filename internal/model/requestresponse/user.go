package requestresponse

import "expense-tracker/internal/model"

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"P@ssw0rd!"`
}

// UserResponse : публичные данные пользователя
type UserResponse struct {
	UUID     string `json:"uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"a@x.com"`
}

// NewUserResponse : без хэша пароля и служебных полей
func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		UUID:     user.UUID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code int    `json:"code" example:"401"`
	Text string `json:"text" example:"not authenticated"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
