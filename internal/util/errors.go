package util

import (
	"encoding/json"
	"errors"
	"net/http"

	"expense-tracker/internal/common"
	"expense-tracker/internal/model/requestresponse"
)

// NotAuthenticatedText : единое сообщение для всех 401, вид ошибки пишется только в лог
const NotAuthenticatedText = "not authenticated"

// ErrorStatus сопоставляет доменную ошибку с HTTP статусом и текстом для клиента
func ErrorStatus(err error) (int, string) {
	switch {
	case common.IsNotAuthenticated(err):
		return http.StatusUnauthorized, NotAuthenticatedText
	case errors.Is(err, common.ErrDuplicateUsername):
		return http.StatusBadRequest, "Username already registered"
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, common.ErrDuplicateUser):
		return http.StatusBadRequest, "User already registered"
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleError пишет JSON тело ошибки; для 401 добавляет WWW-Authenticate
func HandleError(w http.ResponseWriter, err error) {
	statusCode, message := ErrorStatus(err)
	WriteError(w, statusCode, message)
}

func WriteError(w http.ResponseWriter, statusCode int, message string) {
	if statusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteJSON(w, statusCode, requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: message,
		},
	})
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}
