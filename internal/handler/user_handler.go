package handler

import (
	"encoding/json"
	"net/http"

	"expense-tracker/internal/common"
	"expense-tracker/internal/logging"
	"expense-tracker/internal/model/requestresponse"
	"expense-tracker/internal/ports"
	"expense-tracker/internal/util"
)

const maxBodyBytes = 1 << 20

type UserHandler struct {
	credentials ports.CredentialStore
	logger      logging.Logger
}

func NewUserHandler(credentials ports.CredentialStore, logger logging.Logger) *UserHandler {
	return &UserHandler{
		credentials: credentials,
		logger:      logger.With("module", "user_handler"),
	}
}

// RegisterUser godoc
// @Summary Регистрация пользователя
// @Description Создает пользователя с уникальными username и email
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} requestresponse.UserResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректные данные или пользователь уже существует"
// @Failure 503 {object} requestresponse.ErrorResponse "Хранилище недоступно"
// @Router /api/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.credentials.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, "register", err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.NewUserResponse(user))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid request body")
		return err
	}
	return nil
}

// respondError пишет вид ошибки в лог, клиенту уходит только обобщенный ответ
func respondError(w http.ResponseWriter, r *http.Request, logger logging.Logger, operation string, err error) {
	statusCode, _ := util.ErrorStatus(err)
	switch {
	case statusCode >= http.StatusInternalServerError:
		logger.Error(r.Context(), "ошибка обработки запроса", "operation", operation, "error", err)
	case common.IsNotAuthenticated(err):
		logger.Info(r.Context(), "запрос не аутентифицирован", "operation", operation, "kind", err.Error())
	default:
		logger.Info(r.Context(), "запрос отклонен", "operation", operation, "error", err)
	}
	util.HandleError(w, err)
}
