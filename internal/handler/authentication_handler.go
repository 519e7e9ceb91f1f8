package handler

import (
	"net/http"
	"strings"

	"expense-tracker/internal/logging"
	"expense-tracker/internal/model/requestresponse"
	"expense-tracker/internal/ports"
	"expense-tracker/internal/security"
	"expense-tracker/internal/util"
)

type AuthenticationHandler struct {
	authenticationService ports.AuthenticationService
	logger                logging.Logger
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService, logger logging.Logger) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService: authenticationService,
		logger:                logger.With("module", "auth_handler"),
	}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Проверяет логин и пароль, открывает новую сессию. Принимает JSON или форму OAuth2 password flow.
// @Tags Authentication
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse "Пара токенов"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} requestresponse.ErrorResponse "Не аутентифицирован"
// @Failure 503 {object} requestresponse.ErrorResponse "Хранилище недоступно"
// @Router /api/auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Username == "" || req.Password == "" {
		util.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	tokens, err := h.authenticationService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, h.logger, "login", err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	})
}

// RefreshToken godoc
// @Summary Обновление access токена
// @Description Выпускает новый access токен по refresh токену. Новый refresh токен возвращается только при включенной ротации.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.RefreshTokenResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Токен истек, отозван или не найден"
// @Failure 503 {object} requestresponse.ErrorResponse "Хранилище недоступно"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, err := h.authenticationService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, r, h.logger, "refresh", err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.RefreshTokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	})
}

// Logout godoc
// @Summary Завершение сессии
// @Description Отзывает один refresh токен. Повторный вызов возвращает revoked=false.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LogoutRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LogoutResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 503 {object} requestresponse.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.RefreshToken == "" {
		util.WriteError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	revoked, err := h.authenticationService.Logout(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, r, h.logger, "logout", err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.LogoutResponse{Revoked: revoked})
}

// LogoutAll godoc
// @Summary Завершение всех сессий
// @Description Отзывает все refresh токены владельца access токена. Выданные access токены действуют до истечения.
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.LogoutAllResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 503 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/logout-all [post]
func (h *AuthenticationHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	principal, err := security.GetPrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, r, h.logger, "logout-all", err)
		return
	}

	count, err := h.authenticationService.LogoutAll(r.Context(), principal.AccessToken)
	if err != nil {
		respondError(w, r, h.logger, "logout-all", err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.LogoutAllResponse{RevokedCount: count})
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Description Возвращает пользователя, которому выдан access токен
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 503 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/me [get]
func (h *AuthenticationHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, err := security.GetPrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, r, h.logger, "me", err)
		return
	}

	user, err := h.authenticationService.ResolveCurrentUser(r.Context(), principal.AccessToken)
	if err != nil {
		respondError(w, r, h.logger, "me", err)
		return
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.NewUserResponse(user))
}

// GetCurrentUserHead godoc
// @Summary Проверка access токена
// @Tags Authentication
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/me [head]
func (h *AuthenticationHandler) GetCurrentUserHead(w http.ResponseWriter, r *http.Request) {
	h.GetCurrentUser(w, r)
}

func isFormRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
