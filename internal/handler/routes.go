package handler

import (
	"net/http"

	"expense-tracker/internal/util"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes регистрирует все маршруты API. authMiddleware проверяет
// Bearer токен на защищенных маршрутах.
func SetupRoutes(r chi.Router, auth *AuthenticationHandler, users *UserHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/healthz", Healthz)

	setupUserRoutes(r, users)
	setupAuthRoutes(r, auth, authMiddleware)
}

func setupAuthRoutes(r chi.Router, h *AuthenticationHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/refresh", h.RefreshToken)
			r.Post("/logout", h.Logout)
		})
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/me", h.GetCurrentUser)
			r.Head("/me", h.GetCurrentUserHead)
		})
	})
}

func setupUserRoutes(r chi.Router, h *UserHandler) {
	r.Post("/api/register", h.RegisterUser)
}

// Healthz godoc
// @Summary Проверка доступности
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func Healthz(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
