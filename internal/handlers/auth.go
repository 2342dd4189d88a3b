package handlers

import (
	"log/slog"
	"net/http"

	"github.com/maynagashev/autoassist/internal/middleware"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/response"
	"github.com/maynagashev/autoassist/internal/services"
)

// AuthHandler обрабатывает запросы /api/auth.
type AuthHandler struct {
	service services.AuthService
	rw      *response.Writer
	log     *slog.Logger
}

func NewAuthHandler(s services.AuthService, rw *response.Writer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: s, rw: rw, log: log}
}

// Register создает учетную запись и отвечает 201 с пользователем и токеном.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, h.rw, &req) {
		return
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.rw.Error(w, r, err)
		return
	}

	h.log.Info("Пользователь зарегистрирован", "user_id", res.User.ID)
	h.rw.JSON(w, http.StatusCreated, response.Envelope{
		Success: true,
		Message: "User registered successfully",
		Data:    res,
	})
}

// Login обменивает учетные данные на токен.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, h.rw, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.rw.Error(w, r, err)
		return
	}
	h.rw.OK(w, res, "Login successful")
}

// Verify подтверждает bearer-токен, проверенный middleware Authenticator.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.rw.Fail(w, http.StatusUnauthorized, response.MsgInvalidToken)
		return
	}
	h.rw.OK(w, userData{User: user}, "Token is valid")
}

// Profile возвращает аутентифицированного пользователя.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.rw.Fail(w, http.StatusUnauthorized, response.MsgInvalidToken)
		return
	}
	h.rw.OK(w, userData{User: user}, "")
}

type userData struct {
	User *models.User `json:"user"`
}
