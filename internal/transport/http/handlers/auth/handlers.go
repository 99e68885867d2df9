package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"calcfolha/internal/domain/auth"
	"calcfolha/internal/transport/http/api"
	"calcfolha/internal/transport/http/middleware"
	"calcfolha/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	Logger  *zap.Logger
}

func NewHandler(service *auth.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: service, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.With(middleware.RequireAuth).Get("/auth/me", h.HandleMe)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, reqID) {
		return
	}

	session, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		h.Logger.Error("login failed", zap.Error(err), zap.String("requestId", reqID))
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to login", reqID)
		return
	}

	api.Success(w, session, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, map[string]any{"userId": user.UserID, "admin": user.Admin}, middleware.GetRequestID(r.Context()))
}
