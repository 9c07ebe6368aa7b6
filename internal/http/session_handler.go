package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/rs/zerolog"
)

type SessionService interface {
	Login(ctx context.Context, email, password string) (*domain.UserProfile, error)
	Register(ctx context.Context, email, name, password string) error
	Clear(ctx context.Context)
	Token() string
	User() *domain.UserProfile
	DisplayName() string
}

type SessionHandler struct {
	svc     SessionService
	timeout time.Duration
	log     zerolog.Logger
}

func NewSessionHandler(svc SessionService, timeout time.Duration, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		svc:     svc,
		timeout: timeout,
		log:     log,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Email    string `json:"email"`
	Name     string `json:"nombre"`
	Password string `json:"password"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, err := h.svc.Login(ctx, req.Email, req.Password); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.current())
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.svc.Register(ctx, req.Email, req.Name, req.Password); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.svc.Clear(ctx)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.current())
}

func (h *SessionHandler) current() SessionDTO {
	return SessionDTO{
		Authenticated: h.svc.Token() != "",
		DisplayName:   h.svc.DisplayName(),
		User:          h.svc.User(),
	}
}
