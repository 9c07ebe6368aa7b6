package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// AdminBackend is the sales reporting part of the API client.
type AdminBackend interface {
	SalesSummary(ctx context.Context) (json.RawMessage, error)
	SalesSeries(ctx context.Context, params url.Values) (json.RawMessage, error)
	SalesCSV(ctx context.Context) ([]byte, error)
}

// TokenHolder reports whether a user is logged in.
type TokenHolder interface {
	Token() string
}

type AdminHandler struct {
	backend AdminBackend
	tokens  TokenHolder
	timeout time.Duration
	log     zerolog.Logger
}

func NewAdminHandler(backend AdminBackend, tokens TokenHolder, timeout time.Duration, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		backend: backend,
		tokens:  tokens,
		timeout: timeout,
		log:     log,
	}
}

// RequireLogin rejects admin calls while logged out; the backend checks the role.
func (h *AdminHandler) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.tokens.Token() == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "Inicia sesión como administrador.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	data, err := h.backend.SalesSummary(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// SalesSeries forwards the query string unchanged.
func (h *AdminHandler) SalesSeries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	data, err := h.backend.SalesSeries(ctx, r.URL.Query())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *AdminHandler) SalesCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	data, err := h.backend.SalesCSV(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ventas.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Error().Err(err).Msg("failed to write csv")
	}
}
