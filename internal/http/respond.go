package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts storefront, session and backend errors to
// HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var vErr *session.ValidationError
	var apiErr *apiclient.Error

	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Message, Code: "validation_error", Details: vErr.Field})
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, service.ErrOutOfStock):
		respondError(w, http.StatusBadRequest, "out_of_stock", err.Error())
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, service.ErrNoMorePages):
		respondError(w, http.StatusConflict, "no_more_pages", err.Error())
	case errors.Is(err, session.ErrStaleAuth):
		respondError(w, http.StatusUnauthorized, "stale_auth", "Tu sesión expiró, vuelve a iniciar sesión.")
	case errors.As(err, &apiErr):
		status, code := upstreamStatus(apiErr)
		if status >= http.StatusInternalServerError {
			l := logger.FromContext(r.Context(), log)
			l.Warn().Err(err).Str("kind", apiErr.Kind.String()).Int("upstream_status", apiErr.Status).Msg("backend call failed")
		}
		respondError(w, status, code, apiErr.Message)
	default:
		l := logger.FromContext(r.Context(), log)
		l.Error().Err(err).Msg("unhandled error")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func upstreamStatus(e *apiclient.Error) (int, string) {
	switch e.Kind {
	case apiclient.KindAPI:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status, "upstream_rejected"
		}
		return http.StatusBadGateway, "upstream_error"
	case apiclient.KindTimeout:
		return http.StatusGatewayTimeout, "timeout"
	case apiclient.KindTransient, apiclient.KindNetwork, apiclient.KindUnavailable:
		return http.StatusServiceUnavailable, "service_unavailable"
	default:
		return http.StatusBadGateway, "bad_upstream_response"
	}
}
