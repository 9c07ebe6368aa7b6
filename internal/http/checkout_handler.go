package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/rs/zerolog"
)

type CheckoutService interface {
	Summary(ctx context.Context) *service.Summary
	Checkout(ctx context.Context, customer domain.Customer) (*domain.Receipt, error)
}

type CheckoutHandler struct {
	svc     CheckoutService
	timeout time.Duration
	log     zerolog.Logger
}

func NewCheckoutHandler(svc CheckoutService, timeout time.Duration, log zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		svc:     svc,
		timeout: timeout,
		log:     log,
	}
}

func (h *CheckoutHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, toSummaryDTO(h.svc.Summary(ctx)))
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	receipt, err := h.svc.Checkout(ctx, req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, ReceiptDTO{
		Items:    toItemDTOs(receipt.Items),
		Total:    receipt.Total.InexactFloat64(),
		Fallback: receipt.Fallback,
	})
}
