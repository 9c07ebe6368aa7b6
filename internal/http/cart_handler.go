package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartService is what the cart routes need from the storefront.
type CartService interface {
	AddToCart(ctx context.Context, p domain.Product, qty int) error
	RemoveFromCart(ctx context.Context, id int64)
	ChangeQty(ctx context.Context, id int64, delta int)
	ClearCart(ctx context.Context)
	Summary(ctx context.Context) *service.Summary
}

type CartHandler struct {
	svc     CartService
	timeout time.Duration
	log     zerolog.Logger
}

func NewCartHandler(svc CartService, timeout time.Duration, log zerolog.Logger) *CartHandler {
	return &CartHandler{
		svc:     svc,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type ChangeQtyRequestDTO struct {
	Delta int `json:"delta"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, h.cart(ctx))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product.id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.svc.AddToCart(ctx, req.Product, req.Quantity); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.cart(ctx))
}

func (h *CartHandler) ChangeQty(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req ChangeQtyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.svc.ChangeQty(ctx, productID, req.Delta)
	respondJSON(w, http.StatusOK, h.cart(ctx))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	h.svc.RemoveFromCart(ctx, productID)
	respondJSON(w, http.StatusOK, h.cart(ctx))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.svc.ClearCart(ctx)
	respondJSON(w, http.StatusOK, h.cart(ctx))
}

func (h *CartHandler) cart(ctx context.Context) CartDTO {
	return toSummaryDTO(h.svc.Summary(ctx)).CartDTO
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
