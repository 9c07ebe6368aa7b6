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

// CatalogService is what the catalog routes need from the storefront.
type CatalogService interface {
	Catalog() *service.Catalog
	Reload(ctx context.Context) (*service.Catalog, error)
	LoadMore(ctx context.Context) (*service.Catalog, error)
	SetFilters(ctx context.Context, q, cat string) (*service.Catalog, error)
	Filters() domain.Filters
	Categories() []string
	LoadCategories(ctx context.Context) ([]string, error)
}

type ProductHandler struct {
	svc     CatalogService
	timeout time.Duration
	log     zerolog.Logger
}

func NewProductHandler(svc CatalogService, timeout time.Duration, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		svc:     svc,
		timeout: timeout,
		log:     log,
	}
}

type FiltersRequestDTO struct {
	Query    string `json:"q"`
	Category string `json:"cat"`
}

// ListProducts returns the loaded grid. A q or cat query parameter applies
// new filters first, keeping the current value of the one not given;
// reload=1 refetches page 1 with the current ones.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query := r.URL.Query()
	var (
		cat *service.Catalog
		err error
	)
	switch {
	case query.Has("q") || query.Has("cat"):
		f := h.svc.Filters()
		if query.Has("q") {
			f.Query = query.Get("q")
		}
		if query.Has("cat") {
			f.Category = query.Get("cat")
		}
		cat, err = h.svc.SetFilters(ctx, f.Query, f.Category)
	case query.Get("reload") == "1":
		cat, err = h.svc.Reload(ctx)
	default:
		cat = h.svc.Catalog()
	}
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, toCatalogDTO(cat))
}

func (h *ProductHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cat, err := h.svc.LoadMore(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toCatalogDTO(cat))
}

// ListCategories serves the cached list, fetching it when empty.
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cats := h.svc.Categories()
	if len(cats) == 0 {
		var err error
		if cats, err = h.svc.LoadCategories(ctx); err != nil {
			handleServiceError(w, r, h.log, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, cats)
}

func (h *ProductHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Filters())
}

func (h *ProductHandler) PutFilters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req FiltersRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cat, err := h.svc.SetFilters(ctx, req.Query, req.Category)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toCatalogDTO(cat))
}
