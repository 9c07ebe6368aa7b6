package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const DefaultPageSize = 12

// Backend is the part of the API client used by the storefront.
type Backend interface {
	ResolveBase(ctx context.Context) string
	ListProducts(ctx context.Context, page, size int, q, cat string) (*domain.ProductPage, error)
	ListCategories(ctx context.Context) ([]string, error)
	Checkout(ctx context.Context, items []domain.CartItem, customer domain.Customer) (json.RawMessage, error)
	Purchase(ctx context.Context, productID int64, quantity int) error
}

// Session is the part of the auth session the storefront drives on boot.
type Session interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
}

type StorefrontImpl struct {
	backend Backend
	session Session
	cart    *cart.Store
	store   storage.Store
	log     zerolog.Logger

	pages singleflight.Group

	mu         sync.RWMutex
	page       int
	size       int
	filters    domain.Filters
	totalPages int
	products   []domain.Product
	categories []string
	// gen changes whenever the filters or the page-1 view are reset, so
	// late page loads for an older view are dropped.
	gen uint64
}

func NewStorefront(backend Backend, session Session, cartStore *cart.Store, store storage.Store, pageSize int, log zerolog.Logger) *StorefrontImpl {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &StorefrontImpl{
		backend:    backend,
		session:    session,
		cart:       cartStore,
		store:      store,
		log:        log.With().Str("component", "storefront").Logger(),
		page:       1,
		size:       pageSize,
		totalPages: 1,
	}
}

// Catalog is the product grid as currently loaded.
type Catalog struct {
	Items      []domain.Product
	Page       int
	Size       int
	TotalPages int
	Filters    domain.Filters
}

func (c Catalog) HasMore() bool {
	return c.Page < c.TotalPages
}

// Summary is what the checkout form shows.
type Summary struct {
	Items    []domain.CartItem
	Count    int
	Totals   domain.Totals
	Customer *domain.Customer
}
