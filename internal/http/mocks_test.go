package http

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/shopspring/decimal"
)

// StorefrontMock implements CartService, CatalogService and CheckoutService.
type StorefrontMock struct {
	mu sync.Mutex

	Items       []domain.CartItem
	AddErr      error
	CatalogView *service.Catalog
	CatalogErr  error
	Cats        []string
	CatErr      error
	Receipt     *domain.Receipt
	CheckoutErr error

	AddedProduct domain.Product
	AddedQty     int
	Changed      map[int64]int
	Removed      []int64
	Cleared      bool
	FiltersSet   *domain.Filters
	Customer     domain.Customer
	Reloaded     bool
}

func (m *StorefrontMock) AddToCart(_ context.Context, p domain.Product, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddedProduct, m.AddedQty = p, qty
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Items = append(m.Items, domain.CartItem{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock, Quantity: qty})
	return nil
}

func (m *StorefrontMock) RemoveFromCart(_ context.Context, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, id)
}

func (m *StorefrontMock) ChangeQty(_ context.Context, id int64, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Changed == nil {
		m.Changed = map[int64]int{}
	}
	m.Changed[id] += delta
}

func (m *StorefrontMock) ClearCart(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cleared = true
	m.Items = nil
}

func (m *StorefrontMock) Summary(_ context.Context) *service.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	sub := decimal.Zero
	for _, it := range m.Items {
		count += it.Quantity
		sub = sub.Add(it.LineTotal())
	}
	return &service.Summary{
		Items:  append([]domain.CartItem(nil), m.Items...),
		Count:  count,
		Totals: domain.Totals{Subtotal: sub, Shipping: decimal.Zero, Discount: decimal.Zero, Total: sub},
	}
}

func (m *StorefrontMock) Catalog() *service.Catalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CatalogView == nil {
		return &service.Catalog{Page: 1, Size: 12, TotalPages: 1}
	}
	return m.CatalogView
}

func (m *StorefrontMock) Reload(_ context.Context) (*service.Catalog, error) {
	m.mu.Lock()
	m.Reloaded = true
	m.mu.Unlock()
	return m.Catalog(), m.CatalogErr
}

func (m *StorefrontMock) LoadMore(_ context.Context) (*service.Catalog, error) {
	if m.CatalogErr != nil {
		return nil, m.CatalogErr
	}
	return m.Catalog(), nil
}

func (m *StorefrontMock) SetFilters(_ context.Context, q, cat string) (*service.Catalog, error) {
	m.mu.Lock()
	m.FiltersSet = &domain.Filters{Query: q, Category: cat}
	m.mu.Unlock()
	if m.CatalogErr != nil {
		return nil, m.CatalogErr
	}
	return m.Catalog(), nil
}

func (m *StorefrontMock) Filters() domain.Filters {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FiltersSet == nil {
		return domain.Filters{}
	}
	return *m.FiltersSet
}

func (m *StorefrontMock) Categories() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Cats
}

func (m *StorefrontMock) LoadCategories(_ context.Context) ([]string, error) {
	if m.CatErr != nil {
		return []string{}, m.CatErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cats = []string{"Bebidas"}
	return m.Cats, nil
}

func (m *StorefrontMock) Checkout(_ context.Context, customer domain.Customer) (*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Customer = customer
	return m.Receipt, m.CheckoutErr
}

type SessionMock struct {
	mu       sync.Mutex
	Profile  *domain.UserProfile
	Tok      string
	LoginErr error
	RegErr   error
	Cleared  bool
}

func (m *SessionMock) Login(_ context.Context, _, _ string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	m.Tok = "tok"
	m.Profile = &domain.UserProfile{Email: "ana@x.io", Name: "Ana"}
	return m.Profile, nil
}

func (m *SessionMock) Register(_ context.Context, _, _, _ string) error {
	return m.RegErr
}

func (m *SessionMock) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cleared = true
	m.Tok = ""
	m.Profile = nil
}

func (m *SessionMock) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Tok
}

func (m *SessionMock) User() *domain.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Profile
}

func (m *SessionMock) DisplayName() string {
	if u := m.User(); u != nil {
		return u.Name
	}
	return "Invitado"
}

type AdminMock struct {
	Summary    json.RawMessage
	CSV        []byte
	Err        error
	SeriesArgs url.Values
}

func (m *AdminMock) SalesSummary(_ context.Context) (json.RawMessage, error) {
	return m.Summary, m.Err
}

func (m *AdminMock) SalesSeries(_ context.Context, params url.Values) (json.RawMessage, error) {
	m.SeriesArgs = params
	return json.RawMessage(`[]`), m.Err
}

func (m *AdminMock) SalesCSV(_ context.Context) ([]byte, error) {
	return m.CSV, m.Err
}
