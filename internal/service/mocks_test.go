package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type listCall struct {
	Page, Size int
	Q, Cat     string
}

// MockBackend implements Backend for testing
type MockBackend struct {
	mu sync.Mutex

	Base        string
	Pages       map[int]*domain.ProductPage
	ListErr     error
	Categories  []string
	CatErr      error
	CheckoutErr error
	// PurchaseErrs fails Purchase for the given product ids.
	PurchaseErrs map[int64]error

	// block, when set, holds ListProducts until closed; entered is signalled first.
	block   chan struct{}
	entered chan struct{}

	ListCalls     []listCall
	CheckoutCalls int
	CheckoutItems []domain.CartItem
	CheckoutCust  domain.Customer
	Purchases     []domain.CartItem
}

func (m *MockBackend) ResolveBase(_ context.Context) string {
	return m.Base
}

func (m *MockBackend) ListProducts(ctx context.Context, page, size int, q, cat string) (*domain.ProductPage, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, listCall{page, size, q, cat})
	block, entered := m.block, m.entered
	m.mu.Unlock()

	if block != nil {
		entered <- struct{}{}
		<-block
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if p, ok := m.Pages[page]; ok {
		return p, nil
	}
	return &domain.ProductPage{Items: []domain.Product{}, TotalPages: 1}, nil
}

func (m *MockBackend) ListCategories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Categories, m.CatErr
}

func (m *MockBackend) Checkout(_ context.Context, items []domain.CartItem, customer domain.Customer) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutCalls++
	m.CheckoutItems = items
	m.CheckoutCust = customer
	return json.RawMessage(`{}`), m.CheckoutErr
}

func (m *MockBackend) Purchase(_ context.Context, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.PurchaseErrs[productID]; err != nil {
		return err
	}
	m.Purchases = append(m.Purchases, domain.CartItem{ID: productID, Quantity: quantity})
	return nil
}

func (m *MockBackend) listCalls() []listCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]listCall(nil), m.ListCalls...)
}

// MockSession implements Session for testing
type MockSession struct {
	LoadErr      error
	RefreshErr   error
	LoadCalls    int
	RefreshCalls int
}

func (m *MockSession) Load(_ context.Context) error {
	m.LoadCalls++
	return m.LoadErr
}

func (m *MockSession) Refresh(_ context.Context) error {
	m.RefreshCalls++
	return m.RefreshErr
}
