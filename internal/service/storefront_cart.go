package service

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

// AddToCart puts qty units of p in the cart. When p is on the loaded grid
// the grid's copy is used, so a stale client stock cannot overfill a line.
func (s *StorefrontImpl) AddToCart(ctx context.Context, p domain.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if known, ok := s.product(p.ID); ok {
		p = known
	}
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	s.cart.AddItem(ctx, p, qty)
	return nil
}

func (s *StorefrontImpl) Cart() []domain.CartItem {
	return s.cart.Items()
}

func (s *StorefrontImpl) RemoveFromCart(ctx context.Context, id int64) {
	s.cart.RemoveItem(ctx, id)
}

func (s *StorefrontImpl) ChangeQty(ctx context.Context, id int64, delta int) {
	s.cart.ChangeQty(ctx, id, delta)
}

func (s *StorefrontImpl) ClearCart(ctx context.Context) {
	s.cart.Clear(ctx)
}

func (s *StorefrontImpl) Summary(ctx context.Context) *Summary {
	return &Summary{
		Items:    s.cart.Items(),
		Count:    s.cart.Count(),
		Totals:   s.cart.Totals(),
		Customer: s.customer(ctx),
	}
}

func (s *StorefrontImpl) product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// customer is the buyer remembered from an unfinished checkout.
func (s *StorefrontImpl) customer(ctx context.Context) *domain.Customer {
	var c domain.Customer
	err := storage.GetJSON(ctx, s.store, storage.KeyCustomer, &c)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn().Err(err).Msg("ignoring stored customer")
		}
		return nil
	}
	return &c
}
