package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

// Checkout places the order for the whole cart. A backend without
// /checkout (404 or 405) gets one purchase per line instead. The cart is
// only cleared once the order went through.
func (s *StorefrontImpl) Checkout(ctx context.Context, customer domain.Customer) (*domain.Receipt, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)
	if !session.ValidName(customer.Name) {
		return nil, &session.ValidationError{Field: "nombre", Message: "Ingresa tu nombre."}
	}
	if !session.ValidEmail(customer.Email) {
		return nil, &session.ValidationError{Field: "email", Message: "Ingresa un email válido."}
	}

	if err := storage.SetJSON(ctx, s.store, storage.KeyCustomer, customer); err != nil {
		s.log.Error().Err(err).Msg("customer persist failed")
	}

	total := s.cart.Totals().Total
	fallback := false

	if _, err := s.backend.Checkout(ctx, items, customer); err != nil {
		if !apiclient.IsNotFoundOrNotAllowed(err) {
			return nil, fmt.Errorf("checkout failed: %w", err)
		}
		s.log.Info().Int("status", apiclient.StatusOf(err)).Msg("checkout endpoint missing, purchasing per item")
		if err := s.purchaseEach(ctx, items); err != nil {
			return nil, err
		}
		fallback = true
	}

	s.cart.Clear(ctx)
	if err := s.store.Remove(ctx, storage.KeyCustomer); err != nil {
		s.log.Error().Err(err).Msg("customer remove failed")
	}
	if _, err := s.Reload(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog reload after checkout failed")
	}

	s.log.Info().
		Int("lines", len(items)).
		Str("total", total.String()).
		Bool("fallback", fallback).
		Msg("order placed")

	return &domain.Receipt{Items: items, Total: total, Fallback: fallback}, nil
}

// purchaseEach stops at the first failing line.
func (s *StorefrontImpl) purchaseEach(ctx context.Context, items []domain.CartItem) error {
	for _, it := range items {
		if err := s.backend.Purchase(ctx, it.ID, it.Quantity); err != nil {
			return fmt.Errorf("purchase of product %d failed: %w", it.ID, err)
		}
	}
	return nil
}
