package service

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/session"
)

// Boot brings the storefront up: backend discovery, persisted state, the
// category list and the first product page. Only a failing first page is
// returned; everything else is logged.
func (s *StorefrontImpl) Boot(ctx context.Context) error {
	base := s.backend.ResolveBase(ctx)
	s.log.Info().Str("base", base).Msg("storefront booting")

	if err := s.cart.Load(ctx); err != nil {
		s.log.Error().Err(err).Msg("cart load failed")
	}
	if err := s.session.Load(ctx); err != nil {
		s.log.Error().Err(err).Msg("session load failed")
	}

	if _, err := s.LoadCategories(ctx); err != nil {
		s.log.Warn().Err(err).Msg("categories unavailable")
	}
	s.restoreFilters(ctx)

	if err := s.session.Refresh(ctx); err != nil {
		if errors.Is(err, session.ErrStaleAuth) {
			s.log.Info().Err(err).Msg("stored session rejected, logged out")
		} else {
			s.log.Warn().Err(err).Msg("session refresh failed")
		}
	}

	if _, err := s.Reload(ctx); err != nil {
		return err
	}
	return nil
}
