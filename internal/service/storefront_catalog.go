package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// LoadCategories fetches the category list. On failure the list is emptied.
func (s *StorefrontImpl) LoadCategories(ctx context.Context) ([]string, error) {
	cats, err := s.backend.ListCategories(ctx)
	if err != nil {
		cats = nil
	}

	s.mu.Lock()
	s.categories = cats
	s.mu.Unlock()

	if err != nil {
		return []string{}, fmt.Errorf("failed to load categories: %w", err)
	}
	return s.Categories(), nil
}

func (s *StorefrontImpl) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *StorefrontImpl) Filters() domain.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SetFilters trims and persists the filters and reloads page 1.
func (s *StorefrontImpl) SetFilters(ctx context.Context, q, cat string) (*Catalog, error) {
	f := domain.Filters{
		Query:    strings.TrimSpace(q),
		Category: s.matchCategory(strings.TrimSpace(cat)),
	}

	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()

	if err := storage.SetJSON(ctx, s.store, storage.KeyFilters, f); err != nil {
		s.log.Error().Err(err).Msg("filters persist failed")
	}
	return s.Reload(ctx)
}

// Reload fetches page 1 for the current filters and replaces the grid.
func (s *StorefrontImpl) Reload(ctx context.Context) (*Catalog, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	f := s.filters
	size := s.size
	s.mu.Unlock()

	res, err := s.fetchPage(ctx, 1, size, f)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen == s.gen {
		s.page = 1
		s.totalPages = res.TotalPages
		s.products = append([]domain.Product(nil), res.Items...)
	}
	s.mu.Unlock()
	return s.Catalog(), nil
}

// LoadMore appends the next page. It returns ErrNoMorePages on the last page.
func (s *StorefrontImpl) LoadMore(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	gen := s.gen
	next := s.page + 1
	hasMore := s.page < s.totalPages
	f := s.filters
	size := s.size
	s.mu.RUnlock()

	if !hasMore {
		return nil, ErrNoMorePages
	}

	res, err := s.fetchPage(ctx, next, size, f)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// Only the first caller for a page appends it.
	if gen == s.gen && s.page == next-1 {
		s.page = next
		s.totalPages = res.TotalPages
		s.products = append(s.products, res.Items...)
	}
	s.mu.Unlock()
	return s.Catalog(), nil
}

func (s *StorefrontImpl) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Product, len(s.products))
	copy(items, s.products)
	return &Catalog{
		Items:      items,
		Page:       s.page,
		Size:       s.size,
		TotalPages: s.totalPages,
		Filters:    s.filters,
	}
}

// fetchPage coalesces identical concurrent page requests into one call.
func (s *StorefrontImpl) fetchPage(ctx context.Context, page, size int, f domain.Filters) (*domain.ProductPage, error) {
	key := fmt.Sprintf("%d|%d|%s|%s", page, size, f.Query, f.Category)
	// Shared by every caller with the same key, so the first caller's
	// cancellation must not reach it. The client's attempt timeout bounds it.
	sctx := context.WithoutCancel(ctx)
	v, err, shared := s.pages.Do(key, func() (any, error) {
		return s.backend.ListProducts(sctx, page, size, f.Query, f.Category)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load products page %d: %w", page, err)
	}
	if shared {
		s.log.Debug().Str("key", key).Msg("page load coalesced")
	}
	return v.(*domain.ProductPage), nil
}

// matchCategory maps cat onto a known category ignoring case and accents.
// Unknown values pass through unchanged.
func (s *StorefrontImpl) matchCategory(cat string) string {
	if cat == "" {
		return ""
	}
	for _, c := range s.Categories() {
		if fuzzy.MatchNormalizedFold(cat, c) && fuzzy.MatchNormalizedFold(c, cat) {
			return c
		}
	}
	return cat
}

func (s *StorefrontImpl) restoreFilters(ctx context.Context) {
	var f domain.Filters
	err := storage.GetJSON(ctx, s.store, storage.KeyFilters, &f)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return
	default:
		s.log.Warn().Err(err).Msg("ignoring stored filters")
		return
	}

	f.Query = strings.TrimSpace(f.Query)
	f.Category = s.matchCategory(strings.TrimSpace(f.Category))

	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
}
