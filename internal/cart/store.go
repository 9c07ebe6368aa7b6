package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/rs/zerolog"
)

// Store is the client-held cart. Every mutation is written through to the
// storage port before the lock is released. Storage failures are logged;
// the in-memory cart stays authoritative.
type Store struct {
	mu    sync.RWMutex
	items []domain.CartItem
	store storage.Store
	log   zerolog.Logger
}

func NewStore(store storage.Store, log zerolog.Logger) *Store {
	return &Store{
		store: store,
		log:   log.With().Str("component", "cart").Logger(),
	}
}

// Load replaces the in-memory cart with the persisted one. A missing or
// undecodable value yields an empty cart; only backend failures are returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []domain.CartItem
	err := storage.GetJSON(ctx, s.store, storage.KeyCart, &items)
	switch {
	case err == nil:
		s.items = sanitize(items)
	case errors.Is(err, storage.ErrNotFound):
		s.items = nil
	default:
		s.items = nil
		var decodeErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &decodeErr) || errors.As(err, &typeErr) {
			s.log.Warn().Err(err).Msg("discarding corrupt cart")
			return nil
		}
		return err
	}
	return nil
}

// AddItem adds qty units of p, merging with an existing line and never
// exceeding stock. Products without stock and non-positive quantities are
// ignored.
func (s *Store) AddItem(ctx context.Context, p domain.Product, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		return
	}

	if i := s.indexOf(p.ID); i >= 0 {
		it := &s.items[i]
		it.Quantity = clampAdd(it.Quantity, qty, it.Stock)
	} else {
		if p.Stock <= 0 {
			return
		}
		s.items = append(s.items, domain.CartItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Stock:    p.Stock,
			Quantity: min(qty, p.Stock),
		})
	}
	s.persist(ctx)
}

// RemoveItem drops the line for id; unknown ids leave the cart unchanged.
func (s *Store) RemoveItem(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.persist(ctx)
}

// ChangeQty moves the quantity of id by delta, clamped to [1, stock].
// It never removes a line.
func (s *Store) ChangeQty(ctx context.Context, id int64, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	it := &s.items[i]
	it.Quantity = max(1, clampAdd(it.Quantity, delta, it.Stock))
	s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the number of units in the cart.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ComputeTotals(s.items)
}

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []domain.CartItem{}
	}
	if err := storage.SetJSON(ctx, s.store, storage.KeyCart, items); err != nil {
		s.log.Error().Err(err).Msg("cart persist failed")
	}
}

// clampAdd returns min(limit, n+delta) without overflowing. n is in
// [0, limit] and the result is never below 0.
func clampAdd(n, delta, limit int) int {
	if delta >= limit-n {
		return limit
	}
	if delta <= -n {
		return 0
	}
	return n + delta
}

// sanitize drops duplicate ids and lines that break 1 <= cant <= stock
// after a load from storage.
func sanitize(items []domain.CartItem) []domain.CartItem {
	seen := make(map[int64]bool, len(items))
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if seen[it.ID] || it.Stock <= 0 {
			continue
		}
		seen[it.ID] = true
		it.Quantity = max(1, min(it.Stock, it.Quantity))
		out = append(out, it)
	}
	return out
}
