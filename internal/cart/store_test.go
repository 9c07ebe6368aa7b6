package cart

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	m      sync.Mutex
	data   map[string][]byte
	err    error
	writes int
}

func newMockStorage() *mockStorage {
	return &mockStorage{data: make(map[string][]byte)}
}

func (m *mockStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *mockStorage) Set(_ context.Context, key string, value []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.writes++
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *mockStorage) Remove(_ context.Context, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.data, key)
	return m.err
}

func (m *mockStorage) Close() error { return nil }

func setupCart(t *testing.T) (*Store, *mockStorage) {
	t.Helper()
	st := newMockStorage()
	return NewStore(st, zerolog.Nop()), st
}

func persisted(t *testing.T, st *mockStorage) []domain.CartItem {
	t.Helper()
	var items []domain.CartItem
	require.NoError(t, storage.GetJSON(context.Background(), st, storage.KeyCart, &items))
	return items
}

var (
	mouse    = domain.Product{ID: 1, Name: "Mouse", Price: 9990, Stock: 3}
	keyboard = domain.Product{ID: 2, Name: "Teclado", Price: 24990, Stock: 10}
)

func TestAddItem_NewItemClampedToStock(t *testing.T) {
	c, st := setupCart(t)
	ctx := context.Background()

	c.AddItem(ctx, mouse, 5)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "Mouse", items[0].Name)
	assert.Equal(t, items, persisted(t, st))
}

func TestAddItem_ExistingItemNeverExceedsStock(t *testing.T) {
	c, _ := setupCart(t)
	ctx := context.Background()

	c.AddItem(ctx, mouse, 1)
	c.AddItem(ctx, mouse, 1)
	assert.Equal(t, 2, c.Items()[0].Quantity)

	c.AddItem(ctx, mouse, 100)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddItem_KeepsInsertionOrder(t *testing.T) {
	c, _ := setupCart(t)
	ctx := context.Background()

	c.AddItem(ctx, keyboard, 1)
	c.AddItem(ctx, mouse, 1)
	c.AddItem(ctx, keyboard, 1)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, int64(1), items[1].ID)
}

func TestAddItem_IgnoresOutOfStockAndBadQuantity(t *testing.T) {
	c, st := setupCart(t)
	ctx := context.Background()

	c.AddItem(ctx, domain.Product{ID: 9, Name: "Agotado", Price: 1000, Stock: 0}, 1)
	c.AddItem(ctx, mouse, 0)
	c.AddItem(ctx, mouse, -2)

	assert.Empty(t, c.Items())
	assert.Zero(t, st.writes)
}

func TestRemoveItem(t *testing.T) {
	c, st := setupCart(t)
	ctx := context.Background()
	c.AddItem(ctx, mouse, 1)
	c.AddItem(ctx, keyboard, 1)

	c.RemoveItem(ctx, mouse.ID)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, keyboard.ID, items[0].ID)
	assert.Equal(t, items, persisted(t, st))
}

func TestRemoveItem_UnknownIDIsNoop(t *testing.T) {
	c, _ := setupCart(t)
	ctx := context.Background()
	c.AddItem(ctx, mouse, 2)
	before := c.Items()

	c.RemoveItem(ctx, 404)

	assert.Equal(t, before, c.Items())
}

func TestChangeQty_ClampsBetweenOneAndStock(t *testing.T) {
	c, st := setupCart(t)
	ctx := context.Background()
	c.AddItem(ctx, mouse, 2)

	c.ChangeQty(ctx, mouse.ID, +1)
	assert.Equal(t, 3, c.Items()[0].Quantity)

	c.ChangeQty(ctx, mouse.ID, +1)
	assert.Equal(t, 3, c.Items()[0].Quantity)

	c.ChangeQty(ctx, mouse.ID, -10)
	assert.Equal(t, 1, c.Items()[0].Quantity, "ChangeQty must not remove the line")
	assert.Equal(t, 1, persisted(t, st)[0].Quantity)
}

func TestQuantity_ExtremeValuesStayInRange(t *testing.T) {
	c, st := setupCart(t)
	ctx := context.Background()

	c.AddItem(ctx, mouse, 1)
	c.AddItem(ctx, mouse, math.MaxInt)
	assert.Equal(t, 3, c.Items()[0].Quantity)

	c.ChangeQty(ctx, mouse.ID, -1)
	c.ChangeQty(ctx, mouse.ID, math.MaxInt)
	assert.Equal(t, 3, c.Items()[0].Quantity)

	c.ChangeQty(ctx, mouse.ID, math.MinInt)
	assert.Equal(t, 1, c.Items()[0].Quantity)

	c.AddItem(ctx, keyboard, math.MaxInt)
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 10, items[1].Quantity)
	assertAmount(t, 9990+10*24990, c.Totals().Subtotal, "subtotal")
	assert.Equal(t, items, persisted(t, st))
}

func TestClampAdd(t *testing.T) {
	tests := []struct {
		n, delta, limit, want int
	}{
		{2, 1, 3, 3},
		{2, math.MaxInt, 3, 3},
		{2, -1, 3, 1},
		{2, math.MinInt, 3, 0},
		{0, 0, 5, 0},
		{5, -5, 5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampAdd(tt.n, tt.delta, tt.limit), "clampAdd(%d, %d, %d)", tt.n, tt.delta, tt.limit)
	}
}

func TestChangeQty_UnknownIDIsNoop(t *testing.T) {
	c, st := setupCart(t)
	c.ChangeQty(context.Background(), 77, 1)

	assert.Empty(t, c.Items())
	assert.Zero(t, st.writes)
}

func TestClear(t *testing.T) {
	c, st := setupCart(t)
	ctx := context.Background()
	c.AddItem(ctx, mouse, 1)

	c.Clear(ctx)

	assert.Empty(t, c.Items())
	assert.Zero(t, c.Count())
	assert.Empty(t, persisted(t, st))
	stored, _ := st.Get(ctx, storage.KeyCart)
	assert.Equal(t, "[]", string(stored))
}

func TestCountAndTotals(t *testing.T) {
	c, _ := setupCart(t)
	ctx := context.Background()
	c.AddItem(ctx, mouse, 2)
	c.AddItem(ctx, keyboard, 1)

	assert.Equal(t, 3, c.Count())
	assertAmount(t, 44970, c.Totals().Subtotal, "subtotal")
}

func TestMutations_SurvivePersistFailure(t *testing.T) {
	c, st := setupCart(t)
	st.err = errors.New("disk full")

	c.AddItem(context.Background(), mouse, 1)

	assert.Len(t, c.Items(), 1)
	assert.Equal(t, 1, st.writes)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		c, _ := setupCart(t)
		require.NoError(t, c.Load(ctx))
		assert.Empty(t, c.Items())
	})

	t.Run("corrupt", func(t *testing.T) {
		c, st := setupCart(t)
		st.data[storage.KeyCart] = []byte(`{"not":"a list"`)
		require.NoError(t, c.Load(ctx))
		assert.Empty(t, c.Items())
	})

	t.Run("wrong shape", func(t *testing.T) {
		c, st := setupCart(t)
		st.data[storage.KeyCart] = []byte(`{"id":1}`)
		require.NoError(t, c.Load(ctx))
		assert.Empty(t, c.Items())
	})

	t.Run("restores and sanitizes", func(t *testing.T) {
		c, st := setupCart(t)
		st.data[storage.KeyCart] = []byte(`[
			{"id":1,"nombre":"Mouse","precio":9990,"stock":3,"cant":7},
			{"id":1,"nombre":"Mouse dup","precio":9990,"stock":3,"cant":1},
			{"id":2,"nombre":"Sin stock","precio":100,"stock":0,"cant":1},
			{"id":3,"nombre":"Cable","precio":2990,"stock":4,"cant":0}
		]`)
		require.NoError(t, c.Load(ctx))

		items := c.Items()
		require.Len(t, items, 2)
		assert.Equal(t, domain.CartItem{ID: 1, Name: "Mouse", Price: 9990, Stock: 3, Quantity: 3}, items[0])
		assert.Equal(t, 1, items[1].Quantity)
	})

	t.Run("backend failure", func(t *testing.T) {
		c, st := setupCart(t)
		st.err = errors.New("connection refused")
		assert.ErrorContains(t, c.Load(ctx), "connection refused")
	})
}

func TestItems_ReturnsCopy(t *testing.T) {
	c, _ := setupCart(t)
	c.AddItem(context.Background(), mouse, 1)

	items := c.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestQuantityInvariant_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	products := []domain.Product{
		mouse,
		keyboard,
		{ID: 3, Name: "Cable", Price: 2990, Stock: 1},
	}

	for run := 0; run < 50; run++ {
		c, _ := setupCart(t)
		ctx := context.Background()

		for step := 0; step < 100; step++ {
			p := products[rng.Intn(len(products))]
			switch rng.Intn(3) {
			case 0:
				c.AddItem(ctx, p, rng.Intn(6)+1)
			case 1:
				c.ChangeQty(ctx, p.ID, rng.Intn(9)-4)
			case 2:
				if rng.Intn(5) == 0 {
					c.RemoveItem(ctx, p.ID)
				}
			}

			seen := map[int64]bool{}
			for _, it := range c.Items() {
				require.False(t, seen[it.ID], "duplicate id %d", it.ID)
				seen[it.ID] = true
				require.GreaterOrEqual(t, it.Quantity, 1)
				require.LessOrEqual(t, it.Quantity, it.Stock)
			}
		}
	}
}

func TestStore_ConcurrentMutations(t *testing.T) {
	c, _ := setupCart(t)
	ctx := context.Background()
	c.AddItem(ctx, keyboard, 1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ChangeQty(ctx, keyboard.ID, 1)
			_ = c.Totals()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, c.Items()[0].Quantity)
}
