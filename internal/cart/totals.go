package cart

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// shipping is 2% of the subtotal, capped
	shippingRate = decimal.RequireFromString("0.02")
	shippingCap  = decimal.NewFromInt(4990)

	// orders from discountThreshold get discountRate off
	discountThreshold = decimal.NewFromInt(50000)
	discountRate      = decimal.RequireFromString("0.05")
)

// ComputeTotals prices a list of cart lines. Amounts are whole pesos,
// rounded half up.
func ComputeTotals(items []domain.CartItem) domain.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	ship := decimal.Zero
	if !subtotal.IsZero() {
		ship = decimal.Min(shippingCap, subtotal.Mul(shippingRate)).Round(0)
	}

	disc := decimal.Zero
	if subtotal.GreaterThanOrEqual(discountThreshold) {
		disc = subtotal.Mul(discountRate).Round(0)
	}

	total := decimal.Max(decimal.Zero, subtotal.Add(ship).Sub(disc))

	return domain.Totals{
		Subtotal: subtotal,
		Shipping: ship,
		Discount: disc,
		Total:    total,
	}
}
