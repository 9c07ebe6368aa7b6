package domain

import "github.com/shopspring/decimal"

// CartItem is one line of the client-held cart. JSON names match the
// format the storefront persists under the "carrito" key.
type CartItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"nombre"`
	Price    float64 `json:"precio"`
	Stock    int     `json:"stock"`
	Quantity int     `json:"cant"`
}

// LineTotal is precio * cant.
func (i CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Customer is the buyer captured at checkout, kept under "cliente" until
// the order goes through.
type Customer struct {
	Name  string `json:"nombre"`
	Email string `json:"email"`
}

// Receipt is what the storefront shows after a successful checkout.
type Receipt struct {
	Items []CartItem
	Total decimal.Decimal
	// Fallback is true when the order was placed through per-item purchases.
	Fallback bool
}
