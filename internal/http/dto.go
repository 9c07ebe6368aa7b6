package http

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
)

type CartItemDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"nombre"`
	Price     float64 `json:"precio"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"cant"`
	LineTotal float64 `json:"line_total"`
}

type TotalsDTO struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

type CartDTO struct {
	Items  []CartItemDTO `json:"items"`
	Count  int           `json:"count"`
	Totals TotalsDTO     `json:"totals"`
}

type SummaryDTO struct {
	CartDTO
	Customer *domain.Customer `json:"cliente,omitempty"`
}

type ReceiptDTO struct {
	Items    []CartItemDTO `json:"items"`
	Total    float64       `json:"total"`
	Fallback bool          `json:"fallback"`
}

type CatalogDTO struct {
	Items      []domain.Product `json:"items"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalPages int              `json:"total_pages"`
	HasMore    bool             `json:"has_more"`
	Filters    domain.Filters   `json:"filters"`
}

type SessionDTO struct {
	Authenticated bool                `json:"authenticated"`
	DisplayName   string              `json:"display_name"`
	User          *domain.UserProfile `json:"user,omitempty"`
}

func toItemDTOs(items []domain.CartItem) []CartItemDTO {
	out := make([]CartItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, CartItemDTO{
			ID:        it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Stock:     it.Stock,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().InexactFloat64(),
		})
	}
	return out
}

func toTotalsDTO(t domain.Totals) TotalsDTO {
	return TotalsDTO{
		Subtotal: t.Subtotal.InexactFloat64(),
		Shipping: t.Shipping.InexactFloat64(),
		Discount: t.Discount.InexactFloat64(),
		Total:    t.Total.InexactFloat64(),
	}
}

func toSummaryDTO(s *service.Summary) SummaryDTO {
	return SummaryDTO{
		CartDTO: CartDTO{
			Items:  toItemDTOs(s.Items),
			Count:  s.Count,
			Totals: toTotalsDTO(s.Totals),
		},
		Customer: s.Customer,
	}
}

func toCatalogDTO(c *service.Catalog) CatalogDTO {
	items := c.Items
	if items == nil {
		items = []domain.Product{}
	}
	return CatalogDTO{
		Items:      items,
		Page:       c.Page,
		Size:       c.Size,
		TotalPages: c.TotalPages,
		HasMore:    c.HasMore(),
		Filters:    c.Filters,
	}
}
