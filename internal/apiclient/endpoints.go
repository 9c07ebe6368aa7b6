package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type checkoutItem struct {
	ProductID int64 `json:"producto_id"`
	Quantity  int   `json:"cantidad"`
}

type checkoutRequest struct {
	Items         []checkoutItem  `json:"items"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Customer      domain.Customer `json:"cliente"`
}

type purchaseRequest struct {
	ProductID int64 `json:"producto_id"`
	Quantity  int   `json:"cantidad"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"nombre"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of POST /login. ExpiresIn is in seconds and
// zero when the server does not send it.
type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   float64 `json:"expires_in,omitempty"`
}

// ListProducts fetches one catalog page. Empty q and cat are not sent.
func (c *Client) ListProducts(ctx context.Context, page, size int, q, cat string) (*domain.ProductPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	if q != "" {
		params.Set("q", q)
	}
	if cat != "" {
		params.Set("cat", cat)
	}

	resp, err := c.do(ctx, http.MethodGet, "/productos", params, nil)
	if err != nil {
		return nil, err
	}

	var out domain.ProductPage
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	if out.TotalPages <= 0 {
		out.TotalPages = 1
	}
	if out.Items == nil {
		out.Items = []domain.Product{}
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/categorias", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Checkout submits the whole cart as one order.
func (c *Client) Checkout(ctx context.Context, items []domain.CartItem, customer domain.Customer) (json.RawMessage, error) {
	req := checkoutRequest{
		Items:         make([]checkoutItem, 0, len(items)),
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Customer:      customer,
	}
	for _, it := range items {
		req.Items = append(req.Items, checkoutItem{ProductID: it.ID, Quantity: it.Quantity})
	}

	resp, err := c.do(ctx, http.MethodPost, "/checkout", nil, req)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

// Purchase buys a single product. Used when /checkout is not available.
func (c *Client) Purchase(ctx context.Context, productID int64, quantity int) error {
	_, err := c.do(ctx, http.MethodPost, "/compras", nil, purchaseRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	return err
}

func (c *Client) Register(ctx context.Context, email, name, password string) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodPost, "/register", nil, registerRequest{
		Email:    email,
		Name:     name,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", nil, loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	var out LoginResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &Error{Kind: KindDecode, Status: resp.status, Message: "respuesta de login sin token"}
	}
	return &out, nil
}

// Me fetches the profile of the token holder.
func (c *Client) Me(ctx context.Context) (*domain.UserProfile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/me", nil, nil)
	if err != nil {
		return nil, err
	}
	var out domain.UserProfile
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SalesSummary(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admin/ventas/resumen", nil, nil)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

// SalesSeries forwards params (e.g. desde, hasta, agrupar) unchanged.
func (c *Client) SalesSeries(ctx context.Context, params url.Values) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admin/ventas/serie", params, nil)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

// SalesCSV returns the raw CSV export.
func (c *Client) SalesCSV(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admin/ventas.csv", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

func rawBody(resp *response) json.RawMessage {
	if len(resp.body) == 0 || !json.Valid(resp.body) {
		return json.RawMessage("null")
	}
	return json.RawMessage(resp.body)
}
