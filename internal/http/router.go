package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Cart     *CartHandler
	Products *ProductHandler
	Checkout *CheckoutHandler
	Session  *SessionHandler
	Admin    *AdminHandler

	CORSOrigins    []string
	RequestTimeout time.Duration
	// Quiet drops chi's request log line, for tests.
	Quiet bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if !cfg.Quiet {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Delete("/", cfg.Cart.ClearCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Patch("/items/{product_id}", cfg.Cart.ChangeQty)
			r.Delete("/items/{product_id}", cfg.Cart.RemoveItem)
		})

		r.Get("/products", cfg.Products.ListProducts)
		r.Post("/products/more", cfg.Products.LoadMore)
		r.Get("/categories", cfg.Products.ListCategories)
		r.Get("/filters", cfg.Products.GetFilters)
		r.Put("/filters", cfg.Products.PutFilters)

		r.Get("/checkout/summary", cfg.Checkout.GetSummary)
		r.Post("/checkout", cfg.Checkout.Checkout)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", cfg.Session.GetSession)
			r.Delete("/", cfg.Session.Logout)
			r.Post("/login", cfg.Session.Login)
			r.Post("/register", cfg.Session.Register)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.Admin.RequireLogin)
			r.Get("/sales/summary", cfg.Admin.SalesSummary)
			r.Get("/sales/series", cfg.Admin.SalesSeries)
			r.Get("/sales.csv", cfg.Admin.SalesCSV)
		})
	})

	return otelhttp.NewHandler(r, "storefront-gateway")
}
