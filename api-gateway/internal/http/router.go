package http

import (
	"net/http"
	"time"

	"github.com/fjod/storefront/api-gateway/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Cart     *CartHandler
	Products *ProductHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Webhook  *WebhookHandler
}

type RouterConfig struct {
	RequestTimeout time.Duration
	SecureCookies  bool
}

func NewRouter(h Handlers, issuer *auth.Issuer, cfg RouterConfig, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// the gateway signs the raw body, so no auth, cookies or compression here
		r.Post("/payments/webhook", h.Webhook.Receive)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))
			r.Use(auth.Middleware(issuer, log))
			r.Use(CartSessionMiddleware(cfg.SecureCookies))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Products.List)
				r.Get("/{product_id}", h.Products.Get)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Post("/items", h.Cart.AddItem)
				r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", h.Checkout.Submit)
				r.Post("/orders/{order_id}/retry", h.Checkout.RetryPayment)
				r.Post("/verify", h.Checkout.Verify)
				r.Get("/resume", h.Checkout.Resume)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.Orders.ListOrders)
				r.Get("/{order_id}", h.Orders.GetOrder)
			})
		})
	})

	return r
}
