// Package handler exposes the storefront REST API over chi.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/cart"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/checkout"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/product"
)

// Handler implements the HTTP surface, delegating business logic to the
// injected domain services.
type Handler struct {
	products product.Repository
	cart     *cart.Service
	checkout *checkout.Service
}

// New constructs a Handler with the required domain dependencies.
func New(products product.Repository, cartSvc *cart.Service, checkoutSvc *checkout.Service) *Handler {
	return &Handler{
		products: products,
		cart:     cartSvc,
		checkout: checkoutSvc,
	}
}

// Routes builds the API router. Cross-cutting middleware (recovery, CORS,
// rate limiting, request IDs, logging) is applied by the caller.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/cart", h.GetCart)
		r.Post("/cart", h.AddCartItem)
		r.Patch("/cart/{id}", h.UpdateCartItem)
		r.Delete("/cart/{id}", h.RemoveCartItem)
		r.Post("/checkout", h.Checkout)
	})
	return r
}
