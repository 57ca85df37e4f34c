package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/checkout"
)

type checkoutRequest struct {
	CartItems []checkout.LineItem `json:"cartItems"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
}

type receiptResponse struct {
	ID        string    `json:"id"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

type checkoutResponse struct {
	Receipt receiptResponse `json:"receipt"`
}

// Checkout recomputes the submitted cart against authoritative prices,
// records a receipt, and deducts the submitted quantities from the cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	receipt, err := h.checkout.Checkout(r.Context(), session, checkout.Request{
		Items: req.CartItems,
		Customer: checkout.Customer{
			Name:  req.Name,
			Email: req.Email,
		},
	})
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		Receipt: receiptResponse{
			ID:        receipt.ID,
			Total:     receipt.Total.InexactFloat64(),
			CreatedAt: receipt.CreatedAt,
			Name:      receipt.Customer.Name,
			Email:     receipt.Customer.Email,
		},
	})
}

// writeCheckoutError maps checkout domain errors to HTTP responses.
// Validation failures and catalog mismatches are user-correctable 400s;
// anything else is a storage failure.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pnfErr *checkout.ProductNotFoundError
		iqErr  *checkout.InvalidQuantityError
	)
	switch {
	case errors.Is(err, checkout.ErrEmptyItems),
		errors.Is(err, checkout.ErrMissingCustomer):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &iqErr):
		writeError(w, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &pnfErr):
		writeError(w, http.StatusBadRequest, pnfErr.Error())
	default:
		writeStorageError(w, r, err)
	}
}
