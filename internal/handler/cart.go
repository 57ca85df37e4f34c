package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/cart"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/product"
)

type cartItemResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Qty       int       `json:"qty"`
	CreatedAt time.Time `json:"createdAt"`
}

type cartLineResponse struct {
	cartItemResponse
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"lineTotal"`
}

type cartResponse struct {
	Items []cartLineResponse `json:"items"`
	Total float64            `json:"total"`
}

func toCartItemResponse(it cart.Item) cartItemResponse {
	return cartItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Qty:       it.Qty,
		CreatedAt: it.CreatedAt,
	}
}

// GetCart returns the session's cart lines joined with live catalog data
// plus the running total.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)

	lines, total, err := h.cart.List(r.Context(), session)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	out := cartResponse{
		Items: make([]cartLineResponse, len(lines)),
		Total: total.InexactFloat64(),
	}
	for i, line := range lines {
		out.Items[i] = cartLineResponse{
			cartItemResponse: toCartItemResponse(line.Item),
			Name:             line.Name,
			Price:            line.Price.InexactFloat64(),
			LineTotal:        line.LineTotal.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// AddCartItem adds a line to the session's cart, merging into an existing
// line for the same product.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.cart.Add(r.Context(), session, req.ProductID, req.Qty)
	if err != nil {
		var iqErr *cart.InvalidQuantityError
		switch {
		case errors.As(err, &iqErr):
			writeError(w, http.StatusBadRequest, iqErr.Error())
		case errors.Is(err, product.ErrNotFound):
			writeError(w, http.StatusBadRequest, "unknown product "+req.ProductID)
		default:
			writeStorageError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toCartItemResponse(*item))
}

type updateCartItemRequest struct {
	Qty int `json:"qty"`
}

// UpdateCartItem sets a line's quantity exactly.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	itemID := chi.URLParam(r, "id")

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.cart.UpdateQty(r.Context(), session, itemID, req.Qty)
	if err != nil {
		var iqErr *cart.InvalidQuantityError
		switch {
		case errors.As(err, &iqErr):
			writeError(w, http.StatusBadRequest, iqErr.Error())
		case errors.Is(err, cart.ErrNotFound):
			writeError(w, http.StatusNotFound, "cart item not found")
		default:
			writeStorageError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toCartItemResponse(*item))
}

type removeCartItemResponse struct {
	Deleted string            `json:"deleted,omitempty"`
	Item    *cartItemResponse `json:"item,omitempty"`
}

// RemoveCartItem decrements a line by the optional ?amount=n query value;
// without it (or when the amount covers the whole line) the line is removed.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	itemID := chi.URLParam(r, "id")

	amount := 0
	if raw := r.URL.Query().Get("amount"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "amount must be a positive integer")
			return
		}
		amount = n
	}

	remaining, err := h.cart.Remove(r.Context(), session, itemID, amount)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		writeStorageError(w, r, err)
		return
	}

	out := removeCartItemResponse{}
	if remaining != nil {
		item := toCartItemResponse(*remaining)
		out.Item = &item
	} else {
		out.Deleted = itemID
	}
	writeJSON(w, http.StatusOK, out)
}
