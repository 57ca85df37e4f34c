// Package memory provides an in-memory storage backend for the catalog,
// cart, and receipt stores. It backs the development mode and the
// black-box tests; a single RWMutex guards all state so the checkout
// commit is atomic within one critical section.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/cart"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/checkout"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/product"
)

var (
	_ product.Repository  = (*Store)(nil)
	_ cart.Repository     = (*Store)(nil)
	_ checkout.Repository = (*Store)(nil)
)

// Store holds all in-memory state. Carts are keyed by session ID; items per
// session keep insertion order. Receipts are append-only.
type Store struct {
	mu       sync.RWMutex
	order    []string
	products map[string]product.Product
	carts    map[string][]cart.Item
	receipts []checkout.Receipt
}

// NewStore creates an empty Store. Seed the catalog before serving traffic.
func NewStore() *Store {
	return &Store{
		products: make(map[string]product.Product),
		carts:    make(map[string][]cart.Item),
	}
}

// Seed replaces the catalog with the given products, preserving their order.
func (s *Store) Seed(products []product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = s.order[:0]
	s.products = make(map[string]product.Product, len(products))
	for _, p := range products {
		if _, ok := s.products[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = p
	}
}

// SetPrice updates a single product's price. Used by tests to verify that
// line totals reflect the live catalog price.
func (s *Store) SetPrice(id string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return
	}
	p.Price = price
	s.products[id] = p
}

// List returns all products in seed order.
func (s *Store) List(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]product.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out, nil
}

// GetByID returns a single product or product.ErrNotFound.
func (s *Store) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// GetByIDs returns the products matching any of ids, in seed order.
func (s *Store) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range s.order {
		if _, ok := want[id]; ok {
			out = append(out, s.products[id])
		}
	}
	return out, nil
}

// AddItem merges item into an existing line for the same product or appends
// a new line.
func (s *Store) AddItem(_ context.Context, sessionID string, item cart.Item) (*cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Qty += item.Qty
			merged := items[i]
			return &merged, nil
		}
	}
	s.carts[sessionID] = append(items, item)
	return &item, nil
}

// UpdateQty sets an item's quantity exactly.
func (s *Store) UpdateQty(_ context.Context, sessionID, itemID string, qty int) (*cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Qty = qty
			updated := items[i]
			return &updated, nil
		}
	}
	return nil, cart.ErrNotFound
}

// RemoveItem decrements an item's quantity, deleting it when the result
// would be <= 0 or when amount <= 0.
func (s *Store) RemoveItem(_ context.Context, sessionID, itemID string, amount int) (*cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ID != itemID {
			continue
		}
		if amount > 0 && items[i].Qty > amount {
			items[i].Qty -= amount
			remaining := items[i]
			return &remaining, nil
		}
		s.carts[sessionID] = append(items[:i], items[i+1:]...)
		return nil, nil
	}
	return nil, cart.ErrNotFound
}

// ListItems returns the session's items in insertion order.
func (s *Store) ListItems(_ context.Context, sessionID string) ([]cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.carts[sessionID]
	out := make([]cart.Item, len(items))
	copy(out, items)
	return out, nil
}

// CommitReceipt appends the receipt and deducts the submitted quantities
// from the session's cart under one lock, so the two either happen together
// or not at all. A line fully covered by the submission is deleted; a line
// holding more than was submitted keeps the remainder.
func (s *Store) CommitReceipt(_ context.Context, sessionID string, r *checkout.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts = append(s.receipts, *r)

	submitted := make(map[string]int, len(r.Items))
	for _, item := range r.Items {
		submitted[item.ProductID] += item.Qty
	}
	items := s.carts[sessionID]
	kept := items[:0]
	for _, it := range items {
		qty, ok := submitted[it.ProductID]
		if !ok {
			kept = append(kept, it)
			continue
		}
		if it.Qty > qty {
			it.Qty -= qty
			kept = append(kept, it)
		}
	}
	s.carts[sessionID] = kept
	return nil
}

// Receipts returns a copy of all recorded receipts in creation order.
func (s *Store) Receipts() []checkout.Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]checkout.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}
