package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/product"
)

// Service encapsulates cart business logic: quantity validation, product
// existence checks, and the live join of cart items with catalog data.
type Service struct {
	products product.Repository
	items    Repository
}

// NewService creates a cart Service with the required dependencies.
func NewService(products product.Repository, items Repository) *Service {
	return &Service{
		products: products,
		items:    items,
	}
}

// Add validates the quantity and product, then stores the line under the
// session, merging into an existing line for the same product.
func (s *Service) Add(ctx context.Context, sessionID, productID string, qty int) (*Item, error) {
	if qty < 1 {
		return nil, &InvalidQuantityError{Qty: qty}
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", productID)
	}

	item := Item{
		ID:        uuid.New().String(),
		ProductID: productID,
		Qty:       qty,
		CreatedAt: time.Now().UTC(),
	}
	added, err := s.items.AddItem(ctx, sessionID, item)
	if err != nil {
		return nil, errors.Wrap(err, "add cart item")
	}
	return added, nil
}

// UpdateQty sets the quantity of an existing line exactly.
func (s *Service) UpdateQty(ctx context.Context, sessionID, itemID string, qty int) (*Item, error) {
	if qty < 1 {
		return nil, &InvalidQuantityError{Qty: qty}
	}
	updated, err := s.items.UpdateQty(ctx, sessionID, itemID, qty)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update cart item")
	}
	return updated, nil
}

// Remove decrements an item's quantity by amount, deleting the item when the
// result would drop below 1. An amount <= 0 removes the item entirely.
// Returns the remaining item, or nil when the item was deleted.
func (s *Service) Remove(ctx context.Context, sessionID, itemID string, amount int) (*Item, error) {
	remaining, err := s.items.RemoveItem(ctx, sessionID, itemID, amount)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "remove cart item")
	}
	return remaining, nil
}

// List returns the session's cart lines joined with live product data plus
// the cart total. Line totals use the current catalog price so a price
// change is reflected on the next read. Lines whose product has vanished
// from the catalog are omitted, mirroring an inner join.
func (s *Service) List(ctx context.Context, sessionID string) ([]Line, decimal.Decimal, error) {
	items, err := s.items.ListItems(ctx, sessionID)
	if err != nil {
		return nil, decimal.Zero, errors.Wrap(err, "list cart items")
	}
	if len(items) == 0 {
		return []Line{}, decimal.Zero, nil
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	lines := make([]Line, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
		lines = append(lines, Line{
			Item:      it,
			Name:      p.Name,
			Price:     p.Price,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return lines, total.Round(2), nil
}
