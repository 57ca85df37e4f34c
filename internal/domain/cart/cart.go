package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced cart item does not exist.
var ErrNotFound = errors.New("cart item not found")

// InvalidQuantityError indicates a requested quantity below 1.
type InvalidQuantityError struct {
	Qty int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1, got %d", e.Qty)
}

// Item is a single pending cart line: a product reference plus quantity.
// Qty is always >= 1; an item whose quantity would reach zero is deleted,
// never stored at zero.
type Item struct {
	ID        string
	ProductID string
	Qty       int
	CreatedAt time.Time
}

// Line is an Item joined with live catalog data. LineTotal is recomputed
// from the current authoritative price on every read, never cached.
type Line struct {
	Item
	Name      string
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

// Repository defines persistence operations for cart items. Every call is
// scoped to an explicit session ID; there is no ambient process-wide cart.
type Repository interface {
	// AddItem stores item under sessionID. When a line for the same product
	// already exists its quantity is increased by item.Qty (merge policy);
	// no duplicate rows are created. Returns the resulting item.
	AddItem(ctx context.Context, sessionID string, item Item) (*Item, error)

	// UpdateQty sets the quantity of an existing item exactly.
	// Returns ErrNotFound when the item is absent.
	UpdateQty(ctx context.Context, sessionID, itemID string, qty int) (*Item, error)

	// RemoveItem decrements the item's quantity by amount and deletes the
	// item when the result would be <= 0. An amount <= 0 removes the item
	// entirely. Returns the remaining item, or nil when deleted, and
	// ErrNotFound when the item is absent.
	RemoveItem(ctx context.Context, sessionID, itemID string, amount int) (*Item, error)

	// ListItems returns the session's items ordered by creation time.
	ListItems(ctx context.Context, sessionID string) ([]Item, error)
}
