package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyItems      = errors.New("cart items required")
	ErrMissingCustomer = errors.New("customer name and email required")
)

// ProductNotFoundError indicates a submitted line references a product that
// has no authoritative price in the catalog. Any single unknown product
// aborts the whole checkout before any mutation.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a submitted line with a quantity below 1.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductID)
}

// LineItem is a (product reference, quantity) pair submitted for checkout.
// Any client-supplied price never reaches this type.
type LineItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// Customer holds the customer metadata recorded on the receipt. Opaque to
// the checkout computation beyond presence validation.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Receipt is the immutable record of a completed checkout: the computed
// total plus a snapshot of the submitted line items and customer metadata.
type Receipt struct {
	ID        string
	Total     decimal.Decimal
	Items     []LineItem
	Customer  Customer
	CreatedAt time.Time
}

// Repository persists receipts.
type Repository interface {
	// CommitReceipt writes the receipt and deducts each submitted quantity
	// from the matching cart line as one atomic unit: if the receipt write
	// fails, the cart must be left untouched. A line whose quantity drops
	// to zero or below is deleted; quantity the checkout did not submit
	// stays in the cart.
	CommitReceipt(ctx context.Context, sessionID string, r *Receipt) error
}
