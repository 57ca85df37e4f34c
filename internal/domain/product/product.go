package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// immutable after seeding; their price is the authoritative price used for
// every total computed by the cart and checkout services.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// List returns the full catalog in a deterministic order (by ID).
	List(ctx context.Context) ([]Product, error)
	// GetByID returns a single product or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs returns products matching any of the given IDs in a single
	// batched query. Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
