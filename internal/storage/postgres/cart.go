package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. The
// merge policy is enforced by the UNIQUE (session_id, product_id)
// constraint plus ON CONFLICT.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// AddItem inserts the item or, when a line for the same product already
// exists in the session, increases that line's quantity.
func (r *CartRepository) AddItem(ctx context.Context, sessionID string, item cart.Item) (*cart.Item, error) {
	const q = `
INSERT INTO cart_items (id, session_id, product_id, qty, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (session_id, product_id)
DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty
RETURNING id, product_id, qty, created_at`

	var out cart.Item
	err := r.pool.QueryRow(ctx, q, item.ID, sessionID, item.ProductID, item.Qty, item.CreatedAt).
		Scan(&out.ID, &out.ProductID, &out.Qty, &out.CreatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "add cart item for product %q", item.ProductID)
	}
	return &out, nil
}

// UpdateQty sets an item's quantity exactly.
func (r *CartRepository) UpdateQty(ctx context.Context, sessionID, itemID string, qty int) (*cart.Item, error) {
	const q = `
UPDATE cart_items SET qty = $1
WHERE id = $2 AND session_id = $3
RETURNING id, product_id, qty, created_at`

	var out cart.Item
	err := r.pool.QueryRow(ctx, q, qty, itemID, sessionID).
		Scan(&out.ID, &out.ProductID, &out.Qty, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrapf(err, "update cart item %q", itemID)
	}
	return &out, nil
}

// RemoveItem decrements the item's quantity by amount inside a transaction,
// deleting the row when the result would be <= 0 or when amount <= 0.
func (r *CartRepository) RemoveItem(ctx context.Context, sessionID, itemID string, amount int) (*cart.Item, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	var current cart.Item
	err = tx.QueryRow(ctx, `
SELECT id, product_id, qty, created_at
FROM cart_items
WHERE id = $1 AND session_id = $2
FOR UPDATE`, itemID, sessionID).
		Scan(&current.ID, &current.ProductID, &current.Qty, &current.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrapf(err, "select cart item %q", itemID)
	}

	var remaining *cart.Item
	if amount > 0 && current.Qty > amount {
		current.Qty -= amount
		if _, err := tx.Exec(ctx, `
UPDATE cart_items SET qty = $1
WHERE id = $2 AND session_id = $3`, current.Qty, itemID, sessionID); err != nil {
			return nil, errors.Wrapf(err, "decrement cart item %q", itemID)
		}
		remaining = &current
	} else {
		if _, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE id = $1 AND session_id = $2`, itemID, sessionID); err != nil {
			return nil, errors.Wrapf(err, "delete cart item %q", itemID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return remaining, nil
}

// ListItems returns the session's items ordered by creation time.
func (r *CartRepository) ListItems(ctx context.Context, sessionID string) ([]cart.Item, error) {
	const q = `
SELECT id, product_id, qty, created_at
FROM cart_items
WHERE session_id = $1
ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Item, error) {
		var it cart.Item
		err := row.Scan(&it.ID, &it.ProductID, &it.Qty, &it.CreatedAt)
		return it, err
	})
}
