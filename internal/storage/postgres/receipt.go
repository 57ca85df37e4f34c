package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/checkout"
)

var _ checkout.Repository = (*ReceiptRepository)(nil)

// ReceiptRepository implements checkout.Repository backed by PostgreSQL.
type ReceiptRepository struct {
	pool *pgxpool.Pool
}

// NewReceiptRepository returns a ReceiptRepository that uses the given pool.
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

// receiptPayload is the JSONB snapshot of the submitted lines and customer
// metadata stored alongside the computed total.
type receiptPayload struct {
	CartItems []checkout.LineItem `json:"cartItems"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
}

// CommitReceipt writes the receipt and deducts the submitted quantities
// from the session's cart within a single transaction, so a failure on
// either side leaves both tables untouched. Lines fully covered by the
// submission are deleted; lines holding more than was submitted keep the
// remainder. The delete runs before the decrement so the qty >= 1 check
// constraint is never violated.
func (r *ReceiptRepository) CommitReceipt(ctx context.Context, sessionID string, rec *checkout.Receipt) error {
	payload, err := json.Marshal(receiptPayload{
		CartItems: rec.Items,
		Name:      rec.Customer.Name,
		Email:     rec.Customer.Email,
	})
	if err != nil {
		return errors.Wrap(err, "marshal receipt payload")
	}

	submitted := make(map[string]int32, len(rec.Items))
	for _, item := range rec.Items {
		submitted[item.ProductID] += int32(item.Qty)
	}
	productIDs := make([]string, 0, len(submitted))
	qtys := make([]int32, 0, len(submitted))
	for id, qty := range submitted {
		productIDs = append(productIDs, id)
		qtys = append(qtys, qty)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO receipts (id, total, payload, created_at)
VALUES ($1, $2, $3, $4)`, rec.ID, rec.Total, payload, rec.CreatedAt); err != nil {
		return errors.Wrapf(err, "insert receipt %q", rec.ID)
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM cart_items AS c
USING unnest($2::text[], $3::int[]) AS s(product_id, qty)
WHERE c.session_id = $1 AND c.product_id = s.product_id AND c.qty <= s.qty`,
		sessionID, productIDs, qtys); err != nil {
		return errors.Wrap(err, "delete covered cart items")
	}

	if _, err := tx.Exec(ctx, `
UPDATE cart_items AS c
SET qty = c.qty - s.qty
FROM unnest($2::text[], $3::int[]) AS s(product_id, qty)
WHERE c.session_id = $1 AND c.product_id = s.product_id`,
		sessionID, productIDs, qtys); err != nil {
		return errors.Wrap(err, "decrement submitted cart items")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}
