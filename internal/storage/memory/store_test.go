package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/cart"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/checkout"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/product"
)

func seededStore(t *testing.T) *Store {
	t.Helper()

	s := NewStore()
	s.Seed([]product.Product{
		{ID: "p1", Name: "Aeropress Coffee Maker", Price: decimal.RequireFromString("29.99")},
		{ID: "p2", Name: "Ceramic Mug", Price: decimal.RequireFromString("9.50")},
		{ID: "p3", Name: "Stainless Travel Tumbler", Price: decimal.RequireFromString("19.99")},
	})
	return s
}

func TestList_SeedOrder(t *testing.T) {
	s := seededStore(t)

	products, err := s.List(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p2", products[1].ID)
	assert.Equal(t, "p3", products[2].ID)
}

func TestGetByID_NotFound(t *testing.T) {
	s := seededStore(t)

	_, err := s.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestGetByIDs_SkipsUnknown(t *testing.T) {
	s := seededStore(t)

	products, err := s.GetByIDs(context.Background(), []string{"p3", "missing", "p1"})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p3", products[1].ID)
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	first, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Qty)

	merged, err := s.AddItem(ctx, "s1", cart.Item{ID: "i2", ProductID: "p1", Qty: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, merged.Qty)
	// The original line absorbs the addition; no new line appears.
	assert.Equal(t, "i1", merged.ID)

	items, err := s.ListItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Qty)
}

func TestAddItem_SessionsIsolated(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 1})
	require.NoError(t, err)
	_, err = s.AddItem(ctx, "s2", cart.Item{ID: "i2", ProductID: "p1", Qty: 4})
	require.NoError(t, err)

	items1, err := s.ListItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items1, 1)
	assert.Equal(t, 1, items1[0].Qty)

	items2, err := s.ListItems(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, items2, 1)
	assert.Equal(t, 4, items2[0].Qty)
}

func TestUpdateQty_SetsExactly(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 2})
	require.NoError(t, err)

	updated, err := s.UpdateQty(ctx, "s1", "i1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Qty)
}

func TestUpdateQty_NotFound(t *testing.T) {
	s := seededStore(t)

	_, err := s.UpdateQty(context.Background(), "s1", "missing", 1)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestRemoveItem_Decrements(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 5})
	require.NoError(t, err)

	remaining, err := s.RemoveItem(ctx, "s1", "i1", 2)
	require.NoError(t, err)
	require.NotNil(t, remaining)
	assert.Equal(t, 3, remaining.Qty)
}

func TestRemoveItem_DeletesWhenExhausted(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 2})
	require.NoError(t, err)

	remaining, err := s.RemoveItem(ctx, "s1", "i1", 2)
	require.NoError(t, err)
	assert.Nil(t, remaining)

	items, err := s.ListItems(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveItem_ZeroAmountRemovesAll(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 9})
	require.NoError(t, err)

	remaining, err := s.RemoveItem(ctx, "s1", "i1", 0)
	require.NoError(t, err)
	assert.Nil(t, remaining)
}

func TestCommitReceipt_ClearsOnlySubmittedLines(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 2})
	require.NoError(t, err)
	_, err = s.AddItem(ctx, "s1", cart.Item{ID: "i2", ProductID: "p2", Qty: 1})
	require.NoError(t, err)
	// A line added after the client snapshotted its cart must survive.
	_, err = s.AddItem(ctx, "s1", cart.Item{ID: "i3", ProductID: "p3", Qty: 1})
	require.NoError(t, err)

	err = s.CommitReceipt(ctx, "s1", &checkout.Receipt{
		ID:    "r1",
		Total: decimal.RequireFromString("69.48"),
		Items: []checkout.LineItem{
			{ProductID: "p1", Qty: 2},
			{ProductID: "p2", Qty: 1},
		},
	})
	require.NoError(t, err)

	items, err := s.ListItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p3", items[0].ProductID)

	receipts := s.Receipts()
	require.Len(t, receipts, 1)
	assert.Equal(t, "r1", receipts[0].ID)
}

func TestCommitReceipt_DeductsOnlySubmittedQty(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 5})
	require.NoError(t, err)

	// Checking out 2 of 5 must leave the other 3 in the cart.
	err = s.CommitReceipt(ctx, "s1", &checkout.Receipt{
		ID:    "r1",
		Items: []checkout.LineItem{{ProductID: "p1", Qty: 2}},
	})
	require.NoError(t, err)

	items, err := s.ListItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)
}

func TestCommitReceipt_OtherSessionsUntouched(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "s1", cart.Item{ID: "i1", ProductID: "p1", Qty: 1})
	require.NoError(t, err)
	_, err = s.AddItem(ctx, "s2", cart.Item{ID: "i2", ProductID: "p1", Qty: 1})
	require.NoError(t, err)

	err = s.CommitReceipt(ctx, "s1", &checkout.Receipt{
		ID:    "r1",
		Items: []checkout.LineItem{{ProductID: "p1", Qty: 1}},
	})
	require.NoError(t, err)

	items, err := s.ListItems(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSetPrice_AffectsReads(t *testing.T) {
	s := seededStore(t)

	s.SetPrice("p2", decimal.RequireFromString("12.00"))

	p, err := s.GetByID(context.Background(), "p2")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.00").Equal(p.Price))
}
