package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[string]*product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockReceiptRepo struct {
	lastSession string
	lastReceipt *Receipt
	commits     int
	err         error
}

func (m *mockReceiptRepo) CommitReceipt(_ context.Context, sessionID string, r *Receipt) error {
	if m.err != nil {
		return m.err
	}
	m.lastSession = sessionID
	m.lastReceipt = r
	m.commits++
	return nil
}

// --- Helpers ---

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

func newTestProduct(id, name, price string) product.Product {
	return product.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

var testCustomer = Customer{Name: "Ada Lovelace", Email: "ada@example.com"}

// --- Tests ---

func TestCheckout_EmptyItems(t *testing.T) {
	svc := NewService(newProductRepo(), &mockReceiptRepo{})

	_, err := svc.Checkout(context.Background(), "s1", Request{Customer: testCustomer})
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestCheckout_MissingCustomer(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", "10.00")
	svc := NewService(newProductRepo(p1), &mockReceiptRepo{})

	_, err := svc.Checkout(context.Background(), "s1", Request{
		Items:    []LineItem{{ProductID: "p1", Qty: 1}},
		Customer: Customer{Name: "  ", Email: "ada@example.com"},
	})
	require.ErrorIs(t, err, ErrMissingCustomer)
}

func TestCheckout_InvalidQuantity(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", "10.00")
	svc := NewService(newProductRepo(p1), &mockReceiptRepo{})

	_, err := svc.Checkout(context.Background(), "s1", Request{
		Items:    []LineItem{{ProductID: "p1", Qty: 0}},
		Customer: testCustomer,
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "p1", iqErr.ProductID)
}

func TestCheckout_ProductNotFound(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", "10.00")
	receipts := &mockReceiptRepo{}
	svc := NewService(newProductRepo(p1), receipts)

	_, err := svc.Checkout(context.Background(), "s1", Request{
		Items: []LineItem{
			{ProductID: "p1", Qty: 1},
			{ProductID: "missing", Qty: 2},
		},
		Customer: testCustomer,
	})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "missing", pnfErr.ProductID)
	// Validation failures must not write anything.
	assert.Zero(t, receipts.commits)
}

func TestCheckout_TotalFromCatalogPrices(t *testing.T) {
	p1 := newTestProduct("p1", "Aeropress Coffee Maker", "29.99")
	p2 := newTestProduct("p2", "Ceramic Mug", "9.50")
	receipts := &mockReceiptRepo{}
	svc := NewService(newProductRepo(p1, p2), receipts)

	receipt, err := svc.Checkout(context.Background(), "session-abc", Request{
		Items: []LineItem{
			{ProductID: "p1", Qty: 2},
			{ProductID: "p2", Qty: 1},
		},
		Customer: testCustomer,
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("69.48").Equal(receipt.Total))
	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, testCustomer, receipt.Customer)
	assert.Equal(t, "session-abc", receipts.lastSession)
	require.NotNil(t, receipts.lastReceipt)
	assert.Equal(t, receipt.ID, receipts.lastReceipt.ID)
}

func TestCheckout_DuplicateLinesSummed(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", "10.00")
	svc := NewService(newProductRepo(p1), &mockReceiptRepo{})

	receipt, err := svc.Checkout(context.Background(), "s1", Request{
		Items: []LineItem{
			{ProductID: "p1", Qty: 1},
			{ProductID: "p1", Qty: 2},
		},
		Customer: testCustomer,
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30.00").Equal(receipt.Total))
}

// blockingReceiptRepo parks every CommitReceipt on release and records how
// many commits were in flight at once.
type blockingReceiptRepo struct {
	release  chan struct{}
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (m *blockingReceiptRepo) CommitReceipt(_ context.Context, _ string, _ *Receipt) error {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	<-m.release
	return nil
}

func TestCheckout_SameSessionSerialized(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", "10.00")
	receipts := &blockingReceiptRepo{release: make(chan struct{})}
	svc := NewService(newProductRepo(p1), receipts)

	req := Request{
		Items:    []LineItem{{ProductID: "p1", Qty: 1}},
		Customer: testCustomer,
	}

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), "s1", req)
			assert.NoError(t, err)
		}()
	}

	// Exactly one checkout reaches the commit; the other waits on the
	// session lock rather than entering CommitReceipt.
	require.Eventually(t, func() bool {
		return receipts.inFlight.Load() == 1
	}, time.Second, time.Millisecond)
	assert.Never(t, func() bool {
		return receipts.inFlight.Load() > 1
	}, 50*time.Millisecond, time.Millisecond)

	close(receipts.release)
	wg.Wait()

	assert.Equal(t, int32(1), receipts.maxSeen.Load())
}

func TestCheckout_DistinctSessionsConcurrent(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", "10.00")
	receipts := &blockingReceiptRepo{release: make(chan struct{})}
	svc := NewService(newProductRepo(p1), receipts)

	req := Request{
		Items:    []LineItem{{ProductID: "p1", Qty: 1}},
		Customer: testCustomer,
	}

	var wg sync.WaitGroup
	for _, session := range []string{"s1", "s2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), session, req)
			assert.NoError(t, err)
		}()
	}

	// Different sessions must not serialize against each other.
	require.Eventually(t, func() bool {
		return receipts.inFlight.Load() == 2
	}, time.Second, time.Millisecond)

	close(receipts.release)
	wg.Wait()

	assert.Equal(t, int32(2), receipts.maxSeen.Load())
}

func TestCheckout_SessionLocksEvicted(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", "10.00")
	svc := NewService(newProductRepo(p1), &mockReceiptRepo{})

	req := Request{
		Items:    []LineItem{{ProductID: "p1", Qty: 1}},
		Customer: testCustomer,
	}
	for _, session := range []string{"s1", "s2", "s3"} {
		_, err := svc.Checkout(context.Background(), session, req)
		require.NoError(t, err)
	}

	// No checkout is in flight, so no per-session lock may linger.
	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.locks)
}

func TestCheckout_CommitError(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", "10.00")
	svc := NewService(newProductRepo(p1), &mockReceiptRepo{err: errors.New("db write failed")})

	_, err := svc.Checkout(context.Background(), "s1", Request{
		Items:    []LineItem{{ProductID: "p1", Qty: 1}},
		Customer: testCustomer,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit receipt")
}
