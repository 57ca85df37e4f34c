package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Harshita1325/Vibe-Cart/internal/domain/product"
)

// Request holds the input for a checkout: the proposed line items (usually
// the cart contents, but callers may submit them directly) and the customer
// metadata to record on the receipt.
type Request struct {
	Items    []LineItem
	Customer Customer
}

// Service implements the checkout flow: validate the submitted lines,
// recompute the total from authoritative catalog prices, persist a receipt,
// and deduct the submitted quantities from the cart, the last two as one
// atomic commit.
type Service struct {
	products product.Repository
	receipts Repository

	// At most one checkout may be in flight per session, so concurrent
	// requests cannot double-spend the same cart contents. Entries are
	// refcounted and evicted once the last checkout for a session ends,
	// keeping the map bounded by the number of in-flight checkouts.
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a checkout Service with the required dependencies.
func NewService(products product.Repository, receipts Repository) *Service {
	return &Service{
		products: products,
		receipts: receipts,
		locks:    make(map[string]*sessionLock),
	}
}

// Checkout validates req, computes the total from authoritative prices, and
// commits the receipt. Validation is pure: no state is mutated until every
// submitted line has been verified against the catalog.
func (s *Service) Checkout(ctx context.Context, sessionID string, req Request) (*Receipt, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if strings.TrimSpace(req.Customer.Name) == "" || strings.TrimSpace(req.Customer.Email) == "" {
		return nil, ErrMissingCustomer
	}

	ids := make([]string, 0, len(req.Items))
	seen := make(map[string]struct{}, len(req.Items))
	for _, item := range req.Items {
		if item.Qty < 1 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	lock := s.acquireLock(sessionID)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		s.releaseLock(sessionID)
	}()

	// Single batched price lookup for every distinct product.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	prices := make(map[string]decimal.Decimal, len(fetched))
	for _, p := range fetched {
		prices[p.ID] = p.Price
	}

	total := decimal.Zero
	for _, item := range req.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}

	r := &Receipt{
		ID:        uuid.New().String(),
		Total:     total.Round(2),
		Items:     req.Items,
		Customer:  req.Customer,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.receipts.CommitReceipt(ctx, sessionID, r); err != nil {
		return nil, errors.Wrap(err, "commit receipt")
	}
	return r, nil
}

// acquireLock returns the lock serializing checkouts for sessionID, creating
// it on first use and bumping its refcount.
func (s *Service) acquireLock(sessionID string) *sessionLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.locks[sessionID] = lock
	}
	lock.refs++
	return lock
}

// releaseLock drops one reference to the session's lock, evicting the map
// entry when no checkout holds it anymore.
func (s *Service) releaseLock(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock := s.locks[sessionID]
	if lock.refs--; lock.refs == 0 {
		delete(s.locks, sessionID)
	}
}
