package test

import (
	"context"
	"sync"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/domain/model"
)

// FetcherStub is a configurable catalog fetcher for coordinator tests.
type FetcherStub struct {
	mu      sync.Mutex
	FetchFn func(ctx context.Context, kind model.ProductKind) ([]model.CatalogRecord, error)
	Calls   []model.ProductKind
}

// Fetch records the call and delegates to FetchFn.
func (s *FetcherStub) Fetch(ctx context.Context, kind model.ProductKind) ([]model.CatalogRecord, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, kind)
	s.mu.Unlock()
	if s.FetchFn != nil {
		return s.FetchFn(ctx, kind)
	}
	return nil, nil
}

// CallsFor counts fetches recorded for a kind.
func (s *FetcherStub) CallsFor(kind model.ProductKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, k := range s.Calls {
		if k == kind {
			n++
		}
	}
	return n
}

// SyncFacadeStub drives the retry driver in tests.
type SyncFacadeStub struct {
	mu        sync.Mutex
	status    model.LoadStatus
	SyncFn    func(ctx context.Context) error
	SyncCalls int
	watchers  []chan model.LoadStatus
}

// SyncIfNeeded counts attempts and delegates to SyncFn.
func (s *SyncFacadeStub) SyncIfNeeded(ctx context.Context) error {
	s.mu.Lock()
	s.SyncCalls++
	fn := s.SyncFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

// CatalogStatus returns the stubbed flags.
func (s *SyncFacadeStub) CatalogStatus(context.Context) (model.LoadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

// CatalogStatusStream emits flag updates pushed via SetLoaded.
func (s *SyncFacadeStub) CatalogStatusStream(ctx context.Context) <-chan model.LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan model.LoadStatus, 4)
	s.watchers = append(s.watchers, ch)
	return ch
}

// SetLoaded flips flags and notifies stream watchers.
func (s *SyncFacadeStub) SetLoaded(kind model.ProductKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case model.KindCatalogItem:
		s.status.CatalogLoaded = true
	case model.KindSuggestedItem:
		s.status.SuggestedLoaded = true
	}
	for _, ch := range s.watchers {
		select {
		case ch <- s.status:
		default:
		}
	}
}

// Attempts reports how many times SyncIfNeeded ran.
func (s *SyncFacadeStub) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.SyncCalls
}

// GroceryFacadeStub answers the HTTP surface with canned data. Streams emit
// the current value once and close.
type GroceryFacadeStub struct {
	Products []model.ProductWithCount
	Order    *model.Order
	Detail   *model.BasketDetail
	Flags    model.LoadStatus

	UpdateErr error
	SyncErr   error
	HealthErr error
}

func (s *GroceryFacadeStub) ProductsWithCount(context.Context, model.ProductKind) ([]model.ProductWithCount, error) {
	return s.Products, nil
}

func (s *GroceryFacadeStub) ProductWithCount(_ context.Context, productID int64) (*model.ProductWithCount, error) {
	for i := range s.Products {
		if s.Products[i].ID == productID {
			return &s.Products[i], nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *GroceryFacadeStub) ProductsWithCountStream(context.Context, model.ProductKind) <-chan []model.ProductWithCount {
	ch := make(chan []model.ProductWithCount, 1)
	ch <- s.Products
	close(ch)
	return ch
}

func (s *GroceryFacadeStub) ProductWithCountStream(ctx context.Context, productID int64) <-chan *model.ProductWithCount {
	ch := make(chan *model.ProductWithCount, 1)
	pc, err := s.ProductWithCount(ctx, productID)
	if err != nil {
		pc = nil
	}
	ch <- pc
	close(ch)
	return ch
}

func (s *GroceryFacadeStub) BasketSnapshot(context.Context) (*model.Order, error) {
	if s.Order == nil {
		return nil, domainErrors.ErrNotFound
	}
	return s.Order, nil
}

func (s *GroceryFacadeStub) BasketStream(context.Context) <-chan *model.Order {
	ch := make(chan *model.Order, 1)
	ch <- s.Order
	close(ch)
	return ch
}

func (s *GroceryFacadeStub) BasketDetail(context.Context) (*model.BasketDetail, error) {
	if s.Detail == nil {
		return nil, domainErrors.ErrNotFound
	}
	return s.Detail, nil
}

func (s *GroceryFacadeStub) BasketDetailStream(context.Context) <-chan *model.BasketDetail {
	ch := make(chan *model.BasketDetail, 1)
	ch <- s.Detail
	close(ch)
	return ch
}

func (s *GroceryFacadeStub) UpdateItemCount(context.Context, int64, int) error {
	return s.UpdateErr
}

func (s *GroceryFacadeStub) ClearBasket(context.Context) (bool, error) {
	return s.Order != nil, nil
}

func (s *GroceryFacadeStub) SyncIfNeeded(context.Context) error {
	return s.SyncErr
}

func (s *GroceryFacadeStub) CatalogStatus(context.Context) (model.LoadStatus, error) {
	return s.Flags, nil
}

func (s *GroceryFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
