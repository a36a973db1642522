package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/domain/model"
	"github.com/grocerline/basketd/internal/domain/repository"
)

type itemKey struct {
	productID int64
	orderID   int64
}

// MemoryStore is a mutex-serialized in-memory implementation of the domain
// repositories with the same transactional semantics as the SQL store: every
// operation runs under one lock, so no caller ever observes a partial write.
type MemoryStore struct {
	mu          sync.Mutex
	products    map[int64]model.Product
	orders      map[int64]model.Order
	items       map[itemKey]model.Item
	status      model.LoadStatus
	nextProduct int64
	nextOrder   int64
	nextItem    int64
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:    make(map[int64]model.Product),
		orders:      make(map[int64]model.Order),
		items:       make(map[itemKey]model.Item),
		nextProduct: 1,
		nextOrder:   1,
		nextItem:    1,
	}
}

// SeedProduct inserts a product directly, bypassing the sync path.
func (s *MemoryStore) SeedProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextProduct
		s.nextProduct++
	} else if p.ID >= s.nextProduct {
		s.nextProduct = p.ID + 1
	}
	s.products[p.ID] = p
	return p
}

// Snapshot helpers for assertions.

// ActiveOrder returns a copy of the ON_BASKET order, or nil.
func (s *MemoryStore) ActiveOrder() *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeOrderLocked()
}

// ItemCount returns the count for a (product, order) pair, zero when absent.
func (s *MemoryStore) ItemCount(productID, orderID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[itemKey{productID, orderID}]; ok {
		return item.Count
	}
	return 0
}

func (s *MemoryStore) activeOrderLocked() *model.Order {
	var found *model.Order
	for id := range s.orders {
		o := s.orders[id]
		if o.Status == model.OrderStatusOnBasket {
			if found == nil || o.ID > found.ID {
				copied := o
				found = &copied
			}
		}
	}
	return found
}

func (s *MemoryStore) resolveActiveOrderLocked() model.Order {
	if o := s.activeOrderLocked(); o != nil {
		return *o
	}
	order := model.Order{ID: s.nextOrder, Status: model.OrderStatusOnBasket, TotalPrice: decimal.Zero}
	s.nextOrder++
	s.orders[order.ID] = order
	return order
}

func (s *MemoryStore) addLocked(productID, orderID int64, unitPrice decimal.Decimal) {
	key := itemKey{productID, orderID}
	if item, ok := s.items[key]; ok {
		item.Count++
		s.items[key] = item
	} else {
		s.items[key] = model.Item{
			ID:        s.nextItem,
			ProductID: productID,
			OrderID:   orderID,
			Count:     1,
			CreatedAt: time.Now(),
		}
		s.nextItem++
	}
	order := s.orders[orderID]
	order.TotalPrice = order.TotalPrice.Add(unitPrice)
	s.orders[orderID] = order
}

func (s *MemoryStore) decrementLocked(productID, orderID int64, unitPrice decimal.Decimal) {
	key := itemKey{productID, orderID}
	item, ok := s.items[key]
	if !ok || item.Count <= 0 {
		return
	}
	item.Count--
	if item.Count == 0 {
		delete(s.items, key)
	} else {
		s.items[key] = item
	}
	order := s.orders[orderID]
	order.TotalPrice = order.TotalPrice.Sub(unitPrice)
	if order.TotalPrice.IsNegative() {
		order.TotalPrice = decimal.Zero
	}
	s.orders[orderID] = order
}

// Factory accessors.

func (s *MemoryStore) Products() repository.ProductRepository { return &memProducts{s} }
func (s *MemoryStore) Orders() repository.OrderRepository     { return &memOrders{s} }
func (s *MemoryStore) Items() repository.ItemRepository       { return &memItems{s} }
func (s *MemoryStore) Status() repository.StatusRepository    { return &memStatus{s} }

type memProducts struct{ store *MemoryStore }

func (r *memProducts) GetByID(_ context.Context, productID int64) (*model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p, ok := r.store.products[productID]; ok {
		copied := p
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r *memProducts) ListWithCount(_ context.Context, kind model.ProductKind) ([]model.ProductWithCount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	active := r.store.activeOrderLocked()

	var result []model.ProductWithCount
	for _, p := range r.store.products {
		if p.Kind != kind {
			continue
		}
		count := 0
		if active != nil {
			if item, ok := r.store.items[itemKey{p.ID, active.ID}]; ok {
				count = item.Count
			}
		}
		result = append(result, model.ProductWithCount{Product: p, Count: count})
	}
	return result, nil
}

func (r *memProducts) GetWithCount(_ context.Context, productID int64) (*model.ProductWithCount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[productID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	count := 0
	if active := r.store.activeOrderLocked(); active != nil {
		if item, ok := r.store.items[itemKey{p.ID, active.ID}]; ok {
			count = item.Count
		}
	}
	return &model.ProductWithCount{Product: p, Count: count}, nil
}

func (r *memProducts) InsertFirstTime(_ context.Context, records []model.CatalogRecord, kind model.ProductKind) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, rec := range records {
		replaced := false
		for id, existing := range r.store.products {
			if existing.ExternalID == rec.ExternalID && existing.Kind == kind {
				existing.Name = rec.Name
				existing.Price = rec.Price
				existing.Attribute = rec.Attribute
				existing.ImageURL = rec.ImageURL
				r.store.products[id] = existing
				replaced = true
				break
			}
		}
		if !replaced {
			p := model.Product{
				ID:         r.store.nextProduct,
				ExternalID: rec.ExternalID,
				Name:       rec.Name,
				Price:      rec.Price,
				Attribute:  rec.Attribute,
				ImageURL:   rec.ImageURL,
				Kind:       kind,
			}
			r.store.nextProduct++
			r.store.products[p.ID] = p
		}
	}

	switch kind {
	case model.KindCatalogItem:
		r.store.status.CatalogLoaded = true
	case model.KindSuggestedItem:
		r.store.status.SuggestedLoaded = true
	}
	return nil
}

type memOrders struct{ store *MemoryStore }

func (r *memOrders) GetByStatus(_ context.Context, status model.OrderStatus) (*model.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var found *model.Order
	for id := range r.store.orders {
		o := r.store.orders[id]
		if o.Status == status {
			if found == nil || o.ID > found.ID {
				copied := o
				found = &copied
			}
		}
	}
	if found == nil {
		return nil, domainErrors.ErrNotFound
	}
	return found, nil
}

func (r *memOrders) FinalizeOrder(_ context.Context, orderID int64, target model.OrderStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	order, ok := r.store.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.TotalPrice = decimal.Zero
	order.Status = target
	r.store.orders[orderID] = order
	return nil
}

func (r *memOrders) CancelActive(_ context.Context) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	active := r.store.activeOrderLocked()
	if active == nil {
		return false, nil
	}
	active.TotalPrice = decimal.Zero
	active.Status = model.OrderStatusFinished
	r.store.orders[active.ID] = *active
	return true, nil
}

func (r *memOrders) GetBasketDetail(_ context.Context) (*model.BasketDetail, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	active := r.store.activeOrderLocked()
	if active == nil {
		return nil, domainErrors.ErrNotFound
	}
	detail := &model.BasketDetail{Order: *active}
	for key, item := range r.store.items {
		if key.orderID != active.ID {
			continue
		}
		detail.Items = append(detail.Items, model.ItemWithProduct{
			Item:    item,
			Product: r.store.products[key.productID],
		})
	}
	return detail, nil
}

type memItems struct{ store *MemoryStore }

func (r *memItems) Get(_ context.Context, productID, orderID int64) (*model.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if item, ok := r.store.items[itemKey{productID, orderID}]; ok {
		copied := item
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r *memItems) AddToBasket(_ context.Context, productID, orderID int64, unitPrice decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orders[orderID]; !ok {
		return domainErrors.ErrNotFound
	}
	r.store.addLocked(productID, orderID, unitPrice)
	return nil
}

func (r *memItems) DecrementItem(_ context.Context, productID, orderID int64, unitPrice decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.decrementLocked(productID, orderID, unitPrice)
	return nil
}

func (r *memItems) UpdateItemCount(_ context.Context, productID int64, delta int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[productID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order := r.store.resolveActiveOrderLocked()

	if delta > 0 {
		r.store.addLocked(productID, order.ID, product.Price)
	} else {
		r.store.decrementLocked(productID, order.ID, product.Price)
	}
	return nil
}

type memStatus struct{ store *MemoryStore }

func (r *memStatus) Get(context.Context) (model.LoadStatus, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.status, nil
}
