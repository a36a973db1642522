package app

import (
	"context"

	"github.com/grocerline/basketd/internal/domain/model"
	"github.com/grocerline/basketd/internal/storage/postgres"
	"github.com/grocerline/basketd/internal/usecase"
)

// GroceryFacade aggregates the operations exposed to the presentation layer
// and the retry driver.
type GroceryFacade struct {
	basket *usecase.BasketUseCase
	sync   *usecase.SyncUseCase
	store  *postgres.Storage
}

// NewGroceryFacade constructs the facade.
func NewGroceryFacade(basket *usecase.BasketUseCase, sync *usecase.SyncUseCase, store *postgres.Storage) *GroceryFacade {
	return &GroceryFacade{basket: basket, sync: sync, store: store}
}

func (f *GroceryFacade) ProductsWithCount(ctx context.Context, kind model.ProductKind) ([]model.ProductWithCount, error) {
	return f.store.Products().ListWithCount(ctx, kind)
}

func (f *GroceryFacade) ProductWithCount(ctx context.Context, productID int64) (*model.ProductWithCount, error) {
	return f.store.Products().GetWithCount(ctx, productID)
}

func (f *GroceryFacade) ProductsWithCountStream(ctx context.Context, kind model.ProductKind) <-chan []model.ProductWithCount {
	return f.store.ProductsWithCountStream(ctx, kind)
}

func (f *GroceryFacade) ProductWithCountStream(ctx context.Context, productID int64) <-chan *model.ProductWithCount {
	return f.store.ProductWithCountStream(ctx, productID)
}

func (f *GroceryFacade) BasketSnapshot(ctx context.Context) (*model.Order, error) {
	return f.basket.ActiveOrder(ctx)
}

func (f *GroceryFacade) BasketStream(ctx context.Context) <-chan *model.Order {
	return f.store.ActiveOrderStream(ctx)
}

func (f *GroceryFacade) BasketDetail(ctx context.Context) (*model.BasketDetail, error) {
	return f.basket.BasketDetail(ctx)
}

func (f *GroceryFacade) BasketDetailStream(ctx context.Context) <-chan *model.BasketDetail {
	return f.store.BasketDetailStream(ctx)
}

func (f *GroceryFacade) UpdateItemCount(ctx context.Context, productID int64, delta int) error {
	return f.basket.UpdateItemCount(ctx, productID, delta)
}

func (f *GroceryFacade) ClearBasket(ctx context.Context) (bool, error) {
	return f.basket.ClearBasket(ctx)
}

func (f *GroceryFacade) SyncIfNeeded(ctx context.Context) error {
	return f.sync.SyncIfNeeded(ctx)
}

func (f *GroceryFacade) CatalogStatus(ctx context.Context) (model.LoadStatus, error) {
	return f.sync.Status(ctx)
}

func (f *GroceryFacade) CatalogStatusStream(ctx context.Context) <-chan model.LoadStatus {
	return f.store.LoadStatusStream(ctx)
}

func (f *GroceryFacade) HealthCheck(ctx context.Context) error {
	return f.store.HealthCheck(ctx)
}
