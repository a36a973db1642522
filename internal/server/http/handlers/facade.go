package handlers

import (
	"context"

	"github.com/grocerline/basketd/internal/domain/model"
)

// ProductFacade describes catalog read capabilities required by handlers.
type ProductFacade interface {
	ProductsWithCount(ctx context.Context, kind model.ProductKind) ([]model.ProductWithCount, error)
	ProductWithCount(ctx context.Context, productID int64) (*model.ProductWithCount, error)
	ProductsWithCountStream(ctx context.Context, kind model.ProductKind) <-chan []model.ProductWithCount
	ProductWithCountStream(ctx context.Context, productID int64) <-chan *model.ProductWithCount
}

// BasketFacade encapsulates basket operations exposed via HTTP.
type BasketFacade interface {
	BasketSnapshot(ctx context.Context) (*model.Order, error)
	BasketStream(ctx context.Context) <-chan *model.Order
	BasketDetail(ctx context.Context) (*model.BasketDetail, error)
	BasketDetailStream(ctx context.Context) <-chan *model.BasketDetail
	UpdateItemCount(ctx context.Context, productID int64, delta int) error
	ClearBasket(ctx context.Context) (bool, error)
}

// SyncFacade provides catalog sync operations.
type SyncFacade interface {
	SyncIfNeeded(ctx context.Context) error
	CatalogStatus(ctx context.Context) (model.LoadStatus, error)
}

// GroceryFacade aggregates the full set of operations used across handlers.
type GroceryFacade interface {
	ProductFacade
	BasketFacade
	SyncFacade
	HealthCheck(ctx context.Context) error
}
