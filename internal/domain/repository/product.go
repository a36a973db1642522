package repository

import (
	"context"

	"github.com/grocerline/basketd/internal/domain/model"
)

// ProductRepository describes persistence operations with catalog products.
type ProductRepository interface {
	GetByID(ctx context.Context, productID int64) (*model.Product, error)
	ListWithCount(ctx context.Context, kind model.ProductKind) ([]model.ProductWithCount, error)
	GetWithCount(ctx context.Context, productID int64) (*model.ProductWithCount, error)
	// InsertFirstTime upserts the batch and flips the kind's load flag as one
	// transaction so flag and data are never observably out of sync.
	InsertFirstTime(ctx context.Context, records []model.CatalogRecord, kind model.ProductKind) error
}
