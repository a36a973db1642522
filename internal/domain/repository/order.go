package repository

import (
	"context"

	"github.com/grocerline/basketd/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	GetByStatus(ctx context.Context, status model.OrderStatus) (*model.Order, error)
	// FinalizeOrder zeroes the total and moves the order to target status in
	// one write. Completion and cancellation are the same operation here.
	FinalizeOrder(ctx context.Context, orderID int64, target model.OrderStatus) error
	// CancelActive finalizes the ON_BASKET order if one exists. The bool
	// reports whether anything was cancelled.
	CancelActive(ctx context.Context) (bool, error)
	GetBasketDetail(ctx context.Context) (*model.BasketDetail, error)
}
