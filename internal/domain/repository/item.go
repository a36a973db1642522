package repository

import (
	"context"

	"github.com/grocerline/basketd/internal/domain/model"
	"github.com/shopspring/decimal"
)

// ItemRepository owns the basket lines and the transactions that keep counts
// and the order total moving together.
type ItemRepository interface {
	Get(ctx context.Context, productID, orderID int64) (*model.Item, error)
	// AddToBasket increments the line (creating it at count 1) and adds the
	// unit price to the order total, atomically.
	AddToBasket(ctx context.Context, productID, orderID int64, unitPrice decimal.Decimal) error
	// DecrementItem is a no-op when no line exists. Otherwise it decrements,
	// deletes the line when the count reaches zero, and subtracts the unit
	// price, atomically. The total is clamped at zero.
	DecrementItem(ctx context.Context, productID, orderID int64, unitPrice decimal.Decimal) error
	// UpdateItemCount resolves or creates the ON_BASKET order, reads the
	// product's unit price and dispatches on the sign of delta, all inside a
	// single transaction. A missing product fails the whole operation.
	UpdateItemCount(ctx context.Context, productID int64, delta int) error
}
