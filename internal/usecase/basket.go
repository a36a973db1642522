package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/domain/model"
	"github.com/grocerline/basketd/internal/domain/repository"
)

// BasketUseCase encapsulates basket mutation logic. Every operation maps to a
// single store transaction, so counts and the order total never move
// independently.
type BasketUseCase struct {
	items  repository.ItemRepository
	orders repository.OrderRepository
}

// NewBasketUseCase constructs BasketUseCase.
func NewBasketUseCase(items repository.ItemRepository, orders repository.OrderRepository) *BasketUseCase {
	return &BasketUseCase{items: items, orders: orders}
}

// UpdateItemCount is the public entry point used by the presentation layer.
// delta must be +1 or -1. A missing product fails the whole operation with
// nothing written.
func (u *BasketUseCase) UpdateItemCount(ctx context.Context, productID int64, delta int) error {
	if delta != 1 && delta != -1 {
		return domainErrors.ErrInvalidDelta
	}

	if err := u.items.UpdateItemCount(ctx, productID, delta); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return fmt.Errorf("%w: product %d", domainErrors.ErrOperationFailed, productID)
		}
		return err
	}
	return nil
}

// AddToBasket increments a basket line and the order total atomically.
func (u *BasketUseCase) AddToBasket(ctx context.Context, productID, orderID int64, unitPrice decimal.Decimal) error {
	return u.items.AddToBasket(ctx, productID, orderID, unitPrice)
}

// DecrementItem decrements a basket line, removing it at zero. Decrementing
// an absent line is a no-op.
func (u *BasketUseCase) DecrementItem(ctx context.Context, productID, orderID int64, unitPrice decimal.Decimal) error {
	return u.items.DecrementItem(ctx, productID, orderID, unitPrice)
}

// FinalizeOrder resets the total and closes the order. Completion and
// cancellation both land here; the distinction is presentational.
func (u *BasketUseCase) FinalizeOrder(ctx context.Context, orderID int64, target model.OrderStatus) error {
	if target == "" {
		target = model.OrderStatusFinished
	}
	return u.orders.FinalizeOrder(ctx, orderID, target)
}

// ClearBasket cancels the active order. Reports whether one existed.
func (u *BasketUseCase) ClearBasket(ctx context.Context) (bool, error) {
	return u.orders.CancelActive(ctx)
}

// ActiveOrder returns the ON_BASKET order, or ErrNotFound.
func (u *BasketUseCase) ActiveOrder(ctx context.Context) (*model.Order, error) {
	return u.orders.GetByStatus(ctx, model.OrderStatusOnBasket)
}

// BasketDetail returns the active order with its lines, or ErrNotFound.
func (u *BasketUseCase) BasketDetail(ctx context.Context) (*model.BasketDetail, error) {
	return u.orders.GetBasketDetail(ctx)
}
