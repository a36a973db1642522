package postgres

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/domain/model"
)

// stream runs query once immediately, then re-runs it on every committed
// change, emitting each result until ctx is done. Every emission is a state
// that actually existed; bursts of writes may collapse into one emission.
func stream[T any](ctx context.Context, s *Storage, query func(context.Context) (T, error)) <-chan T {
	out := make(chan T, 1)
	signal, cancel := s.notifier.subscribe()

	emit := func() {
		result, err := query(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Error("reactive query failed", slog.String("error", err.Error()))
			}
			return
		}
		select {
		case <-ctx.Done():
		case out <- result:
		}
	}

	go func() {
		defer close(out)
		defer cancel()

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				emit()
			}
		}
	}()

	return out
}

// ProductsWithCountStream re-emits the product list for a kind, joined with
// counts from the active order, whenever underlying rows change.
func (s *Storage) ProductsWithCountStream(ctx context.Context, kind model.ProductKind) <-chan []model.ProductWithCount {
	products := s.Products()
	return stream(ctx, s, func(ctx context.Context) ([]model.ProductWithCount, error) {
		return products.ListWithCount(ctx, kind)
	})
}

// ProductWithCountStream follows a single product's basket count.
func (s *Storage) ProductWithCountStream(ctx context.Context, productID int64) <-chan *model.ProductWithCount {
	products := s.Products()
	return stream(ctx, s, func(ctx context.Context) (*model.ProductWithCount, error) {
		pc, err := products.GetWithCount(ctx, productID)
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, nil
		}
		return pc, err
	})
}

// ActiveOrderStream follows the ON_BASKET order; emits nil when none exists.
func (s *Storage) ActiveOrderStream(ctx context.Context) <-chan *model.Order {
	orders := s.Orders()
	return stream(ctx, s, func(ctx context.Context) (*model.Order, error) {
		order, err := orders.GetByStatus(ctx, model.OrderStatusOnBasket)
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, nil
		}
		return order, err
	})
}

// BasketDetailStream follows the active order with its lines; emits nil when
// no order is active.
func (s *Storage) BasketDetailStream(ctx context.Context) <-chan *model.BasketDetail {
	orders := s.Orders()
	return stream(ctx, s, func(ctx context.Context) (*model.BasketDetail, error) {
		detail, err := orders.GetBasketDetail(ctx)
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, nil
		}
		return detail, err
	})
}

// LoadStatusStream follows the per-install load flags.
func (s *Storage) LoadStatusStream(ctx context.Context) <-chan model.LoadStatus {
	status := s.Status()
	return stream(ctx, s, func(ctx context.Context) (model.LoadStatus, error) {
		return status.Get(ctx)
	})
}
