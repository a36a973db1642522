package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	"github.com/grocerline/basketd/internal/domain/model"
)

func TestNotifierBroadcast(t *testing.T) {
	n := newNotifier()

	first, cancelFirst := n.subscribe()
	second, cancelSecond := n.subscribe()
	defer cancelSecond()

	n.broadcast()

	for name, ch := range map[string]<-chan struct{}{"first": first, "second": second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("%s subscriber missed the signal", name)
		}
	}

	// Back-to-back broadcasts coalesce into a single pending signal.
	n.broadcast()
	n.broadcast()
	n.broadcast()
	<-second
	select {
	case <-second:
		t.Fatal("coalesced broadcasts must leave at most one pending signal")
	default:
	}

	cancelFirst()
	n.broadcast()
	select {
	case _, ok := <-first:
		if ok {
			t.Fatal("cancelled subscriber received a signal")
		}
	default:
	}
}

func TestNotifierCancelIsIdempotent(t *testing.T) {
	n := newNotifier()
	_, cancel := n.subscribe()
	cancel()
	cancel()
	n.broadcast()
}

func TestActiveOrderStream(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial read finds no active order.
	mock.ExpectQuery("SELECT id, status, total_price FROM orders WHERE status=").
		WithArgs(model.OrderStatusOnBasket).
		WillReturnError(pgx.ErrNoRows)

	orders := storage.ActiveOrderStream(ctx)

	select {
	case order := <-orders:
		if order != nil {
			t.Fatalf("expected nil for empty store, got %+v", order)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial emission")
	}

	// A committed change re-runs the query.
	mock.ExpectQuery("SELECT id, status, total_price FROM orders WHERE status=").
		WithArgs(model.OrderStatusOnBasket).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "status", "total_price"}).
			AddRow(int64(5), model.OrderStatusOnBasket, decimal.RequireFromString("10.00")))
	storage.changed()

	select {
	case order := <-orders:
		if order == nil || order.ID != 5 {
			t.Fatalf("expected order 5, got %+v", order)
		}
	case <-time.After(time.Second):
		t.Fatal("no emission after change")
	}

	cancel()
	select {
	case _, ok := <-orders:
		if ok {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not close")
	}
}

func TestLoadStatusStream(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock.ExpectQuery("SELECT catalog_loaded, suggested_loaded FROM load_status").
		WillReturnRows(pgxmockv3.NewRows([]string{"catalog_loaded", "suggested_loaded"}).AddRow(false, false))

	statuses := storage.LoadStatusStream(ctx)
	select {
	case status := <-statuses:
		if status.AllLoaded() {
			t.Fatalf("unexpected flags %+v", status)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial emission")
	}

	mock.ExpectQuery("SELECT catalog_loaded, suggested_loaded FROM load_status").
		WillReturnRows(pgxmockv3.NewRows([]string{"catalog_loaded", "suggested_loaded"}).AddRow(true, true))
	storage.changed()

	select {
	case status := <-statuses:
		if !status.AllLoaded() {
			t.Fatalf("expected loaded flags, got %+v", status)
		}
	case <-time.After(time.Second):
		t.Fatal("no emission after change")
	}
}
