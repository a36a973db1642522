package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/domain/model"
	testhelpers "github.com/grocerline/basketd/internal/test"
	"github.com/grocerline/basketd/internal/usecase"
)

func newFacade() (*GroceryFacade, *testhelpers.MemoryStore, *testhelpers.FetcherStub) {
	store := testhelpers.NewMemoryStore()
	fetcher := &testhelpers.FetcherStub{
		FetchFn: func(_ context.Context, kind model.ProductKind) ([]model.CatalogRecord, error) {
			return []model.CatalogRecord{{
				ExternalID: "ext-" + string(kind),
				Name:       "Sample",
				Price:      decimal.RequireFromString("1.00"),
			}}, nil
		},
	}

	basket := usecase.NewBasketUseCase(store.Items(), store.Orders())
	sync := usecase.NewSyncUseCase(store.Products(), store.Status(), fetcher)
	return NewGroceryFacade(basket, sync, nil), store, fetcher
}

func TestGroceryFacadeBasket(t *testing.T) {
	facade, store, _ := newFacade()
	ctx := context.Background()

	if _, err := facade.BasketSnapshot(ctx); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty store, got %v", err)
	}

	product := store.SeedProduct(model.Product{
		ExternalID: "ext-1",
		Name:       "Milk",
		Price:      decimal.RequireFromString("10.00"),
		Kind:       model.KindCatalogItem,
	})

	if err := facade.UpdateItemCount(ctx, product.ID, 1); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	order, err := facade.BasketSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if !order.TotalPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unexpected total %s", order.TotalPrice)
	}

	detail, err := facade.BasketDetail(ctx)
	if err != nil {
		t.Fatalf("detail failed: %v", err)
	}
	if len(detail.Items) != 1 || detail.Items[0].Product.ID != product.ID {
		t.Fatalf("unexpected detail %+v", detail)
	}

	cancelled, err := facade.ClearBasket(ctx)
	if err != nil || !cancelled {
		t.Fatalf("expected successful clear, got cancelled=%v err=%v", cancelled, err)
	}
}

func TestGroceryFacadeSync(t *testing.T) {
	facade, _, fetcher := newFacade()
	ctx := context.Background()

	status, err := facade.CatalogStatus(ctx)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.AllLoaded() {
		t.Fatalf("expected unloaded flags, got %+v", status)
	}

	if err := facade.SyncIfNeeded(ctx); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	status, err = facade.CatalogStatus(ctx)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !status.AllLoaded() {
		t.Fatalf("expected loaded flags, got %+v", status)
	}
	if len(fetcher.Calls) != len(model.Kinds) {
		t.Fatalf("expected one fetch per kind, got %v", fetcher.Calls)
	}
}
