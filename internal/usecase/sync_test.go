package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/domain/model"
	testhelpers "github.com/grocerline/basketd/internal/test"
)

func sampleRecords(prefix string, n int) []model.CatalogRecord {
	records := make([]model.CatalogRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, model.CatalogRecord{
			ExternalID: prefix + testhelpers.RandomASCIIString(6, 10),
			Name:       testhelpers.RandomASCIIString(4, 12),
			Price:      decimal.NewFromInt(int64(i + 1)),
		})
	}
	return records
}

func TestSyncIfNeededLoadsBothSegments(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	fetcher := &testhelpers.FetcherStub{
		FetchFn: func(_ context.Context, kind model.ProductKind) ([]model.CatalogRecord, error) {
			return sampleRecords(string(kind), 3), nil
		},
	}
	uc := NewSyncUseCase(store.Products(), store.Status(), fetcher)

	if err := uc.SyncIfNeeded(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := uc.Status(context.Background())
	if err != nil {
		t.Fatalf("status read failed: %v", err)
	}
	if !status.AllLoaded() {
		t.Fatalf("expected both flags set, got %+v", status)
	}
	for _, kind := range model.Kinds {
		if got := fetcher.CallsFor(kind); got != 1 {
			t.Fatalf("expected one fetch for %s, got %d", kind, got)
		}
		list, err := store.Products().ListWithCount(context.Background(), kind)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 inserted products for %s, got %d", kind, len(list))
		}
	}
}

func TestSyncIfNeededAlreadyLoadedSkipsFetch(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	fetcher := &testhelpers.FetcherStub{
		FetchFn: func(_ context.Context, kind model.ProductKind) ([]model.CatalogRecord, error) {
			return sampleRecords(string(kind), 1), nil
		},
	}
	uc := NewSyncUseCase(store.Products(), store.Status(), fetcher)

	if err := uc.SyncIfNeeded(context.Background()); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if err := uc.SyncIfNeeded(context.Background()); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	for _, kind := range model.Kinds {
		if got := fetcher.CallsFor(kind); got != 1 {
			t.Fatalf("loaded segment %s fetched again: %d calls", kind, got)
		}
	}
}

func TestSyncIfNeededPartialFailureRetriesOnlyFailedKind(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	fetchErr := &domainErrors.FetchError{Kind: string(model.KindSuggestedItem), Err: errors.New("gateway timeout")}
	failSuggested := true
	fetcher := &testhelpers.FetcherStub{
		FetchFn: func(_ context.Context, kind model.ProductKind) ([]model.CatalogRecord, error) {
			if kind == model.KindSuggestedItem && failSuggested {
				return nil, fetchErr
			}
			return sampleRecords(string(kind), 2), nil
		},
	}
	uc := NewSyncUseCase(store.Products(), store.Status(), fetcher)

	err := uc.SyncIfNeeded(context.Background())
	var fe *domainErrors.FetchError
	if !errors.As(err, &fe) || fe.Kind != string(model.KindSuggestedItem) {
		t.Fatalf("expected suggested fetch error, got %v", err)
	}

	status, _ := uc.Status(context.Background())
	if !status.CatalogLoaded {
		t.Fatal("catalog segment must stay loaded despite the other failing")
	}
	if status.SuggestedLoaded {
		t.Fatal("failed segment must not be flagged loaded")
	}

	failSuggested = false
	if err := uc.SyncIfNeeded(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := fetcher.CallsFor(model.KindCatalogItem); got != 1 {
		t.Fatalf("retry must not re-fetch the loaded segment, got %d calls", got)
	}
	if got := fetcher.CallsFor(model.KindSuggestedItem); got != 2 {
		t.Fatalf("expected exactly two suggested fetches, got %d", got)
	}

	status, _ = uc.Status(context.Background())
	if !status.AllLoaded() {
		t.Fatalf("expected both flags set after retry, got %+v", status)
	}
}

func TestSyncIfNeededConcurrentCallsFetchOnce(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	fetcher := &testhelpers.FetcherStub{
		FetchFn: func(_ context.Context, kind model.ProductKind) ([]model.CatalogRecord, error) {
			return sampleRecords(string(kind), 2), nil
		},
	}
	uc := NewSyncUseCase(store.Products(), store.Status(), fetcher)

	const callers = 16
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if err := uc.SyncIfNeeded(context.Background()); err != nil {
				t.Errorf("concurrent sync failed: %v", err)
			}
		}()
	}
	wg.Wait()

	for _, kind := range model.Kinds {
		if got := fetcher.CallsFor(kind); got != 1 {
			t.Fatalf("expected one fetch for %s under contention, got %d", kind, got)
		}
	}
}

func TestSyncIfNeededEmptyBodyPropagates(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	fetcher := &testhelpers.FetcherStub{
		FetchFn: func(context.Context, model.ProductKind) ([]model.CatalogRecord, error) {
			return nil, domainErrors.ErrBodyEmpty
		},
	}
	uc := NewSyncUseCase(store.Products(), store.Status(), fetcher)

	if err := uc.SyncIfNeeded(context.Background()); !errors.Is(err, domainErrors.ErrBodyEmpty) {
		t.Fatalf("expected ErrBodyEmpty, got %v", err)
	}

	status, _ := uc.Status(context.Background())
	if status.CatalogLoaded || status.SuggestedLoaded {
		t.Fatalf("empty payload must not flip flags, got %+v", status)
	}
}
