package usecase

import (
	"context"
	"sync"

	"github.com/grocerline/basketd/internal/domain/model"
	"github.com/grocerline/basketd/internal/domain/repository"
)

// CatalogFetcher is the slice of the catalog client the coordinator needs.
type CatalogFetcher interface {
	Fetch(ctx context.Context, kind model.ProductKind) ([]model.CatalogRecord, error)
}

// SyncUseCase makes sure each catalog segment is fetched and inserted exactly
// once per install, safe against concurrent triggers.
type SyncUseCase struct {
	products repository.ProductRepository
	status   repository.StatusRepository
	fetcher  CatalogFetcher

	// mu serializes the whole check-fetch-insert sequence. The two segments
	// share the load_status row; without the guard two callers could both
	// observe "not loaded" and double-insert.
	mu sync.Mutex
}

// NewSyncUseCase constructs SyncUseCase.
func NewSyncUseCase(products repository.ProductRepository, status repository.StatusRepository, fetcher CatalogFetcher) *SyncUseCase {
	return &SyncUseCase{products: products, status: status, fetcher: fetcher}
}

// SyncIfNeeded fetches and inserts every segment that is not loaded yet. A
// segment that fails keeps its flag false so a later call retries it; an
// already-loaded segment is never touched. Returns the first failure after
// attempting every unloaded segment.
func (u *SyncUseCase) SyncIfNeeded(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	loaded, err := u.status.Get(ctx)
	if err != nil {
		return err
	}
	if loaded.AllLoaded() {
		return nil
	}

	var firstErr error
	for _, kind := range model.Kinds {
		if loaded.Loaded(kind) {
			continue
		}

		records, err := u.fetcher.Fetch(ctx, kind)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := u.products.InsertFirstTime(ctx, records, kind); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Status reads the current load flags.
func (u *SyncUseCase) Status(ctx context.Context) (model.LoadStatus, error) {
	return u.status.Get(ctx)
}
