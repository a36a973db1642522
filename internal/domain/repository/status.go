package repository

import (
	"context"

	"github.com/grocerline/basketd/internal/domain/model"
)

// StatusRepository reads the per-install load flags. The flags are written
// only by ProductRepository.InsertFirstTime, inside the same transaction as
// the data they describe.
type StatusRepository interface {
	Get(ctx context.Context) (model.LoadStatus, error)
}
