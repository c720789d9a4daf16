package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductReader returns authoritative product records.
// Implementations return an error matching shared.ErrNotFound when the id is unknown.
type ProductReader interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
}

// ProductBatchReader is an optional extension for loading many products in one round trip.
type ProductBatchReader interface {
	ProductReader
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
}
