package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Repository persists orders. Create writes the order and all of its items
// atomically.
type Repository interface {
	OrderCounter
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, number string) (*Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*Order, int64, error)
	// UpdateStatus stores o.Status, failing with shared.ErrConflict when the
	// stored version no longer equals expectedVersion.
	UpdateStatus(ctx context.Context, o *Order, expectedVersion int) error
}
