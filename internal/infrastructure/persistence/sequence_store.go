package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
)

const nextSequenceSQL = `INSERT INTO order_sequences (seq_key, value, updated_at) VALUES (?, 1, ?)
ON CONFLICT (seq_key) DO UPDATE SET value = order_sequences.value + 1, updated_at = excluded.updated_at
RETURNING value`

// GormSequenceStore keeps order number counters in the order_sequences table.
// The upsert is a single statement, so concurrent callers on any number of
// server instances never receive the same value.
type GormSequenceStore struct {
	db *gorm.DB
}

// NewGormSequenceStore creates a new GormSequenceStore
func NewGormSequenceStore(db *gorm.DB) *GormSequenceStore {
	return &GormSequenceStore{db: db}
}

// NextValue increments and returns the counter stored under key.
func (s *GormSequenceStore) NextValue(ctx context.Context, key string) (int64, error) {
	var value int64
	if err := s.db.WithContext(ctx).Raw(nextSequenceSQL, key, time.Now().UTC()).Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return value, nil
}

var _ order.SequenceStore = (*GormSequenceStore)(nil)
