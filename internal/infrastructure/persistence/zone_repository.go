package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormZoneRepository reads shipping zones using GORM
type GormZoneRepository struct {
	db *gorm.DB
}

// NewGormZoneRepository creates a new GormZoneRepository
func NewGormZoneRepository(db *gorm.DB) *GormZoneRepository {
	return &GormZoneRepository{db: db}
}

// ListActive returns all active zones ordered by name.
func (r *GormZoneRepository) ListActive(ctx context.Context) ([]*shipping.ShippingZone, error) {
	var rows []models.ShippingZoneModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	zones := make([]*shipping.ShippingZone, 0, len(rows))
	for i := range rows {
		z, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// GetZoneByPostalCode selects the active zone with the longest matching prefix.
func (r *GormZoneRepository) GetZoneByPostalCode(ctx context.Context, postalCode string) (*shipping.ShippingZone, error) {
	zones, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if z := shipping.SelectZone(zones, postalCode); z != nil {
		return z, nil
	}
	return nil, shipping.ZoneNotFound(postalCode)
}

// Save creates or updates a zone
func (r *GormZoneRepository) Save(ctx context.Context, z *shipping.ShippingZone) error {
	var model models.ShippingZoneModel
	if err := model.FromDomain(z); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

var _ shipping.ZoneRepository = (*GormZoneRepository)(nil)
