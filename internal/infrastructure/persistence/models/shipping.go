package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shipping"
)

// ShippingZoneModel is the persistence model for a shipping zone.
// Prefixes are stored as a JSON array.
type ShippingZoneModel struct {
	BaseModel
	Name                  string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	PostalCodePrefixes    string          `gorm:"type:jsonb;not null"`
	BaseCost              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPerKg             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FreeShippingThreshold decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive              bool            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ShippingZoneModel) TableName() string {
	return "shipping_zones"
}

// ToDomain converts the persistence model to a domain ShippingZone.
func (m *ShippingZoneModel) ToDomain() (*shipping.ShippingZone, error) {
	var prefixes []string
	if m.PostalCodePrefixes != "" {
		if err := json.Unmarshal([]byte(m.PostalCodePrefixes), &prefixes); err != nil {
			return nil, fmt.Errorf("zone %s: decode postal code prefixes: %w", m.Name, err)
		}
	}
	for i, p := range prefixes {
		prefixes[i] = shipping.NormalizePostalCode(p)
	}
	return &shipping.ShippingZone{
		BaseEntity:            m.BaseModel.ToDomain(),
		Name:                  m.Name,
		PostalCodePrefixes:    prefixes,
		BaseCost:              m.BaseCost,
		CostPerKg:             m.CostPerKg,
		FreeShippingThreshold: m.FreeShippingThreshold,
		IsActive:              m.IsActive,
	}, nil
}

// FromDomain populates the persistence model from a domain ShippingZone.
func (m *ShippingZoneModel) FromDomain(z *shipping.ShippingZone) error {
	prefixes := z.PostalCodePrefixes
	if prefixes == nil {
		prefixes = []string{}
	}
	raw, err := json.Marshal(prefixes)
	if err != nil {
		return err
	}
	m.FromDomainBaseEntity(z.BaseEntity)
	m.Name = z.Name
	m.PostalCodePrefixes = string(raw)
	m.BaseCost = z.BaseCost
	m.CostPerKg = z.CostPerKg
	m.FreeShippingThreshold = z.FreeShippingThreshold
	m.IsActive = z.IsActive
	return nil
}
