package models

import (
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	SKU            string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(200);not null"`
	BasePrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VATRate        decimal.Decimal `gorm:"column:vat_rate;type:decimal(5,2);not null"`
	ProductionDays int             `gorm:"not null;default:0"`
	WeightGrams    *int
	IsActive       bool `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:     m.BaseModel.ToDomain(),
		SKU:            m.SKU,
		Name:           m.Name,
		BasePrice:      m.BasePrice,
		VATRate:        m.VATRate,
		ProductionDays: m.ProductionDays,
		WeightGrams:    m.WeightGrams,
		IsActive:       m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.SKU = p.SKU
	m.Name = p.Name
	m.BasePrice = p.BasePrice
	m.VATRate = p.VATRate
	m.ProductionDays = p.ProductionDays
	m.WeightGrams = p.WeightGrams
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
