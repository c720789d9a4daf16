package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Product is the authoritative catalog record used to price orders.
// The settlement core only ever reads products.
type Product struct {
	shared.BaseEntity
	SKU            string
	Name           string
	BasePrice      decimal.Decimal // net of VAT
	VATRate        decimal.Decimal // percentage, 0-100
	ProductionDays int
	WeightGrams    *int
	IsActive       bool
}

// Validate checks the record's invariants.
func (p *Product) Validate() error {
	if p.SKU == "" {
		return shared.NewDomainError("INVALID_SKU", "product SKU cannot be empty")
	}
	if p.BasePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "base price cannot be negative")
	}
	if p.VATRate.IsNegative() || p.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	if p.ProductionDays < 0 {
		return shared.NewDomainError("INVALID_PRODUCTION_DAYS", "production days cannot be negative")
	}
	if p.WeightGrams != nil && *p.WeightGrams < 0 {
		return shared.NewDomainError("INVALID_WEIGHT", "weight cannot be negative")
	}
	return nil
}

// GrossUnitPrice is the VAT-inclusive unit price, banker's-rounded to cents.
func (p *Product) GrossUnitPrice() valueobject.Money {
	return valueobject.NewMoney(p.BasePrice).WithPercentage(p.VATRate).Rounded()
}

// Weight returns the weight in grams, treating an unknown weight as zero.
func (p *Product) Weight() int {
	if p.WeightGrams == nil {
		return 0
	}
	return *p.WeightGrams
}

// NewProduct builds an active product. Used by seeders and tests.
func NewProduct(sku, name string, basePrice, vatRate decimal.Decimal, productionDays int, weightGrams *int) (*Product, error) {
	p := &Product{
		BaseEntity:     shared.NewBaseEntity(),
		SKU:            sku,
		Name:           name,
		BasePrice:      basePrice,
		VATRate:        vatRate,
		ProductionDays: productionDays,
		WeightGrams:    weightGrams,
		IsActive:       true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ProductNotFound builds the NOT_FOUND error for a missing product.
func ProductNotFound(id uuid.UUID) error {
	return shared.NewDomainError(shared.CodeNotFound, "product "+id.String()+" not found")
}
