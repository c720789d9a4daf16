package shipping

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Breakdown explains a shipping cost for pre-checkout display.
// It carries no authority over the final order.
type Breakdown struct {
	ZoneName              string
	BaseCost              decimal.Decimal
	WeightCost            decimal.Decimal
	TotalCost             decimal.Decimal
	IsFree                bool
	FreeShippingThreshold decimal.Decimal
	AmountToFreeShipping  decimal.Decimal
	WeightKg              decimal.Decimal
}

// CostCalculator is the contract the pricing validator depends on.
type CostCalculator interface {
	Calculate(ctx context.Context, postalCode string, subtotal, weightKg decimal.Decimal) (decimal.Decimal, error)
}

// Calculator converts (postal code, subtotal, weight) into a shipping cost.
type Calculator struct {
	zones ZoneResolver
}

// NewCalculator creates a calculator reading zones from resolver.
func NewCalculator(resolver ZoneResolver) *Calculator {
	return &Calculator{zones: resolver}
}

// Calculate returns the shipping cost. A subtotal at or above the zone's
// free-shipping threshold ships for exactly zero.
func (c *Calculator) Calculate(ctx context.Context, postalCode string, subtotal, weightKg decimal.Decimal) (decimal.Decimal, error) {
	b, err := c.GetShippingDetails(ctx, postalCode, subtotal, weightKg)
	if err != nil {
		return decimal.Zero, err
	}
	return b.TotalCost, nil
}

// GetShippingDetails resolves the zone and splits the cost into its components.
func (c *Calculator) GetShippingDetails(ctx context.Context, postalCode string, subtotal, weightKg decimal.Decimal) (*Breakdown, error) {
	if subtotal.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "subtotal cannot be negative")
	}
	if weightKg.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "weight cannot be negative")
	}
	zone, err := c.zones.GetZoneByPostalCode(ctx, postalCode)
	if err != nil {
		return nil, err
	}
	return Quote(zone, subtotal, weightKg), nil
}

// Quote evaluates zone for the given subtotal and weight. It is pure.
func Quote(zone *ShippingZone, subtotal, weightKg decimal.Decimal) *Breakdown {
	b := &Breakdown{
		ZoneName:              zone.Name,
		FreeShippingThreshold: zone.FreeShippingThreshold,
		AmountToFreeShipping:  decimal.Max(decimal.Zero, zone.FreeShippingThreshold.Sub(subtotal)),
		WeightKg:              weightKg,
		BaseCost:              decimal.Zero,
		WeightCost:            decimal.Zero,
		TotalCost:             decimal.Zero,
	}
	if subtotal.GreaterThanOrEqual(zone.FreeShippingThreshold) {
		b.IsFree = true
		return b
	}
	base := valueobject.NewMoney(zone.BaseCost)
	weight := valueobject.NewMoney(zone.CostPerKg).Multiply(weightKg)
	b.BaseCost = base.Rounded().Amount()
	b.WeightCost = weight.Rounded().Amount()
	b.TotalCost = base.Add(weight).Rounded().Amount()
	return b
}
