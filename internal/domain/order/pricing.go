package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// MaxItemQuantity is the largest quantity accepted on one order line.
const MaxItemQuantity = 10000

// VATMode selects how the order-level VAT is derived.
type VATMode string

const (
	// VATModeFlat applies one rate to the whole subtotal.
	VATModeFlat VATMode = "flat"
	// VATModePerLine sums each line total times its product's own rate.
	VATModePerLine VATMode = "per_line"
)

func (m VATMode) IsValid() bool {
	return m == VATModeFlat || m == VATModePerLine
}

// PricingConfig tunes the pricing validator.
type PricingConfig struct {
	VATMode     VATMode
	FlatVATRate decimal.Decimal // percent
	Tolerance   decimal.Decimal
}

// DefaultPricingConfig is flat 21% VAT with a one-cent tolerance.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		VATMode:     VATModeFlat,
		FlatVATRate: decimal.NewFromInt(21),
		Tolerance:   valueobject.PriceTolerance,
	}
}

// PricedItem is one line recomputed from catalog state.
type PricedItem struct {
	Product       *catalog.Product
	Quantity      int
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
	Configuration json.RawMessage
}

// Breakdown is the authoritative pricing of an order request.
type Breakdown struct {
	Items                   []PricedItem
	Subtotal                decimal.Decimal
	VAT                     decimal.Decimal
	ShippingCost            decimal.Decimal
	Total                   decimal.Decimal
	TotalWeightGrams        int64
	EstimatedProductionDays int
	Warnings                []string
}

// WeightKg returns the total weight in kilograms.
func (b *Breakdown) WeightKg() decimal.Decimal {
	return decimal.NewFromInt(b.TotalWeightGrams).Div(decimal.NewFromInt(1000))
}

// PricingValidator recomputes order amounts from the catalog and compares
// them with what the client declared. It keeps no per-call state, so a single
// instance can serve concurrent requests and repeated passes.
type PricingValidator struct {
	products catalog.ProductReader
	shipping shipping.CostCalculator
	cfg      PricingConfig
}

// NewPricingValidator creates a validator. Zero-valued config fields fall
// back to DefaultPricingConfig.
func NewPricingValidator(products catalog.ProductReader, calc shipping.CostCalculator, cfg PricingConfig) *PricingValidator {
	def := DefaultPricingConfig()
	if !cfg.VATMode.IsValid() {
		cfg.VATMode = def.VATMode
	}
	if cfg.FlatVATRate.IsZero() && cfg.VATMode == VATModeFlat {
		cfg.FlatVATRate = def.FlatVATRate
	}
	if !cfg.Tolerance.IsPositive() {
		cfg.Tolerance = def.Tolerance
	}
	return &PricingValidator{products: products, shipping: calc, cfg: cfg}
}

// Config returns the effective configuration.
func (v *PricingValidator) Config() PricingConfig {
	return v.cfg
}

// Validate recomputes every amount and checks each declared value against it.
// All discrepancies are returned together as a *ValidationError. Missing
// products and unmatched postal codes abort immediately with NOT_FOUND.
func (v *PricingValidator) Validate(ctx context.Context, req *Request) (*Breakdown, error) {
	return v.evaluate(ctx, req, true)
}

// Price recomputes every amount without looking at declared values. Requests
// that cannot be priced at all (no items, inactive products, bad quantities)
// still fail with a *ValidationError.
func (v *PricingValidator) Price(ctx context.Context, req *Request) (*Breakdown, error) {
	return v.evaluate(ctx, req, false)
}

func (v *PricingValidator) evaluate(ctx context.Context, req *Request, compare bool) (*Breakdown, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, newValidationError([]string{"order must contain at least one item"})
	}

	products, err := v.loadProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	tol := v.cfg.Tolerance
	var issues []string
	b := &Breakdown{Items: make([]PricedItem, 0, len(req.Items))}
	subtotal := valueobject.Zero()
	lineVAT := valueobject.Zero()

	for i, item := range req.Items {
		pos := i + 1
		product := products[item.ProductID]

		if !product.IsActive {
			issues = append(issues, fmt.Sprintf("item %d: product %s is unavailable for ordering", pos, product.SKU))
		}
		if item.SKU != "" && item.SKU != product.SKU {
			b.Warnings = append(b.Warnings, fmt.Sprintf("item %d: declared SKU %s does not match catalog SKU %s", pos, item.SKU, product.SKU))
		}
		if item.Quantity <= 0 {
			issues = append(issues, fmt.Sprintf("item %d: quantity must be positive, got %d", pos, item.Quantity))
			continue
		}
		if item.Quantity > MaxItemQuantity {
			issues = append(issues, fmt.Sprintf("item %d: quantity %d exceeds the maximum of %d", pos, item.Quantity, MaxItemQuantity))
			continue
		}
		weight, ok := addWeight(b.TotalWeightGrams, product.Weight(), item.Quantity)
		if !ok {
			issues = append(issues, fmt.Sprintf("item %d (%s): weight is out of range", pos, product.SKU))
			continue
		}

		unit := product.GrossUnitPrice()
		line := unit.MultiplyByInt(int64(item.Quantity))

		if compare {
			if unit.DiffersBy(valueobject.NewMoney(item.DeclaredUnitPrice), tol) {
				issues = append(issues, fmt.Sprintf("item %d (%s): unit price %s does not match expected %s",
					pos, product.SKU, item.DeclaredUnitPrice.StringFixed(2), unit.StringFixed(2)))
			}
			if line.DiffersBy(valueobject.NewMoney(item.DeclaredLineTotal), tol) {
				issues = append(issues, fmt.Sprintf("item %d (%s): line total %s does not match expected %s",
					pos, product.SKU, item.DeclaredLineTotal.StringFixed(2), line.StringFixed(2)))
			}
		}

		subtotal = subtotal.Add(line)
		lineVAT = lineVAT.Add(line.Percentage(product.VATRate))
		b.TotalWeightGrams = weight
		b.EstimatedProductionDays = max(b.EstimatedProductionDays, product.ProductionDays)
		b.Items = append(b.Items, PricedItem{
			Product:       product,
			Quantity:      item.Quantity,
			UnitPrice:     unit.Amount(),
			LineTotal:     line.Amount(),
			Configuration: item.Configuration,
		})
	}

	var vat valueobject.Money
	switch v.cfg.VATMode {
	case VATModePerLine:
		vat = lineVAT.Rounded()
	default:
		vat = subtotal.Percentage(v.cfg.FlatVATRate).Rounded()
	}

	shippingCost, err := v.shipping.Calculate(ctx, req.ShippingAddress.PostalCode, subtotal.Amount(), b.WeightKg())
	if err != nil {
		return nil, err
	}
	ship := valueobject.NewMoney(shippingCost).Rounded()
	total := subtotal.Add(vat).Add(ship).Rounded()

	b.Subtotal = subtotal.Rounded().Amount()
	b.VAT = vat.Amount()
	b.ShippingCost = ship.Amount()
	b.Total = total.Amount()

	if compare {
		aggregates := []struct {
			label    string
			declared decimal.Decimal
			actual   valueobject.Money
		}{
			{"subtotal", req.DeclaredSubtotal, subtotal},
			{"VAT", req.DeclaredVAT, vat},
			{"shipping cost", req.DeclaredShipping, ship},
			{"total", req.DeclaredTotal, total},
		}
		for _, a := range aggregates {
			if a.actual.DiffersBy(valueobject.NewMoney(a.declared), tol) {
				issues = append(issues, fmt.Sprintf("%s %s does not match expected %s",
					a.label, a.declared.StringFixed(2), a.actual.StringFixed(2)))
			}
		}
	}

	if err := newValidationError(issues); err != nil {
		return nil, err
	}
	return b, nil
}

// loadProducts fetches every referenced product, in one call when the reader
// supports batching. The first missing product in request order is reported.
func (v *PricingValidator) loadProducts(ctx context.Context, items []ItemRequest) (map[uuid.UUID]*catalog.Product, error) {
	out := make(map[uuid.UUID]*catalog.Product, len(items))

	if batch, ok := v.products.(catalog.ProductBatchReader); ok {
		ids := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		found, err := batch.GetProductsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
		for _, it := range items {
			p, ok := found[it.ProductID]
			if !ok || p == nil {
				return nil, catalog.ProductNotFound(it.ProductID)
			}
			out[it.ProductID] = p
		}
		return out, nil
	}

	for _, it := range items {
		if _, seen := out[it.ProductID]; seen {
			continue
		}
		p, err := v.products.GetProductByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, catalog.ProductNotFound(it.ProductID)
			}
			return nil, fmt.Errorf("load product %s: %w", it.ProductID, err)
		}
		out[it.ProductID] = p
	}
	return out, nil
}

// addWeight returns total + grams*qty, or false when the sum would overflow.
func addWeight(total int64, grams, qty int) (int64, bool) {
	if grams <= 0 {
		return total, true
	}
	g, q := int64(grams), int64(qty)
	if g > math.MaxInt64/q {
		return 0, false
	}
	line := g * q
	if total > math.MaxInt64-line {
		return 0, false
	}
	return total + line, true
}
