package shipping

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// ShippingZone is a named cost rule selected by postal-code prefix.
type ShippingZone struct {
	shared.BaseEntity
	Name                  string
	PostalCodePrefixes    []string
	BaseCost              decimal.Decimal
	CostPerKg             decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	IsActive              bool
}

// NewShippingZone creates an active zone with normalized prefixes.
func NewShippingZone(name string, prefixes []string, baseCost, costPerKg, threshold decimal.Decimal) (*ShippingZone, error) {
	z := &ShippingZone{
		BaseEntity:            shared.NewBaseEntity(),
		Name:                  strings.TrimSpace(name),
		BaseCost:              baseCost,
		CostPerKg:             costPerKg,
		FreeShippingThreshold: threshold,
		IsActive:              true,
	}
	for _, p := range prefixes {
		if n := NormalizePostalCode(p); n != "" {
			z.PostalCodePrefixes = append(z.PostalCodePrefixes, n)
		}
	}
	if err := z.Validate(); err != nil {
		return nil, err
	}
	return z, nil
}

// Validate checks the zone's invariants.
func (z *ShippingZone) Validate() error {
	if z.Name == "" {
		return shared.NewDomainError("INVALID_ZONE_NAME", "zone name cannot be empty")
	}
	if len(z.PostalCodePrefixes) == 0 {
		return shared.NewDomainError("INVALID_ZONE_PREFIXES", "zone must have at least one postal code prefix")
	}
	if z.BaseCost.IsNegative() || z.CostPerKg.IsNegative() || z.FreeShippingThreshold.IsNegative() {
		return shared.NewDomainError("INVALID_ZONE_COST", "zone costs cannot be negative")
	}
	return nil
}

// MatchLength returns the length of the longest prefix of the zone that
// matches the normalized postal code, or 0 when none does.
func (z *ShippingZone) MatchLength(normalizedCode string) int {
	best := 0
	for _, p := range z.PostalCodePrefixes {
		if p != "" && len(p) > best && strings.HasPrefix(normalizedCode, p) {
			best = len(p)
		}
	}
	return best
}

// NormalizePostalCode upper-cases the code and strips whitespace and dashes.
func NormalizePostalCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		switch r {
		case ' ', '\t', '\n', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SelectZone picks the active zone whose prefix matches code the longest.
// Ties go to the zone with the lexically smallest name so the pick does not
// depend on storage order. Returns nil when nothing matches.
func SelectZone(zones []*ShippingZone, code string) *ShippingZone {
	normalized := NormalizePostalCode(code)
	if normalized == "" {
		return nil
	}
	candidates := make([]*ShippingZone, 0, len(zones))
	for _, z := range zones {
		if z != nil && z.IsActive && z.MatchLength(normalized) > 0 {
			candidates = append(candidates, z)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		li, lj := candidates[i].MatchLength(normalized), candidates[j].MatchLength(normalized)
		if li != lj {
			return li > lj
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0]
}

// ZoneNotFound builds the NOT_FOUND error for an unmatched postal code.
func ZoneNotFound(code string) error {
	return shared.NewDomainError(shared.CodeNotFound, "no shipping configuration for postal code "+code)
}
