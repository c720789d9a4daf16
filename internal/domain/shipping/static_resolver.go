package shipping

import "context"

// StaticResolver resolves zones from a fixed in-memory set.
type StaticResolver struct {
	zones []*ShippingZone
}

func NewStaticResolver(zones ...*ShippingZone) *StaticResolver {
	return &StaticResolver{zones: zones}
}

func (r *StaticResolver) GetZoneByPostalCode(_ context.Context, postalCode string) (*ShippingZone, error) {
	if z := SelectZone(r.zones, postalCode); z != nil {
		return z, nil
	}
	return nil, ZoneNotFound(postalCode)
}

func (r *StaticResolver) ListActive(_ context.Context) ([]*ShippingZone, error) {
	out := make([]*ShippingZone, 0, len(r.zones))
	for _, z := range r.zones {
		if z.IsActive {
			out = append(out, z)
		}
	}
	return out, nil
}
