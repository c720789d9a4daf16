package shipping

import "context"

// ZoneResolver maps a postal code to its shipping zone.
// Implementations return an error matching shared.ErrNotFound when no active zone matches.
type ZoneResolver interface {
	GetZoneByPostalCode(ctx context.Context, postalCode string) (*ShippingZone, error)
}

// ZoneRepository is the read side of shipping configuration storage.
type ZoneRepository interface {
	ZoneResolver
	ListActive(ctx context.Context) ([]*ShippingZone, error)
}
