package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shipping"
)

const (
	defaultZoneCacheSize = 256
	defaultZoneCacheTTL  = 5 * time.Minute
)

// CachedZoneResolver memoizes zone lookups per normalized postal code.
// Shipping configuration is read-only for the settlement path, so entries
// only ever expire by TTL or an explicit Purge. Misses are not cached.
type CachedZoneResolver struct {
	next   shipping.ZoneResolver
	lru    *expirable.LRU[string, *shipping.ShippingZone]
	logger *zap.Logger
}

// ZoneCacheOption configures a CachedZoneResolver
type ZoneCacheOption func(*zoneCacheOptions)

type zoneCacheOptions struct {
	size   int
	ttl    time.Duration
	logger *zap.Logger
}

// WithZoneCacheSize bounds the number of cached postal codes.
func WithZoneCacheSize(size int) ZoneCacheOption {
	return func(o *zoneCacheOptions) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithZoneCacheTTL sets how long a resolved zone is served from memory.
func WithZoneCacheTTL(ttl time.Duration) ZoneCacheOption {
	return func(o *zoneCacheOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithZoneCacheLogger sets the logger
func WithZoneCacheLogger(logger *zap.Logger) ZoneCacheOption {
	return func(o *zoneCacheOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewCachedZoneResolver wraps next with an expiring LRU cache.
func NewCachedZoneResolver(next shipping.ZoneResolver, opts ...ZoneCacheOption) *CachedZoneResolver {
	o := zoneCacheOptions{
		size:   defaultZoneCacheSize,
		ttl:    defaultZoneCacheTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &CachedZoneResolver{
		next:   next,
		lru:    expirable.NewLRU[string, *shipping.ShippingZone](o.size, nil, o.ttl),
		logger: o.logger,
	}
}

// GetZoneByPostalCode returns the cached zone or resolves and caches it.
func (c *CachedZoneResolver) GetZoneByPostalCode(ctx context.Context, postalCode string) (*shipping.ShippingZone, error) {
	key := shipping.NormalizePostalCode(postalCode)
	if z, ok := c.lru.Get(key); ok {
		return z, nil
	}
	z, err := c.next.GetZoneByPostalCode(ctx, postalCode)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, z)
	c.logger.Debug("shipping zone cached",
		zap.String("postal_code", key),
		zap.String("zone", z.Name),
	)
	return z, nil
}

// Purge drops every cached entry.
func (c *CachedZoneResolver) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached postal codes.
func (c *CachedZoneResolver) Len() int {
	return c.lru.Len()
}

var _ shipping.ZoneResolver = (*CachedZoneResolver)(nil)
