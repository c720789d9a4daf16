// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - catalog.go: products (read by the pricing validator)
// - shipping.go: shipping zones
// - order.go: orders and order items
// - sequence.go: per-day order number counters
package models
