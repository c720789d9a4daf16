package order

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request is a client-submitted order. Every monetary field is advisory
// and is recomputed from catalog state before anything is stored.
type Request struct {
	ShippingAddress  ShippingAddress
	DeclaredSubtotal decimal.Decimal
	DeclaredVAT      decimal.Decimal
	DeclaredShipping decimal.Decimal
	DeclaredTotal    decimal.Decimal
	Items            []ItemRequest
	Notes            string
}

// ItemRequest is one client-submitted line.
type ItemRequest struct {
	ProductID         uuid.UUID
	SKU               string // optional; checked against the catalog when present
	DeclaredUnitPrice decimal.Decimal
	Quantity          int
	DeclaredLineTotal decimal.Decimal
	Configuration     json.RawMessage // opaque, stored verbatim
}
