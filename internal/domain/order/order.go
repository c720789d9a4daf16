package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// Item is a persisted order line. Prices are always server-computed.
type Item struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	SKU            string
	ProductName    string
	UnitPrice      decimal.Decimal
	Quantity       int
	LineTotal      decimal.Decimal
	ProductionDays int
	Configuration  json.RawMessage
	CreatedAt      time.Time
}

// Order is the aggregate root of a placed order.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber             string
	UserID                  *uuid.UUID
	ShippingAddress         ShippingAddress
	Subtotal                decimal.Decimal
	VAT                     decimal.Decimal
	ShippingCost            decimal.Decimal
	Total                   decimal.Decimal
	Status                  Status
	EstimatedProductionDays int
	Notes                   string
	Items                   []Item
}

// NewOrder builds a pending order from a recomputed breakdown. Item prices
// come from the breakdown only.
func NewOrder(number string, userID *uuid.UUID, address ShippingAddress, b *Breakdown, notes string) (*Order, error) {
	if _, _, err := ParseNumber(number); err != nil {
		return nil, err
	}
	if b == nil || len(b.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "order must contain at least one item")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       number,
		UserID:            userID,
		ShippingAddress:   address,
		Subtotal:          b.Subtotal.RoundBank(2),
		VAT:               b.VAT.RoundBank(2),
		ShippingCost:      b.ShippingCost.RoundBank(2),
		Total:             b.Total.RoundBank(2),
		Status:            StatusPending,
		Notes:             notes,
		Items:             make([]Item, 0, len(b.Items)),
	}
	for _, pi := range b.Items {
		o.Items = append(o.Items, Item{
			ID:             uuid.New(),
			OrderID:        o.ID,
			ProductID:      pi.Product.ID,
			SKU:            pi.Product.SKU,
			ProductName:    pi.Product.Name,
			UnitPrice:      pi.UnitPrice,
			Quantity:       pi.Quantity,
			LineTotal:      pi.LineTotal,
			ProductionDays: pi.Product.ProductionDays,
			Configuration:  pi.Configuration,
			CreatedAt:      o.CreatedAt,
		})
		o.EstimatedProductionDays = max(o.EstimatedProductionDays, pi.Product.ProductionDays)
	}

	o.AddDomainEvent(NewPlacedEvent(o))
	return o, nil
}

// TransitionTo moves the order along its lifecycle.
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot move order from %s to %s", o.Status, target))
	}
	from := o.Status
	o.Status = target
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewStatusChangedEvent(o, from))
	return nil
}

// ItemCount returns the number of lines.
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity sums quantities over all lines.
func (o *Order) TotalQuantity() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// BelongsTo reports whether the order is owned by userID.
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}
