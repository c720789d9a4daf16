package order

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
)

func testBreakdown(t *testing.T) *Breakdown {
	t.Helper()
	lamp := mustProduct(t, "LAMP", "100.00", "21", 4, intPtr(1500))
	book := mustProduct(t, "BOOK", "50.00", "10", 9, nil)
	return &Breakdown{
		Items: []PricedItem{
			{Product: lamp, Quantity: 2, UnitPrice: dec("121.00"), LineTotal: dec("242.00"), Configuration: json.RawMessage(`{"a":1}`)},
			{Product: book, Quantity: 1, UnitPrice: dec("55.00"), LineTotal: dec("55.00")},
		},
		Subtotal:     dec("297.00"),
		VAT:          dec("62.37"),
		ShippingCost: dec("0"),
		Total:        dec("359.37"),
	}
}

func TestNewOrder(t *testing.T) {
	user := uuid.New()
	b := testBreakdown(t)

	o, err := NewOrder("ORD-20260314-0001", &user, address(), b, "leave at door")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, 9, o.EstimatedProductionDays)
	assert.True(t, o.Total.Equal(dec("359.37")))
	assert.True(t, o.BelongsTo(user))
	assert.False(t, o.BelongsTo(uuid.New()))
	assert.Equal(t, 2, o.ItemCount())
	assert.Equal(t, 3, o.TotalQuantity())
	assert.Equal(t, 1, o.GetVersion())

	first := o.Items[0]
	assert.Equal(t, o.ID, first.OrderID)
	assert.Equal(t, "LAMP", first.SKU)
	assert.True(t, first.UnitPrice.Equal(dec("121.00")))
	assert.Equal(t, 4, first.ProductionDays)
	assert.JSONEq(t, `{"a":1}`, string(first.Configuration))

	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	placed, ok := events[0].(*PlacedEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeOrderPlaced, placed.EventType())
	assert.Equal(t, o.OrderNumber, placed.OrderNumber)
	assert.Equal(t, 2, placed.ItemCount)
}

func TestNewOrder_Guards(t *testing.T) {
	_, err := NewOrder("bogus", nil, address(), testBreakdown(t), "")
	assert.Error(t, err)

	_, err = NewOrder("ORD-20260314-0001", nil, address(), &Breakdown{}, "")
	assert.Equal(t, "NO_ITEMS", shared.CodeOf(err))

	guest, err := NewOrder("ORD-20260314-0001", nil, address(), testBreakdown(t), "")
	require.NoError(t, err)
	assert.Nil(t, guest.UserID)
	assert.False(t, guest.BelongsTo(uuid.New()))
}

func TestOrder_TransitionTo(t *testing.T) {
	o, err := NewOrder("ORD-20260314-0001", nil, address(), testBreakdown(t), "")
	require.NoError(t, err)
	o.ClearDomainEvents()

	require.NoError(t, o.TransitionTo(StatusConfirmed))
	require.NoError(t, o.TransitionTo(StatusInProduction))
	assert.Equal(t, 3, o.GetVersion())

	err = o.TransitionTo(StatusCancelled)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	err = o.TransitionTo("lost")
	assert.Equal(t, shared.CodeInvalidInput, shared.CodeOf(err))

	require.NoError(t, o.TransitionTo(StatusShipped))
	require.NoError(t, o.TransitionTo(StatusDelivered))
	assert.True(t, o.Status.IsTerminal())

	events := o.GetDomainEvents()
	require.Len(t, events, 4)
	last := events[3].(*StatusChangedEvent)
	assert.Equal(t, StatusShipped, last.From)
	assert.Equal(t, StatusDelivered, last.To)
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusInProduction, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusInProduction, StatusShipped, true},
		{StatusInProduction, StatusCancelled, false},
		{StatusShipped, StatusDelivered, true},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
	assert.False(t, Status("x").IsValid())
	assert.Equal(t, "pending", StatusPending.String())
}

func TestShippingAddress_Validate(t *testing.T) {
	assert.Empty(t, address().Validate())

	msgs := ShippingAddress{Email: "not-an-email", Country: "Germany"}.Validate()
	assert.Contains(t, msgs, "shipping address recipient name is required")
	assert.Contains(t, msgs, "shipping address address line 1 is required")
	assert.Contains(t, msgs, "shipping address city is required")
	assert.Contains(t, msgs, "shipping address postal code is required")
	assert.Contains(t, msgs, "shipping address email is invalid")
	assert.Contains(t, msgs, "shipping address country must be an ISO 3166-1 alpha-2 code")

	n := ShippingAddress{RecipientName: " Ana ", Country: " de ", PostalCode: " 10115 "}.Normalize()
	assert.Equal(t, "Ana", n.RecipientName)
	assert.Equal(t, "DE", n.Country)
	assert.Equal(t, "10115", n.PostalCode)
}
