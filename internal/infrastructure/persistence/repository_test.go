package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// itemConfiguration is stored byte for byte, including key order and spacing.
const itemConfiguration = `{"font": "serif",  "engraving":"A", "font":"mono"}`

func seedProduct(t *testing.T, repo *GormProductRepository, sku, base string, weight *int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, sku+" product", dec(base), dec("21"), 3, weight)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func newTestOrder(t *testing.T, number string, userID *uuid.UUID, p *catalog.Product, qty int) *order.Order {
	t.Helper()
	unit := p.GrossUnitPrice().Amount()
	line := unit.Mul(decimal.NewFromInt(int64(qty)))
	vat := line.Mul(dec("0.21")).RoundBank(2)
	b := &order.Breakdown{
		Items: []order.PricedItem{{
			Product:       p,
			Quantity:      qty,
			UnitPrice:     unit,
			LineTotal:     line,
			Configuration: json.RawMessage(itemConfiguration),
		}},
		Subtotal:     line,
		VAT:          vat,
		ShippingCost: dec("4.95"),
		Total:        line.Add(vat).Add(dec("4.95")),
	}
	addr := order.ShippingAddress{
		RecipientName: "Ada Lovelace",
		Email:         "ada@example.com",
		Line1:         "Keizersgracht 1",
		City:          "Amsterdam",
		PostalCode:    "1015 CJ",
		Country:       "NL",
	}
	o, err := order.NewOrder(number, userID, addr, b, "")
	require.NoError(t, err)
	return o
}

func TestGormProductRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	weight := 750
	lamp := seedProduct(t, repo, "LAMP-01", "100.00", &weight)
	book := seedProduct(t, repo, "BOOK-01", "12.50", nil)

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetProductByID(ctx, lamp.ID)
		require.NoError(t, err)
		assert.Equal(t, "LAMP-01", got.SKU)
		assert.True(t, got.BasePrice.Equal(dec("100")))
		require.NotNil(t, got.WeightGrams)
		assert.Equal(t, 750, *got.WeightGrams)
		assert.True(t, got.IsActive)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.GetProductByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("batch load skips unknown ids", func(t *testing.T) {
		got, err := repo.GetProductsByIDs(ctx, []uuid.UUID{lamp.ID, book.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Nil(t, got[book.ID].WeightGrams)
	})

	t.Run("batch load with no ids", func(t *testing.T) {
		got, err := repo.GetProductsByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGormZoneRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormZoneRepository(db)
	ctx := context.Background()

	nl, err := shipping.NewShippingZone("Netherlands", []string{"1", "2", "3"}, dec("4.95"), dec("0.50"), dec("100"))
	require.NoError(t, err)
	ams, err := shipping.NewShippingZone("Amsterdam", []string{"10"}, dec("2.95"), dec("0"), dec("50"))
	require.NoError(t, err)
	closed, err := shipping.NewShippingZone("Closed", []string{"1015"}, dec("0"), dec("0"), dec("0"))
	require.NoError(t, err)
	closed.IsActive = false
	for _, z := range []*shipping.ShippingZone{nl, ams, closed} {
		require.NoError(t, repo.Save(ctx, z))
	}

	t.Run("lists active zones by name", func(t *testing.T) {
		zones, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, zones, 2)
		assert.Equal(t, "Amsterdam", zones[0].Name)
		assert.Equal(t, []string{"1", "2", "3"}, zones[1].PostalCodePrefixes)
	})

	t.Run("longest active prefix wins", func(t *testing.T) {
		z, err := repo.GetZoneByPostalCode(ctx, "1015 CJ")
		require.NoError(t, err)
		assert.Equal(t, "Amsterdam", z.Name)
	})

	t.Run("unmatched postal code is not found", func(t *testing.T) {
		_, err := repo.GetZoneByPostalCode(ctx, "9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, err.Error(), "9999")
	})
}

func TestGormOrderRepository(t *testing.T) {
	db := newSQLiteDB(t)
	products := NewGormProductRepository(db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	p := seedProduct(t, products, "LAMP-01", "100.00", nil)
	user := uuid.New()

	t.Run("create and read back", func(t *testing.T) {
		o := newTestOrder(t, "ORD-20260314-0001", &user, p, 2)
		require.NoError(t, repo.Create(ctx, o))

		got, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.OrderNumber, got.OrderNumber)
		assert.Equal(t, order.StatusPending, got.Status)
		assert.True(t, got.Total.Equal(o.Total))
		assert.Equal(t, "1015 CJ", got.ShippingAddress.PostalCode)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.True(t, got.Items[0].UnitPrice.Equal(dec("121")))
		assert.Equal(t, itemConfiguration, string(got.Items[0].Configuration))
		assert.Empty(t, got.GetDomainEvents())

		byNumber, err := repo.FindByOrderNumber(ctx, "ORD-20260314-0001")
		require.NoError(t, err)
		assert.Equal(t, o.ID, byNumber.ID)
	})

	t.Run("duplicate order number is a conflict", func(t *testing.T) {
		o := newTestOrder(t, "ORD-20260314-0001", nil, p, 1)
		err := repo.Create(ctx, o)
		assert.ErrorIs(t, err, shared.ErrConflict)

		_, err = repo.FindByID(ctx, o.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing order is not found", func(t *testing.T) {
		_, err := repo.FindByOrderNumber(ctx, "ORD-20260314-9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("counts by date prefix", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newTestOrder(t, "ORD-20260314-0002", nil, p, 1)))
		require.NoError(t, repo.Create(ctx, newTestOrder(t, "ORD-20260315-0001", nil, p, 1)))

		n, err := repo.CountOrdersByNumberPrefix(ctx, "ORD-20260314")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = repo.CountOrdersByNumberPrefix(ctx, "ORD-20260401")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("update status checks version", func(t *testing.T) {
		o, err := repo.FindByOrderNumber(ctx, "ORD-20260314-0001")
		require.NoError(t, err)
		expected := o.Version
		require.NoError(t, o.TransitionTo(order.StatusConfirmed))
		require.NoError(t, repo.UpdateStatus(ctx, o, expected))

		stored, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, stored.Status)
		assert.Equal(t, expected+1, stored.Version)

		err = repo.UpdateStatus(ctx, o, expected)
		assert.ErrorIs(t, err, shared.ErrConflict)

		ghost := newTestOrder(t, "ORD-20260314-0099", nil, p, 1)
		err = repo.UpdateStatus(ctx, ghost, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_FindByUser(t *testing.T) {
	db := newSQLiteDB(t)
	products := NewGormProductRepository(db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	p := seedProduct(t, products, "MUG-01", "8.00", nil)
	user := uuid.New()
	other := uuid.New()
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		o := newTestOrder(t, fmt.Sprintf("ORD-20260314-%04d", i), &user, p, i)
		o.CreatedAt = start.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, o))
	}
	require.NoError(t, repo.Create(ctx, newTestOrder(t, "ORD-20260314-0100", &other, p, 1)))

	t.Run("first page newest first", func(t *testing.T) {
		orders, total, err := repo.FindByUser(ctx, user, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, orders, 2)
		assert.Equal(t, "ORD-20260314-0005", orders[0].OrderNumber)
		assert.Equal(t, "ORD-20260314-0004", orders[1].OrderNumber)
		assert.Len(t, orders[0].Items, 1)
	})

	t.Run("last page", func(t *testing.T) {
		orders, total, err := repo.FindByUser(ctx, user, shared.Filter{Page: 3, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, orders, 1)
		assert.Equal(t, "ORD-20260314-0001", orders[0].OrderNumber)
	})

	t.Run("ascending by order number", func(t *testing.T) {
		orders, _, err := repo.FindByUser(ctx, user, shared.Filter{Page: 1, PageSize: 10, OrderBy: "order_number", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, orders, 5)
		assert.Equal(t, "ORD-20260314-0001", orders[0].OrderNumber)
	})

	t.Run("user without orders", func(t *testing.T) {
		orders, total, err := repo.FindByUser(ctx, uuid.New(), shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, orders)
	})
}
