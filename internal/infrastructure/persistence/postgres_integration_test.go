//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
)

// newPostgresDB starts a PostgreSQL container and applies the embedded
// migrations to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrateDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.NewFromFS(migrateDB, migrations.FS, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestPostgres_OrderLifecycle(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	products := NewGormProductRepository(db)
	zones := NewGormZoneRepository(db)
	orders := NewGormOrderRepository(db)

	weight := 1200
	lamp := seedProduct(t, products, "LAMP-01", "100.00", &weight)
	zone, err := shipping.NewShippingZone("Randstad", []string{"10", "20"}, dec("4.95"), dec("0.50"), dec("150"))
	require.NoError(t, err)
	require.NoError(t, zones.Save(ctx, zone))

	t.Run("zone lookup by prefix", func(t *testing.T) {
		got, err := zones.GetZoneByPostalCode(ctx, "1016GV")
		require.NoError(t, err)
		assert.Equal(t, "Randstad", got.Name)
	})

	userID := uuid.New()
	o := newTestOrder(t, "ORD-20260314-0001", &userID, lamp, 2)
	require.NoError(t, orders.Create(ctx, o))

	t.Run("round trip", func(t *testing.T) {
		got, err := orders.FindByOrderNumber(ctx, "ORD-20260314-0001")
		require.NoError(t, err)
		assert.True(t, got.Total.Equal(o.Total))
		require.Len(t, got.Items, 1)
		assert.Equal(t, itemConfiguration, string(got.Items[0].Configuration))
	})

	t.Run("duplicate number is a conflict", func(t *testing.T) {
		dup := newTestOrder(t, "ORD-20260314-0001", nil, lamp, 1)
		err := orders.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		got, err := orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		expected := got.GetVersion()
		require.NoError(t, got.TransitionTo(order.StatusConfirmed))
		require.NoError(t, orders.UpdateStatus(ctx, got, expected))

		err = orders.UpdateStatus(ctx, got, expected)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("totals constraint rejects inconsistent rows", func(t *testing.T) {
		err := db.Exec(`UPDATE orders SET total = total + 1 WHERE id = ?`, o.ID).Error
		assert.Error(t, err)
	})
}

func TestPostgres_SequenceStoreIsAtomic(t *testing.T) {
	store := NewGormSequenceStore(newPostgresDB(t))
	gen := order.NewSequenceNumberGenerator(store, func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})

	const workers = 50
	numbers := make([]string, workers)
	g, ctx := errgroup.WithContext(context.Background())
	for i := range workers {
		g.Go(func() error {
			n, err := gen.Next(ctx)
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			numbers[i] = n
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[string]bool, workers)
	for _, n := range numbers {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.True(t, seen[fmt.Sprintf("ORD-20260314-%04d", workers)])
}
