package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type testServer struct {
	engine *gin.Engine
	lamp   *catalog.Product
	orders *persistence.GormOrderRepository
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ProductModel{},
		&models.ShippingZoneModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.OrderSequenceModel{},
	))
	return db
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := newSQLiteDB(t)
	ctx := context.Background()

	products := persistence.NewGormProductRepository(db)
	grams := 1500
	lamp, err := catalog.NewProduct("LAMP-01", "Desk lamp", dec("100.00"), dec("21"), 4, &grams)
	require.NoError(t, err)
	require.NoError(t, products.Save(ctx, lamp))

	zones := persistence.NewGormZoneRepository(db)
	zone, err := shipping.NewShippingZone("Netherlands", []string{"1", "2"}, dec("5.00"), dec("1.00"), dec("200"))
	require.NoError(t, err)
	require.NoError(t, zones.Save(ctx, zone))

	orders := persistence.NewGormOrderRepository(db)
	calc := shipping.NewCalculator(zones)
	pricing := order.NewPricingValidator(products, calc, order.DefaultPricingConfig())
	numbers := order.NewSequenceNumberGenerator(persistence.NewGormSequenceStore(db), time.Now)
	svc := orderapp.NewOrderService(orders, pricing, numbers, calc)

	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: testSecret})
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.OptionalIdentity(verifier, nil))
	api := engine.Group("/api/v1")
	NewOrderHandler(svc, nil).RegisterRoutes(api)
	NewShippingHandler(svc, nil).RegisterRoutes(api)

	return &testServer{engine: engine, lamp: lamp, orders: orders}
}

func bearer(t *testing.T, sub uuid.UUID, role string) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func checkoutBody(p *catalog.Product) map[string]any {
	return map[string]any{
		"shipping_address": map[string]any{
			"recipient_name": "Ana de Vries",
			"email":          "ana@example.com",
			"line1":          "Prinsengracht 263",
			"city":           "Amsterdam",
			"postal_code":    "1016 GV",
			"country":        "NL",
		},
		"items": []map[string]any{{
			"product_id": p.ID.String(),
			"sku":        p.SKU,
			"unit_price": "121.00",
			"quantity":   2,
			"line_total": "242.00",
		}},
		"subtotal":      "242.00",
		"vat":           "50.82",
		"shipping_cost": "0",
		"total":         "292.82",
	}
}

// dataMap re-decodes the envelope data into a map for field checks.
func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func createOrder(t *testing.T, s *testServer, token string) map[string]any {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/api/v1/orders", checkoutBody(s.lamp), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataMap(t, resp)
}

func todayNumber(seq int) string {
	return fmt.Sprintf("%s-%04d", order.NumberPrefix(time.Now()), seq)
}
