package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, 1, cfg.App.Replicas)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, NumberStrategyCounter, cfg.Order.NumberStrategy)
		assert.Equal(t, "flat", cfg.Order.VATMode)
		assert.True(t, cfg.Order.FlatVATRate.Equal(decimal.NewFromInt(21)))
		assert.True(t, cfg.Order.PriceTolerance.Equal(decimal.RequireFromString("0.01")))
		assert.Equal(t, 256, cfg.Shipping.ZoneCacheSize)
		assert.Equal(t, 5*time.Minute, cfg.Shipping.ZoneCacheTTL)
		assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodySize)
	})

	t.Run("loads values from environment variables with STORE prefix", func(t *testing.T) {
		t.Setenv("STORE_APP_NAME", "shop")
		t.Setenv("STORE_APP_PORT", "9000")
		t.Setenv("STORE_APP_REPLICAS", "3")
		t.Setenv("STORE_DATABASE_HOST", "db.local")
		t.Setenv("STORE_DATABASE_PORT", "5433")
		t.Setenv("STORE_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("STORE_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("STORE_ORDER_NUMBER_STRATEGY", "Database")
		t.Setenv("STORE_ORDER_VAT_MODE", "per_line")
		t.Setenv("STORE_ORDER_FLAT_VAT_RATE", "19")
		t.Setenv("STORE_SHIPPING_ZONE_CACHE_TTL", "30s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shop", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, 3, cfg.App.Replicas)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, NumberStrategyDatabase, cfg.Order.NumberStrategy)
		assert.Equal(t, "per_line", cfg.Order.VATMode)
		assert.True(t, cfg.Order.FlatVATRate.Equal(decimal.NewFromInt(19)))
		assert.Equal(t, 30*time.Second, cfg.Shipping.ZoneCacheTTL)
		assert.Equal(t, "shop", cfg.Telemetry.ServiceName)
	})

	t.Run("rejects malformed decimal", func(t *testing.T) {
		t.Setenv("STORE_ORDER_FLAT_VAT_RATE", "twenty")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "order.flat_vat_rate")
	})

	t.Run("rejects counter strategy with several replicas", func(t *testing.T) {
		t.Setenv("STORE_APP_REPLICAS", "2")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "order.number_strategy=counter")
	})

	t.Run("rejects unknown number strategy", func(t *testing.T) {
		t.Setenv("STORE_ORDER_NUMBER_STRATEGY", "uuid")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "order.number_strategy must be one of")
	})
}

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestConfig_validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "idle conns above open conns",
			mutate: func(c *Config) {
				c.Database.MaxIdleConns = 30
			},
			wantErr: "cannot exceed",
		},
		{
			name: "unknown vat mode",
			mutate: func(c *Config) {
				c.Order.VATMode = "reverse"
			},
			wantErr: "order.vat_mode",
		},
		{
			name: "vat rate above 100",
			mutate: func(c *Config) {
				c.Order.FlatVATRate = decimal.NewFromInt(101)
			},
			wantErr: "order.flat_vat_rate",
		},
		{
			name: "negative tolerance",
			mutate: func(c *Config) {
				c.Order.PriceTolerance = decimal.RequireFromString("-0.01")
			},
			wantErr: "order.price_tolerance",
		},
		{
			name: "production without database password",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.Database.SSLMode = "require"
				c.HTTP.CORSAllowOrigins = []string{"https://shop.example.com"}
			},
			wantErr: "database.password is required",
		},
		{
			name: "production with sslmode disabled",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.Database.Password = "secret"
				c.HTTP.CORSAllowOrigins = []string{"https://shop.example.com"}
			},
			wantErr: "sslmode",
		},
		{
			name: "production with short jwt secret",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.JWT.Secret = "short"
			},
			wantErr: "jwt.secret",
		},
		{
			name: "production with wildcard cors",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.Database.Password = "secret"
				c.Database.SSLMode = "require"
			},
			wantErr: "cors_allow_origins",
		},
		{
			name: "production fully configured",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.App.Replicas = 4
				c.Order.NumberStrategy = NumberStrategyRedis
				c.Database.Password = "secret"
				c.Database.SSLMode = "require"
				c.JWT.Secret = "0123456789abcdef0123456789abcdef"
				c.HTTP.CORSAllowOrigins = []string{"https://shop.example.com"}
			},
		},
		{
			name: "sampling ratio out of range",
			mutate: func(c *Config) {
				c.Telemetry.SamplingRatio = 1.5
			},
			wantErr: "sampling_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "shop",
		Password: "p@ss/word",
		DBName:   "storefront",
		SSLMode:  "require",
	}
	assert.Equal(t, "postgres://shop:p%40ss%2Fword@db:5432/storefront?sslmode=require", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
