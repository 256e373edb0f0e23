package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8800", cfg.Port)
	assert.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.Postgres.QueryTimeout)
	assert.True(t, cfg.DemoBootstrap)
	assert.True(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "postgres://postgres@localhost:5432/cargo_db?sslmode=disable", cfg.Postgres.DSN())
}

// isolatePGEnv keeps the developer's libpq environment out of pgconn.ParseConfig.
func isolatePGEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PGHOST", "PGPORT", "PGDATABASE", "PGUSER", "PGPASSWORD", "PGSSLMODE", "PGSERVICE"} {
		t.Setenv(key, "")
	}
	t.Setenv("PGPASSFILE", filepath.Join(t.TempDir(), "missing"))
}

func TestPostgresDSN_ParsesWithDriver(t *testing.T) {
	isolatePGEnv(t)

	t.Run("defaults keep sslmode with empty password", func(t *testing.T) {
		cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
			"JWT_SECRET": "s3cret",
		}))
		require.NoError(t, err)

		pc, err := pgconn.ParseConfig(cfg.Postgres.DSN())
		require.NoError(t, err)
		assert.Equal(t, "localhost", pc.Host)
		assert.Equal(t, uint16(5432), pc.Port)
		assert.Equal(t, "cargo_db", pc.Database)
		assert.Equal(t, "postgres", pc.User)
		assert.Empty(t, pc.Password)
		assert.Nil(t, pc.TLSConfig, "sslmode=disable must not negotiate TLS")
		assert.Empty(t, pc.Fallbacks)
	})

	t.Run("special characters survive", func(t *testing.T) {
		cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
			"JWT_SECRET":  "s3cret",
			"DB_HOST":     "db.internal",
			"DB_PORT":     "6543",
			"DB_USER":     "cargo app",
			"DB_PASSWORD": `p@ss word'"/?#=`,
			"DB_SSLMODE":  "require",
		}))
		require.NoError(t, err)

		pc, err := pgconn.ParseConfig(cfg.Postgres.DSN())
		require.NoError(t, err)
		assert.Equal(t, "db.internal", pc.Host)
		assert.Equal(t, uint16(6543), pc.Port)
		assert.Equal(t, "cargo app", pc.User)
		assert.Equal(t, `p@ss word'"/?#=`, pc.Password)
		assert.NotNil(t, pc.TLSConfig, "sslmode=require must negotiate TLS")
	})
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s3cret",
		"JWT_ALGORITHM":        "HS512",
		"STORE_DRIVER":         "Mongo",
		"DATABASE_URL":         "postgres://u:p@db:5432/cargo",
		"DB_QUERY_TIMEOUT":     "250ms",
		"ENV":                  "production",
		"DEMO_BOOTSTRAP":       "false",
		"REDIS_ADDR":           "redis:6379",
		"CORS_ALLOWED_ORIGINS": "https://app.cargolive.com,https://admin.cargolive.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "postgres://u:p@db:5432/cargo", cfg.Postgres.DSN())
	assert.Equal(t, 250*time.Millisecond, cfg.Postgres.QueryTimeout)
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.DemoBootstrap)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"https://app.cargolive.com", "https://admin.cargolive.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoadFrom_UnknownDriver(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "s3cret",
		"STORE_DRIVER": "sqlite",
	}))
	assert.Error(t, err)
}
