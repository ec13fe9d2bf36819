package cmd

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := configFromEnv(envOf(map[string]string{
		"STORAGE":              "memory",
		"CHANNEL_TOKEN_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 15*time.Second, cfg.SSEHeartbeat)
	assert.Equal(t, 5*time.Minute, cfg.RouteServiceTime)
	assert.InDelta(t, 5.0, cfg.RouteWeightLateness, 1e-9)
	assert.Nil(t, cfg.DepotLatitude)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.NotEmpty(t, cfg.InstanceID)
}

func TestConfigFromEnvPostgresNeedsDatabase(t *testing.T) {
	_, err := configFromEnv(envOf(map[string]string{
		"CHANNEL_TOKEN_SECRET": "secret",
		"DB_HOST":              "localhost",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_NAME, DB_USER")
}

func TestConfigFromEnvParsesValues(t *testing.T) {
	cfg, err := configFromEnv(envOf(map[string]string{
		"STORAGE":               "postgres",
		"DB_HOST":               "db",
		"DB_USER":               "capacity",
		"DB_PASSWORD":           "pw",
		"DB_NAME":               "capacity",
		"CHANNEL_TOKEN_SECRET":  "secret",
		"DEPOT_LATITUDE":        "55.75",
		"DEPOT_LONGITUDE":       "37.61",
		"ROUTE_SERVICE_MINUTES": "2.5",
		"BOOKING_RATE_LIMIT":    "3",
		"LOG_LEVEL":             "debug",
	}))
	require.NoError(t, err)

	require.NotNil(t, cfg.DepotLatitude)
	assert.InDelta(t, 55.75, *cfg.DepotLatitude, 1e-9)
	assert.Equal(t, 150*time.Second, cfg.RouteServiceTime)
	assert.InDelta(t, 3.0, cfg.BookingRateLimit, 1e-9)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "host=db port=5432 user=capacity password=pw dbname=capacity sslmode=disable", cfg.DSN())
}

func TestConfigFromEnvRejectsBadInput(t *testing.T) {
	_, err := configFromEnv(envOf(map[string]string{
		"STORAGE":              "memory",
		"CHANNEL_TOKEN_SECRET": "secret",
		"ROUTE_SUGGESTIONS":    "many",
		"DEPOT_LATITUDE":       "55.75",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROUTE_SUGGESTIONS")
	assert.Contains(t, err.Error(), "DEPOT_LONGITUDE")

	_, err = configFromEnv(envOf(map[string]string{"STORAGE": "cassandra", "CHANNEL_TOKEN_SECRET": "s"}))
	require.Error(t, err)
}
