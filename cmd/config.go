package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPPort string
	Storage  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr  string
	InstanceID string

	ChannelTokenSecret string
	SSEHeartbeat       time.Duration

	DepotLatitude  *float64
	DepotLongitude *float64

	OracleSpeedKmh     float64
	OracleDetourFactor float64

	RouteWeightDistance    float64
	RouteWeightDuration    float64
	RouteWeightLateness    float64
	RouteScoreWindowWeight float64
	RouteIterationBudget   int
	RouteSuggestions       int
	RouteServiceTime       time.Duration

	BroadcastQueueSize int
	SubscriberBuffer   int

	BookingRateLimit float64
	BookingRateBurst int

	PlanRetrySpec   string
	DayRolloverSpec string

	LogLevel slog.Level
}

// DSN renders the gorm postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads the environment, after applying an optional .env file
// from the working directory. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (Config, error) {
	env := envReader{getenv: getenv}

	cfg := Config{
		HTTPPort: env.str("HTTP_PORT", "8080"),
		Storage:  strings.ToLower(env.str("STORAGE", StoragePostgres)),

		DBHost:     env.str("DB_HOST", ""),
		DBPort:     env.str("DB_PORT", "5432"),
		DBUser:     env.str("DB_USER", ""),
		DBPassword: env.str("DB_PASSWORD", ""),
		DBName:     env.str("DB_NAME", ""),
		DBSslMode:  env.str("DB_SSLMODE", "disable"),

		RedisAddr:  env.str("REDIS_ADDR", ""),
		InstanceID: env.str("INSTANCE_ID", hostname()),

		ChannelTokenSecret: env.str("CHANNEL_TOKEN_SECRET", ""),
		SSEHeartbeat:       env.seconds("SSE_HEARTBEAT_SECONDS", 15),

		DepotLatitude:  env.optionalFloat("DEPOT_LATITUDE"),
		DepotLongitude: env.optionalFloat("DEPOT_LONGITUDE"),

		OracleSpeedKmh:     env.float("ORACLE_SPEED_KMH", 0),
		OracleDetourFactor: env.float("ORACLE_DETOUR_FACTOR", 0),

		RouteWeightDistance:    env.float("ROUTE_WEIGHT_DISTANCE", 1),
		RouteWeightDuration:    env.float("ROUTE_WEIGHT_DURATION", 0.5),
		RouteWeightLateness:    env.float("ROUTE_WEIGHT_LATENESS", 5),
		RouteScoreWindowWeight: env.float("ROUTE_SCORE_WINDOW_WEIGHT", 0.5),
		RouteIterationBudget:   env.int("ROUTE_ITERATION_BUDGET", 0),
		RouteSuggestions:       env.int("ROUTE_SUGGESTIONS", 0),
		RouteServiceTime:       time.Duration(env.float("ROUTE_SERVICE_MINUTES", 5) * float64(time.Minute)),

		BroadcastQueueSize: env.int("BROADCAST_QUEUE_SIZE", 0),
		SubscriberBuffer:   env.int("SUBSCRIBER_BUFFER", 0),

		BookingRateLimit: env.float("BOOKING_RATE_LIMIT", 20),
		BookingRateBurst: env.int("BOOKING_RATE_BURST", 40),

		PlanRetrySpec:   env.str("PLAN_RETRY_SPEC", ""),
		DayRolloverSpec: env.str("DAY_ROLLOVER_SPEC", ""),

		LogLevel: env.level("LOG_LEVEL", slog.LevelInfo),
	}

	return cfg, errors.Join(append(env.errs, cfg.validate())...)
}

func (c Config) validate() error {
	var missing []string
	if c.ChannelTokenSecret == "" {
		missing = append(missing, "CHANNEL_TOKEN_SECRET")
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		for key, value := range map[string]string{
			"DB_HOST": c.DBHost,
			"DB_USER": c.DBUser,
			"DB_NAME": c.DBName,
		} {
			if value == "" {
				missing = append(missing, key)
			}
		}
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}

	if (c.DepotLatitude == nil) != (c.DepotLongitude == nil) {
		return errors.New("DEPOT_LATITUDE and DEPOT_LONGITUDE must be set together")
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) float(key string, def float64) float64 {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (e *envReader) optionalFloat(key string) *float64 {
	if e.str(key, "") == "" {
		return nil
	}
	v := e.float(key, 0)
	return &v
}

func (e *envReader) int(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (e *envReader) seconds(key string, def int) time.Duration {
	return time.Duration(e.int(key, def)) * time.Second
}

func (e *envReader) level(key string, def slog.Level) slog.Level {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return level
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "capacity"
	}
	return name
}
