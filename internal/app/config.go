package app

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/VAshish07243/Chai-Shots/internal/data/cache"
	"github.com/VAshish07243/Chai-Shots/internal/data/db"
	"github.com/VAshish07243/Chai-Shots/internal/jobs/scheduler"
	"github.com/VAshish07243/Chai-Shots/internal/observability"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/realtime/bus"
	"github.com/VAshish07243/Chai-Shots/internal/services"
)

const ServiceName = "chaishots"

type Config struct {
	LogMode  string
	HTTPAddr string

	DB db.Config

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisChannel    string
	CatalogCacheTTL time.Duration

	Scheduler        scheduler.Config
	WorkerHealthAddr string

	CORSOrigins []string
	Otel        observability.OtelConfig
}

// NewViper returns a viper instance reading the environment and, when present,
// an app.env file in dir.
func NewViper(dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)
	v.AutomaticEnv()

	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("HTTP_ADDR", ":3001")
	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_NAME", "chaishots")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "chaishots.db")
	v.SetDefault("REDIS_CHANNEL", bus.DefaultChannel)
	v.SetDefault("WORKER_HEALTH_ADDR", ":9091")
	v.SetDefault("OTEL_SERVICE_NAME", ServiceName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read app.env: %w", err)
		}
	}
	return v, nil
}

// LoadConfig resolves every setting. Malformed numbers and durations are
// logged and replaced by their defaults.
func LoadConfig(v *viper.Viper, log *logger.Logger) Config {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "Config")

	cfg := Config{
		LogMode:  v.GetString("LOG_MODE"),
		HTTPAddr: v.GetString("HTTP_ADDR"),
		DB: db.Config{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:             postgresDSN(v),
			SQLitePath:      v.GetString("SQLITE_PATH"),
			MaxOpenConns:    intOr(v, log, "DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    intOr(v, log, "DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: durationOr(v, log, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          durationOr(v, log, "JWT_TTL", services.DefaultTokenTTL),
		RedisAddr:       strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         intOr(v, log, "REDIS_DB", 0),
		RedisChannel:    v.GetString("REDIS_CHANNEL"),
		CatalogCacheTTL: durationOr(v, log, "CATALOG_CACHE_TTL", cache.DefaultTTL),
		Scheduler: scheduler.Config{
			Interval:   durationOr(v, log, "SCHEDULER_INTERVAL", scheduler.DefaultInterval),
			BatchSize:  intOr(v, log, "SCHEDULER_BATCH_SIZE", scheduler.DefaultBatchSize),
			StaleAfter: durationOr(v, log, "SCHEDULER_STALE_AFTER", scheduler.DefaultStaleAfter),
		},
		WorkerHealthAddr: v.GetString("WORKER_HEALTH_ADDR"),
		CORSOrigins:      splitList(v.GetString("CORS_ORIGINS")),
		Otel: observability.OtelConfig{
			Enabled:     boolOr(v, log, "OTEL_ENABLED", false),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Environment: v.GetString("OTEL_ENVIRONMENT"),
			Version:     v.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Headers:     v.GetString("OTEL_EXPORTER_OTLP_HEADERS"),
			Insecure:    boolOr(v, log, "OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: floatOr(v, log, "OTEL_SAMPLE_RATIO", 1),
		},
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, using an insecure development secret")
		cfg.JWTSecret = "chaishots-dev-secret"
	}
	if cfg.Scheduler.Interval <= 0 {
		log.Warn("SCHEDULER_INTERVAL must be positive, using default", "default", scheduler.DefaultInterval)
		cfg.Scheduler.Interval = scheduler.DefaultInterval
	}
	if cfg.Scheduler.BatchSize <= 0 {
		log.Warn("SCHEDULER_BATCH_SIZE must be positive, using default", "default", scheduler.DefaultBatchSize)
		cfg.Scheduler.BatchSize = scheduler.DefaultBatchSize
	}
	return cfg
}

// postgresDSN prefers DATABASE_URL and otherwise assembles a URL from the
// POSTGRES_* parts.
func postgresDSN(v *viper.Viper) string {
	if dsn := strings.TrimSpace(v.GetString("DATABASE_URL")); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(v.GetString("POSTGRES_USER"), v.GetString("POSTGRES_PASSWORD")),
		Host:     v.GetString("POSTGRES_HOST") + ":" + v.GetString("POSTGRES_PORT"),
		Path:     "/" + v.GetString("POSTGRES_NAME"),
		RawQuery: "sslmode=" + url.QueryEscape(v.GetString("POSTGRES_SSLMODE")),
	}
	return u.String()
}

// durationOr accepts Go durations ("90s", "2h") and bare integers as seconds.
func durationOr(v *viper.Viper, log *logger.Logger, key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("invalid duration, using default", "key", key, "value", raw, "default", def.String())
		return def
	}
	return d
}

func intOr(v *viper.Viper, log *logger.Logger, key string, def int) int {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn("invalid integer, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return n
}

func floatOr(v *viper.Viper, log *logger.Logger, key string, def float64) float64 {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn("invalid number, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return f
}

func boolOr(v *viper.Viper, log *logger.Logger, key string, def bool) bool {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn("invalid boolean, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
