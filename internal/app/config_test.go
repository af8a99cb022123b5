package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VAshish07243/Chai-Shots/internal/jobs/scheduler"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	v, err := NewViper(t.TempDir())
	require.NoError(t, err)
	cfg := LoadConfig(v, logger.NewNop())

	require.Equal(t, ":3001", cfg.HTTPAddr)
	require.Equal(t, "postgres", cfg.DB.Driver)
	require.Equal(t, "postgres://postgres:@localhost:5432/chaishots?sslmode=disable", cfg.DB.DSN)
	require.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	require.NotEmpty(t, cfg.JWTSecret)
	require.Equal(t, "chaishots.publication", cfg.RedisChannel)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.Equal(t, scheduler.Config{Interval: time.Minute, BatchSize: 100, StaleAfter: 24 * time.Hour}, cfg.Scheduler)
	require.Equal(t, ":9091", cfg.WorkerHealthAddr)
	require.Empty(t, cfg.CORSOrigins)
	require.False(t, cfg.Otel.Enabled)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://cms:pw@db:5432/cms")
	t.Setenv("SCHEDULER_INTERVAL", "15")
	t.Setenv("SCHEDULER_STALE_AFTER", "6h")
	t.Setenv("SCHEDULER_BATCH_SIZE", "25")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://cms.chaishots.com")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")

	v, err := NewViper(t.TempDir())
	require.NoError(t, err)
	cfg := LoadConfig(v, logger.NewNop())

	require.Equal(t, "postgres://cms:pw@db:5432/cms", cfg.DB.DSN)
	require.Equal(t, 15*time.Second, cfg.Scheduler.Interval)
	require.Equal(t, 6*time.Hour, cfg.Scheduler.StaleAfter)
	require.Equal(t, 25, cfg.Scheduler.BatchSize)
	require.Equal(t, []string{"http://localhost:5173", "https://cms.chaishots.com"}, cfg.CORSOrigins)
	require.True(t, cfg.Otel.Enabled)
	require.InDelta(t, 0.25, cfg.Otel.SampleRatio, 1e-9)
}

func TestLoadConfigFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("SCHEDULER_INTERVAL", "soon")
	t.Setenv("SCHEDULER_BATCH_SIZE", "-4")
	t.Setenv("JWT_TTL", "forever")
	t.Setenv("OTEL_ENABLED", "maybe")

	v, err := NewViper(t.TempDir())
	require.NoError(t, err)
	cfg := LoadConfig(v, logger.NewNop())

	require.Equal(t, scheduler.DefaultInterval, cfg.Scheduler.Interval)
	require.Equal(t, scheduler.DefaultBatchSize, cfg.Scheduler.BatchSize)
	require.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	require.False(t, cfg.Otel.Enabled)
}

func TestLoadConfigReadsAppEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("DB_DRIVER=sqlite\nSQLITE_PATH=/tmp/cms.db\nHTTP_ADDR=:8080\n"), 0o600))

	v, err := NewViper(dir)
	require.NoError(t, err)
	cfg := LoadConfig(v, logger.NewNop())

	require.Equal(t, "sqlite", cfg.DB.Driver)
	require.Equal(t, "/tmp/cms.db", cfg.DB.SQLitePath)
	require.Equal(t, ":8080", cfg.HTTPAddr)
}
