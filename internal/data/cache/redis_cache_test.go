package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

func TestRedisCatalogCacheGenerations(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis cache test")
	}
	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(ctx).Err())
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisCatalogCache(logger.NewNop(), rdb, time.Minute)
	type page struct{ IDs []string }

	require.NoError(t, c.Set(ctx, "programs:all", page{IDs: []string{"a", "b"}}))
	var got page
	hit, err := c.Get(ctx, "programs:all", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []string{"a", "b"}, got.IDs)

	require.NoError(t, c.Invalidate(ctx))
	hit, err = c.Get(ctx, "programs:all", &got)
	require.NoError(t, err)
	require.False(t, hit)
}
