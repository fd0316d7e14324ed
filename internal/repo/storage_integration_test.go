//go:build integration
// +build integration

package repo_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/redis"

	appconfig "swapstats-api/internal/config"
	"swapstats-api/internal/repo"
	"swapstats-api/internal/svc"
	"swapstats-api/pkg/confkit"
)

func newIntegrationServiceContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	cfg := appconfig.MustLoad(confkit.MustProjectPath("etc/swapstats.yaml"))
	if dsn := os.Getenv("SWAPSTATS_TEST_DSN"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if cfg.Postgres.DSN == "" {
		t.Skip("Postgres not configured (set SWAPSTATS_TEST_DSN)")
	}
	return svc.NewServiceContext(*cfg)
}

func TestPostgresConnectivity(t *testing.T) {
	svcCtx := newIntegrationServiceContext(t)
	db := requirePostgres(t, svcCtx)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var one int
	err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	assert.NoError(t, err, "postgres connectivity check failed")
	assert.Equal(t, 1, one, "postgres returned unexpected value")
}

func TestSwapsRepoAgainstPostgres(t *testing.T) {
	svcCtx := newIntegrationServiceContext(t)
	requirePostgres(t, svcCtx)

	set, err := repo.New(repo.Dependencies{DBConn: svcCtx.DBConn})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	since := time.Now().Add(-14 * 24 * time.Hour)
	n, err := set.Swaps.Count(ctx, since)
	require.NoError(t, err)
	pairs, err := set.Swaps.ActivePairs(ctx, since)
	require.NoError(t, err)
	if n > 0 {
		assert.NotEmpty(t, pairs, "swaps exist but no active pairs")
	}
	_, err = set.Swaps.LastTraded(ctx)
	assert.NoError(t, err)
}

func TestRedisConnectivity(t *testing.T) {
	svcCtx := newIntegrationServiceContext(t)
	rds := requireRedis(t, svcCtx)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := fmt.Sprintf("swapstats:integration:%d", time.Now().UnixNano())
	const payload = "ok"

	err := rds.SetexCtx(ctx, key, payload, 10)
	assert.NoError(t, err, "redis set failed")
	defer rds.DelCtx(context.Background(), key)

	value, err := rds.GetCtx(ctx, key)
	assert.NoError(t, err, "redis get failed")
	assert.Equal(t, payload, value, "redis value mismatch")
}

func requirePostgres(t *testing.T, svcCtx *svc.ServiceContext) *sql.DB {
	t.Helper()
	if svcCtx.DBConn == nil {
		t.Skip("Postgres not configured (DBConn nil)")
	}
	raw, err := svcCtx.DBConn.RawDB()
	if err != nil {
		t.Fatalf("failed to obtain postgres handle: %v", err)
	}
	return raw
}

func requireRedis(t *testing.T, svcCtx *svc.ServiceContext) *redis.Redis {
	t.Helper()
	if svcCtx.Redis == nil {
		t.Skip("redis not configured (Redis nil)")
	}
	return svcCtx.Redis
}
