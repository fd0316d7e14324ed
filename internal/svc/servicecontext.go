package svc

import (
	"database/sql"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"swapstats-api/internal/cache"
	"swapstats-api/internal/calc"
	"swapstats-api/internal/config"
	"swapstats-api/internal/repo"
	"swapstats-api/internal/scheduler"
	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/dexrpc"
	marketpkg "swapstats-api/pkg/market"
	"swapstats-api/pkg/market/fixer"
	"swapstats-api/pkg/retry"

	_ "swapstats-api/pkg/market/sources/coingecko"
	_ "swapstats-api/pkg/market/sources/static"
)

type ServiceContext struct {
	Config config.Config

	DBConn sqlx.SqlConn
	Redis  *redis.Redis
	Store  cachekit.Store
	Repos  *repo.Set

	MarketConfig    *marketpkg.Config
	MarketProviders map[string]marketpkg.Provider
	DefaultMarket   marketpkg.Provider
	DexRPC          *dexrpc.Client
	Fixer           *fixer.Client

	Calc      *calc.Calc
	Scheduler *scheduler.Scheduler
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{Config: c}
	handler := retry.NewHandler(retry.Default())

	if c.Postgres.DSN == "" {
		log.Fatalf("postgres dsn is required")
	}
	db, err := sql.Open("pgx", c.Postgres.DSN)
	if err != nil {
		log.Fatalf("failed to open postgres: %v", err)
	}
	db.SetMaxOpenConns(c.Postgres.MaxOpen)
	db.SetMaxIdleConns(c.Postgres.MaxIdle)
	svc.DBConn = sqlx.NewSqlConnFromDB(db)

	repos, err := repo.New(repo.Dependencies{DBConn: svc.DBConn, Retry: handler})
	if err != nil {
		log.Fatalf("failed to build repositories: %v", err)
	}
	svc.Repos = repos

	var shared cachekit.Store
	if strings.TrimSpace(c.Redis.Host) != "" {
		svc.Redis = redis.MustNewRedis(c.Redis)
		shared = cachekit.NewRedisStore(svc.Redis, handler)
	}
	svc.Store, err = NewCacheStore(c.Cache, shared)
	if err != nil {
		log.Fatalf("failed to build local cache: %v", err)
	}

	marketCfg := c.Market.Value
	if marketCfg == nil {
		marketCfg = config.MustLoadMarket()
	}
	providers, err := marketCfg.BuildProviders()
	if err != nil {
		log.Fatalf("failed to build market providers: %v", err)
	}
	svc.MarketConfig = marketCfg
	svc.MarketProviders = providers
	svc.DefaultMarket = providers[marketCfg.Default]
	if svc.DefaultMarket == nil {
		log.Fatalf("default market provider %q not found", marketCfg.Default)
	}

	svc.DexRPC = dexrpc.NewClient(c.DexRPC.URL,
		dexrpc.WithUserpass(c.DexRPC.UserPass),
		dexrpc.WithTimeout(c.DexRPC.Timeout),
		dexrpc.WithMaxRetries(c.DexRPC.MaxRetries),
	)

	deps := calc.Deps{
		Store:      svc.Store,
		TTL:        cache.NewTTLSet(c.TTL),
		Swaps:      repos.Swaps,
		Prices:     svc.DefaultMarket,
		Coins:      calc.NewCoinsSource(c.Coins.URL, c.CoinsPath(), 0),
		Orderbooks: svc.DexRPC,
		Windows:    c.TickerWindows(),
		Policy:     c.VolumePolicy(),
		Depth:      c.Cache.OrderbookDepth,
		Workers:    c.Cache.Workers,
		QueueSize:  c.Cache.QueueSize,
		Retention:  c.Cache.Retention,
		Interval:   c.Interval,
	}
	if deps.Retention <= 0 {
		deps.Retention = cache.EntryRetention()
	}
	// Fixer rates are only refreshed when an API key is configured.
	if strings.TrimSpace(c.Fixer.APIKey) != "" {
		svc.Fixer = fixer.NewClient(c.Fixer.BaseURL, c.Fixer.APIKey, c.Fixer.Timeout)
		deps.Rates = svc.Fixer
	}

	svc.Calc = calc.New(deps)
	if err := svc.Calc.Register(); err != nil {
		log.Fatalf("failed to register cache entries: %v", err)
	}
	svc.Scheduler = scheduler.New(svc.Calc.Manager(), scheduler.JobsFrom(svc.Calc.Entries()))
	return svc
}

// NewCacheStore builds the entry store. With a shared tier the process keeps
// a short-lived local copy; without one the local tier holds entries for
// their full retention.
func NewCacheStore(c config.CacheConf, shared cachekit.Store) (cachekit.Store, error) {
	if shared == nil {
		local, err := cachekit.NewMemoryStore("swapstats", c.Retention)
		if err != nil {
			return nil, err
		}
		return cachekit.NewTieredStore(local, nil, 0), nil
	}
	local, err := cachekit.NewMemoryStore("swapstats", c.LocalExpiry)
	if err != nil {
		return nil, err
	}
	return cachekit.NewTieredStore(local, shared, c.LocalExpiry), nil
}
