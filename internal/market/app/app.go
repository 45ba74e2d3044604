// Package app wires the marketplace core to its collaborators from config:
// in-memory implementations by default, mysql / redis / NATS when enabled.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gophermart.com/internal/custody"
	custodymysql "gophermart.com/internal/custody/repo/mysql"
	"gophermart.com/internal/eventlog"
	"gophermart.com/internal/ledger"
	ledgermysql "gophermart.com/internal/ledger/repo/mysql"
	"gophermart.com/internal/market"
	marketmysql "gophermart.com/internal/market/repo/mysql"
	"gophermart.com/pkg/config"
	"gophermart.com/pkg/logger"
	"gophermart.com/pkg/metrics"
	"gophermart.com/pkg/safe"
	gomysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// AssetIssuer provisions fresh assets into custody.
type AssetIssuer interface {
	Issue(ctx context.Context, owner market.AccountID, id market.AssetID, meta string) error
}

// Faucet credits currency balances (operator provisioning and test setups).
type Faucet interface {
	Mint(ctx context.Context, account market.AccountID, amount uint64) error
}

// App is the assembled marketplace with its collaborators exposed for
// provisioning and observation.
type App struct {
	Market  *market.Market
	Custody market.Custody
	Issuer  AssetIssuer
	Ledger  market.Ledger
	Faucet  Faucet
	Journal *eventlog.Journal
	Bus     *eventlog.Bus

	cleanups []func()
}

// Close releases collaborator resources in reverse build order.
func (a *App) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// Build assembles the marketplace from cfg.
func Build(ctx context.Context, cfg *market.Cfg) (*App, error) {
	a := &App{}

	busSize := cfg.Events.BusSize
	a.Bus = eventlog.NewBus(busSize)
	sinks := []eventlog.Sink{a.Bus}

	if cfg.Nats.Enabled {
		sink, err := eventlog.NewNatsSink(cfg.Nats.Url)
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		a.cleanups = append(a.cleanups, func() { _ = sink.Close() })
		sinks = append(sinks, sink)
	}

	dir := cfg.Events.Dir
	if dir == "" {
		dir = "events"
	}
	journal, err := eventlog.NewJournal(dir, sinks...)
	if err != nil {
		return nil, fmt.Errorf("open event journal: %w", err)
	}
	a.cleanups = append(a.cleanups, func() { _ = journal.Close() })
	a.Journal = journal

	var store market.ListingStore
	if cfg.Db.Enabled {
		sqlDB, err := newSQLDB(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init db: %w", err)
		}
		a.cleanups = append(a.cleanups, func() { _ = sqlDB.Close() })
		pollDBPool(ctx, sqlDB)

		gdb, err := newGorm(sqlDB)
		if err != nil {
			return nil, fmt.Errorf("init gorm: %w", err)
		}

		vault := custody.NewStore(custodymysql.NewHoldingsRepo(gdb))
		a.Custody, a.Issuer = vault, vault

		var cache ledger.Cache
		if cfg.Redis.Enabled {
			rdb, err := newRedis(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("init redis: %w", err)
			}
			a.cleanups = append(a.cleanups, func() { _ = rdb.Close() })
			pollRedisPool(ctx, rdb)
			cache = ledger.NewRedisCache(rdb)
		}
		svc := ledger.NewService(ledgermysql.NewBalancesRepo(gdb), cache)
		a.Ledger, a.Faucet = svc, svc

		store = marketmysql.NewListingsStore(gdb)
	} else {
		vault := custody.NewVault()
		a.Custody, a.Issuer = vault, vault
		mem := ledger.NewMemLedger()
		a.Ledger, a.Faucet = mem, mem
	}

	a.Market = market.New(market.Deps{
		Custody: a.Custody,
		Ledger:  a.Ledger,
		Events:  journal,
		Store:   store,
	})
	return a, nil
}

// Run loads config, builds the app and blocks until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg := &market.Cfg{}
	if _, err := config.LoadAndWatch("market-service", cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Name, cfg.LogLevel)
	defer logger.Sync()

	metrics.MustRegister()
	if cfg.Metrics.Addr != "" {
		startMetrics(cfg.Metrics.Addr)
	}

	a, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info(ctx, "marketplace up")
	<-ctx.Done()
	logger.Info(ctx, "shutdown signal received")
	return nil
}

func startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	go func() {
		log.Printf("metrics listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
}

func newGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	return gorm.Open(gomysql.New(gomysql.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
}

func newSQLDB(ctx context.Context, cfg *market.Cfg) (*sql.DB, error) {
	dbCfg := cfg.Db
	db, err := sql.Open(dbCfg.Type, dbCfg.SourceName)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(dbCfg.ConnMaxLifetimeMinutes) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func pollDBPool(ctx context.Context, db *sql.DB) {
	safe.GoCtx(ctx, func(ctx context.Context) {
		t := time.NewTicker(5 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := db.Stats()
				metrics.DbPoolOpen.Set(float64(st.OpenConnections))
				metrics.DbPoolIdle.Set(float64(st.Idle))
				metrics.DbPoolInuse.Set(float64(st.InUse))
				metrics.DbPoolWaitCount.Add(float64(st.WaitCount))
				metrics.DbPoolWaitDuration.Add(st.WaitDuration.Seconds())
			}
		}
	})
}

func pollRedisPool(ctx context.Context, rdb *redis.Client) {
	safe.GoCtx(ctx, func(ctx context.Context) {
		t := time.NewTicker(5 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := rdb.PoolStats()
				metrics.RedisPoolOpen.Set(float64(st.TotalConns))
				metrics.RedisPoolIdle.Set(float64(st.IdleConns))
				metrics.RedisPoolStale.Set(float64(st.StaleConns))
				metrics.RedisPoolWaitCount.Set(float64(st.WaitCount))
			}
		}
	})
}

func newRedis(ctx context.Context, cfg *market.Cfg) (*redis.Client, error) {
	rcfg := cfg.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         rcfg.Addr,
		Password:     rcfg.Auth,
		DB:           rcfg.Database,
		PoolSize:     rcfg.PoolSize,
		MinIdleConns: rcfg.MinIdleConns,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
