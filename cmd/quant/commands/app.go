package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/internal/engine"
	"github.com/wonny/rebalancer/internal/market"
	"github.com/wonny/rebalancer/internal/metrics"
	"github.com/wonny/rebalancer/internal/positions"
	"github.com/wonny/rebalancer/internal/predictions"
	"github.com/wonny/rebalancer/internal/report"
	"github.com/wonny/rebalancer/internal/strategyconfig"
	"github.com/wonny/rebalancer/pkg/config"
	"github.com/wonny/rebalancer/pkg/database"
	"github.com/wonny/rebalancer/pkg/httputil"
	"github.com/wonny/rebalancer/pkg/logger"
	"github.com/wonny/rebalancer/pkg/redis"
)

// overrides are per-invocation flag values layered over the environment
type overrides struct {
	predictionsPath string
	positionsPath   string
	snapshot        string
}

// app holds the wired collaborators of one CLI invocation
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	policy *strategyconfig.Config
	store  contracts.PositionStore
	cache  *market.RunCache

	closers []func()
}

// newApp loads configuration and wires the position store
func newApp(ctx context.Context, ov overrides) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if policyPath != "" {
		cfg.PolicyPath = policyPath
	}
	if ov.predictionsPath != "" {
		cfg.Feeds.PredictionsPath = ov.predictionsPath
	}
	if ov.positionsPath != "" {
		cfg.Store.Backend = config.StoreBackendFile
		cfg.Store.PositionsPath = ov.positionsPath
	}
	if ov.snapshot != "" {
		if market.IsURL(ov.snapshot) {
			cfg.Feeds.SnapshotURL = ov.snapshot
			cfg.Feeds.SnapshotPath = ""
		} else {
			cfg.Feeds.SnapshotPath = ov.snapshot
			cfg.Feeds.SnapshotURL = ""
		}
	}

	log := logger.New(cfg)

	policy, err := strategyconfig.Load(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	for _, w := range strategyconfig.Warn(policy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	a := &app{cfg: cfg, log: log, policy: policy}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	return a, nil
}

// openStore selects the position store backend
func (a *app) openStore(ctx context.Context) (contracts.PositionStore, error) {
	switch a.cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.New(ctx, a.cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		store := positions.NewPostgresStore(db.Pool, a.log)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return positions.NewFileStore(a.cfg.Store.PositionsPath, a.log), nil
	}
}

// buildEngine wires feeds, cache and metrics into an engine
func (a *app) buildEngine(ctx context.Context) (*engine.Engine, error) {
	location := a.cfg.Feeds.SnapshotURL
	if location == "" {
		location = a.cfg.Feeds.SnapshotPath
	}
	if location == "" {
		return nil, fmt.Errorf("no market snapshot source: set MARKET_SNAPSHOT_URL, MARKET_SNAPSHOT_PATH or --snapshot")
	}

	client := httputil.New(a.cfg, a.log)
	source := market.NewSource(location, client, a.log)

	rdb, err := redis.New(ctx, a.cfg)
	if err != nil {
		// 캐시 없이 진행
		a.log.WithError(err).Warn("Redis unavailable, snapshot cache disabled")
		rdb = redis.NewFromRedis(nil)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	a.cache = market.NewRunCache(source, redis.NewCache(rdb, "rebalancer"), a.cfg.Feeds.SnapshotCacheTTL, a.log)

	return engine.New(engine.Deps{
		Store:       a.store,
		Predictions: predictions.NewCSVSource(a.cfg.Feeds.PredictionsPath, a.log),
		Snapshots:   a.cache,
		Reporter:    report.New(os.Stdout),
		Metrics:     metrics.New(a.cfg.MetricsPushURL, a.cfg.MetricsJob),
	}, a.policy, a.log)
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
