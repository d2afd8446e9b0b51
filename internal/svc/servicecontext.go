package svc

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	cachekeys "yidino-api/internal/cache"
	"yidino-api/internal/config"
	"yidino-api/internal/model"
	"yidino-api/internal/observability"
	snapshotpersist "yidino-api/internal/persistence/snapshot"
	"yidino-api/pkg/animator"
	"yidino-api/pkg/confkit"
	"yidino-api/pkg/journal"
	marketpkg "yidino-api/pkg/market"
	_ "yidino-api/pkg/market/coingecko"
	_ "yidino-api/pkg/market/dexscreener"
	"yidino-api/pkg/market/social"
	_ "yidino-api/pkg/market/solanarpc"
	_ "yidino-api/pkg/market/solscan"
	"yidino-api/pkg/poller"
	"yidino-api/pkg/synthetic"
	"yidino-api/pkg/wallet"
)

type ServiceContext struct {
	Config config.Config

	MarketConfig *marketpkg.Config
	Sources      map[string]marketpkg.Source

	MarketPoller *poller.Scheduler
	// DexPoller is nil when no pair source is configured.
	DexPoller *poller.Scheduler

	Social      *social.Collector
	Wallets     *wallet.Tracker
	RugScanner  synthetic.RugScanner
	Leaderboard synthetic.LeaderboardProvider
	Stats       *animator.Board

	Metrics *observability.Metrics
	Journal *journal.Writer

	// Optional stores
	DBConn         sqlx.SqlConn
	SnapshotsModel model.MarketSnapshotsModel
	Cache          gocache.Cache
	TTL            cachekeys.TTLSet
	Snapshots      *snapshotpersist.Service
}

func NewServiceContext(c config.Config, mainConfigPath string) *ServiceContext {
	svc, err := Build(c, mainConfigPath)
	if err != nil {
		log.Fatalf("failed to build service context: %v", err)
	}
	return svc
}

// Build wires every component from c. It does not start the pollers.
func Build(c config.Config, mainConfigPath string) (*ServiceContext, error) {
	svc := &ServiceContext{
		Config:  c,
		Metrics: observability.NewMetrics(""),
	}

	marketCfg := c.Market.Value
	if marketCfg == nil {
		logx.Infof("svc: no market section configured, pollers run without sources")
		marketCfg = &marketpkg.Config{Sources: map[string]*marketpkg.SourceConfig{}}
	}
	sources, err := marketCfg.BuildSources()
	if err != nil {
		return nil, fmt.Errorf("build market sources: %w", err)
	}
	svc.MarketConfig = marketCfg
	svc.Sources = sources

	if dir := c.Journal.Dir; dir != "" {
		svc.Journal = journal.NewWriter(confkit.ResolvePath(confkit.BaseDir(mainConfigPath), dir), c.JournalFormat())
	}

	svc.initStores(c)

	svc.MarketPoller = poller.New(marketpkg.BuildAggregator(sources), svc.pollerOptions("market", c.Poll.Market)...)
	if pair, ok := marketpkg.FindSource[marketpkg.PairSource](sources); ok {
		dex := marketpkg.NewAggregator(marketpkg.WithPairSource(pair))
		svc.DexPoller = poller.New(dex, svc.pollerOptions("dex", c.Poll.Dex)...)
	}

	tracker, err := buildTracker(c, sources)
	if err != nil {
		return nil, err
	}
	svc.Wallets = tracker

	svc.Social = social.CollectorFromSources(sources)
	svc.RugScanner = synthetic.NewMockRugScanner(nil, nil)
	svc.Leaderboard = synthetic.NewStaticLeaderboard()
	svc.Stats = animator.NewBoard(animator.DefaultStats(),
		animator.WithDuration(c.Stats.IntroDuration),
		animator.WithSteps(c.Stats.Steps),
		animator.WithLiveInterval(c.Stats.LiveInterval),
		animator.WithCurve(c.StatsCurve()),
	)
	return svc, nil
}

func (s *ServiceContext) initStores(c config.Config) {
	if c.Postgres.DSN != "" {
		s.DBConn = sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		if db, err := s.DBConn.RawDB(); err == nil {
			db.SetMaxOpenConns(c.Postgres.MaxOpen)
			db.SetMaxIdleConns(c.Postgres.MaxIdle)
		}
		s.SnapshotsModel = model.NewMarketSnapshotsModel(s.DBConn)
	}
	if c.Redis.Host != "" {
		s.Cache = gocache.New(gocache.ClusterConf{{RedisConf: c.Redis, Weight: 100}},
			syncx.NewSingleFlight(), gocache.NewStat(cachekeys.Namespace), model.ErrNotFound)
	}
	s.TTL = cachekeys.NewTTLSet(c.TTL)
	s.Snapshots = snapshotpersist.NewService(snapshotpersist.Config{
		Poller: "market",
		Model:  s.SnapshotsModel,
		Cache:  s.Cache,
		TTL:    s.TTL,
	})
}

func (s *ServiceContext) pollerOptions(name string, interval time.Duration) []poller.Option {
	opts := []poller.Option{
		poller.WithName(name),
		poller.WithInterval(interval),
		poller.WithObserver(s.Metrics),
		poller.WithHookTimeout(s.Config.Poll.HookTimeout),
		poller.WithCycleTimeout(s.Config.Poll.CycleTimeout),
	}
	if s.Snapshots != nil {
		opts = append(opts, poller.WithPersistence(s.Snapshots.ForPoller(name)))
	}
	if s.Journal != nil {
		opts = append(opts, poller.WithJournal(s.Journal))
	}
	return opts
}

// buildTracker picks the Solscan wallet source. Synthetic trades stand in
// while it has no key, and always in the test environment.
func buildTracker(c config.Config, sources map[string]marketpkg.Source) (*wallet.Tracker, error) {
	src, _ := marketpkg.FindSource[wallet.Source](sources)
	opts := []wallet.TrackerOption{
		wallet.WithTransactionLimit(c.Wallet.TransactionLimit),
		wallet.WithCacheTTL(c.Wallet.CacheTTL),
	}
	if c.Wallet.MockFallback || c.IsTestEnv() {
		opts = append(opts, wallet.WithFallback(synthetic.NewMockTrades(nil, nil)))
	}
	tracker, err := wallet.NewTracker(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("build wallet tracker: %w", err)
	}
	return tracker, nil
}

// Start launches the pollers.
func (s *ServiceContext) Start(ctx context.Context) error {
	if err := s.MarketPoller.Start(ctx); err != nil {
		return err
	}
	if s.DexPoller != nil {
		if err := s.DexPoller.Start(ctx); err != nil {
			s.MarketPoller.Stop()
			return err
		}
	}
	return nil
}

// Stop halts the pollers and releases the wallet cache.
func (s *ServiceContext) Stop() {
	if s.DexPoller != nil {
		s.DexPoller.Stop()
	}
	s.MarketPoller.Stop()
	s.Wallets.Close()
}
