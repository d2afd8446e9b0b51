package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"yidino-api/internal/cli"
	"yidino-api/internal/config"
	"yidino-api/internal/svc"
	"yidino-api/pkg/confkit"
	"yidino-api/pkg/format"
	"yidino-api/pkg/poller"
)

const (
	reportInterval  = time.Minute      // State report interval
	pruneInterval   = time.Hour        // History pruning interval
	shutdownTimeout = 10 * time.Second // Grace period for shutdown
)

var (
	configFile = flag.String("f", "etc/yidino.yaml", "the config file")
	retention  = flag.Duration("retention", 0, "drop snapshot history older than this; 0 keeps everything")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting headless poller...")

	path := confkit.Locate(*configFile)
	appCfg, err := config.Load(path)
	if err != nil {
		log.Printf("[main] Warning: Failed to load app config: %v", err)
		log.Printf("[main] Using default configuration")
		appCfg = &config.Config{Env: "test"}
		if err := appCfg.Validate(); err != nil {
			log.Fatalf("[main] Invalid default configuration: %v", err)
		}
	}

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	svcCtx, err := svc.Build(*appCfg, path)
	if err != nil {
		log.Fatalf("[main] Failed to build services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svcCtx.Start(ctx); err != nil {
		log.Fatalf("[main] Failed to start pollers: %v", err)
	}

	var wg sync.WaitGroup

	schedulers := []*poller.Scheduler{svcCtx.MarketPoller}
	if svcCtx.DexPoller != nil {
		schedulers = append(schedulers, svcCtx.DexPoller)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		runReporter(ctx, schedulers)
	}()

	if *retention > 0 && svcCtx.Snapshots != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runPruner(ctx, svcCtx, *retention)
		}()
	}

	log.Println("[main] Poller started. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		svcCtx.Stop()
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[main] All tasks stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	log.Println("[main] Poller stopped")
}

// runReporter logs the state of every scheduler on a schedule
func runReporter(ctx context.Context, schedulers []*poller.Scheduler) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[report] Stopping reporter")
			return
		case <-ticker.C:
			for _, s := range schedulers {
				report(s)
			}
		}
	}
}

func report(s *poller.Scheduler) {
	st := s.State()
	switch {
	case st.Status == poller.StatusError:
		log.Printf("[%s] [ERROR] %s, cycles=%d", s.Name(), st.LastError, st.Cycles)
	case st.Snapshot == nil:
		log.Printf("[%s] [WAIT] no snapshot yet, status=%s", s.Name(), st.Status)
	default:
		snap := st.Snapshot
		log.Printf("[%s] [OK] price=%g, mcap=%s, volume=%s, liquidity=%s, sources=%v, cycles=%d",
			s.Name(),
			snap.Price,
			format.Compact(snap.MarketCap, 2),
			format.Compact(snap.Volume24h, 2),
			format.Compact(snap.Liquidity, 2),
			snap.Sources,
			st.Cycles)
	}
}

// runPruner drops old snapshot history on a schedule
func runPruner(ctx context.Context, svcCtx *svc.ServiceContext, keep time.Duration) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	prune := func() {
		for _, name := range []string{"market", "dex"} {
			n, err := svcCtx.Snapshots.ForPoller(name).Prune(ctx, keep)
			if err != nil {
				log.Printf("[prune.%s] [ERROR] %v", name, err)
				continue
			}
			log.Printf("[prune.%s] [OK] removed %d rows older than %s", name, n, keep)
		}
	}

	prune()
	for {
		select {
		case <-ctx.Done():
			log.Println("[prune] Stopping pruner")
			return
		case <-ticker.C:
			prune()
		}
	}
}
