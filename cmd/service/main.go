// Package main provides the entry point for the n3r draw watcher service.
// The watcher polls the prize-distribution protocol's on-chain draw and
// prize-distribution buffers across every configured chain, publishes
// sealed-draw events to NATS JetStream for downstream processing, and serves
// cached draw data over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/Niffl3rReturns/n3r-sdk/db"
	"github.com/Niffl3rReturns/n3r-sdk/internal/api"
	"github.com/Niffl3rReturns/n3r-sdk/internal/backfill"
	"github.com/Niffl3rReturns/n3r-sdk/internal/cache"
	"github.com/Niffl3rReturns/n3r-sdk/internal/pool"
	"github.com/Niffl3rReturns/n3r-sdk/internal/processor"
	"github.com/Niffl3rReturns/n3r-sdk/internal/pub"
	"github.com/Niffl3rReturns/n3r-sdk/internal/stats"
	"github.com/Niffl3rReturns/n3r-sdk/internal/util"
	"github.com/Niffl3rReturns/n3r-sdk/internal/watcher"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/chain"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/contracts"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/distributor"
)

const (
	// defaultGracefulShutdownPeriod defines the maximum time allowed for graceful shutdown
	// before forcefully terminating the application.
	defaultGracefulShutdownPeriod = time.Second * 30

	// defaultWorkerPoolMultiplier is the multiplier used to calculate default worker pool size
	// based on CPU count when pool_size is not explicitly configured.
	defaultWorkerPoolMultiplier = 3
)

var (
	// build is set during compilation via -ldflags "-X main.build=<version>"
	build = "dev"

	// confFlag holds the path to the configuration file
	confFlag string

	// lo is the global structured logger instance
	lo *slog.Logger

	// ko is the global configuration instance
	ko *koanf.Koanf
)

func init() {
	flag.StringVar(&confFlag, "config", "config.toml", "Path to configuration file (TOML format)")
	flag.Parse()

	lo = util.InitLogger()
	ko = util.InitConfig(lo, confFlag)
}

func main() {
	lo.Info("starting n3r draw watcher service", "build", build)

	var wg sync.WaitGroup
	ctx, stop := notifyShutdown()

	contractList, err := contracts.LoadList(ko.MustString("core.contract_list"))
	if err != nil {
		lo.Error("could not load contract list", "error", err)
		os.Exit(1)
	}
	lo.Debug("loaded contract list", "contract_count", len(contractList))

	providers := make(map[int64]chain.Provider)
	for _, chainConf := range ko.Slices("chains") {
		chainID := chainConf.MustInt64("chain_id")
		provider, err := chain.NewProvider(chain.ProviderOpts{
			RPCEndpoint: chainConf.MustString("rpc_endpoint"),
			ChainID:     chainID,
		})
		if err != nil {
			lo.Error("could not initialize chain provider", "chain_id", chainID, "error", err)
			os.Exit(1)
		}
		providers[chainID] = provider
	}
	lo.Debug("loaded chain providers", "chain_count", len(providers))

	distributors, err := distributor.Initialize(ctx, distributor.InitializeOpts{
		Providers: providers,
		Contracts: contractList,
		Logg:      lo,
	})
	if err != nil {
		lo.Error("could not initialize prize distributors", "error", err)
		os.Exit(1)
	}
	if len(distributors) == 0 {
		lo.Error("no prize distributors found in contract list")
		os.Exit(1)
	}
	distributorsByID := make(map[string]*distributor.PrizeDistributor, len(distributors))
	for _, d := range distributors {
		distributorsByID[d.ID()] = d
	}
	lo.Debug("initialized prize distributors", "distributor_count", len(distributors))

	drawDB, err := db.New(db.DBOpts{
		Logg:   lo,
		DBType: ko.MustString("core.db_type"),
		Path:   ko.String("core.db_path"),
	})
	if err != nil {
		lo.Error("could not initialize draws db", "error", err)
		os.Exit(1)
	}
	lo.Debug("loaded draws db")

	drawCache, err := cache.New(cache.CacheOpts{
		CacheType: ko.MustString("core.cache_type"),
		Logg:      lo,
	})
	if err != nil {
		lo.Error("could not initialize cache", "error", err)
		os.Exit(1)
	}
	lo.Debug("loaded draw cache")

	jetStreamPub, err := pub.NewJetStreamPub(pub.JetStreamOpts{
		Endpoint:        ko.MustString("jetstream.endpoint"),
		PersistDuration: time.Duration(ko.MustInt("jetstream.persist_duration_hrs")) * time.Hour,
		Logg:            lo,
	})
	if err != nil {
		lo.Error("could not initialize jetstream pub", "error", err)
		os.Exit(1)
	}
	lo.Debug("loaded jetstream publisher")

	drawProcessor := processor.NewProcessor(processor.ProcessorOpts{
		Cache:        drawCache,
		Distributors: distributorsByID,
		DB:           drawDB,
		Pub:          jetStreamPub,
		Logg:         lo,
	})
	lo.Debug("bootstrapped processor")

	poolSize := ko.Int("core.pool_size")
	if poolSize <= 0 {
		poolSize = runtime.NumCPU() * defaultWorkerPoolMultiplier
		lo.Info("using default worker pool size", "cpu_count", runtime.NumCPU(), "pool_size", poolSize)
	}
	workerPool := pool.New(pool.PoolOpts{
		Logg:        lo,
		WorkerCount: poolSize,
		Processor:   drawProcessor,
	})
	lo.Debug("bootstrapped worker pool")

	serviceStats := stats.New(stats.StatsOpts{
		Cache: drawCache,
		Logg:  lo,
		Pool:  workerPool,
	})
	lo.Debug("bootstrapped stats provider")

	drawWatcher, err := watcher.New(watcher.WatcherOpts{
		DB:           drawDB,
		Distributors: distributors,
		Logg:         lo,
		Pool:         workerPool,
		Stats:        serviceStats,
		PollInterval: time.Duration(ko.Int("watcher.poll_interval_secs")) * time.Second,
	})
	if err != nil {
		lo.Error("could not initialize draw watcher", "error", err)
		os.Exit(1)
	}
	lo.Debug("bootstrapped draw watcher")

	drawBackfill := backfill.New(backfill.BackfillOpts{
		BatchSize:    ko.MustInt("core.batch_size"),
		DB:           drawDB,
		Distributors: distributors,
		Logg:         lo,
		Pool:         workerPool,
	})
	lo.Debug("bootstrapped backfiller")

	apiServer := &http.Server{
		Addr: ko.MustString("api.address"),
		Handler: api.New(api.APIOpts{
			Cache: drawCache,
			Stats: serviceStats,
		}),
	}
	lo.Debug("bootstrapped API server")
	lo.Debug("starting routines")

	wg.Add(1)
	go func() {
		defer wg.Done()
		drawWatcher.Start()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := drawBackfill.Run(false); err != nil {
			lo.Error("backfiller initial run error", "error", err)
		} else {
			lo.Info("completed initial backfill run")
		}
		drawBackfill.Start()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		serviceStats.StartStatsPrinter()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		lo.Info("starting API server", "address", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lo.Error("API server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	lo.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulShutdownPeriod)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		lo.Info("stopping service components")
		drawWatcher.Stop()
		drawBackfill.Stop()
		workerPool.Stop()
		serviceStats.Stop()
		jetStreamPub.Close()
		for _, d := range distributors {
			if err := drawDB.Cleanup(d.ID()); err != nil {
				lo.Error("database cleanup error", "distributor", d.ID(), "error", err)
			}
		}
		if err := drawDB.Close(); err != nil {
			lo.Error("database close error", "error", err)
		}
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			lo.Error("API server shutdown error", "error", err)
		}
		lo.Info("graceful shutdown complete")
	}()

	shutdownDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		stop()
		lo.Info("service stopped successfully")
		os.Exit(0)
	case <-shutdownCtx.Done():
		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			stop()
			lo.Error("graceful shutdown timeout exceeded, forcing exit")
			os.Exit(1)
		}
	}
}

// notifyShutdown creates a context that is cancelled when the application receives
// a shutdown signal (SIGINT, SIGTERM, or interrupt).
func notifyShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
}
