package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rewired-gh/stockdeck/internal/alphavantage"
	"github.com/rewired-gh/stockdeck/internal/appstate"
	"github.com/rewired-gh/stockdeck/internal/config"
	"github.com/rewired-gh/stockdeck/internal/fetcher"
	"github.com/rewired-gh/stockdeck/internal/logger"
	"github.com/rewired-gh/stockdeck/internal/memcache"
	"github.com/rewired-gh/stockdeck/internal/models"
	"github.com/rewired-gh/stockdeck/internal/storage"
	"github.com/rewired-gh/stockdeck/internal/throttle"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(cfg.Storage.DBPath, storage.TTLConfig{
		Snapshot:     cfg.Cache.SnapshotTTL,
		Quote:        cfg.Cache.QuoteTTL,
		Fundamentals: cfg.Cache.FundamentalsTTL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	client := alphavantage.NewClient(
		cfg.AlphaVantage.BaseURL,
		cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.Timeout,
		alphavantage.ClientConfig{
			MaxRetries:     cfg.AlphaVantage.MaxRetries,
			RetryDelayBase: cfg.AlphaVantage.RetryDelayBase,
		},
	)

	limiter := throttle.New(cfg.AlphaVantage.MinRequestInterval)
	mem := memcache.New(cfg.Cache.MemoryTTL)
	fetch := fetcher.New(client, mem, store, limiter)
	state := appstate.NewStore(store)

	// Hydrate before any fetch so a fresh launch shows last session's data.
	state.Hydrate()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	logger.Info("Starting market refresh loop (interval: %v, min request interval: %v)",
		cfg.Refresh.PollInterval,
		cfg.AlphaVantage.MinRequestInterval,
	)

	ticker := time.NewTicker(cfg.Refresh.PollInterval)
	defer ticker.Stop()

	consecutiveFailures := 0
	handleCycleResult := func(prov fetcher.Provenance, err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Refresh cycle degraded to %s data: %v", prov, err)
		} else {
			if consecutiveFailures > 0 {
				logger.Info("Refresh recovered after %d degraded cycles", consecutiveFailures)
			}
			consecutiveFailures = 0
		}
	}

	logger.Debug("Running initial refresh cycle")
	handleCycleResult(runRefreshCycle(ctx, fetch, state))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			logger.Debug("Starting scheduled refresh cycle")
			handleCycleResult(runRefreshCycle(ctx, fetch, state))
		}
	}
}

// runRefreshCycle fetches the market movers and applies them to the state
// store. A synthetic result carries the upstream cause: no cached data of
// any kind existed, and the mover slices surface an explicit error state on
// top of the placeholder data.
func runRefreshCycle(ctx context.Context, fetch *fetcher.Fetcher, state *appstate.Store) (fetcher.Provenance, error) {
	startTime := time.Now()

	state.Dispatch(appstate.SetTopGainers{Value: appstate.Remote[[]models.Stock]{
		Data: state.State().TopGainers.Data, Loading: true,
	}})
	state.Dispatch(appstate.SetTopLosers{Value: appstate.Remote[[]models.Stock]{
		Data: state.State().TopLosers.Data, Loading: true,
	}})

	snap, prov, err := fetch.TopMovers(ctx)
	if ctx.Err() != nil {
		// The process is shutting down; discard rather than apply.
		return prov, ctx.Err()
	}

	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	state.Dispatch(appstate.SetTopGainers{Value: appstate.Remote[[]models.Stock]{Data: snap.Gainers, Err: errMsg}})
	state.Dispatch(appstate.SetTopLosers{Value: appstate.Remote[[]models.Stock]{Data: snap.Losers, Err: errMsg}})
	state.Dispatch(appstate.SetOffline{Offline: prov != fetcher.Live})

	logger.Info("Refresh cycle completed in %v (%d gainers, %d losers, provenance: %s)",
		time.Since(startTime), len(snap.Gainers), len(snap.Losers), prov)
	return prov, err
}
