// Package fetcher orchestrates resource resolution: memory cache, then the
// shared request throttle and the upstream call, then write-through to the
// cache tiers. On any failure the most recent cached value is served
// regardless of expiry, and only when nothing cached exists is a synthetic
// value returned. The UI never receives a value it cannot render.
package fetcher

import (
	"context"
	"time"

	"github.com/rewired-gh/stockdeck/internal/logger"
	"github.com/rewired-gh/stockdeck/internal/memcache"
	"github.com/rewired-gh/stockdeck/internal/mockdata"
	"github.com/rewired-gh/stockdeck/internal/models"
	"github.com/rewired-gh/stockdeck/internal/storage"
	"github.com/rewired-gh/stockdeck/internal/throttle"
)

// Provenance records where a returned value came from, so callers and tests
// can tell real data from placeholders without parsing error text.
type Provenance int

const (
	// Live data was fetched from upstream or read from an unexpired cache.
	Live Provenance = iota
	// Stale data was served from a cache entry past its nominal expiry.
	Stale
	// Synthetic data was fabricated because nothing cached existed.
	Synthetic
)

func (p Provenance) String() string {
	switch p {
	case Live:
		return "live"
	case Stale:
		return "stale-cache"
	case Synthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

// Upstream is the slice of the market-data client the fetcher depends on.
type Upstream interface {
	TopMovers(ctx context.Context) (gainers, losers []models.Stock, err error)
	Quote(ctx context.Context, symbol string) (models.Quote, error)
	TimeSeries(ctx context.Context, symbol string) ([]models.TimeSeriesPoint, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error)
}

// Fetcher resolves logical resources through the cache tiers and the
// throttled upstream.
type Fetcher struct {
	upstream Upstream
	mem      *memcache.Cache
	store    *storage.Store
	limiter  *throttle.Limiter
}

// New creates a Fetcher. The limiter must be the process-wide instance: the
// upstream rate limit spans all endpoints, so no fetch path may carry its
// own clock.
func New(upstream Upstream, mem *memcache.Cache, store *storage.Store, limiter *throttle.Limiter) *Fetcher {
	return &Fetcher{upstream: upstream, mem: mem, store: store, limiter: limiter}
}

// TopMovers resolves the market-mover snapshot: memory cache first, then the
// throttled upstream, persisting the result to both tiers. The returned
// error is non-nil only when the value is Synthetic; it carries the upstream
// cause so the caller can surface an explicit error state when no cached
// data of any kind existed.
func (f *Fetcher) TopMovers(ctx context.Context) (models.MarketSnapshot, Provenance, error) {
	if v, ok := f.mem.Get(memcache.KeyTopMovers); ok {
		if snap, ok := v.(models.MarketSnapshot); ok {
			return snap, Live, nil
		}
	}

	snap, err := f.fetchMovers(ctx)
	if err == nil {
		f.mem.Set(memcache.KeyTopMovers, snap)
		f.store.SaveSnapshot(snap)
		return snap, Live, nil
	}
	logger.Warn("top movers fetch failed, falling back: %v", err)

	if v, ok := f.mem.GetStale(memcache.KeyTopMovers); ok {
		if snap, ok := v.(models.MarketSnapshot); ok {
			return snap, Stale, nil
		}
	}
	if snap, ok := f.store.LoadSnapshotStale(); ok {
		return snap, Stale, nil
	}

	gainers, losers := mockdata.TopMovers()
	return models.MarketSnapshot{Gainers: gainers, Losers: losers}, Synthetic, err
}

func (f *Fetcher) fetchMovers(ctx context.Context) (models.MarketSnapshot, error) {
	if err := f.limiter.Acquire(ctx); err != nil {
		return models.MarketSnapshot{}, err
	}
	gainers, losers, err := f.upstream.TopMovers(ctx)
	if err != nil {
		return models.MarketSnapshot{}, err
	}
	return models.MarketSnapshot{Gainers: gainers, Losers: losers, UpdatedAt: time.Now()}, nil
}

// Quote resolves a per-symbol quote. Quotes are looked up cross-session, so
// the persistent tier is consulted before memory.
func (f *Fetcher) Quote(ctx context.Context, symbol string) (models.Quote, Provenance, error) {
	if q, ok := f.store.LoadQuote(symbol); ok {
		return q, Live, nil
	}
	key := memcache.KeyQuote(symbol)
	if v, ok := f.mem.Get(key); ok {
		if q, ok := v.(models.Quote); ok {
			return q, Live, nil
		}
	}

	q, err := f.fetchQuote(ctx, symbol)
	if err == nil {
		f.mem.Set(key, q)
		f.store.SaveQuote(q)
		return q, Live, nil
	}
	logger.Warn("quote fetch for %s failed, falling back: %v", symbol, err)

	if v, ok := f.mem.GetStale(key); ok {
		if q, ok := v.(models.Quote); ok {
			return q, Stale, nil
		}
	}
	if q, ok := f.store.LoadQuoteStale(symbol); ok {
		return q, Stale, nil
	}
	return mockdata.Quote(symbol), Synthetic, err
}

func (f *Fetcher) fetchQuote(ctx context.Context, symbol string) (models.Quote, error) {
	if err := f.limiter.Acquire(ctx); err != nil {
		return models.Quote{}, err
	}
	return f.upstream.Quote(ctx, symbol)
}

// TimeSeries resolves the daily series for a symbol, ascending and capped to
// 30 points. Session-scoped: only the memory tier caches series.
func (f *Fetcher) TimeSeries(ctx context.Context, symbol string) ([]models.TimeSeriesPoint, Provenance, error) {
	key := memcache.KeyTimeSeries(symbol)
	if v, ok := f.mem.Get(key); ok {
		if pts, ok := v.([]models.TimeSeriesPoint); ok {
			return pts, Live, nil
		}
	}

	var pts []models.TimeSeriesPoint
	err := f.limiter.Acquire(ctx)
	if err == nil {
		pts, err = f.upstream.TimeSeries(ctx, symbol)
	}
	if err == nil {
		f.mem.Set(key, pts)
		return pts, Live, nil
	}
	logger.Warn("time series fetch for %s failed, falling back: %v", symbol, err)

	if v, ok := f.mem.GetStale(key); ok {
		if pts, ok := v.([]models.TimeSeriesPoint); ok {
			return pts, Stale, nil
		}
	}
	return mockdata.TimeSeries(), Synthetic, err
}

// Search resolves a symbol search. The synthetic fallback filters the fixed
// catalog with a case-insensitive substring match on symbol and name.
func (f *Fetcher) Search(ctx context.Context, query string) ([]models.SearchResult, Provenance, error) {
	key := memcache.KeySearch(query)
	if v, ok := f.mem.Get(key); ok {
		if results, ok := v.([]models.SearchResult); ok {
			return results, Live, nil
		}
	}

	var results []models.SearchResult
	err := f.limiter.Acquire(ctx)
	if err == nil {
		results, err = f.upstream.Search(ctx, query)
	}
	if err == nil {
		f.mem.Set(key, results)
		return results, Live, nil
	}
	logger.Warn("search for %q failed, falling back: %v", query, err)

	if v, ok := f.mem.GetStale(key); ok {
		if results, ok := v.([]models.SearchResult); ok {
			return results, Stale, nil
		}
	}
	return mockdata.Search(query), Synthetic, err
}

// Fundamentals resolves company overview data: memory, then the persistent
// tier, then the throttled upstream with write-through to both.
func (f *Fetcher) Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, Provenance, error) {
	key := memcache.KeyFundamentals(symbol)
	if v, ok := f.mem.Get(key); ok {
		if fd, ok := v.(models.Fundamentals); ok {
			return fd, Live, nil
		}
	}
	if fd, ok := f.store.LoadFundamentals(symbol); ok {
		f.mem.Set(key, fd)
		return fd, Live, nil
	}

	var fd models.Fundamentals
	err := f.limiter.Acquire(ctx)
	if err == nil {
		fd, err = f.upstream.Fundamentals(ctx, symbol)
	}
	if err == nil {
		f.mem.Set(key, fd)
		f.store.SaveFundamentals(fd)
		return fd, Live, nil
	}
	logger.Warn("fundamentals fetch for %s failed, falling back: %v", symbol, err)

	if v, ok := f.mem.GetStale(key); ok {
		if fd, ok := v.(models.Fundamentals); ok {
			return fd, Stale, nil
		}
	}
	if fd, ok := f.store.LoadFundamentalsStale(symbol); ok {
		return fd, Stale, nil
	}
	return mockdata.Fundamentals(symbol), Synthetic, err
}

// ClearMemoryCache flushes only the in-memory tier. A refresh re-validates
// against upstream while other sessions' persistent data stays intact.
func (f *Fetcher) ClearMemoryCache() {
	f.mem.Flush()
}
