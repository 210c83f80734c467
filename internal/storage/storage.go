// Package storage provides the SQLite-backed persistent cache tier: a
// key/value store with per-entry TTL for quotes, fundamentals, watchlists,
// the theme preference, and the rolling market snapshot. It is the durable
// source of truth across process restarts; the memory cache and application
// state are rebuilt from it at launch.
//
// Every typed accessor is total from the caller's perspective: storage
// failures are logged and surface as "no cached value" on read or a dropped
// write on write. The core stays usable without durability if the database
// is unavailable.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rewired-gh/stockdeck/internal/logger"
	"github.com/rewired-gh/stockdeck/internal/models"
	_ "modernc.org/sqlite"
)

// Namespaced key prefixes separating resource classes.
const (
	keySnapshot   = "snapshot"
	keyWatchlists = "watchlists"
	keyTheme      = "theme"
)

func keyQuote(symbol string) string        { return "quote:" + symbol }
func keyFundamentals(symbol string) string { return "fundamentals:" + symbol }

// TTLConfig holds the per-namespace entry lifetimes. Watchlists and theme
// persist indefinitely and have no TTL.
type TTLConfig struct {
	Snapshot     time.Duration
	Quote        time.Duration
	Fundamentals time.Duration
}

// DefaultTTLs mirror the upstream data volatility: movers go stale in
// minutes, fundamentals in hours.
func DefaultTTLs() TTLConfig {
	return TTLConfig{
		Snapshot:     5 * time.Minute,
		Quote:        30 * time.Minute,
		Fundamentals: time.Hour,
	}
}

// Store wraps a SQLite database holding one entries table.
type Store struct {
	db   *sql.DB
	ttls TTLConfig

	// now is swappable for expiry tests.
	now func() time.Time
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/stockdeck/data.db.
func New(dbPath string, ttls TTLConfig) (*Store, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "stockdeck", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Store{db: db, ttls: ttls, now: time.Now}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		timestamp  INTEGER NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	)`)
	return err
}

// put serializes value as JSON and upserts it under key. A zero ttl means
// the entry never expires.
func (s *Store) put(key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	now := s.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO entries (key, value, timestamp, expires_at)
		VALUES (?,?,?,?)`,
		key, string(raw), now.UnixNano(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write entry %s: %w", key, err)
	}
	return nil
}

// get reads the entry under key into out. Expiry is lazy: a read past
// expires_at deletes the row and reports absence. allowStale skips the
// expiry check, serving the fetcher's stale-fallback path.
func (s *Store) get(key string, out interface{}, allowStale bool) (bool, error) {
	row := s.db.QueryRow(`SELECT value, expires_at FROM entries WHERE key = ?`, key)
	var raw string
	var expiresAt int64
	err := row.Scan(&raw, &expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read entry %s: %w", key, err)
	}
	if !allowStale && expiresAt != 0 && s.now().UnixNano() >= expiresAt {
		if _, err := s.db.Exec(`DELETE FROM entries WHERE key = ?`, key); err != nil {
			logger.Warn("failed to delete expired entry %s: %v", key, err)
		}
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal entry %s: %w", key, err)
	}
	return true, nil
}

// SaveSnapshot persists the market-mover snapshot. Best effort.
func (s *Store) SaveSnapshot(snap models.MarketSnapshot) {
	if err := s.put(keySnapshot, snap, s.ttls.Snapshot); err != nil {
		logger.Warn("snapshot write dropped: %v", err)
	}
}

// LoadSnapshot returns the cached market snapshot if present and unexpired.
func (s *Store) LoadSnapshot() (models.MarketSnapshot, bool) {
	var snap models.MarketSnapshot
	ok, err := s.get(keySnapshot, &snap, false)
	if err != nil {
		logger.Warn("snapshot read failed: %v", err)
		return models.MarketSnapshot{}, false
	}
	return snap, ok
}

// LoadSnapshotStale returns the cached snapshot regardless of expiry.
func (s *Store) LoadSnapshotStale() (models.MarketSnapshot, bool) {
	var snap models.MarketSnapshot
	ok, err := s.get(keySnapshot, &snap, true)
	if err != nil {
		logger.Warn("snapshot read failed: %v", err)
		return models.MarketSnapshot{}, false
	}
	return snap, ok
}

// SaveQuote persists a per-symbol quote. Best effort; a quote that fails
// validation is dropped rather than written.
func (s *Store) SaveQuote(quote models.Quote) {
	if err := quote.Validate(); err != nil {
		logger.Warn("quote write dropped: %v", err)
		return
	}
	if err := s.put(keyQuote(quote.Symbol), quote, s.ttls.Quote); err != nil {
		logger.Warn("quote write dropped: %v", err)
	}
}

// LoadQuote returns the cached quote for symbol if present and unexpired.
func (s *Store) LoadQuote(symbol string) (models.Quote, bool) {
	var q models.Quote
	ok, err := s.get(keyQuote(symbol), &q, false)
	if err != nil {
		logger.Warn("quote read failed: %v", err)
		return models.Quote{}, false
	}
	return q, ok
}

// LoadQuoteStale returns the cached quote regardless of expiry.
func (s *Store) LoadQuoteStale(symbol string) (models.Quote, bool) {
	var q models.Quote
	ok, err := s.get(keyQuote(symbol), &q, true)
	if err != nil {
		logger.Warn("quote read failed: %v", err)
		return models.Quote{}, false
	}
	return q, ok
}

// SaveFundamentals persists company fundamentals. Best effort.
func (s *Store) SaveFundamentals(f models.Fundamentals) {
	if err := s.put(keyFundamentals(f.Symbol), f, s.ttls.Fundamentals); err != nil {
		logger.Warn("fundamentals write dropped: %v", err)
	}
}

// LoadFundamentals returns cached fundamentals if present and unexpired.
func (s *Store) LoadFundamentals(symbol string) (models.Fundamentals, bool) {
	var f models.Fundamentals
	ok, err := s.get(keyFundamentals(symbol), &f, false)
	if err != nil {
		logger.Warn("fundamentals read failed: %v", err)
		return models.Fundamentals{}, false
	}
	return f, ok
}

// LoadFundamentalsStale returns cached fundamentals regardless of expiry.
func (s *Store) LoadFundamentalsStale(symbol string) (models.Fundamentals, bool) {
	var f models.Fundamentals
	ok, err := s.get(keyFundamentals(symbol), &f, true)
	if err != nil {
		logger.Warn("fundamentals read failed: %v", err)
		return models.Fundamentals{}, false
	}
	return f, ok
}

// SaveWatchlists persists the full watchlist collection. No TTL. Best
// effort; the whole write is dropped when any list fails validation, so a
// corrupt entry never clobbers the last good collection.
func (s *Store) SaveWatchlists(lists []models.Watchlist) {
	for i := range lists {
		if err := lists[i].Validate(); err != nil {
			logger.Warn("watchlists write dropped: %v", err)
			return
		}
	}
	if err := s.put(keyWatchlists, lists, 0); err != nil {
		logger.Warn("watchlists write dropped: %v", err)
	}
}

// LoadWatchlists returns the persisted watchlist collection.
func (s *Store) LoadWatchlists() ([]models.Watchlist, bool) {
	var lists []models.Watchlist
	ok, err := s.get(keyWatchlists, &lists, false)
	if err != nil {
		logger.Warn("watchlists read failed: %v", err)
		return nil, false
	}
	if !ok || len(lists) == 0 {
		return nil, false
	}
	return lists, true
}

// SaveTheme persists the theme preference. No TTL. Best effort.
func (s *Store) SaveTheme(theme models.Theme) {
	if err := s.put(keyTheme, theme, 0); err != nil {
		logger.Warn("theme write dropped: %v", err)
	}
}

// LoadTheme returns the persisted theme preference.
func (s *Store) LoadTheme() (models.Theme, bool) {
	var t models.Theme
	ok, err := s.get(keyTheme, &t, false)
	if err != nil {
		logger.Warn("theme read failed: %v", err)
		return "", false
	}
	if !ok || !t.Valid() {
		return "", false
	}
	return t, true
}
