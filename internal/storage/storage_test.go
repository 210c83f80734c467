package storage

import (
	"testing"
	"time"

	"github.com/rewired-gh/stockdeck/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:", DefaultTTLs())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testQuote(symbol string) models.Quote {
	return models.Quote{
		Symbol:        symbol,
		Price:         150.25,
		Change:        5.75,
		ChangePercent: 3.98,
		Volume:        45623000,
		PreviousClose: 144.50,
		Open:          145.00,
		DayHigh:       151.00,
		DayLow:        144.00,
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	s := newTestStore(t)
	q := testQuote("AAPL")
	s.SaveQuote(q)

	got, ok := s.LoadQuote("AAPL")
	if !ok {
		t.Fatal("expected quote present")
	}
	if got != q {
		t.Errorf("got %+v, want %+v", got, q)
	}
}

func TestLoadQuote_Missing(t *testing.T) {
	s := newTestStore(t)
	if _, ok := s.LoadQuote("NOPE"); ok {
		t.Error("expected miss for unknown symbol")
	}
}

func TestLazyExpiration_DeletesOnRead(t *testing.T) {
	s := newTestStore(t)
	s.SaveQuote(testQuote("AAPL"))

	// Jump past the quote TTL.
	s.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	if _, ok := s.LoadQuote("AAPL"); ok {
		t.Fatal("expected expired quote to be absent")
	}
	// The expired row was deleted, so even a stale read finds nothing.
	if _, ok := s.LoadQuoteStale("AAPL"); ok {
		t.Error("expected expired row deleted by the lazy read")
	}
}

func TestLoadQuoteStale_ServesExpiredBeforeDeletion(t *testing.T) {
	s := newTestStore(t)
	s.SaveQuote(testQuote("AAPL"))

	s.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	got, ok := s.LoadQuoteStale("AAPL")
	if !ok {
		t.Fatal("expected stale quote present")
	}
	if got.Symbol != "AAPL" {
		t.Errorf("got symbol %q", got.Symbol)
	}
}

func TestWatchlistsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	lists := []models.Watchlist{
		{ID: "a", Name: "Tech", Symbols: []string{"AAPL", "MSFT"}, CreatedAt: time.Now().UTC().Truncate(time.Second)},
		{ID: "b", Name: "Energy", Symbols: []string{"XOM"}, CreatedAt: time.Now().UTC().Truncate(time.Second)},
	}
	s.SaveWatchlists(lists)

	got, ok := s.LoadWatchlists()
	if !ok {
		t.Fatal("expected watchlists present")
	}
	if len(got) != 2 {
		t.Fatalf("got %d lists, want 2", len(got))
	}
	// Listing order is preserved.
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("listing order not preserved: %q, %q", got[0].ID, got[1].ID)
	}
	if len(got[0].Symbols) != 2 || got[0].Symbols[0] != "AAPL" || got[0].Symbols[1] != "MSFT" {
		t.Errorf("symbols not preserved: %v", got[0].Symbols)
	}
}

func TestWatchlists_NoTTL(t *testing.T) {
	s := newTestStore(t)
	s.SaveWatchlists([]models.Watchlist{{ID: "a", Name: "Tech", CreatedAt: time.Now()}})

	// Far in the future: watchlists persist indefinitely.
	s.now = func() time.Time { return time.Now().AddDate(1, 0, 0) }

	if _, ok := s.LoadWatchlists(); !ok {
		t.Error("watchlists must not expire")
	}
}

func TestThemeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if _, ok := s.LoadTheme(); ok {
		t.Error("expected no theme before save")
	}

	s.SaveTheme(models.ThemeDark)
	got, ok := s.LoadTheme()
	if !ok {
		t.Fatal("expected theme present")
	}
	if got != models.ThemeDark {
		t.Errorf("got theme %q, want dark", got)
	}

	s.now = func() time.Time { return time.Now().AddDate(1, 0, 0) }
	if _, ok := s.LoadTheme(); !ok {
		t.Error("theme must not expire")
	}
}

func TestSnapshotRoundTripAndExpiry(t *testing.T) {
	s := newTestStore(t)
	snap := models.MarketSnapshot{
		Gainers:   []models.Stock{{Symbol: "AAPL", Name: "Apple Inc.", Price: 150, Change: 5, ChangePercent: 3.4, Volume: 1000}},
		Losers:    []models.Stock{{Symbol: "INTC", Name: "Intel Corp.", Price: 45, Change: -1.6, ChangePercent: -3.5, Volume: 2000}},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	s.SaveSnapshot(snap)

	got, ok := s.LoadSnapshot()
	if !ok {
		t.Fatal("expected snapshot present")
	}
	if len(got.Gainers) != 1 || got.Gainers[0].Symbol != "AAPL" {
		t.Errorf("gainers not preserved: %+v", got.Gainers)
	}

	s.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	if _, ok := s.LoadSnapshot(); ok {
		t.Error("expected snapshot expired after 5 minutes")
	}
}

func TestFundamentalsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	f := models.Fundamentals{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", PERatio: 28.5}
	s.SaveFundamentals(f)

	got, ok := s.LoadFundamentals("AAPL")
	if !ok {
		t.Fatal("expected fundamentals present")
	}
	if got.Sector != "Technology" || got.PERatio != 28.5 {
		t.Errorf("fields not preserved: %+v", got)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := s.LoadFundamentals("AAPL"); ok {
		t.Error("expected fundamentals expired after 1 hour")
	}
}

func TestCorruptEntry_ReadsAsAbsent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(
		`INSERT INTO entries (key, value, timestamp, expires_at) VALUES (?,?,?,?)`,
		"theme", "{not json", time.Now().UnixNano(), 0,
	); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.LoadTheme(); ok {
		t.Error("corrupt entry must read as absent, not panic or error out")
	}
}

func TestSaveQuote_InvalidDropped(t *testing.T) {
	s := newTestStore(t)

	bad := testQuote("AAPL")
	bad.Price = -1
	s.SaveQuote(bad)

	if _, ok := s.LoadQuoteStale("AAPL"); ok {
		t.Error("invalid quote must not be persisted")
	}
}

func TestSaveWatchlists_InvalidCollectionDropped(t *testing.T) {
	s := newTestStore(t)

	good := []models.Watchlist{{ID: "a", Name: "Tech", Symbols: []string{"AAPL"}, CreatedAt: time.Now()}}
	s.SaveWatchlists(good)

	// A corrupt entry must not clobber the last good collection.
	bad := []models.Watchlist{
		{ID: "a", Name: "Tech", Symbols: []string{"AAPL"}, CreatedAt: time.Now()},
		{ID: "b", Name: "Dupes", Symbols: []string{"XOM", "XOM"}, CreatedAt: time.Now()},
	}
	s.SaveWatchlists(bad)

	got, ok := s.LoadWatchlists()
	if !ok {
		t.Fatal("expected the earlier collection to survive")
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("got %d lists, want the original single list", len(got))
	}
}
