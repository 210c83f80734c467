package models

import (
	"testing"
	"time"
)

func TestWatchlistValidate(t *testing.T) {
	w := NewWatchlist("Tech")
	if err := w.Validate(); err != nil {
		t.Errorf("valid watchlist rejected: %v", err)
	}

	empty := Watchlist{ID: "x", Name: "   ", CreatedAt: time.Now()}
	if err := empty.Validate(); err == nil {
		t.Error("expected error for blank name")
	}

	noID := Watchlist{Name: "Tech", CreatedAt: time.Now()}
	if err := noID.Validate(); err == nil {
		t.Error("expected error for missing ID")
	}

	dup := NewWatchlist("Tech")
	dup.Symbols = []string{"AAPL", "AAPL"}
	if err := dup.Validate(); err == nil {
		t.Error("expected error for duplicate symbols")
	}
}

func TestNewWatchlist_UniqueIDs(t *testing.T) {
	a := NewWatchlist("A")
	b := NewWatchlist("B")
	if a.ID == b.ID {
		t.Error("watchlist IDs must be unique")
	}
	if a.ID == "" {
		t.Error("watchlist ID must not be empty")
	}
}

func TestWatchlistClone(t *testing.T) {
	w := NewWatchlist("Tech")
	w.Symbols = []string{"AAPL"}
	c := w.Clone()
	c.Symbols[0] = "MSFT"
	if w.Symbols[0] != "AAPL" {
		t.Error("clone aliases the original symbol slice")
	}
}

func TestWatchlistHasSymbol(t *testing.T) {
	w := NewWatchlist("Tech")
	w.Symbols = []string{"AAPL", "MSFT"}
	if !w.HasSymbol("AAPL") {
		t.Error("expected AAPL present")
	}
	if w.HasSymbol("GOOG") {
		t.Error("expected GOOG absent")
	}
}

func TestThemeToggle(t *testing.T) {
	if ThemeLight.Toggle() != ThemeDark {
		t.Error("light should toggle to dark")
	}
	if ThemeDark.Toggle() != ThemeLight {
		t.Error("dark should toggle to light")
	}
	if !ThemeLight.Valid() || !ThemeDark.Valid() {
		t.Error("known themes must be valid")
	}
	if Theme("sepia").Valid() {
		t.Error("unknown theme must be invalid")
	}
}

func TestQuoteValidate(t *testing.T) {
	q := Quote{Symbol: "AAPL", Price: 150, Volume: 100}
	if err := q.Validate(); err != nil {
		t.Errorf("valid quote rejected: %v", err)
	}
	bad := Quote{Symbol: "", Price: 10}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty symbol")
	}
	// Day low <= price <= day high is deliberately not enforced.
	odd := Quote{Symbol: "X", Price: 50, DayLow: 60, DayHigh: 40}
	if err := odd.Validate(); err != nil {
		t.Errorf("inverted day range must not be rejected: %v", err)
	}
}
