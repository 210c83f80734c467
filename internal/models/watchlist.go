package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Watchlist is a named, ordered set of symbols curated by the user.
// Symbols are kept unique; ordering is insertion order.
type Watchlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Symbols   []string  `json:"symbols"`
	CreatedAt time.Time `json:"created_at"`
}

// NewWatchlist creates a watchlist with a fresh opaque ID.
func NewWatchlist(name string) Watchlist {
	return Watchlist{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Symbols:   []string{},
		CreatedAt: time.Now(),
	}
}

// Validate checks watchlist field constraints.
func (w *Watchlist) Validate() error {
	if w.ID == "" {
		return errors.New("watchlist ID must not be empty")
	}
	if strings.TrimSpace(w.Name) == "" {
		return errors.New("watchlist name must not be empty")
	}
	seen := make(map[string]bool, len(w.Symbols))
	for _, sym := range w.Symbols {
		if sym == "" {
			return errors.New("watchlist symbols must not be empty")
		}
		if seen[sym] {
			return errors.New("watchlist symbols must be unique")
		}
		seen[sym] = true
	}
	if w.CreatedAt.After(time.Now()) {
		return errors.New("created at must not be in the future")
	}
	return nil
}

// HasSymbol reports whether sym is already in the watchlist.
func (w *Watchlist) HasSymbol(sym string) bool {
	for _, s := range w.Symbols {
		if s == sym {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so reducers can mutate freely.
func (w Watchlist) Clone() Watchlist {
	c := w
	c.Symbols = append([]string(nil), w.Symbols...)
	return c
}
