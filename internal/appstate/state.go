// Package appstate holds the reducer-driven application state: fetched
// market data, watchlists, the selected stock, and the theme preference.
// Watchlist and theme mutations are written through to persistent storage
// synchronously as part of handling the action; at startup the state is
// hydrated from storage before any fetch occurs.
package appstate

import (
	"github.com/rewired-gh/stockdeck/internal/models"
)

// Remote wraps a fetched slice of data with its loading and error state.
type Remote[T any] struct {
	Data    T
	Loading bool
	Err     string
}

// State is the composite state root. It is owned exclusively by the Store;
// readers observe snapshots via State() or Subscribe and never mutate it.
type State struct {
	TopGainers    Remote[[]models.Stock]
	TopLosers     Remote[[]models.Stock]
	Watchlists    []models.Watchlist
	SelectedStock *models.Stock
	Theme         models.Theme
	Offline       bool
}

// DefaultWatchlistName names the watchlist created when none is persisted.
const DefaultWatchlistName = "My Watchlist"

func initialState() State {
	return State{
		TopGainers: Remote[[]models.Stock]{Data: []models.Stock{}},
		TopLosers:  Remote[[]models.Stock]{Data: []models.Stock{}},
		Watchlists: []models.Watchlist{models.NewWatchlist(DefaultWatchlistName)},
		Theme:      models.ThemeLight,
	}
}

// clone deep-copies the mutable parts of the state so reducer outputs and
// observer snapshots never alias the store's tree.
func (s State) clone() State {
	c := s
	c.Watchlists = make([]models.Watchlist, len(s.Watchlists))
	for i, w := range s.Watchlists {
		c.Watchlists[i] = w.Clone()
	}
	if s.SelectedStock != nil {
		sel := *s.SelectedStock
		c.SelectedStock = &sel
	}
	return c
}

// WatchlistByID returns a copy of the watchlist with the given id.
func (s State) WatchlistByID(id string) (models.Watchlist, bool) {
	for _, w := range s.Watchlists {
		if w.ID == id {
			return w.Clone(), true
		}
	}
	return models.Watchlist{}, false
}
