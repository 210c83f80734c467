package appstate

import "github.com/rewired-gh/stockdeck/internal/models"

// Action is the closed set of state transitions.
type Action interface{ isAction() }

// SetTopGainers replaces the gainers slice, leaving losers untouched.
type SetTopGainers struct{ Value Remote[[]models.Stock] }

// SetTopLosers replaces the losers slice, leaving gainers untouched.
type SetTopLosers struct{ Value Remote[[]models.Stock] }

// SetWatchlists replaces the whole watchlist collection.
type SetWatchlists struct{ Lists []models.Watchlist }

// AddWatchlist appends a new watchlist.
type AddWatchlist struct{ List models.Watchlist }

// RenameWatchlist sets the name of the watchlist with a matching ID. The
// action carries only the id and name so a rename can never overwrite
// symbols written by a concurrent action.
type RenameWatchlist struct {
	WatchlistID string
	Name        string
}

// DeleteWatchlist removes the watchlist with the given ID. Deleting an
// unknown ID is a no-op. The Store rejects deleting the last watchlist
// before this action is ever dispatched.
type DeleteWatchlist struct{ ID string }

// AddToWatchlist appends a symbol to a watchlist. Duplicates are dropped.
type AddToWatchlist struct {
	WatchlistID string
	Symbol      string
}

// RemoveFromWatchlist removes a symbol from a watchlist. Removing an absent
// symbol is a no-op.
type RemoveFromWatchlist struct {
	WatchlistID string
	Symbol      string
}

// SetSelectedStock stores the stock verbatim for detail-screen consumption.
type SetSelectedStock struct{ Stock *models.Stock }

// SetTheme sets the theme without persisting (hydration path).
type SetTheme struct{ Theme models.Theme }

// ToggleTheme flips between the two themes and persists the new value.
type ToggleTheme struct{}

// SetOffline sets the offline flag.
type SetOffline struct{ Offline bool }

func (SetTopGainers) isAction()       {}
func (SetTopLosers) isAction()        {}
func (SetWatchlists) isAction()       {}
func (AddWatchlist) isAction()        {}
func (RenameWatchlist) isAction()     {}
func (DeleteWatchlist) isAction()     {}
func (AddToWatchlist) isAction()      {}
func (RemoveFromWatchlist) isAction() {}
func (SetSelectedStock) isAction()    {}
func (SetTheme) isAction()            {}
func (ToggleTheme) isAction()         {}
func (SetOffline) isAction()          {}
