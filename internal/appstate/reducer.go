package appstate

import "github.com/rewired-gh/stockdeck/internal/models"

// effect is a persistence command emitted by the reducer alongside the new
// state. The transition itself stays pure; the Store executes effects
// synchronously, in dispatch order, so the "persisted with the action"
// guarantee holds without an impure write inside reduce.
type effect int

const (
	persistWatchlists effect = iota
	persistTheme
)

// reduce maps (state, action) to the next state and its effects. The input
// state is never mutated; watchlist transitions copy before writing.
func reduce(state State, action Action) (State, []effect) {
	switch a := action.(type) {
	case SetTopGainers:
		next := state
		next.TopGainers = a.Value
		return next, nil

	case SetTopLosers:
		next := state
		next.TopLosers = a.Value
		return next, nil

	case SetWatchlists:
		next := state
		next.Watchlists = cloneLists(a.Lists)
		return next, []effect{persistWatchlists}

	case AddWatchlist:
		next := state
		next.Watchlists = append(cloneLists(state.Watchlists), a.List.Clone())
		return next, []effect{persistWatchlists}

	case RenameWatchlist:
		target, ok := state.WatchlistByID(a.WatchlistID)
		if !ok || target.Name == a.Name {
			return state, nil
		}
		next := state
		lists := cloneLists(state.Watchlists)
		for i, w := range lists {
			if w.ID == a.WatchlistID {
				lists[i].Name = a.Name
			}
		}
		next.Watchlists = lists
		return next, []effect{persistWatchlists}

	case DeleteWatchlist:
		next := state
		lists := make([]models.Watchlist, 0, len(state.Watchlists))
		for _, w := range state.Watchlists {
			if w.ID != a.ID {
				lists = append(lists, w.Clone())
			}
		}
		if len(lists) == len(state.Watchlists) {
			return state, nil
		}
		next.Watchlists = lists
		return next, []effect{persistWatchlists}

	case AddToWatchlist:
		target, ok := state.WatchlistByID(a.WatchlistID)
		if !ok || target.HasSymbol(a.Symbol) || a.Symbol == "" {
			return state, nil
		}
		next := state
		lists := cloneLists(state.Watchlists)
		for i, w := range lists {
			if w.ID == a.WatchlistID {
				lists[i].Symbols = append(lists[i].Symbols, a.Symbol)
			}
		}
		next.Watchlists = lists
		return next, []effect{persistWatchlists}

	case RemoveFromWatchlist:
		target, ok := state.WatchlistByID(a.WatchlistID)
		if !ok || !target.HasSymbol(a.Symbol) {
			return state, nil
		}
		next := state
		lists := cloneLists(state.Watchlists)
		for i, w := range lists {
			if w.ID != a.WatchlistID {
				continue
			}
			syms := make([]string, 0, len(w.Symbols))
			for _, s := range w.Symbols {
				if s != a.Symbol {
					syms = append(syms, s)
				}
			}
			lists[i].Symbols = syms
		}
		next.Watchlists = lists
		return next, []effect{persistWatchlists}

	case SetSelectedStock:
		next := state
		next.SelectedStock = a.Stock
		return next, nil

	case SetTheme:
		if !a.Theme.Valid() {
			return state, nil
		}
		next := state
		next.Theme = a.Theme
		return next, nil

	case ToggleTheme:
		next := state
		next.Theme = state.Theme.Toggle()
		return next, []effect{persistTheme}

	case SetOffline:
		next := state
		next.Offline = a.Offline
		return next, nil

	default:
		return state, nil
	}
}

func cloneLists(lists []models.Watchlist) []models.Watchlist {
	out := make([]models.Watchlist, len(lists))
	for i, w := range lists {
		out[i] = w.Clone()
	}
	return out
}
