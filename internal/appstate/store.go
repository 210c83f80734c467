package appstate

import (
	"errors"
	"strings"
	"sync"

	"github.com/rewired-gh/stockdeck/internal/logger"
	"github.com/rewired-gh/stockdeck/internal/models"
	"github.com/rewired-gh/stockdeck/internal/storage"
)

// ErrLastWatchlist is returned when a delete would leave zero watchlists.
// At least one watchlist exists at all times.
var ErrLastWatchlist = errors.New("cannot delete the last remaining watchlist")

// ErrEmptyName is returned when a watchlist name is empty after trimming.
var ErrEmptyName = errors.New("watchlist name must not be empty")

// Store serializes dispatches over the state tree and runs persistence
// effects in dispatch order. Effects execute under the same lock as the
// transition, so each write-through reads the freshest tree: back-to-back
// mutations compose instead of the second clobbering the first.
type Store struct {
	mu      sync.Mutex
	state   State
	persist *storage.Store
	subs    map[int]func(State)
	nextSub int

	// notifyMu is acquired while mu is still held and released after the
	// subscribers have run, so snapshots reach subscribers in apply order
	// even when dispatches race. Subscribers must not dispatch.
	notifyMu sync.Mutex
}

// NewStore creates a store with the default state: one empty watchlist,
// light theme, empty market data. persist may be nil in tests that do not
// exercise durability.
func NewStore(persist *storage.Store) *Store {
	return &Store{
		state:   initialState(),
		persist: persist,
		subs:    make(map[int]func(State)),
	}
}

// Dispatch applies an action. Persistence effects run synchronously before
// Dispatch returns; subscribers are notified with a snapshot afterwards, in
// apply order.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	snapshot, subs := s.applyLocked(action)
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// applyLocked runs the transition and its effects. Caller holds s.mu.
func (s *Store) applyLocked(action Action) (State, []func(State)) {
	next, effects := reduce(s.state, action)
	s.state = next
	for _, e := range effects {
		s.runEffectLocked(e)
	}
	snapshot := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return snapshot, subs
}

// runEffectLocked executes one persistence command against the current tree.
func (s *Store) runEffectLocked(e effect) {
	if s.persist == nil {
		return
	}
	switch e {
	case persistWatchlists:
		s.persist.SaveWatchlists(s.state.Watchlists)
	case persistTheme:
		s.persist.SaveTheme(s.state.Theme)
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers an observer called with a state snapshot after every
// dispatch. Callbacks run in apply order and must not dispatch. The
// returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Hydrate rebuilds state from persistent storage: theme, then watchlists,
// then the cached market snapshot. A step dispatches only when stored data
// exists; otherwise the in-memory default stands.
func (s *Store) Hydrate() {
	if s.persist == nil {
		return
	}
	if theme, ok := s.persist.LoadTheme(); ok {
		s.Dispatch(SetTheme{Theme: theme})
	}
	if lists, ok := s.persist.LoadWatchlists(); ok {
		s.Dispatch(SetWatchlists{Lists: lists})
	}
	if snap, ok := s.persist.LoadSnapshot(); ok {
		if len(snap.Gainers) > 0 {
			s.Dispatch(SetTopGainers{Value: Remote[[]models.Stock]{Data: snap.Gainers}})
		}
		if len(snap.Losers) > 0 {
			s.Dispatch(SetTopLosers{Value: Remote[[]models.Stock]{Data: snap.Losers}})
		}
	}
	state := s.State()
	logger.Debug("state hydrated: %d watchlists, theme %s", len(state.Watchlists), state.Theme)
}

// CreateWatchlist validates the name, creates the watchlist with a fresh ID,
// and dispatches the add.
func (s *Store) CreateWatchlist(name string) (models.Watchlist, error) {
	if strings.TrimSpace(name) == "" {
		return models.Watchlist{}, ErrEmptyName
	}
	w := models.NewWatchlist(name)
	s.Dispatch(AddWatchlist{List: w})
	return w, nil
}

// RenameWatchlist renames an existing watchlist. Unknown IDs are a no-op.
// The action carries only (id, name); the reducer merges against the state
// current at apply time, so symbols added concurrently are never lost.
func (s *Store) RenameWatchlist(id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	s.Dispatch(RenameWatchlist{WatchlistID: id, Name: strings.TrimSpace(name)})
	return nil
}

// RemoveWatchlist deletes a watchlist, rejecting the delete that would
// remove the last one. The guard runs before the action is dispatched; the
// reducer itself does not re-validate. Validation and dispatch share the
// lock so a concurrent delete cannot slip the count below one.
func (s *Store) RemoveWatchlist(id string) error {
	s.mu.Lock()
	if _, ok := s.state.WatchlistByID(id); !ok {
		s.mu.Unlock()
		return nil
	}
	if len(s.state.Watchlists) <= 1 {
		s.mu.Unlock()
		return ErrLastWatchlist
	}
	snapshot, subs := s.applyLocked(DeleteWatchlist{ID: id})
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return nil
}
