// internal/store/store.go
package store

import (
	"sync"

	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/common/metrics"
	"forecast-assistant/internal/models"
)

// Store is the single source of truth for one session. All writes funnel
// through Dispatch, which applies the pure reducer under a mutex so that
// transitions are atomic; readers get value snapshots and must not mutate
// slices reachable from them.
type Store struct {
	mu      sync.Mutex
	state   models.AppState
	reducer *Reducer
	logger  logger.Logger
}

// New creates a store seeded with the reducer's initial state.
func New(reducer *Reducer, log logger.Logger) *Store {
	return &Store{
		state:   reducer.NewState(),
		reducer: reducer,
		logger:  log,
	}
}

// NewWithState creates a store around an explicit starting state, for tests.
func NewWithState(reducer *Reducer, state models.AppState, log logger.Logger) *Store {
	return &Store{state: state, reducer: reducer, logger: log}
}

// Dispatch applies one action and returns the resulting state snapshot.
func (s *Store) Dispatch(action Action) models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.reducer.Reduce(s.state, action)
	metrics.ActionsDispatched.WithLabelValues(Name(action)).Inc()
	s.logger.Debug("action dispatched", map[string]interface{}{
		"action":       Name(action),
		"messages":     len(s.state.Messages),
		"isProcessing": s.state.IsProcessing,
	})
	return s.state
}

// State returns the current snapshot.
func (s *Store) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
