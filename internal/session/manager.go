// internal/session/manager.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"forecast-assistant/internal/chat"
	"forecast-assistant/internal/common/config"
	"forecast-assistant/internal/common/errors"
	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/common/metrics"
	"forecast-assistant/internal/mockdata"
	"forecast-assistant/internal/simulator"
	"forecast-assistant/internal/store"
)

// Session bundles the state store, chat orchestrator, and progress runner
// for one connected client.
type Session struct {
	ID           string
	Store        *store.Store
	Orchestrator *chat.Orchestrator

	cancel   context.CancelFunc
	lastSeen time.Time
}

// Manager owns all live sessions. Each session gets its own store and
// simulator goroutine; idle sessions are swept after the configured TTL.
type Manager struct {
	backend  chat.Backend
	config   *config.Config
	logger   logger.Logger
	baseCtx  context.Context
	baseStop context.CancelFunc
	clock    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager and starts its idle sweeper.
func NewManager(backend chat.Backend, cfg *config.Config, log logger.Logger) *Manager {
	ctx, stop := context.WithCancel(context.Background())
	m := &Manager{
		backend:  backend,
		config:   cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "session-manager"}),
		baseCtx:  ctx,
		baseStop: stop,
		clock:    time.Now,
		sessions: make(map[string]*Session),
	}
	go m.sweep(ctx)
	return m
}

// Create starts a new session with seeded state and a running simulator.
func (m *Manager) Create() *Session {
	reducer := store.NewReducer(mockdata.New())
	st := store.New(reducer, m.logger)

	ctx, cancel := context.WithCancel(m.baseCtx)
	runner := simulator.NewRunner(
		st,
		mockdata.New(),
		time.Duration(m.config.Simulator.TickInterval)*time.Millisecond,
		time.Duration(m.config.Simulator.ResetDelay)*time.Millisecond,
		m.logger,
	)
	go runner.Run(ctx)

	sess := &Session{
		ID:           uuid.NewString(),
		Store:        st,
		Orchestrator: chat.NewOrchestrator(m.backend, st, m.logger),
		cancel:       cancel,
		lastSeen:     m.clock(),
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	m.logger.Info("session created", map[string]interface{}{"sessionId": sess.ID})
	return sess
}

// Get returns a live session and refreshes its idle clock.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	sess.lastSeen = m.clock()
	return sess, nil
}

// Remove stops and forgets one session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		sess.cancel()
		metrics.ActiveSessions.Dec()
		m.logger.Info("session removed", map[string]interface{}{"sessionId": id})
	}
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the sweeper and every session goroutine.
func (m *Manager) Close() {
	m.baseStop()

	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Remove(id)
	}
}

func (m *Manager) sweep(ctx context.Context) {
	interval := time.Duration(m.config.Sessions.SweepInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweepOnce()
		}
	}
}

func (m *Manager) sweepOnce() {
	ttl := time.Duration(m.config.Sessions.IdleTTL) * time.Second
	now := m.clock()

	m.mu.RLock()
	var expired []string
	for id, sess := range m.sessions {
		if now.Sub(sess.lastSeen) > ttl {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.logger.Info("sweeping idle session", map[string]interface{}{"sessionId": id})
		m.Remove(id)
	}
}
