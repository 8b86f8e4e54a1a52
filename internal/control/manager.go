package control

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pawmatch/pawmatch/internal/core/domain"
	redisclient "github.com/pawmatch/pawmatch/internal/infra/redis"
	"github.com/pawmatch/pawmatch/internal/tournament"
)

// SessionManager tracks active tournament sessions in process memory,
// mirroring snapshots to Redis when configured, and evicts sessions that
// have gone idle past their TTL.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*tournament.Session
	lastSeen map[string]time.Time

	ttl   time.Duration
	redis *redisclient.Client // may be nil
	clock domain.Clock
	log   *slog.Logger
}

// NewSessionManager creates a session manager.
func NewSessionManager(
	ttl time.Duration,
	redis *redisclient.Client,
	clock domain.Clock,
	log *slog.Logger,
) *SessionManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionManager{
		sessions: make(map[string]*tournament.Session),
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		redis:    redis,
		clock:    clock,
		log:      log,
	}
}

// Add registers a session.
func (m *SessionManager) Add(s *tournament.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	m.lastSeen[s.ID()] = m.clock.Now()
}

// Get returns a session and refreshes its idle timer.
func (m *SessionManager) Get(id string) (*tournament.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		m.lastSeen[id] = m.clock.Now()
	}
	return s, ok
}

// Remove drops a session and its Redis snapshot.
func (m *SessionManager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	delete(m.lastSeen, id)
	m.mu.Unlock()

	if m.redis != nil {
		if err := m.redis.DeleteSession(ctx, id); err != nil {
			m.log.Warn("failed to delete session snapshot", "session", id, "error", err)
		}
	}
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Snapshot mirrors a session's state to Redis. A nil Redis client makes this
// a no-op.
func (m *SessionManager) Snapshot(ctx context.Context, s *tournament.Session) {
	if m.redis == nil {
		return
	}
	st := s.State()
	snap := redisclient.SessionSnapshot{
		ID:        st.ID,
		Pool:      st.Pool,
		Rounds:    st.Rounds,
		Seed:      st.Seed,
		Position:  st.Position,
		Ratings:   st.Ratings,
		History:   st.History,
		UpdatedAt: m.clock.Now(),
	}
	if err := m.redis.SaveSession(ctx, snap, m.ttl); err != nil {
		m.log.Warn("failed to snapshot session", "session", s.ID(), "error", err)
	}
}

// Find returns a live session, falling back to the Redis snapshot when the
// process no longer holds it (e.g. after a restart). A restored session is
// re-registered so subsequent lookups hit memory.
func (m *SessionManager) Find(
	ctx context.Context,
	id string,
	cfg tournament.Config,
) (*tournament.Session, bool) {
	if s, ok := m.Get(id); ok {
		return s, true
	}
	if m.redis == nil {
		return nil, false
	}

	snap, found, err := m.redis.LoadSession(ctx, id)
	if err != nil {
		m.log.Warn("failed to load session snapshot", "session", id, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	sess, err := tournament.Resume(tournament.State{
		ID:       snap.ID,
		Pool:     snap.Pool,
		Rounds:   snap.Rounds,
		Seed:     snap.Seed,
		Position: snap.Position,
		Ratings:  snap.Ratings,
		History:  snap.History,
	}, cfg)
	if err != nil {
		m.log.Warn("failed to resume session", "session", id, "error", err)
		return nil, false
	}

	m.Add(sess)
	m.log.Info("restored session from snapshot", "session", id)
	return sess, true
}

// StartReaper runs the idle-session eviction loop.
func (m *SessionManager) StartReaper(ctx context.Context) {
	interval := min(m.ttl/10, time.Minute)
	interval = max(interval, time.Second)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reap(ctx)
		}
	}
}

func (m *SessionManager) reap(ctx context.Context) {
	cutoff := m.clock.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []string
	for id, seen := range m.lastSeen {
		if seen.Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
			delete(m.lastSeen, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.log.Info("evicted idle session", "session", id)
		if m.redis != nil {
			_ = m.redis.DeleteSession(ctx, id)
		}
	}
}
