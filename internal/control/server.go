package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/pawmatch/pawmatch/internal/core/config"
	"github.com/pawmatch/pawmatch/internal/core/domain"
	"github.com/pawmatch/pawmatch/internal/faults"
	redisclient "github.com/pawmatch/pawmatch/internal/infra/redis"
	"github.com/pawmatch/pawmatch/internal/infra/storage"
	"github.com/pawmatch/pawmatch/internal/infra/storage/memory"
	"github.com/pawmatch/pawmatch/internal/infra/storage/postgres"
	"github.com/pawmatch/pawmatch/internal/resilience"
	"github.com/pawmatch/pawmatch/internal/tournament"
)

// Config holds the application configuration.
type Config struct {
	Port       int
	Tournament config.TournamentConfig
	Resilience config.ResilienceConfig
	Redis      redisclient.Config
	Database   postgres.Config
}

// Server is the main application struct: it wires storage, the session
// manager, the fault manager, and the HTTP API.
type Server struct {
	cfg Config
	log *slog.Logger

	names       storage.NameRepository
	ratings     storage.RatingRepository
	suggestions storage.SuggestionRepository

	db          *postgres.DB
	redisClient *redisclient.Client
	store       *memory.MemoryStorage

	sessions *SessionManager
	faults   *faults.Manager
	breaker  *resilience.Breaker
	retryCfg resilience.RetryConfig

	httpServer *http.Server
}

// NewServer creates a Server with all dependencies initialized. Without a
// database URL it falls back to in-memory storage seeded with a starter
// name pool; without a Redis URL session snapshots are kept in process only.
func NewServer(cfg Config) (*Server, error) {
	log := slog.Default()

	s := &Server{cfg: cfg, log: log}

	// 1. Storage
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		s.db = db
		s.names = postgres.NewNameRepo(db)
		s.ratings = postgres.NewRatingRepo(db)
		s.suggestions = postgres.NewSuggestionRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		store.Seed(starterNames())
		s.store = store
		s.names = memory.NewNameRepo(store)
		s.ratings = memory.NewRatingRepo(store)
		s.suggestions = memory.NewSuggestionRepo(store)
		log.Info("Using Memory storage")
	}

	// 2. Redis (optional)
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, session snapshots disabled", "error", err)
		} else {
			s.redisClient = rc
		}
	}

	// 3. Shared components
	s.faults = faults.NewManager(nil, nil, log)
	s.sessions = NewSessionManager(
		cfg.Tournament.SessionTTL, s.redisClient, domain.SystemClock{}, log)

	s.breaker = resilience.NewBreaker(resilience.BreakerConfig{
		Name:             "ratings-store",
		FailureThreshold: cfg.Resilience.BreakerThreshold,
		ResetTimeout:     cfg.Resilience.BreakerReset,
	})
	s.retryCfg = resilience.RetryConfig{
		MaxAttempts: cfg.Resilience.RetryMaxAttempts,
		BaseDelay:   cfg.Resilience.RetryBaseDelay,
		MaxDelay:    cfg.Resilience.RetryMaxDelay,
		ShouldRetry: func(err error) bool { return s.faults.IsRetryable(err) },
	}

	// 4. HTTP API
	port := cfg.Port
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.routes(),
	}

	return s, nil
}

// sessionConfig assembles the tournament wiring shared by fresh and
// restored sessions.
func (s *Server) sessionConfig(rounds int, seed int64) tournament.Config {
	if rounds <= 0 {
		rounds = s.cfg.Tournament.Rounds
	}
	return tournament.Config{
		Rounds:     rounds,
		UndoWindow: s.cfg.Tournament.UndoWindow,
		Seed:       seed,
		Policy:     tournament.EloPolicy{K: s.eloK()},
		OnVote:     s.onVote,
		OnRatings:  s.persistRatings,
		Logger:     s.log,
	}
}

// newSession builds a tournament session over the current votable pool.
func (s *Server) newSession(ctx context.Context, rounds int, seed int64) (*tournament.Session, error) {
	entries, err := s.names.ListVotable(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := tournament.NewSession(entries, s.sessionConfig(rounds, seed))
	if err != nil {
		return nil, err
	}

	s.sessions.Add(sess)
	return sess, nil
}

// findSession resolves a session ID, restoring from a Redis snapshot when
// the in-memory manager has lost it.
func (s *Server) findSession(ctx context.Context, id string) (*tournament.Session, bool) {
	return s.sessions.Find(ctx, id, s.sessionConfig(0, 0))
}

// leaderboard prefers the Redis sorted set and falls back to the rating
// store when Redis is absent, failing, or stale.
func (s *Server) leaderboard(ctx context.Context, limit int) ([]domain.NameEntry, error) {
	if s.redisClient != nil {
		ids, err := s.redisClient.TopRated(ctx, limit)
		if err != nil {
			s.log.Warn("redis leaderboard read failed", "error", err)
		} else if len(ids) > 0 {
			entries := make([]domain.NameEntry, 0, len(ids))
			for _, id := range ids {
				entry, err := s.names.Get(ctx, id)
				if err != nil || entry.IsHidden {
					continue
				}
				entries = append(entries, *entry)
			}
			if len(entries) > 0 {
				return entries, nil
			}
		}
	}
	return s.ratings.Top(ctx, limit)
}

func (s *Server) eloK() float64 {
	if s.cfg.Tournament.EloK > 0 {
		return s.cfg.Tournament.EloK
	}
	return tournament.DefaultElo.K
}

// onVote mirrors the session state to Redis after each resolved vote.
func (s *Server) onVote(ctx context.Context, ev tournament.VoteEvent) error {
	if sess, ok := s.sessions.Get(ev.SessionID); ok {
		s.sessions.Snapshot(ctx, sess)
	}
	return nil
}

// persistRatings writes final ratings through the circuit-breaker-guarded
// retry path, then refreshes the leaderboard.
func (s *Server) persistRatings(ctx context.Context, ratings domain.RatingMap) error {
	persist := resilience.NewResilient(s.breaker, s.retryCfg, func(ctx context.Context) error {
		return s.ratings.UpdateRatings(ctx, ratings)
	})
	if err := persist(ctx); err != nil {
		return err
	}

	if s.redisClient != nil {
		if err := s.redisClient.UpdateLeaderboard(ctx, ratings); err != nil {
			s.log.Warn("failed to update leaderboard", "error", err)
		}
	}
	return nil
}

// Start starts the server and its background workers.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server failed", "error", err)
		}
	}()

	go s.sessions.StartReaper(ctx)

	if s.db != nil {
		s.db.StartMetricsCollector(ctx)
	}

	s.log.Info("Server started", "addr", s.httpServer.Addr)
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping server...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("Failed to close database", "error", err)
		}
	}

	return s.httpServer.Shutdown(ctx)
}

// Health pings the backing stores.
func (s *Server) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Health(ctx); err != nil {
			return fmt.Errorf("database unhealthy: %w", err)
		}
	}
	return nil
}

// starterNames seeds memory mode so the app is usable without a database.
func starterNames() []domain.NameEntry {
	names := []struct{ id, name, desc string }{
		{"whiskers", "Whiskers", "a classic"},
		{"luna", "Luna", "for night owls"},
		{"biscuit", "Biscuit", "warm and flaky"},
		{"mochi", "Mochi", "soft and round"},
		{"pixel", "Pixel", "small but sharp"},
		{"clementine", "Clementine", "a little citrus"},
		{"gadget", "Gadget", "always into something"},
		{"noodle", "Noodle", "long cat energy"},
	}

	entries := make([]domain.NameEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, domain.NameEntry{
			ID:          n.id,
			Name:        n.name,
			Description: n.desc,
			Rating:      domain.DefaultRating,
		})
	}
	return entries
}
