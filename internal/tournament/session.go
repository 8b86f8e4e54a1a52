package tournament

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pawmatch/pawmatch/internal/core/domain"
	"github.com/pawmatch/pawmatch/internal/metrics"
)

// VoteEvent is delivered to the vote sink after each resolved match.
type VoteEvent struct {
	SessionID string           `json:"session_id"`
	Match     domain.Match     `json:"match"`
	Result    float64          `json:"result"`
	Ratings   domain.RatingMap `json:"ratings"`
	Timestamp time.Time        `json:"timestamp"`
}

// VoteSink receives each resolved vote. The session awaits it and propagates
// its error to the caller without retrying.
type VoteSink func(ctx context.Context, ev VoteEvent) error

// RatingsSink receives the final rating map when a tournament completes.
type RatingsSink func(ctx context.Context, ratings domain.RatingMap) error

// Config parameterizes a tournament session.
type Config struct {
	Rounds     int           // shuffled pairing rounds to play, default 1
	UndoWindow time.Duration // how long a vote stays reversible
	Seed       int64         // shuffle seed, 0 = time-derived
	Policy     RatingPolicy  // nil = DefaultElo
	Clock      domain.Clock  // nil = system clock
	OnVote     VoteSink      // optional
	OnRatings  RatingsSink   // optional
	Logger     *slog.Logger  // nil = slog.Default
}

// Session drives one user's tournament: it owns the scheduler, the rating
// map, the vote history, and the undo window. All methods are safe for
// concurrent use, though the expected access pattern is one vote in flight
// at a time.
type Session struct {
	mu sync.Mutex

	id      string
	cfg     Config
	seed    int64
	clock   domain.Clock
	log     *slog.Logger
	sched   *Scheduler
	acc     *Accumulator
	undo    *UndoWindow
	ratings domain.RatingMap
	history []domain.Vote
}

// buildSession assembles the session machinery without announcing a new
// tournament, so Resume can reuse it.
func buildSession(entries []domain.NameEntry, cfg Config) (*Session, error) {
	pool := domain.VotableEntries(entries)

	clock := cfg.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}

	sched := NewScheduler(rand.New(rand.NewSource(seed)), cfg.Rounds)
	if err := sched.Start(pool); err != nil {
		return nil, err
	}

	return &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		seed:    seed,
		clock:   clock,
		log:     log,
		sched:   sched,
		acc:     NewAccumulator(cfg.Policy),
		undo:    NewUndoWindow(clock, cfg.UndoWindow),
		ratings: domain.NewRatingMap(pool),
	}, nil
}

// NewSession filters the pool down to votable entries and builds the first
// round. It fails with ErrInsufficientEntries when fewer than two entries
// remain after filtering.
func NewSession(entries []domain.NameEntry, cfg Config) (*Session, error) {
	s, err := buildSession(entries, cfg)
	if err != nil {
		return nil, err
	}

	metrics.TournamentsStarted.Inc()
	s.log.Info("tournament started",
		"session", s.id, "entries", len(s.sched.entries), "matches", s.sched.TotalMatches())
	return s, nil
}

// State captures everything needed to persist and later resume a session.
// The pool keeps its start-of-tournament order so the scheduler's shuffle
// replays identically from the recorded seed.
type State struct {
	ID       string             `json:"id"`
	Pool     []domain.NameEntry `json:"pool"`
	Rounds   int                `json:"rounds"`
	Seed     int64              `json:"seed"`
	Position int                `json:"position"`
	Ratings  domain.RatingMap   `json:"ratings"`
	History  []domain.Vote      `json:"history"`
}

// State snapshots the session for external persistence.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := make([]domain.NameEntry, len(s.sched.entries))
	copy(pool, s.sched.entries)
	history := make([]domain.Vote, len(s.history))
	copy(history, s.history)

	return State{
		ID:       s.id,
		Pool:     pool,
		Rounds:   s.sched.rounds,
		Seed:     s.seed,
		Position: s.sched.Position(),
		Ratings:  s.ratings.Clone(),
		History:  history,
	}
}

// Resume rebuilds a session from persisted state: the bracket is replayed
// from the recorded seed and fast-forwarded to the saved position. The undo
// window comes back closed; a restart ends the grace period.
func Resume(st State, cfg Config) (*Session, error) {
	cfg.Rounds = st.Rounds
	cfg.Seed = st.Seed

	s, err := buildSession(st.Pool, cfg)
	if err != nil {
		return nil, err
	}

	s.id = st.ID
	for i := 0; i < st.Position; i++ {
		s.sched.Advance()
	}
	if st.Ratings != nil {
		s.ratings = st.Ratings.Clone()
	}
	s.history = append(s.history, st.History...)

	s.log.Debug("session resumed",
		"session", s.id, "position", st.Position, "votes", len(s.history))
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Current returns the match awaiting a vote.
func (s *Session) Current() (domain.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Current()
}

// Vote resolves the current match with the given option: counters and
// ratings are updated, the scheduler advances, the vote is appended to
// history, and the undo window is armed over the pre-vote snapshot. Sinks
// run after the state transition, outside the session lock, so they may
// call back into the session.
func (s *Session) Vote(ctx context.Context, option domain.VoteOption) (domain.Vote, error) {
	s.mu.Lock()

	match, ok := s.sched.Current()
	if !ok {
		s.mu.Unlock()
		return domain.Vote{}, domain.ErrTournamentComplete
	}

	updated, err := s.acc.Apply(s.ratings, match, option)
	if err != nil {
		s.mu.Unlock()
		return domain.Vote{}, err
	}

	// Apply returned a fresh map, so the old one is safe to snapshot as-is.
	snap := Snapshot{
		Ratings:    s.ratings,
		HistoryLen: len(s.history),
		Position:   s.sched.Position(),
	}

	leftOutcome, rightOutcome, result := domain.ResolveOption(option)
	vote := domain.Vote{
		Match:        match,
		Option:       option,
		LeftOutcome:  leftOutcome,
		RightOutcome: rightOutcome,
		Result:       result,
		Timestamp:    s.clock.Now(),
	}

	s.sched.Advance()
	s.ratings = updated
	s.history = append(s.history, vote)
	s.undo.Arm(snap)
	done := s.sched.Done()
	votes := len(s.history)
	s.mu.Unlock()

	metrics.VotesTotal.WithLabelValues(string(option)).Inc()

	if s.cfg.OnVote != nil {
		ev := VoteEvent{
			SessionID: s.id,
			Match:     match,
			Result:    result,
			Ratings:   updated.Clone(),
			Timestamp: vote.Timestamp,
		}
		if err := s.cfg.OnVote(ctx, ev); err != nil {
			return vote, err
		}
	}

	if done {
		metrics.TournamentsCompleted.Inc()
		s.log.Info("tournament complete", "session", s.id, "votes", votes)
		if s.cfg.OnRatings != nil {
			if err := s.cfg.OnRatings(ctx, updated.Clone()); err != nil {
				return vote, err
			}
		}
	}

	return vote, nil
}

// Undo rolls back the most recent vote while its window is still open,
// restoring ratings, history, and scheduler position to the pre-vote state.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()

	snap, err := s.undo.Undo()
	if err != nil {
		s.mu.Unlock()
		metrics.UndosTotal.WithLabelValues("rejected").Inc()
		return err
	}

	s.ratings = snap.Ratings
	s.history = s.history[:snap.HistoryLen]
	s.sched.Restore(snap.Position)
	restored := s.ratings.Clone()
	s.mu.Unlock()

	metrics.UndosTotal.WithLabelValues("consumed").Inc()
	s.log.Debug("vote undone", "session", s.id, "position", snap.Position)

	if s.cfg.OnRatings != nil {
		return s.cfg.OnRatings(ctx, restored)
	}
	return nil
}

// UndoState reports the state of the undo window.
func (s *Session) UndoState() UndoState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo.State()
}

// UndoRemaining returns how long the last vote stays reversible.
func (s *Session) UndoRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo.Remaining()
}

// Progress reports round and completion counters.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Progress()
}

// Ratings returns a copy of the current rating map.
func (s *Session) Ratings() domain.RatingMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratings.Clone()
}

// History returns a copy of the resolved votes in order.
func (s *Session) History() []domain.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Vote, len(s.history))
	copy(out, s.history)
	return out
}

// Done reports whether every match has been resolved.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Done()
}
