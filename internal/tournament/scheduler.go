package tournament

import (
	"math/rand"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

// Scheduler produces the sequence of pairwise matches for a pool of entries.
//
// Each round is a fresh shuffled permutation of the pool, paired off two at a
// time. When the pool size is odd the last element of the permutation is
// paired against the first, so matchesPerRound is always ceil(N/2). Rounds are
// built lazily as the pointer crosses a round boundary; matches already built
// are never regenerated, which keeps undo a pure pointer rewind.
type Scheduler struct {
	rng    *rand.Rand
	rounds int

	entries         []domain.NameEntry
	matches         []domain.Match
	pos             int // index of the current (unresolved) match
	matchesPerRound int
	totalMatches    int
}

// NewScheduler creates a scheduler that plays the given number of rounds.
// The random source drives the per-round shuffle; seed it deterministically
// for reproducible brackets.
func NewScheduler(rng *rand.Rand, rounds int) *Scheduler {
	if rounds < 1 {
		rounds = 1
	}
	return &Scheduler{rng: rng, rounds: rounds}
}

// Start validates the pool and builds the first round.
func (s *Scheduler) Start(entries []domain.NameEntry) error {
	if len(entries) < 2 {
		return domain.ErrInsufficientEntries
	}

	s.entries = make([]domain.NameEntry, len(entries))
	copy(s.entries, entries)

	s.matchesPerRound = (len(entries) + 1) / 2
	s.totalMatches = s.matchesPerRound * s.rounds
	s.matches = make([]domain.Match, 0, s.totalMatches)
	s.pos = 0

	s.buildRound()
	return nil
}

// buildRound appends one round of matches from a fresh permutation.
func (s *Scheduler) buildRound() {
	n := len(s.entries)
	perm := s.rng.Perm(n)

	for i := 0; i < n-1; i += 2 {
		s.appendMatch(s.entries[perm[i]], s.entries[perm[i+1]])
	}
	if n%2 == 1 {
		// Odd pool: wrap the leftover entry against the permutation head.
		s.appendMatch(s.entries[perm[n-1]], s.entries[perm[0]])
	}
}

func (s *Scheduler) appendMatch(left, right domain.NameEntry) {
	num := len(s.matches) + 1
	s.matches = append(s.matches, domain.Match{
		Left:        left,
		Right:       right,
		MatchNumber: num,
		Round:       RoundFor(num, s.matchesPerRound),
	})
}

// RoundFor derives the 1-based round from a 1-based match number.
// With 8 entries (matchesPerRound=4), match 5 falls in round 2.
func RoundFor(matchNumber, matchesPerRound int) int {
	if matchesPerRound < 1 {
		return 1
	}
	return (matchNumber + matchesPerRound - 1) / matchesPerRound
}

// Current returns the match awaiting a vote, or false when the tournament
// is complete.
func (s *Scheduler) Current() (domain.Match, bool) {
	if s.pos >= s.totalMatches {
		return domain.Match{}, false
	}
	return s.matches[s.pos], true
}

// Advance consumes the current match and moves to the next one, building the
// next round if the pointer crossed a round boundary. It returns false when
// the queue is exhausted.
func (s *Scheduler) Advance() (domain.Match, bool) {
	if s.pos >= s.totalMatches {
		return domain.Match{}, false
	}
	s.pos++
	if s.pos >= s.totalMatches {
		return domain.Match{}, false
	}
	if s.pos >= len(s.matches) {
		s.buildRound()
	}
	return s.matches[s.pos], true
}

// Position returns the scheduler pointer for snapshotting.
func (s *Scheduler) Position() int { return s.pos }

// Restore rewinds the pointer to a previously captured position.
func (s *Scheduler) Restore(pos int) {
	if pos >= 0 && pos <= len(s.matches) {
		s.pos = pos
	}
}

// Done reports whether every match has been resolved.
func (s *Scheduler) Done() bool { return s.pos >= s.totalMatches }

// MatchesPerRound returns the number of matches in each round.
func (s *Scheduler) MatchesPerRound() int { return s.matchesPerRound }

// TotalMatches returns the full match count across all rounds.
func (s *Scheduler) TotalMatches() int { return s.totalMatches }

// Built returns the matches generated so far, resolved or not.
func (s *Scheduler) Built() []domain.Match { return s.matches }

// Progress summarizes how far the tournament has advanced.
type Progress struct {
	Round           int `json:"round"`
	CurrentMatch    int `json:"current_match"`
	TotalMatches    int `json:"total_matches"`
	PercentComplete int `json:"percent_complete"`
}

// Progress reports completed-match counts: after resolving match k of n,
// CurrentMatch is k and PercentComplete is round(100*k/n). Round tracks the
// round of the match currently awaiting a vote.
func (s *Scheduler) Progress() Progress {
	completed := s.pos
	round := RoundFor(min(completed+1, s.totalMatches), s.matchesPerRound)

	pct := 0
	if s.totalMatches > 0 {
		pct = int(float64(completed)/float64(s.totalMatches)*100 + 0.5)
	}

	return Progress{
		Round:           round,
		CurrentMatch:    completed,
		TotalMatches:    s.totalMatches,
		PercentComplete: pct,
	}
}
