package tournament

import "github.com/pawmatch/pawmatch/internal/core/domain"

// BracketMatch is one slot in the bracket view: a generated match plus its
// resolution, if any.
type BracketMatch struct {
	Match  domain.Match `json:"match"`
	Vote   *domain.Vote `json:"vote,omitempty"`
	Played bool         `json:"played"`
}

// BracketRound groups bracket slots by round.
type BracketRound struct {
	Round   int            `json:"round"`
	Matches []BracketMatch `json:"matches"`
}

// Bracket transforms the match history into a round-grouped bracket. Matches
// that have been generated but not yet voted on appear unplayed, so the view
// stays stable across the whole round.
func (s *Session) Bracket() []BracketRound {
	s.mu.Lock()
	defer s.mu.Unlock()

	built := s.sched.Built()
	if len(built) == 0 {
		return nil
	}

	votes := make(map[int]*domain.Vote, len(s.history))
	for i := range s.history {
		v := s.history[i]
		votes[v.Match.MatchNumber] = &v
	}

	lastRound := built[len(built)-1].Round
	rounds := make([]BracketRound, lastRound)
	for i := range rounds {
		rounds[i].Round = i + 1
	}

	for _, m := range built {
		slot := BracketMatch{Match: m}
		if v, ok := votes[m.MatchNumber]; ok {
			slot.Vote = v
			slot.Played = true
		}
		r := &rounds[m.Round-1]
		r.Matches = append(r.Matches, slot)
	}

	return rounds
}
