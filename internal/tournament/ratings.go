package tournament

import (
	"math"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

// RatingPolicy computes the post-match ratings for both sides. It must be
// deterministic for a given (left, right, option) triple and symmetric:
// swapping sides while inverting the outcome yields the mirrored result.
type RatingPolicy interface {
	Adjust(leftRating, rightRating float64, option domain.VoteOption) (newLeft, newRight float64)
}

// EloPolicy adjusts ratings with a standard Elo expected-score delta.
// A "both" vote scores a win for each side; "neither" leaves ratings untouched.
type EloPolicy struct {
	K float64
}

// DefaultElo is the policy used when none is configured.
var DefaultElo = EloPolicy{K: 32}

func (p EloPolicy) Adjust(left, right float64, option domain.VoteOption) (float64, float64) {
	var scoreLeft, scoreRight float64
	switch option {
	case domain.VoteLeft:
		scoreLeft, scoreRight = 1, 0
	case domain.VoteRight:
		scoreLeft, scoreRight = 0, 1
	case domain.VoteBoth:
		scoreLeft, scoreRight = 1, 1
	default:
		return left, right
	}

	expectedLeft := 1 / (1 + math.Pow(10, (right-left)/400))
	expectedRight := 1 - expectedLeft

	return left + p.K*(scoreLeft-expectedLeft), right + p.K*(scoreRight-expectedRight)
}

// Accumulator applies vote outcomes to a rating map.
type Accumulator struct {
	policy RatingPolicy
}

// NewAccumulator creates an accumulator; a nil policy falls back to DefaultElo.
func NewAccumulator(policy RatingPolicy) *Accumulator {
	if policy == nil {
		policy = DefaultElo
	}
	return &Accumulator{policy: policy}
}

// Apply resolves a match under the given option and returns an updated copy of
// the rating map. The input map is never mutated; undo relies on the caller
// keeping the prior map intact.
func (a *Accumulator) Apply(
	ratings domain.RatingMap,
	match domain.Match,
	option domain.VoteOption,
) (domain.RatingMap, error) {
	left, ok := ratings[match.Left.ID]
	if !ok {
		return nil, &domain.UnknownEntryError{ID: match.Left.ID}
	}
	right, ok := ratings[match.Right.ID]
	if !ok {
		return nil, &domain.UnknownEntryError{ID: match.Right.ID}
	}

	leftOutcome, rightOutcome, _ := domain.ResolveOption(option)
	applyOutcome(&left, leftOutcome)
	applyOutcome(&right, rightOutcome)

	left.Rating, right.Rating = a.policy.Adjust(left.Rating, right.Rating, option)

	updated := ratings.Clone()
	updated[match.Left.ID] = left
	updated[match.Right.ID] = right
	return updated, nil
}

func applyOutcome(r *domain.EntryRating, outcome domain.SideOutcome) {
	switch outcome {
	case domain.OutcomeWin:
		r.Wins++
	case domain.OutcomeLoss:
		r.Losses++
	}
}
