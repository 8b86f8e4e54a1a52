package tournament

import (
	"errors"
	"testing"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

func TestResolveOption(t *testing.T) {
	tests := []struct {
		option domain.VoteOption
		left   domain.SideOutcome
		right  domain.SideOutcome
		result float64
	}{
		{domain.VoteLeft, domain.OutcomeWin, domain.OutcomeLoss, -1},
		{domain.VoteRight, domain.OutcomeLoss, domain.OutcomeWin, 1},
		{domain.VoteBoth, domain.OutcomeWin, domain.OutcomeWin, 0.5},
		{domain.VoteNeither, domain.OutcomeSkip, domain.OutcomeSkip, 0},
		{domain.VoteOption("garbage"), domain.OutcomeSkip, domain.OutcomeSkip, 0},
	}

	for _, tt := range tests {
		left, right, result := domain.ResolveOption(tt.option)
		if left != tt.left || right != tt.right || result != tt.result {
			t.Errorf("ResolveOption(%q) = (%s, %s, %v), want (%s, %s, %v)",
				tt.option, left, right, result, tt.left, tt.right, tt.result)
		}
	}
}

func TestEloAdjust(t *testing.T) {
	p := EloPolicy{K: 32}

	// Equal ratings: the expected score is 0.5, so a win moves 16 points.
	left, right := p.Adjust(1500, 1500, domain.VoteLeft)
	if left != 1516 || right != 1484 {
		t.Errorf("left win from parity: got (%v, %v), want (1516, 1484)", left, right)
	}

	// Mirrored sides with the inverted outcome produce the mirrored result.
	mLeft, mRight := p.Adjust(1500, 1500, domain.VoteRight)
	if mLeft != 1484 || mRight != 1516 {
		t.Errorf("right win from parity: got (%v, %v), want (1484, 1516)", mLeft, mRight)
	}

	// Both sides winning from parity lifts both ratings.
	bLeft, bRight := p.Adjust(1500, 1500, domain.VoteBoth)
	if bLeft != 1516 || bRight != 1516 {
		t.Errorf("both win from parity: got (%v, %v), want (1516, 1516)", bLeft, bRight)
	}

	// Skipping leaves ratings untouched.
	nLeft, nRight := p.Adjust(1600, 1400, domain.VoteNeither)
	if nLeft != 1600 || nRight != 1400 {
		t.Errorf("neither: got (%v, %v), want (1600, 1400)", nLeft, nRight)
	}

	// An upset moves more points than an expected result.
	uLeft, _ := p.Adjust(1400, 1600, domain.VoteLeft)
	fLeft, _ := p.Adjust(1600, 1400, domain.VoteLeft)
	if uLeft-1400 <= fLeft-1600 {
		t.Errorf("upset delta %v not greater than favorite delta %v", uLeft-1400, fLeft-1600)
	}
}

func TestAccumulatorApply(t *testing.T) {
	entries := makeEntries(2)
	ratings := domain.NewRatingMap(entries)
	match := domain.Match{Left: entries[0], Right: entries[1], MatchNumber: 1, Round: 1}

	acc := NewAccumulator(nil)
	updated, err := acc.Apply(ratings, match, domain.VoteLeft)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if got := updated["n1"]; got.Wins != 1 || got.Losses != 0 || got.Rating != 1516 {
		t.Errorf("winner state = %+v, want {1516 1 0}", got)
	}
	if got := updated["n2"]; got.Wins != 0 || got.Losses != 1 || got.Rating != 1484 {
		t.Errorf("loser state = %+v, want {1484 0 1}", got)
	}

	// The input map must stay intact so undo can restore it.
	if got := ratings["n1"]; got.Wins != 0 || got.Rating != 1500 {
		t.Errorf("input map mutated: %+v", got)
	}
}

func TestAccumulatorNeitherSkipsCounters(t *testing.T) {
	entries := makeEntries(2)
	ratings := domain.NewRatingMap(entries)
	match := domain.Match{Left: entries[0], Right: entries[1], MatchNumber: 1, Round: 1}

	updated, err := NewAccumulator(nil).Apply(ratings, match, domain.VoteNeither)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for _, id := range []string{"n1", "n2"} {
		if got := updated[id]; got.Wins != 0 || got.Losses != 0 || got.Rating != 1500 {
			t.Errorf("%s changed on a skipped match: %+v", id, got)
		}
	}
}

func TestAccumulatorUnknownEntry(t *testing.T) {
	entries := makeEntries(2)
	ratings := domain.NewRatingMap(entries[:1])
	match := domain.Match{Left: entries[0], Right: entries[1], MatchNumber: 1, Round: 1}

	_, err := NewAccumulator(nil).Apply(ratings, match, domain.VoteLeft)

	var unknown *domain.UnknownEntryError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownEntryError", err)
	}
	if unknown.ID != "n2" {
		t.Errorf("unknown entry ID = %s, want n2", unknown.ID)
	}
}
