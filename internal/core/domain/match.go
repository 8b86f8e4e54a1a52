package domain

import "time"

// Match is a single pairwise comparison between two entries.
// Immutable once created; history records reference it by value.
type Match struct {
	Left        NameEntry `json:"left"`
	Right       NameEntry `json:"right"`
	MatchNumber int       `json:"match_number"` // 1-based
	Round       int       `json:"round"`        // 1-based
}

// VoteOption is the voter's decision for a match.
type VoteOption string

const (
	VoteLeft    VoteOption = "left"
	VoteRight   VoteOption = "right"
	VoteBoth    VoteOption = "both"
	VoteNeither VoteOption = "neither"
)

// Valid reports whether the option is one of the four recognized choices.
func (o VoteOption) Valid() bool {
	switch o {
	case VoteLeft, VoteRight, VoteBoth, VoteNeither:
		return true
	}
	return false
}

// SideOutcome is the per-entry effect of a resolved match.
type SideOutcome string

const (
	OutcomeWin  SideOutcome = "win"
	OutcomeLoss SideOutcome = "loss"
	OutcomeSkip SideOutcome = "skip"
)

// Vote records the resolution of one match. Appended to a session's history
// exactly once per match; only the most recent vote is ever removed (by undo).
type Vote struct {
	Match        Match       `json:"match"`
	Option       VoteOption  `json:"option"`
	LeftOutcome  SideOutcome `json:"left_outcome"`
	RightOutcome SideOutcome `json:"right_outcome"`
	Result       float64     `json:"result"`
	Timestamp    time.Time   `json:"timestamp"`
}

// ResolveOption maps a vote option to its side outcomes and result scalar.
// The mapping is total over the four options:
//
//	left    -> win/loss, -1
//	right   -> loss/win, +1
//	both    -> win/win,  0.5
//	neither -> skip/skip, 0
func ResolveOption(option VoteOption) (left, right SideOutcome, result float64) {
	switch option {
	case VoteLeft:
		return OutcomeWin, OutcomeLoss, -1
	case VoteRight:
		return OutcomeLoss, OutcomeWin, 1
	case VoteBoth:
		return OutcomeWin, OutcomeWin, 0.5
	default:
		return OutcomeSkip, OutcomeSkip, 0
	}
}
