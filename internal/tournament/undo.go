package tournament

import (
	"time"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

// DefaultUndoWindow is how long a vote stays reversible.
const DefaultUndoWindow = 5 * time.Second

// UndoState is the observable state of the undo window.
type UndoState string

const (
	UndoIdle     UndoState = "idle"
	UndoArmed    UndoState = "armed"
	UndoExpired  UndoState = "expired"
	UndoConsumed UndoState = "consumed"
)

// Snapshot captures everything needed to roll back one vote.
type Snapshot struct {
	Ratings    domain.RatingMap
	HistoryLen int
	Position   int
}

// UndoWindow is a timed single-depth rollback guard. Arming it after a vote
// opens a window during which Undo returns the pre-vote snapshot; once the
// clock passes expiry the snapshot is discarded. Expiry is decided by
// comparing against the injected clock on every observation, never by a
// cached flag.
type UndoWindow struct {
	clock  domain.Clock
	window time.Duration

	state     UndoState
	armedAt   time.Time
	expiresAt time.Time
	snap      *Snapshot
}

// NewUndoWindow creates an undo window. A zero duration selects
// DefaultUndoWindow; a nil clock selects the system clock.
func NewUndoWindow(clock domain.Clock, window time.Duration) *UndoWindow {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return &UndoWindow{clock: clock, window: window, state: UndoIdle}
}

// Arm opens the window over a fresh snapshot. Any previously armed snapshot
// is discarded; only the most recent vote is undoable.
func (u *UndoWindow) Arm(snap Snapshot) {
	now := u.clock.Now()
	u.state = UndoArmed
	u.armedAt = now
	u.expiresAt = now.Add(u.window)
	u.snap = &snap
}

// State reports the current state, collapsing an armed window whose deadline
// has passed into UndoExpired.
func (u *UndoWindow) State() UndoState {
	if u.state == UndoArmed && !u.clock.Now().Before(u.expiresAt) {
		u.state = UndoExpired
		u.snap = nil
	}
	return u.state
}

// Remaining returns the time left before expiry, or zero when not armed.
func (u *UndoWindow) Remaining() time.Duration {
	if u.State() != UndoArmed {
		return 0
	}
	return u.expiresAt.Sub(u.clock.Now())
}

// Undo consumes the window and returns the snapshot to restore. It fails with
// ErrUndoWindowClosed when the window is idle, already consumed, or expired;
// a second Undo without an intervening vote is therefore a no-op.
func (u *UndoWindow) Undo() (Snapshot, error) {
	if u.State() != UndoArmed {
		return Snapshot{}, domain.ErrUndoWindowClosed
	}
	snap := *u.snap
	u.state = UndoConsumed
	u.snap = nil
	return snap, nil
}
