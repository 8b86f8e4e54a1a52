package tournament

import (
	"testing"
	"time"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

// fakeClock is a manually advanced clock for time-driven tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestUndoWindowLifecycle(t *testing.T) {
	clock := newFakeClock()
	u := NewUndoWindow(clock, 5*time.Second)

	if got := u.State(); got != UndoIdle {
		t.Fatalf("initial state = %s, want idle", got)
	}
	if _, err := u.Undo(); err != domain.ErrUndoWindowClosed {
		t.Fatalf("Undo on idle window: got %v, want ErrUndoWindowClosed", err)
	}

	snap := Snapshot{HistoryLen: 3, Position: 3}
	u.Arm(snap)

	if got := u.State(); got != UndoArmed {
		t.Fatalf("state after Arm = %s, want armed", got)
	}
	if got := u.Remaining(); got != 5*time.Second {
		t.Errorf("Remaining = %v, want 5s", got)
	}

	clock.Advance(3 * time.Second)
	if got := u.Remaining(); got != 2*time.Second {
		t.Errorf("Remaining after 3s = %v, want 2s", got)
	}

	got, err := u.Undo()
	if err != nil {
		t.Fatalf("Undo inside window failed: %v", err)
	}
	if got.HistoryLen != 3 || got.Position != 3 {
		t.Errorf("snapshot = %+v, want %+v", got, snap)
	}

	if got := u.State(); got != UndoConsumed {
		t.Errorf("state after Undo = %s, want consumed", got)
	}
	if _, err := u.Undo(); err != domain.ErrUndoWindowClosed {
		t.Errorf("second Undo: got %v, want ErrUndoWindowClosed", err)
	}
}

func TestUndoWindowExpiry(t *testing.T) {
	clock := newFakeClock()
	u := NewUndoWindow(clock, 5*time.Second)
	u.Arm(Snapshot{Position: 1})

	// Expiry is inclusive: exactly at the deadline the window is closed.
	clock.Advance(5 * time.Second)

	if _, err := u.Undo(); err != domain.ErrUndoWindowClosed {
		t.Fatalf("Undo at deadline: got %v, want ErrUndoWindowClosed", err)
	}
	if got := u.State(); got != UndoExpired {
		t.Errorf("state = %s, want expired", got)
	}
	if got := u.Remaining(); got != 0 {
		t.Errorf("Remaining = %v, want 0", got)
	}
}

func TestUndoWindowRearmReplacesSnapshot(t *testing.T) {
	clock := newFakeClock()
	u := NewUndoWindow(clock, 5*time.Second)

	u.Arm(Snapshot{Position: 1})
	clock.Advance(4 * time.Second)
	u.Arm(Snapshot{Position: 2})

	// The second arm restarts the window.
	clock.Advance(4 * time.Second)
	snap, err := u.Undo()
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if snap.Position != 2 {
		t.Errorf("snapshot position = %d, want 2", snap.Position)
	}
}

func TestUndoWindowDefaults(t *testing.T) {
	u := NewUndoWindow(nil, 0)
	if u.window != DefaultUndoWindow {
		t.Errorf("window = %v, want %v", u.window, DefaultUndoWindow)
	}
}
