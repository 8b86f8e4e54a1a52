package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientEntries is returned when a tournament is started with fewer
// than two votable entries.
var ErrInsufficientEntries = errors.New("at least two votable entries are required")

// ErrTournamentComplete is returned when a vote arrives after the match queue
// has been exhausted.
var ErrTournamentComplete = errors.New("tournament is complete")

// ErrUndoWindowClosed is returned when undo is requested outside the armed window.
var ErrUndoWindowClosed = errors.New("undo window is closed")

// ErrCircuitOpen is returned by a circuit breaker that is refusing calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// UnknownEntryError indicates a match referenced an entry missing from the
// rating map.
type UnknownEntryError struct {
	ID string
}

func (e *UnknownEntryError) Error() string {
	return fmt.Sprintf("unknown entry: %s", e.ID)
}
