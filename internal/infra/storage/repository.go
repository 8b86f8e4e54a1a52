package storage

import (
	"context"
	"errors"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("record not found")
)

// NameRepository handles the candidate name pool
type NameRepository interface {
	// List retrieves every entry, hidden ones included (admin view)
	List(ctx context.Context) ([]domain.NameEntry, error)

	// ListVotable retrieves entries eligible for matchups
	ListVotable(ctx context.Context) ([]domain.NameEntry, error)

	// Get retrieves a single entry
	Get(ctx context.Context, id string) (*domain.NameEntry, error)

	// Save inserts or updates an entry
	Save(ctx context.Context, entry *domain.NameEntry) error

	// SetHidden flips the admin visibility flag on a batch of entries
	SetHidden(ctx context.Context, ids []string, hidden bool) error

	// SetLockedIn flips the lock-in flag on a batch of entries
	SetLockedIn(ctx context.Context, ids []string, locked bool) error
}

// RatingRepository persists post-match rating state
type RatingRepository interface {
	// UpdateRatings writes a batch of rating snapshots keyed by entry ID
	UpdateRatings(ctx context.Context, ratings domain.RatingMap) error

	// Top returns the highest-rated votable entries
	Top(ctx context.Context, limit int) ([]domain.NameEntry, error)
}

// SuggestionRepository handles user-submitted name suggestions
type SuggestionRepository interface {
	// Add stores a new pending suggestion
	Add(ctx context.Context, s *domain.Suggestion) error

	// List retrieves suggestions, optionally filtered by status
	List(ctx context.Context, status domain.SuggestionStatus) ([]domain.Suggestion, error)

	// SetStatus moves a suggestion through moderation
	SetStatus(ctx context.Context, id string, status domain.SuggestionStatus) error
}
