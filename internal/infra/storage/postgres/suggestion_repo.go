package postgres

import (
	"context"
	"fmt"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

// SuggestionRepo implements storage.SuggestionRepository using PostgreSQL.
type SuggestionRepo struct {
	db *DB
}

// NewSuggestionRepo creates a new PostgreSQL suggestion repository.
func NewSuggestionRepo(db *DB) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

// Add stores a new pending suggestion.
func (r *SuggestionRepo) Add(ctx context.Context, s *domain.Suggestion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suggestions (id, name, description, submitted_by, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.Description, s.SubmittedBy, s.Status, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add suggestion: %w", err)
	}
	return nil
}

// List retrieves suggestions, optionally filtered by status. An empty status
// returns everything.
func (r *SuggestionRepo) List(
	ctx context.Context,
	status domain.SuggestionStatus,
) ([]domain.Suggestion, error) {
	var suggestions []domain.Suggestion
	var err error

	if status == "" {
		err = r.db.SelectContext(ctx, &suggestions, `
			SELECT id, name, description, submitted_by, status, created_at
			FROM suggestions
			ORDER BY created_at DESC`)
	} else {
		err = r.db.SelectContext(ctx, &suggestions, `
			SELECT id, name, description, submitted_by, status, created_at
			FROM suggestions
			WHERE status = $1
			ORDER BY created_at DESC`, status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return suggestions, nil
}

// SetStatus moves a suggestion through moderation.
func (r *SuggestionRepo) SetStatus(
	ctx context.Context,
	id string,
	status domain.SuggestionStatus,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE suggestions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update suggestion status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("suggestion %s not found", id)
	}
	return nil
}
