package postgres

import (
	"context"
	"fmt"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

// RatingRepo implements storage.RatingRepository using PostgreSQL.
type RatingRepo struct {
	db *DB
}

// NewRatingRepo creates a new PostgreSQL rating repository.
func NewRatingRepo(db *DB) *RatingRepo {
	return &RatingRepo{db: db}
}

// UpdateRatings writes a batch of rating snapshots in one transaction.
func (r *RatingRepo) UpdateRatings(ctx context.Context, ratings domain.RatingMap) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rating update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		UPDATE name_entries
		SET rating = $2, wins = $3, losses = $4
		WHERE id = $1`)
	if err != nil {
		return fmt.Errorf("failed to prepare rating update: %w", err)
	}
	defer stmt.Close()

	for id, er := range ratings {
		if _, err := stmt.ExecContext(ctx, id, er.Rating, er.Wins, er.Losses); err != nil {
			return fmt.Errorf("failed to update rating for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating update: %w", err)
	}
	return nil
}

// Top returns the highest-rated votable entries.
func (r *RatingRepo) Top(ctx context.Context, limit int) ([]domain.NameEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []domain.NameEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, name, description, is_hidden, locked_in, rating, wins, losses
		FROM name_entries
		WHERE NOT is_hidden
		ORDER BY rating DESC, wins DESC, name
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}
