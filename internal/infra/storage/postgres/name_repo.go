package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pawmatch/pawmatch/internal/core/domain"
	"github.com/pawmatch/pawmatch/internal/infra/storage"
)

// NameRepo implements storage.NameRepository using PostgreSQL.
type NameRepo struct {
	db *DB
}

// NewNameRepo creates a new PostgreSQL name repository.
func NewNameRepo(db *DB) *NameRepo {
	return &NameRepo{db: db}
}

// List retrieves every entry, hidden ones included.
func (r *NameRepo) List(ctx context.Context) ([]domain.NameEntry, error) {
	var entries []domain.NameEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, name, description, is_hidden, locked_in, rating, wins, losses
		FROM name_entries
		ORDER BY rating DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list name entries: %w", err)
	}
	return entries, nil
}

// ListVotable retrieves entries eligible for matchups.
func (r *NameRepo) ListVotable(ctx context.Context) ([]domain.NameEntry, error) {
	var entries []domain.NameEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, name, description, is_hidden, locked_in, rating, wins, losses
		FROM name_entries
		WHERE NOT is_hidden AND NOT locked_in
		ORDER BY rating DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list votable entries: %w", err)
	}
	return entries, nil
}

// Get retrieves a single entry by ID.
func (r *NameRepo) Get(ctx context.Context, id string) (*domain.NameEntry, error) {
	var entry domain.NameEntry
	err := r.db.GetContext(ctx, &entry, `
		SELECT id, name, description, is_hidden, locked_in, rating, wins, losses
		FROM name_entries
		WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get name entry: %w", err)
	}
	return &entry, nil
}

// Save inserts or updates an entry.
func (r *NameRepo) Save(ctx context.Context, entry *domain.NameEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO name_entries (id, name, description, is_hidden, locked_in, rating, wins, losses)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			is_hidden = EXCLUDED.is_hidden,
			locked_in = EXCLUDED.locked_in,
			rating = EXCLUDED.rating,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses`,
		entry.ID, entry.Name, entry.Description, entry.IsHidden,
		entry.LockedIn, entry.Rating, entry.Wins, entry.Losses)
	if err != nil {
		return fmt.Errorf("failed to save name entry: %w", err)
	}
	return nil
}

// SetHidden flips the admin visibility flag on a batch of entries.
func (r *NameRepo) SetHidden(ctx context.Context, ids []string, hidden bool) error {
	return r.setFlag(ctx, "is_hidden", ids, hidden)
}

// SetLockedIn flips the lock-in flag on a batch of entries.
func (r *NameRepo) SetLockedIn(ctx context.Context, ids []string, locked bool) error {
	return r.setFlag(ctx, "locked_in", ids, locked)
}

func (r *NameRepo) setFlag(ctx context.Context, column string, ids []string, value bool) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf("UPDATE name_entries SET %s = ? WHERE id IN (?)", column),
		value, ids)
	if err != nil {
		return fmt.Errorf("failed to build flag update: %w", err)
	}

	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	return nil
}
