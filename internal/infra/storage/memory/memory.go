package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pawmatch/pawmatch/internal/core/domain"
	"github.com/pawmatch/pawmatch/internal/infra/storage"
)

// MemoryStorage backs the repositories when no database is configured,
// and in tests.
type MemoryStorage struct {
	names       map[string]*domain.NameEntry
	suggestions map[string]*domain.Suggestion
	mu          sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		names:       make(map[string]*domain.NameEntry),
		suggestions: make(map[string]*domain.Suggestion),
	}
}

// Seed loads an initial name pool.
func (s *MemoryStorage) Seed(entries []domain.NameEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range entries {
		e := entries[i]
		if e.Rating == 0 {
			e.Rating = domain.DefaultRating
		}
		s.names[e.ID] = &e
	}
}

// -----------------------------------------------------------------------------
// Name Repository
// -----------------------------------------------------------------------------

type NameRepo struct {
	store *MemoryStorage
}

func NewNameRepo(store *MemoryStorage) *NameRepo {
	return &NameRepo{store: store}
}

func (r *NameRepo) List(ctx context.Context) ([]domain.NameEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.NameEntry, 0, len(r.store.names))
	for _, e := range r.store.names {
		out = append(out, *e)
	}
	sortByRating(out)
	return out, nil
}

func (r *NameRepo) ListVotable(ctx context.Context) ([]domain.NameEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.NameEntry
	for _, e := range r.store.names {
		if e.Votable() {
			out = append(out, *e)
		}
	}
	sortByRating(out)
	return out, nil
}

func (r *NameRepo) Get(ctx context.Context, id string) (*domain.NameEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	e, ok := r.store.names[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *NameRepo) Save(ctx context.Context, entry *domain.NameEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *entry
	r.store.names[entry.ID] = &cp
	return nil
}

func (r *NameRepo) SetHidden(ctx context.Context, ids []string, hidden bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range ids {
		if e, ok := r.store.names[id]; ok {
			e.IsHidden = hidden
		}
	}
	return nil
}

func (r *NameRepo) SetLockedIn(ctx context.Context, ids []string, locked bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range ids {
		if e, ok := r.store.names[id]; ok {
			e.LockedIn = locked
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Rating Repository
// -----------------------------------------------------------------------------

type RatingRepo struct {
	store *MemoryStorage
}

func NewRatingRepo(store *MemoryStorage) *RatingRepo {
	return &RatingRepo{store: store}
}

func (r *RatingRepo) UpdateRatings(ctx context.Context, ratings domain.RatingMap) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, er := range ratings {
		if e, ok := r.store.names[id]; ok {
			e.Rating = er.Rating
			e.Wins = er.Wins
			e.Losses = er.Losses
		}
	}
	return nil
}

func (r *RatingRepo) Top(ctx context.Context, limit int) ([]domain.NameEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.NameEntry
	for _, e := range r.store.names {
		if !e.IsHidden {
			out = append(out, *e)
		}
	}
	sortByRating(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Suggestion Repository
// -----------------------------------------------------------------------------

type SuggestionRepo struct {
	store *MemoryStorage
}

func NewSuggestionRepo(store *MemoryStorage) *SuggestionRepo {
	return &SuggestionRepo{store: store}
}

func (r *SuggestionRepo) Add(ctx context.Context, sg *domain.Suggestion) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *sg
	r.store.suggestions[sg.ID] = &cp
	return nil
}

func (r *SuggestionRepo) List(
	ctx context.Context,
	status domain.SuggestionStatus,
) ([]domain.Suggestion, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.Suggestion
	for _, sg := range r.store.suggestions {
		if status == "" || sg.Status == status {
			out = append(out, *sg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SuggestionRepo) SetStatus(
	ctx context.Context,
	id string,
	status domain.SuggestionStatus,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sg, ok := r.store.suggestions[id]
	if !ok {
		return fmt.Errorf("suggestion %s not found", id)
	}
	sg.Status = status
	return nil
}

func sortByRating(entries []domain.NameEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].Name < entries[j].Name
	})
}
