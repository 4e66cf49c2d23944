package memory

import (
	"context"
	"sort"

	"ranchbook/internal/domain/pastures"
)

type PasturesRepo struct {
	store *Store
}

func NewPasturesRepo(store *Store) *PasturesRepo {
	return &PasturesRepo{store: store}
}

var _ pastures.Repository = (*PasturesRepo)(nil)

func (r *PasturesRepo) Create(_ context.Context, p pastures.Pasture) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.pastures[p.ID] = p
	return nil
}

func (r *PasturesRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.pastures[id]; !ok {
		return pastures.ErrNotFound
	}
	// las vacas que apuntaban acá conservan el id colgante, igual que
	// el original
	delete(r.store.pastures, id)
	return nil
}

func (r *PasturesRepo) GetByID(_ context.Context, id string) (pastures.Pasture, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.pastures[id]
	if !ok {
		return pastures.Pasture{}, pastures.ErrNotFound
	}
	return p, nil
}

func (r *PasturesRepo) ListByRanch(_ context.Context, ranchID string) ([]pastures.Pasture, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]pastures.Pasture, 0)
	for _, p := range r.store.pastures {
		if p.RanchID == ranchID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
