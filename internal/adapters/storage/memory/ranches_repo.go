package memory

import (
	"context"
	"sort"
	"strings"

	"ranchbook/internal/domain/billing"
	"ranchbook/internal/domain/ranches"
)

type RanchesRepo struct {
	store *Store
}

func NewRanchesRepo(store *Store) *RanchesRepo {
	return &RanchesRepo{store: store}
}

var _ ranches.Repository = (*RanchesRepo)(nil)

func (r *RanchesRepo) CreateRanch(_ context.Context, ra ranches.Ranch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ranches[ra.ID] = ra
	// todo ranch arranca en el tier free
	r.store.billing[ra.ID] = billing.Billing{RanchID: ra.ID, Tier: billing.TierFree}
	return nil
}

func (r *RanchesRepo) GetRanch(_ context.Context, id string) (ranches.Ranch, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ra, ok := r.store.ranches[id]
	if !ok {
		return ranches.Ranch{}, ranches.ErrNotFound
	}
	return ra, nil
}

func (r *RanchesRepo) UpdateRanch(_ context.Context, ra ranches.Ranch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ranches[ra.ID]; !ok {
		return ranches.ErrNotFound
	}
	r.store.ranches[ra.ID] = ra
	return nil
}

func (r *RanchesRepo) DeleteRanch(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.ranches[id]; !ok {
		return ranches.ErrNotFound
	}

	for cowID, c := range r.store.cows {
		if c.RanchID == id {
			r.store.deleteCowLocked(cowID)
		}
	}
	for mid, m := range r.store.members {
		if m.RanchID == id {
			delete(r.store.members, mid)
		}
	}
	for pid, p := range r.store.pastures {
		if p.RanchID == id {
			delete(r.store.pastures, pid)
		}
	}
	delete(r.store.tagIndex, id)
	delete(r.store.breeds, id)
	delete(r.store.medPresets, id)
	delete(r.store.billing, id)
	delete(r.store.ranches, id)
	return nil
}

func (r *RanchesRepo) CreateMember(_ context.Context, m ranches.Member) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.members[m.ID] = m
	return nil
}

func (r *RanchesRepo) UpdateMember(_ context.Context, m ranches.Member) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.members[m.ID]; !ok {
		return ranches.ErrNotFound
	}
	r.store.members[m.ID] = m
	return nil
}

func (r *RanchesRepo) DeleteMember(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.members[id]; !ok {
		return ranches.ErrNotFound
	}
	delete(r.store.members, id)
	return nil
}

func (r *RanchesRepo) GetMember(_ context.Context, id string) (ranches.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.members[id]
	if !ok {
		return ranches.Member{}, ranches.ErrNotFound
	}
	return m, nil
}

func (r *RanchesRepo) ListMembersByRanch(_ context.Context, ranchID string) ([]ranches.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]ranches.Member, 0)
	for _, m := range r.store.members {
		if m.RanchID == ranchID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *RanchesRepo) FindMemberByEmail(_ context.Context, ranchID, email string) (ranches.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, m := range r.store.members {
		if m.RanchID == ranchID && strings.ToLower(m.Email) == email {
			return m, nil
		}
	}
	return ranches.Member{}, ranches.ErrNotFound
}

func (r *RanchesRepo) ListMembershipsByUser(_ context.Context, userID string) ([]ranches.Membership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]ranches.Membership, 0)
	for _, m := range r.store.members {
		if m.UserID != userID || !m.Accepted {
			continue
		}
		ra, ok := r.store.ranches[m.RanchID]
		if !ok {
			continue
		}
		out = append(out, ranches.Membership{Ranch: ra, Role: m.Role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ranch.CreatedAt.Before(out[j].Ranch.CreatedAt) })
	return out, nil
}

func (r *RanchesRepo) ListInvitesByEmail(_ context.Context, email string) ([]ranches.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	out := make([]ranches.Member, 0)
	for _, m := range r.store.members {
		if !m.Accepted && strings.ToLower(m.Email) == email {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
