package memory

import (
	"context"
	"sort"
	"strings"

	"ranchbook/internal/domain/cows"
)

type CowsRepo struct {
	store *Store
}

func NewCowsRepo(store *Store) *CowsRepo {
	return &CowsRepo{store: store}
}

var _ cows.Repository = (*CowsRepo)(nil)

func (r *CowsRepo) Create(_ context.Context, c cows.Cow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c.Tags, c.Notes, c.MedicalIssues = nil, nil, nil
	r.store.cows[c.ID] = c
	return nil
}

func (r *CowsRepo) UpdateFields(_ context.Context, c cows.Cow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.cows[c.ID]; !ok {
		return cows.ErrNotFound
	}
	c.Tags, c.Notes, c.MedicalIssues = nil, nil, nil
	r.store.cows[c.ID] = c
	return nil
}

func (r *CowsRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.cows[id]; !ok {
		return cows.ErrNotFound
	}
	r.store.deleteCowLocked(id)
	return nil
}

func (r *CowsRepo) GetByID(_ context.Context, id string) (cows.Cow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.cows[id]
	if !ok {
		return cows.Cow{}, cows.ErrNotFound
	}
	return r.hydrateLocked(c), nil
}

func (r *CowsRepo) ListByRanch(_ context.Context, ranchID string) ([]cows.Cow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]cows.Cow, 0)
	for _, c := range r.store.cows {
		if c.RanchID == ranchID {
			out = append(out, r.hydrateLocked(c))
		}
	}
	// creación descendente; desempate por id para que sea determinista
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CowsRepo) CountByRanch(_ context.Context, ranchID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := 0
	for _, c := range r.store.cows {
		if c.RanchID == ranchID {
			n++
		}
	}
	return n, nil
}

func (r *CowsRepo) InsertTags(_ context.Context, ranchID, cowID string, tags []cows.Tag) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idx := r.store.tagIndex[ranchID]
	if idx == nil {
		idx = make(map[string]string)
		r.store.tagIndex[ranchID] = idx
	}

	// chequeo completo antes de escribir: el insert es todo-o-nada
	for _, t := range tags {
		n := cows.NormalizeTagNumber(t.Number)
		if owner, taken := idx[n]; taken && owner != cowID {
			return &cows.DuplicateTagError{Number: n, CowID: owner}
		}
	}

	for _, t := range tags {
		idx[cows.NormalizeTagNumber(t.Number)] = cowID
	}
	r.store.tags[cowID] = append([]cows.Tag(nil), tags...)
	return nil
}

func (r *CowsRepo) DeleteTags(_ context.Context, ranchID, cowID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if idx, ok := r.store.tagIndex[ranchID]; ok {
		for _, t := range r.store.tags[cowID] {
			n := cows.NormalizeTagNumber(t.Number)
			if idx[n] == cowID {
				delete(idx, n)
			}
		}
	}
	delete(r.store.tags, cowID)
	return nil
}

func (r *CowsRepo) ListTagsByRanch(_ context.Context, ranchID string) ([]cows.RanchTag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]cows.RanchTag, 0)
	for cowID, ts := range r.store.tags {
		c, ok := r.store.cows[cowID]
		if !ok || c.RanchID != ranchID {
			continue
		}
		for _, t := range ts {
			out = append(out, cows.RanchTag{CowID: cowID, Label: t.Label, Number: t.Number})
		}
	}
	return out, nil
}

func (r *CowsRepo) AddNote(_ context.Context, cowID string, n cows.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.cows[cowID]
	if !ok {
		return cows.ErrNotFound
	}
	r.store.notes[cowID] = append(r.store.notes[cowID], n)
	c.UpdatedAt = n.CreatedAt
	r.store.cows[cowID] = c
	return nil
}

func (r *CowsRepo) AddMedicalIssue(_ context.Context, cowID string, m cows.MedicalIssue) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.cows[cowID]
	if !ok {
		return cows.ErrNotFound
	}
	r.store.medical[cowID] = append(r.store.medical[cowID], m)
	c.UpdatedAt = m.CreatedAt
	r.store.cows[cowID] = c
	return nil
}

func (r *CowsRepo) SearchMedical(_ context.Context, ranchID, query string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query = strings.ToLower(query)
	out := make([]string, 0)
	for cowID, issues := range r.store.medical {
		c, ok := r.store.cows[cowID]
		if !ok || c.RanchID != ranchID {
			continue
		}
		for _, mi := range issues {
			if strings.Contains(strings.ToLower(mi.Label), query) {
				out = append(out, cowID)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *CowsRepo) ListBreedPresets(_ context.Context, ranchID string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]string(nil), r.store.breeds[ranchID]...), nil
}

func (r *CowsRepo) AddBreedPreset(_ context.Context, ranchID, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.breeds[ranchID] = appendUnique(r.store.breeds[ranchID], name)
	return nil
}

func (r *CowsRepo) ListMedicalPresets(_ context.Context, ranchID string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]string(nil), r.store.medPresets[ranchID]...), nil
}

func (r *CowsRepo) AddMedicalPreset(_ context.Context, ranchID, label string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.medPresets[ranchID] = appendUnique(r.store.medPresets[ranchID], label)
	return nil
}

// hydrateLocked copia la vaca con tags/notas/medical. Requiere mu (read).
func (r *CowsRepo) hydrateLocked(c cows.Cow) cows.Cow {
	c.Tags = append([]cows.Tag(nil), r.store.tags[c.ID]...)
	c.Notes = append([]cows.Note(nil), r.store.notes[c.ID]...)
	c.MedicalIssues = append([]cows.MedicalIssue(nil), r.store.medical[c.ID]...)
	return c
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return list
		}
	}
	return append(list, v)
}
