package pastures

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, ranchID, name string) (Pasture, error) {
	ranchID = strings.TrimSpace(ranchID)
	name = strings.TrimSpace(name)
	if ranchID == "" || name == "" {
		return Pasture{}, ErrInvalidInput
	}

	p := Pasture{
		ID:        uuid.NewString(),
		RanchID:   ranchID,
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Pasture{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pasture, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pasture{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByRanch(ctx context.Context, ranchID string) ([]Pasture, error) {
	ranchID = strings.TrimSpace(ranchID)
	if ranchID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRanch(ctx, ranchID)
}

// Delete borra el pasture. Las vacas que lo referencian quedan con la
// referencia colgando; se resuelve a "sin pasture" al leer (comportamiento
// del original, sin cascade).
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// NamesByRanch implementa cows.PastureNameLookup (id → nombre).
func (s *Service) NamesByRanch(ctx context.Context, ranchID string) (map[string]string, error) {
	items, err := s.ListByRanch(ctx, ranchID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, p := range items {
		out[p.ID] = p.Name
	}
	return out, nil
}
