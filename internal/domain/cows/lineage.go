package cows

import (
	"context"
	"strings"
)

// Linaje: madre y terneros se guardan como strings de número de tag, no
// como referencias. Se resuelven acá, lazy, contra el set vivo de tags.

// ResolveByTag devuelve la vaca dueña de un número de tag en el ranch.
// Como los números son únicos por ranch, el lookup es inambiguo cuando
// encuentra algo; si no, ErrNotFound.
func (s *Service) ResolveByTag(ctx context.Context, ranchID, number string) (Cow, error) {
	ranchID = strings.TrimSpace(ranchID)
	number = NormalizeTagNumber(number)
	if ranchID == "" || number == "" {
		return Cow{}, ErrInvalidInput
	}

	tags, err := s.repo.ListTagsByRanch(ctx, ranchID)
	if err != nil {
		return Cow{}, err
	}

	for _, t := range tags {
		if NormalizeTagNumber(t.Number) == number {
			return s.repo.GetByID(ctx, t.CowID)
		}
	}
	return Cow{}, ErrNotFound
}

// Mother resuelve la madre de una vaca vía su MotherTag, o ErrNotFound
// si la referencia no apunta a ningún tag vivo (se permite al escribir).
func (s *Service) Mother(ctx context.Context, cowID string) (Cow, error) {
	c, err := s.GetByID(ctx, cowID)
	if err != nil {
		return Cow{}, err
	}
	if strings.TrimSpace(c.MotherTag) == "" {
		return Cow{}, ErrNotFound
	}
	return s.ResolveByTag(ctx, c.RanchID, c.MotherTag)
}

// Calves devuelve las vacas cuyo MotherTag matchea exactamente algún
// número del set de tags de esta vaca. Es un match de string contra un
// número mutable: re-taggear a la madre deja huérfanos a los terneros
// que referenciaban el número viejo (gap de integridad conocido, sin
// cascade-on-rename).
func (s *Service) Calves(ctx context.Context, cowID string) ([]Cow, error) {
	c, err := s.GetByID(ctx, cowID)
	if err != nil {
		return nil, err
	}

	own := make(map[string]struct{}, len(c.Tags))
	for _, n := range c.TagNumbers() {
		own[n] = struct{}{}
	}

	herd, err := s.repo.ListByRanch(ctx, c.RanchID)
	if err != nil {
		return nil, err
	}

	out := make([]Cow, 0)
	for _, candidate := range herd {
		if candidate.ID == c.ID {
			continue
		}
		mother := NormalizeTagNumber(candidate.MotherTag)
		if mother == "" {
			continue
		}
		if _, ok := own[mother]; ok {
			out = append(out, candidate)
		}
	}
	return out, nil
}
