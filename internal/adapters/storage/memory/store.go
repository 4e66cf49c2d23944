package memory

import (
	"sync"

	"ranchbook/internal/domain/billing"
	"ranchbook/internal/domain/cows"
	"ranchbook/internal/domain/pastures"
	"ranchbook/internal/domain/ranches"
)

// Store es el backing compartido de los repos en memoria. Un solo mutex
// para todo: el cascade de DeleteRanch cruza dominios y con un lock por
// repo se volvería un interbloqueo fácil.
type Store struct {
	mu sync.RWMutex

	ranches map[string]ranches.Ranch
	members map[string]ranches.Member

	cows    map[string]cows.Cow   // sin hijos; ver tags/notes/medical
	tags    map[string][]cows.Tag // cowID → tags, en orden de inserción
	notes   map[string][]cows.Note
	medical map[string][]cows.MedicalIssue

	// tagIndex es el "unique (ranch, number)": número normalizado → vaca.
	tagIndex map[string]map[string]string

	pastures map[string]pastures.Pasture
	billing  map[string]billing.Billing

	breeds     map[string][]string
	medPresets map[string][]string
}

func NewStore() *Store {
	return &Store{
		ranches:    make(map[string]ranches.Ranch),
		members:    make(map[string]ranches.Member),
		cows:       make(map[string]cows.Cow),
		tags:       make(map[string][]cows.Tag),
		notes:      make(map[string][]cows.Note),
		medical:    make(map[string][]cows.MedicalIssue),
		tagIndex:   make(map[string]map[string]string),
		pastures:   make(map[string]pastures.Pasture),
		billing:    make(map[string]billing.Billing),
		breeds:     make(map[string][]string),
		medPresets: make(map[string][]string),
	}
}

// deleteCowLocked saca la vaca y sus filas dependientes. Requiere mu.
func (s *Store) deleteCowLocked(cowID string) {
	c, ok := s.cows[cowID]
	if !ok {
		return
	}
	if idx, ok := s.tagIndex[c.RanchID]; ok {
		for _, t := range s.tags[cowID] {
			n := cows.NormalizeTagNumber(t.Number)
			if idx[n] == cowID {
				delete(idx, n)
			}
		}
	}
	delete(s.tags, cowID)
	delete(s.notes, cowID)
	delete(s.medical, cowID)
	delete(s.cows, cowID)
}
