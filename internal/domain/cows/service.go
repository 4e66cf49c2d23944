package cows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ranchbook/internal/platform/metrics"

	"github.com/google/uuid"
)

// PastureNameLookup evita importar el paquete pastures desde acá
// (mismo truco que MembershipLookup en handler.go).
type PastureNameLookup interface {
	NamesByRanch(ctx context.Context, ranchID string) (map[string]string, error)
}

type Service struct {
	repo     Repository
	pastures PastureNameLookup // puede ser nil (dev/tests): búsqueda ignora pasture
	now      func() time.Time
}

func NewService(repo Repository, pastures PastureNameLookup) *Service {
	return &Service{
		repo:     repo,
		pastures: pastures,
		now:      time.Now,
	}
}

type TagInput struct {
	Label  string
	Number string
}

type CreateInput struct {
	Name        string
	Description string
	Status      string
	Breed       string
	BirthMonth  int
	BirthYear   int
	PastureID   string
	Photos      []string
	MotherTag   string
	Tags        []TagInput
}

// Create inserta una vaca nueva garantizando el unique de tags del ranch:
// (1) pre-check contra los tags existentes (error accionable, sin escribir),
// (2) insert de la fila de la vaca,
// (3) insert de tags con delete compensatorio si el store detecta la race.
// En éxito quedan vaca+tags consistentes; en fallo no queda vaca parcial.
func (s *Service) Create(ctx context.Context, ranchID string, in CreateInput) (Cow, error) {
	ranchID = strings.TrimSpace(ranchID)
	if ranchID == "" {
		return Cow{}, ErrInvalidInput
	}

	status := Status(strings.TrimSpace(in.Status))
	if !status.Valid() {
		return Cow{}, ErrInvalidInput
	}
	if in.BirthMonth != 0 && (in.BirthMonth < 1 || in.BirthMonth > 12) {
		return Cow{}, ErrInvalidInput
	}

	tags, err := cleanTags(in.Tags)
	if err != nil {
		return Cow{}, err
	}

	// (1) pre-check: ¿algún número ya existe en el ranch?
	if err := s.precheckDuplicates(ctx, ranchID, tags, ""); err != nil {
		return Cow{}, err
	}

	now := s.now()
	c := Cow{
		ID:          uuid.NewString(),
		RanchID:     ranchID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Breed:       strings.TrimSpace(in.Breed),
		BirthMonth:  in.BirthMonth,
		BirthYear:   in.BirthYear,
		PastureID:   strings.TrimSpace(in.PastureID),
		Photos:      in.Photos,
		MotherTag:   strings.TrimSpace(in.MotherTag),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range tags {
		tags[i].ID = uuid.NewString()
		tags[i].CowID = c.ID
	}

	// (2) fila de la vaca
	if err := s.repo.Create(ctx, c); err != nil {
		return Cow{}, err
	}

	// (3) tags, con compensación
	if err := s.insertTagsGuarded(ctx, ranchID, c.ID, tags); err != nil {
		return Cow{}, err
	}
	c.Tags = tags

	// preset de raza ad-hoc (best-effort, no afecta el resultado)
	if c.Breed != "" {
		_ = s.repo.AddBreedPreset(ctx, ranchID, c.Breed)
	}

	return c, nil
}

type UpdateInput struct {
	// Punteros: nil = no tocar. String vacío / 0 = limpiar el campo.
	Name        *string
	Description *string
	Status      *string
	Breed       *string
	BirthMonth  *int
	BirthYear   *int
	PastureID   *string
	Photos      *[]string
	MotherTag   *string

	// Tags presente = reemplazo completo del set. Números en blanco se
	// descartan ("sacar este tag" desde la UI de edición).
	Tags *[]TagInput
}

// Update actualiza campos escalares y, si vienen, los tags.
// OJO: los campos escalares commitean ANTES del paso de tags y no se
// revierten si ese paso falla — asimetría heredada y deliberada.
// Los tags sí son todo-o-nada: snapshot + restore en fallo, la vaca
// nunca queda con cero tags ni pierde su set anterior.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Cow, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cow{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Cow{}, ErrNotFound
	}

	// Validación de tags ANTES de escribir nada.
	var newTags []Tag
	if in.Tags != nil {
		newTags, err = cleanTags(*in.Tags)
		if err != nil {
			return Cow{}, err
		}
	}

	changed := false
	if in.Name != nil {
		current.Name = strings.TrimSpace(*in.Name)
		changed = true
	}
	if in.Description != nil {
		current.Description = strings.TrimSpace(*in.Description)
		changed = true
	}
	if in.Status != nil {
		status := Status(strings.TrimSpace(*in.Status))
		if !status.Valid() {
			return Cow{}, ErrInvalidInput
		}
		current.Status = status
		changed = true
	}
	if in.Breed != nil {
		current.Breed = strings.TrimSpace(*in.Breed)
		changed = true
	}
	if in.BirthMonth != nil {
		if *in.BirthMonth != 0 && (*in.BirthMonth < 1 || *in.BirthMonth > 12) {
			return Cow{}, ErrInvalidInput
		}
		current.BirthMonth = *in.BirthMonth
		changed = true
	}
	if in.BirthYear != nil {
		current.BirthYear = *in.BirthYear
		changed = true
	}
	if in.PastureID != nil {
		current.PastureID = strings.TrimSpace(*in.PastureID)
		changed = true
	}
	if in.Photos != nil {
		current.Photos = *in.Photos
		changed = true
	}
	if in.MotherTag != nil {
		current.MotherTag = strings.TrimSpace(*in.MotherTag)
		changed = true
	}

	if changed || in.Tags != nil {
		current.UpdatedAt = s.now()
	}
	if changed {
		if err := s.repo.UpdateFields(ctx, current); err != nil {
			return Cow{}, err
		}
	}

	if in.Tags != nil {
		if err := s.replaceTagsGuarded(ctx, &current, newTags); err != nil {
			return Cow{}, err
		}
		// updated_at de la vaca aunque solo hayan cambiado tags
		if !changed {
			_ = s.repo.UpdateFields(ctx, current)
		}
	}

	return current, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Cow, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cow{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByRanch(ctx context.Context, ranchID string) ([]Cow, error) {
	ranchID = strings.TrimSpace(ranchID)
	if ranchID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRanch(ctx, ranchID)
}

// CountByRanch se expone para el gate de billing (tier vs cantidad).
func (s *Service) CountByRanch(ctx context.Context, ranchID string) (int, error) {
	return s.repo.CountByRanch(ctx, ranchID)
}

// AddNote agrega una nota append-only.
func (s *Service) AddNote(ctx context.Context, cowID, text string) (Note, error) {
	cowID = strings.TrimSpace(cowID)
	text = strings.TrimSpace(text)
	if cowID == "" || text == "" {
		return Note{}, ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, cowID); err != nil {
		return Note{}, ErrNotFound
	}

	n := Note{
		ID:        uuid.NewString(),
		CowID:     cowID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddNote(ctx, cowID, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

// AddMedicalIssue agrega un issue y auto-puebla el preset reutilizable.
func (s *Service) AddMedicalIssue(ctx context.Context, cowID, label string) (MedicalIssue, error) {
	cowID = strings.TrimSpace(cowID)
	label = strings.TrimSpace(label)
	if cowID == "" || label == "" {
		return MedicalIssue{}, ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, cowID)
	if err != nil {
		return MedicalIssue{}, ErrNotFound
	}

	m := MedicalIssue{
		ID:        uuid.NewString(),
		CowID:     cowID,
		Label:     label,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddMedicalIssue(ctx, cowID, m); err != nil {
		return MedicalIssue{}, err
	}

	// preset deduplicado, best-effort
	_ = s.repo.AddMedicalPreset(ctx, c.RanchID, label)

	return m, nil
}

func (s *Service) BreedPresets(ctx context.Context, ranchID string) ([]string, error) {
	return s.repo.ListBreedPresets(ctx, strings.TrimSpace(ranchID))
}

func (s *Service) MedicalPresets(ctx context.Context, ranchID string) ([]string, error) {
	return s.repo.ListMedicalPresets(ctx, strings.TrimSpace(ranchID))
}

// -------------------------
// Inserts con compensación
// -------------------------

// insertTagsGuarded inserta los tags de una vaca recién creada. Si el
// store rechaza por el unique (otra escritura ganó la race entre el
// pre-check y acá), borra la vaca recién creada (acción compensatoria:
// el store no ofrece transacciones multi-fila) y devuelve el
// DuplicateTagError reconstruido desde la señal del constraint.
func (s *Service) insertTagsGuarded(ctx context.Context, ranchID, cowID string, tags []Tag) error {
	err := s.repo.InsertTags(ctx, ranchID, cowID, tags)
	if err == nil {
		return nil
	}

	_ = s.repo.Delete(ctx, cowID)

	if dup, ok := IsDuplicateTag(err); ok {
		metrics.ObserveDuplicateTag("race")
		return dup
	}
	return fmt.Errorf("insert tags: %w", err)
}

// replaceTagsGuarded reemplaza el set de tags de una vaca existente:
// pre-check excluyendo a la propia vaca, snapshot del set actual,
// delete+insert, y restore verbatim del snapshot si el insert falla.
func (s *Service) replaceTagsGuarded(ctx context.Context, c *Cow, newTags []Tag) error {
	if err := s.precheckDuplicates(ctx, c.RanchID, newTags, c.ID); err != nil {
		return err
	}

	for i := range newTags {
		newTags[i].ID = uuid.NewString()
		newTags[i].CowID = c.ID
	}

	snapshot := c.Tags

	if err := s.repo.DeleteTags(ctx, c.RanchID, c.ID); err != nil {
		return fmt.Errorf("delete tags: %w", err)
	}

	err := s.repo.InsertTags(ctx, c.RanchID, c.ID, newTags)
	if err == nil {
		c.Tags = newTags
		return nil
	}

	// restore: limpiar lo que haya entrado parcial y reponer el snapshot
	_ = s.repo.DeleteTags(ctx, c.RanchID, c.ID)
	_ = s.repo.InsertTags(ctx, c.RanchID, c.ID, snapshot)

	if dup, ok := IsDuplicateTag(err); ok {
		metrics.ObserveDuplicateTag("race")
		return dup
	}
	return fmt.Errorf("insert tags: %w", err)
}

// precheckDuplicates consulta los tags del ranch y falla con el error
// estructurado si algún número entrante ya tiene dueño (excluyendo
// excludeCowID, la vaca en edición).
func (s *Service) precheckDuplicates(ctx context.Context, ranchID string, tags []Tag, excludeCowID string) error {
	existing, err := s.repo.ListTagsByRanch(ctx, ranchID)
	if err != nil {
		return err
	}

	index := make(map[string]string, len(existing)) // número → cow id
	for _, t := range existing {
		if t.CowID == excludeCowID {
			continue
		}
		index[NormalizeTagNumber(t.Number)] = t.CowID
	}

	for _, t := range tags {
		if holder, ok := index[NormalizeTagNumber(t.Number)]; ok {
			metrics.ObserveDuplicateTag("precheck")
			return &DuplicateTagError{Number: NormalizeTagNumber(t.Number), CowID: holder}
		}
	}
	return nil
}

// cleanTags normaliza números, descarta los blancos, valida labels y
// exige al menos un tag sobreviviente. También rechaza duplicados
// dentro del mismo set entrante (dos tags de la misma vaca tampoco
// pueden compartir número).
func cleanTags(in []TagInput) ([]Tag, error) {
	out := make([]Tag, 0, len(in))
	seen := map[string]struct{}{}

	for _, t := range in {
		number := NormalizeTagNumber(t.Number)
		if number == "" {
			continue
		}

		label := TagLabel(strings.TrimSpace(t.Label))
		if label == "" {
			label = LabelEarTag // default del formulario original
		}
		if !label.Valid() {
			return nil, ErrInvalidInput
		}

		if _, dup := seen[number]; dup {
			return nil, &DuplicateTagError{Number: number}
		}
		seen[number] = struct{}{}

		out = append(out, Tag{Label: label, Number: number})
	}

	if len(out) == 0 {
		return nil, ErrAtLeastOneTag
	}
	return out, nil
}
