package cows

import "context"

// Repository refleja el contrato del store remoto: CRUD por fila con
// filtros de igualdad, SIN transacciones multi-fila. La consistencia
// vaca↔tags la garantiza el Service con compensación (ver service.go).
type Repository interface {
	// Create inserta solo la fila de la vaca (sin tags).
	Create(ctx context.Context, c Cow) error

	// UpdateFields actualiza los campos escalares (no toca tags/notas).
	UpdateFields(ctx context.Context, c Cow) error

	// Delete borra la vaca y sus filas dependientes (tags, notas, medical).
	Delete(ctx context.Context, id string) error

	// GetByID devuelve la vaca con tags, notas y medical issues cargados.
	GetByID(ctx context.Context, id string) (Cow, error)

	// ListByRanch devuelve el ganado en orden de creación descendente.
	ListByRanch(ctx context.Context, ranchID string) ([]Cow, error)

	CountByRanch(ctx context.Context, ranchID string) (int, error)

	// InsertTags inserta el set de tags de una vaca. El store aplica el
	// unique (ranch, number); una violación se devuelve como
	// *DuplicateTagError con el número y la vaca que ya lo tiene.
	InsertTags(ctx context.Context, ranchID, cowID string, tags []Tag) error

	// DeleteTags borra todos los tags de la vaca.
	DeleteTags(ctx context.Context, ranchID, cowID string) error

	// ListTagsByRanch devuelve todos los tags del ranch (para pre-check
	// de duplicados y resolución de linaje).
	ListTagsByRanch(ctx context.Context, ranchID string) ([]RanchTag, error)

	// AddNote agrega la nota y actualiza updated_at de la vaca.
	AddNote(ctx context.Context, cowID string, n Note) error

	// AddMedicalIssue agrega el issue y actualiza updated_at de la vaca.
	AddMedicalIssue(ctx context.Context, cowID string, m MedicalIssue) error

	// SearchMedical devuelve ids de vacas del ranch con algún issue cuyo
	// label contiene query (substring, case-insensitive).
	SearchMedical(ctx context.Context, ranchID, query string) ([]string, error)

	// Presets por ranch, deduplicados por el adapter.
	ListBreedPresets(ctx context.Context, ranchID string) ([]string, error)
	AddBreedPreset(ctx context.Context, ranchID, name string) error
	ListMedicalPresets(ctx context.Context, ranchID string) ([]string, error)
	AddMedicalPreset(ctx context.Context, ranchID, label string) error
}
