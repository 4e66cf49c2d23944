package cows

import (
	"strings"
	"time"
)

// Tag pertenece a exactamente una vaca. El número es texto libre, único
// dentro del ranch (a través de TODAS las vacas y todos sus tags).
type Tag struct {
	ID    string
	CowID string

	Label  TagLabel
	Number string
}

// Note es texto libre append-only (la UI no expone edit/delete).
type Note struct {
	ID    string
	CowID string

	Text      string
	CreatedAt time.Time
}

// MedicalIssue es una etiqueta médica de texto libre sobre una vaca.
type MedicalIssue struct {
	ID    string
	CowID string

	Label     string
	CreatedAt time.Time
}

// Cow es el registro central. Tags es composición (la vaca es dueña
// exclusiva de sus tags y notas), siempre con al menos un tag.
type Cow struct {
	ID      string
	RanchID string

	Name        string
	Description string
	Status      Status
	Breed       string

	BirthMonth int // 1-12; 0 = desconocido
	BirthYear  int // 0 = desconocido

	PastureID string
	Photos    []string

	// MotherTag es un número de tag en texto plano, NO una referencia.
	// No se valida al escribir; se resuelve lazy al leer (ver lineage.go).
	// Re-taggear a la madre deja huérfana esta referencia — gap conocido.
	MotherTag string

	Tags          []Tag
	Notes         []Note
	MedicalIssues []MedicalIssue

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RanchTag es la vista (número de tag → vaca dueña) usada por el
// pre-check de duplicados y el índice de linaje.
type RanchTag struct {
	CowID  string
	Label  TagLabel
	Number string
}

// NormalizeTagNumber es EL punto único de comparación de números de tag:
// trim de whitespace, case-sensitive. Si algún día se decide colapsar
// mayúsculas/minúsculas (hoy "A123" y "a123" NO chocan), se cambia acá.
func NormalizeTagNumber(n string) string {
	return strings.TrimSpace(n)
}

// PrimaryTag devuelve el número del primer tag, o "".
func (c Cow) PrimaryTag() string {
	if len(c.Tags) == 0 {
		return ""
	}
	return c.Tags[0].Number
}

// TagNumbers devuelve los números (ya normalizados) de todos los tags.
func (c Cow) TagNumbers() []string {
	out := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		out = append(out, NormalizeTagNumber(t.Number))
	}
	return out
}
