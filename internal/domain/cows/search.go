package cows

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// El store no ofrece full-text en esta configuración: la búsqueda es
// client-side sobre el fetch del ranch, más un query aparte para issues
// médicos que se mergea al final.

// dateRangeRe: exactamente MM/YYYY-MM/YYYY, whitespace alrededor
// opcional, separador guión o en-dash. Cualquier otra cosa (incluso un
// near-miss con un dígito de menos) NO es rango y cae a texto plano.
var dateRangeRe = regexp.MustCompile(`^\s*(\d{2})/(\d{4})\s*[-–]\s*(\d{2})/(\d{4})\s*$`)

// DateRange es un par comparable year*100+month.
type DateRange struct {
	From int
	To   int
}

// ParseDateRange parsea "MM/YYYY-MM/YYYY". ok=false si no matchea la
// forma exacta o algún mes está fuera de 1-12.
func ParseDateRange(query string) (DateRange, bool) {
	m := dateRangeRe.FindStringSubmatch(query)
	if m == nil {
		return DateRange{}, false
	}

	fromMonth := atoi2(m[1])
	fromYear := atoi4(m[2])
	toMonth := atoi2(m[3])
	toYear := atoi4(m[4])

	if fromMonth < 1 || fromMonth > 12 || toMonth < 1 || toMonth > 12 {
		return DateRange{}, false
	}

	return DateRange{
		From: fromYear*100 + fromMonth,
		To:   toYear*100 + toMonth,
	}, true
}

// Matches: vacas sin mes O año de nacimiento nunca matchean.
func (r DateRange) Matches(c Cow) bool {
	if c.BirthMonth == 0 || c.BirthYear == 0 {
		return false
	}
	v := c.BirthYear*100 + c.BirthMonth
	return v >= r.From && v <= r.To
}

// textMatch: substring case-insensitive contra números de tag, nombre,
// status, raza, descripción, nombre del pasture asignado y texto de notas.
func textMatch(c Cow, pastureName, q string) bool {
	for _, t := range c.Tags {
		if containsFold(t.Number, q) {
			return true
		}
	}
	if containsFold(c.Name, q) ||
		containsFold(string(c.Status), q) ||
		containsFold(c.Breed, q) ||
		containsFold(c.Description, q) ||
		containsFold(pastureName, q) {
		return true
	}
	for _, n := range c.Notes {
		if containsFold(n.Text, q) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Search aplica la búsqueda sobre el ganado del ranch:
// - query con forma de rango de fechas => filtro por mes/año de nacimiento
// - cualquier otro query => texto + merge de matches médicos
// El orden del resultado es el del fetch (creación descendente), no por
// relevancia; los matches solo-médicos van appendeados al final.
func (s *Service) Search(ctx context.Context, ranchID, query string) ([]Cow, error) {
	ranchID = strings.TrimSpace(ranchID)
	if ranchID == "" {
		return nil, ErrInvalidInput
	}

	herd, err := s.repo.ListByRanch(ctx, ranchID)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return herd, nil
	}

	if dr, ok := ParseDateRange(query); ok {
		out := make([]Cow, 0)
		for _, c := range herd {
			if dr.Matches(c) {
				out = append(out, c)
			}
		}
		return out, nil
	}

	// nombres de pasture para el predicado (best-effort: sin lookup,
	// la búsqueda simplemente no matchea por pasture)
	pastureNames := map[string]string{}
	if s.pastures != nil {
		if names, err := s.pastures.NamesByRanch(ctx, ranchID); err == nil {
			pastureNames = names
		}
	}

	out := make([]Cow, 0)
	seen := map[string]struct{}{}
	for _, c := range herd {
		if textMatch(c, pastureNames[c.PastureID], query) {
			out = append(out, c)
			seen[c.ID] = struct{}{}
		}
	}

	// merge médico: ids del query al store, dedup por id, texto primero
	medIDs, err := s.repo.SearchMedical(ctx, ranchID, query)
	if err != nil {
		// la búsqueda de texto sigue sirviendo sola
		return out, nil
	}
	medSet := make(map[string]struct{}, len(medIDs))
	for _, id := range medIDs {
		medSet[id] = struct{}{}
	}
	for _, c := range herd {
		if _, isMed := medSet[c.ID]; !isMed {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		out = append(out, c)
		seen[c.ID] = struct{}{}
	}

	return out, nil
}

// SortCows ordena in-place, estable, por la key pedida. Timestamps
// faltantes cuentan como epoch 0.
func SortCows(herd []Cow, key SortKey) {
	ts := func(c Cow, updated bool) int64 {
		t := c.CreatedAt
		if updated {
			t = c.UpdatedAt
		}
		if t.IsZero() {
			return 0
		}
		return t.UnixNano()
	}

	switch key {
	case SortNewest:
		sort.SliceStable(herd, func(i, j int) bool { return ts(herd[i], false) > ts(herd[j], false) })
	case SortOldest:
		sort.SliceStable(herd, func(i, j int) bool { return ts(herd[i], false) < ts(herd[j], false) })
	case SortLastUpdated:
		sort.SliceStable(herd, func(i, j int) bool { return ts(herd[i], true) > ts(herd[j], true) })
	case SortLeastUpdated:
		sort.SliceStable(herd, func(i, j int) bool { return ts(herd[i], true) < ts(herd[j], true) })
	}
}

// helpers sin strconv para no aceptar signos/espacios que la regex ya excluyó
func atoi2(s string) int { return int(s[0]-'0')*10 + int(s[1]-'0') }
func atoi4(s string) int {
	return int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
}
