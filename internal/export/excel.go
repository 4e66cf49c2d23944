package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"ranchbook/internal/domain/cows"
	"ranchbook/internal/platform/metrics"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Herd"

var headers = []string{
	"Primary Tag", "All Tags", "Status", "Breed", "Born",
	"Pasture", "Description", "Notes", "Photos", "Added",
}

// widths en caracteres, una por columna, mismas que el export original.
var widths = []float64{15, 30, 10, 15, 10, 15, 30, 40, 8, 12}

// Filename arma el nombre de descarga con la fecha del día.
func Filename(now time.Time) string {
	return fmt.Sprintf("RanchBook_Herd_%s.xlsx", now.Format("2006-01-02"))
}

// BuildWorkbook vuelca el ganado a un workbook de una hoja. pastureNames
// mapea id → nombre; ids desconocidos (pasturas borradas) quedan en blanco.
func BuildWorkbook(herd []cows.Cow, pastureNames map[string]string) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return nil, err
		}
	}

	for rowIdx, c := range herd {
		row := toRow(c, pastureNames)
		for colIdx, v := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	metrics.ObserveExportRows(len(herd))
	return f, nil
}

func toRow(c cows.Cow, pastureNames map[string]string) []any {
	return []any{
		c.PrimaryTag(),
		allTags(c),
		strings.ToUpper(string(c.Status)),
		c.Breed,
		born(c),
		pastureNames[c.PastureID],
		c.Description,
		notes(c),
		len(c.Photos),
		c.CreatedAt.Format("2006-01-02"),
	}
}

// allTags: "label: number" separado por coma, en el orden guardado.
func allTags(c cows.Cow) string {
	parts := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		parts = append(parts, fmt.Sprintf("%s: %s", t.Label, t.Number))
	}
	return strings.Join(parts, ", ")
}

// born: "MM/YYYY"; vacío si no se conoce el año.
func born(c cows.Cow) string {
	if c.BirthYear == 0 {
		return ""
	}
	if c.BirthMonth == 0 {
		return fmt.Sprintf("%d", c.BirthYear)
	}
	return fmt.Sprintf("%02d/%d", c.BirthMonth, c.BirthYear)
}

// notes: "YYYY-MM-DD: texto" por nota, más viejas primero, unidas con " | ".
func notes(c cows.Cow) string {
	ns := make([]cows.Note, len(c.Notes))
	copy(ns, c.Notes)
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].CreatedAt.Before(ns[j].CreatedAt)
	})

	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, fmt.Sprintf("%s: %s", n.CreatedAt.Format("2006-01-02"), n.Text))
	}
	return strings.Join(parts, " | ")
}
