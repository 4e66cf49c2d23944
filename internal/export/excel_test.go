package export

import (
	"testing"
	"time"

	"ranchbook/internal/domain/cows"
)

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	if got := Filename(now); got != "RanchBook_Herd_2026-03-15.xlsx" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestBuildWorkbook(t *testing.T) {
	created := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	note1 := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	note2 := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)

	herd := []cows.Cow{
		{
			ID:          "cow-1",
			RanchID:     "ranch-1",
			Name:        "Bella",
			Description: "good mother",
			Status:      "wet",
			Breed:       "Angus",
			BirthMonth:  3,
			BirthYear:   2024,
			PastureID:   "p-1",
			Photos:      []string{"a.jpg", "b.jpg"},
			Tags: []cows.Tag{
				{ID: "t-1", Label: "ear tag", Number: "101"},
				{ID: "t-2", Label: "RFID", Number: "900123"},
			},
			Notes: []cows.Note{
				{ID: "n-1", Text: "weaned", CreatedAt: note1},
				{ID: "n-2", Text: "vaccinated", CreatedAt: note2},
			},
			CreatedAt: created,
		},
		{
			ID:        "cow-2",
			RanchID:   "ranch-1",
			Status:    "bull",
			Tags:      []cows.Tag{{ID: "t-3", Label: "brand", Number: "B7"}},
			CreatedAt: created,
		},
	}

	f, err := BuildWorkbook(herd, map[string]string{"p-1": "North Forty"})
	if err != nil {
		t.Fatalf("BuildWorkbook error: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Herd" {
		t.Fatalf("expected single sheet Herd, got %v", sheets)
	}

	cell := func(ref string) string {
		t.Helper()
		v, err := f.GetCellValue("Herd", ref)
		if err != nil {
			t.Fatalf("GetCellValue %s: %v", ref, err)
		}
		return v
	}

	if cell("A1") != "Primary Tag" || cell("J1") != "Added" {
		t.Fatalf("unexpected header row: A1=%q J1=%q", cell("A1"), cell("J1"))
	}

	// fila de Bella
	if cell("A2") != "101" {
		t.Fatalf("expected primary tag 101, got %q", cell("A2"))
	}
	if cell("B2") != "ear tag: 101, RFID: 900123" {
		t.Fatalf("unexpected all-tags cell %q", cell("B2"))
	}
	if cell("C2") != "WET" {
		t.Fatalf("expected uppercased status, got %q", cell("C2"))
	}
	if cell("E2") != "03/2024" {
		t.Fatalf("expected born 03/2024, got %q", cell("E2"))
	}
	if cell("F2") != "North Forty" {
		t.Fatalf("expected pasture name, got %q", cell("F2"))
	}
	// notas: más viejas primero
	if cell("H2") != "2026-01-20: vaccinated | 2026-02-01: weaned" {
		t.Fatalf("unexpected notes cell %q", cell("H2"))
	}
	if cell("I2") != "2" {
		t.Fatalf("expected photo count 2, got %q", cell("I2"))
	}
	if cell("J2") != "2026-01-10" {
		t.Fatalf("expected added date, got %q", cell("J2"))
	}

	// segunda vaca: sin nacimiento ni pasture => celdas vacías
	if cell("E3") != "" || cell("F3") != "" {
		t.Fatalf("expected empty born/pasture, got %q / %q", cell("E3"), cell("F3"))
	}
	if cell("I3") != "0" {
		t.Fatalf("expected photo count 0, got %q", cell("I3"))
	}
}
