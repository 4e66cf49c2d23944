package cows

import (
	"context"
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	cases := []struct {
		query string
		ok    bool
		from  int
		to    int
	}{
		{"02/2024-06/2025", true, 202402, 202506},
		{"  02/2024 - 06/2025  ", true, 202402, 202506},
		{"02/2024–06/2025", true, 202402, 202506}, // en-dash
		{"2/2024-06/2025", false, 0, 0},           // near-miss: un dígito
		{"13/2024-06/2025", false, 0, 0},          // mes inválido
		{"02/2024-00/2025", false, 0, 0},
		{"angus", false, 0, 0},
		{"02/2024", false, 0, 0},
	}

	for _, tc := range cases {
		dr, ok := ParseDateRange(tc.query)
		if ok != tc.ok {
			t.Fatalf("ParseDateRange(%q): ok=%v, expected %v", tc.query, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if dr.From != tc.from || dr.To != tc.to {
			t.Fatalf("ParseDateRange(%q) = %d-%d, expected %d-%d",
				tc.query, dr.From, dr.To, tc.from, tc.to)
		}
	}
}

func TestDateRange_Matches_UnknownBirthNeverMatches(t *testing.T) {
	dr, _ := ParseDateRange("01/2020-12/2030")

	if dr.Matches(Cow{BirthMonth: 0, BirthYear: 2024}) {
		t.Fatalf("missing month should never match")
	}
	if dr.Matches(Cow{BirthMonth: 3, BirthYear: 0}) {
		t.Fatalf("missing year should never match")
	}
	if !dr.Matches(Cow{BirthMonth: 3, BirthYear: 2024}) {
		t.Fatalf("3/2024 should match 01/2020-12/2030")
	}
}

func seedSearchHerd(t *testing.T, svc *Service) (inRange, outOfRange, medOnly Cow) {
	t.Helper()
	ctx := context.Background()

	var err error
	inRange, err = svc.Create(ctx, "ranch-1", CreateInput{
		Name:       "Bella",
		Status:     "wet",
		Breed:      "Angus",
		BirthMonth: 3,
		BirthYear:  2024,
		Tags:       []TagInput{{Number: "101"}},
	})
	if err != nil {
		t.Fatalf("seed #1: %v", err)
	}

	outOfRange, err = svc.Create(ctx, "ranch-1", CreateInput{
		Status:     "dry",
		Breed:      "Hereford",
		BirthMonth: 1,
		BirthYear:  2024,
		Tags:       []TagInput{{Number: "202"}},
	})
	if err != nil {
		t.Fatalf("seed #2: %v", err)
	}

	medOnly, err = svc.Create(ctx, "ranch-1", CreateInput{
		Status: "bull",
		Tags:   []TagInput{{Number: "303"}},
	})
	if err != nil {
		t.Fatalf("seed #3: %v", err)
	}
	if _, err := svc.AddMedicalIssue(ctx, medOnly.ID, "foot rot"); err != nil {
		t.Fatalf("seed medical: %v", err)
	}
	return inRange, outOfRange, medOnly
}

func TestService_Search_DateRange(t *testing.T) {
	svc := newTestService(newTestRepo())
	inRange, _, _ := seedSearchHerd(t, svc)

	got, err := svc.Search(context.Background(), "ranch-1", "02/2024-06/2025")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 1 || got[0].ID != inRange.ID {
		t.Fatalf("expected only the 3/2024 cow, got %d results", len(got))
	}
}

func TestService_Search_NearMissDateFallsToText(t *testing.T) {
	svc := newTestService(newTestRepo())
	seedSearchHerd(t, svc)

	// "2/2024-06/2025" no es rango válido: va a texto y no matchea nada
	got, err := svc.Search(context.Background(), "ranch-1", "2/2024-06/2025")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no text matches for near-miss range, got %d", len(got))
	}
}

func TestService_Search_TextFields(t *testing.T) {
	svc := newTestService(newTestRepo())
	inRange, outOfRange, _ := seedSearchHerd(t, svc)

	byTag, _ := svc.Search(context.Background(), "ranch-1", "101")
	if len(byTag) != 1 || byTag[0].ID != inRange.ID {
		t.Fatalf("expected tag match, got %d results", len(byTag))
	}

	byBreed, _ := svc.Search(context.Background(), "ranch-1", "hereford")
	if len(byBreed) != 1 || byBreed[0].ID != outOfRange.ID {
		t.Fatalf("expected case-insensitive breed match, got %d results", len(byBreed))
	}
}

func TestService_Search_MergesMedicalMatches(t *testing.T) {
	svc := newTestService(newTestRepo())
	_, _, medOnly := seedSearchHerd(t, svc)

	got, err := svc.Search(context.Background(), "ranch-1", "foot rot")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 1 || got[0].ID != medOnly.ID {
		t.Fatalf("expected medical-only match appended, got %d results", len(got))
	}
}

func TestSortCows(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	herd := []Cow{
		{ID: "a", CreatedAt: t1, UpdatedAt: t3},
		{ID: "b", CreatedAt: t2, UpdatedAt: t2},
		{ID: "c", CreatedAt: t3}, // UpdatedAt cero => epoch 0
	}

	SortCows(herd, SortNewest)
	if herd[0].ID != "c" || herd[2].ID != "a" {
		t.Fatalf("newest: expected c..a, got %s..%s", herd[0].ID, herd[2].ID)
	}

	SortCows(herd, SortOldest)
	if herd[0].ID != "a" || herd[2].ID != "c" {
		t.Fatalf("oldest: expected a..c, got %s..%s", herd[0].ID, herd[2].ID)
	}

	SortCows(herd, SortLastUpdated)
	if herd[0].ID != "a" || herd[2].ID != "c" {
		t.Fatalf("lastUpdated: expected a first (t3) and c last (zero), got %s..%s",
			herd[0].ID, herd[2].ID)
	}

	SortCows(herd, SortLeastUpdated)
	if herd[0].ID != "c" {
		t.Fatalf("leastUpdated: expected c first (zero timestamp), got %s", herd[0].ID)
	}
}
