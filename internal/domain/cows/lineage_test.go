package cows

import (
	"context"
	"errors"
	"testing"
)

func TestService_ResolveByTag(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, "ranch-1", CreateInput{
		Status: "wet",
		Tags:   []TagInput{{Number: "101"}, {Label: "RFID", Number: "900123"}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := svc.ResolveByTag(ctx, "ranch-1", " 900123 ")
	if err != nil {
		t.Fatalf("ResolveByTag error: %v", err)
	}
	if got.ID != c.ID {
		t.Fatalf("expected cow %s, got %s", c.ID, got.ID)
	}

	if _, err := svc.ResolveByTag(ctx, "ranch-1", "999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown tag, got %v", err)
	}
}

func TestService_MotherAndCalves(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	mother, err := svc.Create(ctx, "ranch-1", CreateInput{
		Status: "wet",
		Tags:   []TagInput{{Number: "101"}},
	})
	if err != nil {
		t.Fatalf("Create mother error: %v", err)
	}

	calf1, err := svc.Create(ctx, "ranch-1", CreateInput{
		Status:    "bred",
		MotherTag: " 101 ",
		Tags:      []TagInput{{Number: "201"}},
	})
	if err != nil {
		t.Fatalf("Create calf1 error: %v", err)
	}
	calf2, err := svc.Create(ctx, "ranch-1", CreateInput{
		Status:    "steer",
		MotherTag: "101",
		Tags:      []TagInput{{Number: "202"}},
	})
	if err != nil {
		t.Fatalf("Create calf2 error: %v", err)
	}

	// madre desde el ternero
	got, err := svc.Mother(ctx, calf1.ID)
	if err != nil {
		t.Fatalf("Mother error: %v", err)
	}
	if got.ID != mother.ID {
		t.Fatalf("expected mother %s, got %s", mother.ID, got.ID)
	}

	// terneros desde la madre
	calves, err := svc.Calves(ctx, mother.ID)
	if err != nil {
		t.Fatalf("Calves error: %v", err)
	}
	if len(calves) != 2 {
		t.Fatalf("expected 2 calves, got %d", len(calves))
	}
	found := map[string]bool{}
	for _, c := range calves {
		found[c.ID] = true
	}
	if !found[calf1.ID] || !found[calf2.ID] {
		t.Fatalf("expected both calves, got %#v", found)
	}
}

func TestService_Calves_OrphanedAfterRetag(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	mother, err := svc.Create(ctx, "ranch-1", CreateInput{
		Status: "wet",
		Tags:   []TagInput{{Number: "101"}},
	})
	if err != nil {
		t.Fatalf("Create mother error: %v", err)
	}
	calf, err := svc.Create(ctx, "ranch-1", CreateInput{
		Status:    "bred",
		MotherTag: "101",
		Tags:      []TagInput{{Number: "201"}},
	})
	if err != nil {
		t.Fatalf("Create calf error: %v", err)
	}

	// re-taggear a la madre rompe el link: el MotherTag del ternero
	// sigue diciendo "101" pero ya nadie tiene ese número
	retag := []TagInput{{Number: "999"}}
	if _, err := svc.Update(ctx, mother.ID, UpdateInput{Tags: &retag}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	calves, err := svc.Calves(ctx, mother.ID)
	if err != nil {
		t.Fatalf("Calves error: %v", err)
	}
	if len(calves) != 0 {
		t.Fatalf("expected orphaned calf not listed, got %d", len(calves))
	}

	if _, err := svc.Mother(ctx, calf.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound resolving orphaned mother ref, got %v", err)
	}
}

func TestService_Mother_EmptyRef(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, "ranch-1", CreateInput{
		Status: "cull",
		Tags:   []TagInput{{Number: "101"}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Mother(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty mother tag, got %v", err)
	}
}
