package generator

import (
	"context"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{NumPeople: 50, NumContacts: 120, InfectionRate: 0.1, Seed: 7}

	first, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(first.People) != 50 || len(first.Contacts) != 120 {
		t.Fatalf("unexpected sizes: %d people, %d contacts", len(first.People), len(first.Contacts))
	}
	for i := range first.People {
		if first.People[i] != second.People[i] {
			t.Fatalf("people diverge at %d with identical seed", i)
		}
	}
	for i := range first.Contacts {
		if first.Contacts[i] != second.Contacts[i] {
			t.Fatalf("contacts diverge at %d with identical seed", i)
		}
	}
}

func TestGenerateContactsAreValid(t *testing.T) {
	dataset, err := New(Config{NumPeople: 30, NumContacts: 100, Seed: 3}).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	known := make(map[string]struct{}, len(dataset.People))
	for _, p := range dataset.People {
		known[p.ID] = struct{}{}
	}

	seen := make(map[[2]string]struct{}, len(dataset.Contacts))
	for _, c := range dataset.Contacts {
		if c.From == c.To {
			t.Errorf("self contact %s", c.From)
		}
		if _, ok := known[c.From]; !ok {
			t.Errorf("contact references unknown person %s", c.From)
		}
		if _, ok := known[c.To]; !ok {
			t.Errorf("contact references unknown person %s", c.To)
		}
		key := [2]string{c.From, c.To}
		if c.From > c.To {
			key = [2]string{c.To, c.From}
		}
		if _, dup := seen[key]; dup {
			t.Errorf("duplicate contact pair %v", key)
		}
		seen[key] = struct{}{}
	}
}

func TestGenerateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Config{NumPeople: 10, NumContacts: 10, Seed: 1}).Generate(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
