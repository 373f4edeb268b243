package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eljog/tracegraph/internal/graphdb"
)

const peopleCSV = `id,name,gender
eljo,Eljo George,Male
merin,Merin,Female
norah,Norah,Female
`

const contactsCSV = `eljo,norah
merin,norah
`

func TestLoadPeople(t *testing.T) {
	store := graphdb.New()
	loader := NewLoader(store, 2)

	count, err := loader.LoadPeople(context.Background(), strings.NewReader(peopleCSV))
	if err != nil {
		t.Fatalf("LoadPeople: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", store.Len())
	}

	node, err := store.QueryByID("Person:eljo")
	if err != nil {
		t.Fatalf("QueryByID: %v", err)
	}
	if name, _ := node.Property("name"); name != "Eljo George" {
		t.Errorf("name = %q", name)
	}

	// Header-named properties must be queryable right after the load.
	females, err := store.QueryExact("Person:gender=Female")
	if err != nil {
		t.Fatalf("QueryExact: %v", err)
	}
	if len(females) != 2 {
		t.Fatalf("expected 2 females, got %d", len(females))
	}
}

func TestLoadContacts(t *testing.T) {
	store := graphdb.New()
	loader := NewLoader(store, 2)

	if _, err := loader.LoadPeople(context.Background(), strings.NewReader(peopleCSV)); err != nil {
		t.Fatalf("LoadPeople: %v", err)
	}
	count, err := loader.LoadContacts(context.Background(), strings.NewReader(contactsCSV))
	if err != nil {
		t.Fatalf("LoadContacts: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	norah, _ := store.QueryByID("Person:norah")
	if norah.Degree() != 2 {
		t.Fatalf("norah degree = %d", norah.Degree())
	}
}

func TestLoadPeopleHeaderValidation(t *testing.T) {
	store := graphdb.New()
	loader := NewLoader(store, 1)

	if _, err := loader.LoadPeople(context.Background(), strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty dataset")
	}

	bad := "name,id\nEljo,eljo\n"
	if _, err := loader.LoadPeople(context.Background(), strings.NewReader(bad)); err == nil {
		t.Fatal("expected error when first column is not id")
	}
	if store.Len() != 0 {
		t.Fatalf("rejected dataset must not create nodes, len=%d", store.Len())
	}
}

func TestLoadContactsUnknownPerson(t *testing.T) {
	store := graphdb.New()
	loader := NewLoader(store, 1)

	if _, err := loader.LoadPeople(context.Background(), strings.NewReader(peopleCSV)); err != nil {
		t.Fatalf("LoadPeople: %v", err)
	}

	_, err := loader.LoadContacts(context.Background(), strings.NewReader("eljo,ghost\nmerin,norah\n"))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if len(loadErr.Errors) != 1 || !errors.Is(loadErr.Errors[0], graphdb.ErrNotFound) {
		t.Fatalf("expected one ErrNotFound, got %v", loadErr.Errors)
	}

	// The valid row must still have been applied.
	norah, _ := store.QueryByID("Person:norah")
	if norah.Degree() != 1 {
		t.Fatalf("norah degree = %d", norah.Degree())
	}
}

func TestLoadPeopleDuplicateID(t *testing.T) {
	store := graphdb.New()
	loader := NewLoader(store, 1)

	dup := "id,name\neljo,Eljo\neljo,Eljo Again\n"
	_, err := loader.LoadPeople(context.Background(), strings.NewReader(dup))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !errors.Is(loadErr.Errors[0], graphdb.ErrDuplicateEntity) {
		t.Fatalf("expected ErrDuplicateEntity, got %v", loadErr.Errors[0])
	}
}
