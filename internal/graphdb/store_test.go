package graphdb

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"testing"
)

func mustAdd(t *testing.T, s *Store, label, id string) {
	t.Helper()
	if err := s.AddNode(label, id); err != nil {
		t.Fatalf("AddNode(%s, %s): %v", label, id, err)
	}
}

func mustSet(t *testing.T, s *Store, qualifier, name, value string) {
	t.Helper()
	if err := s.SetProperty(qualifier, name, value); err != nil {
		t.Fatalf("SetProperty(%s, %s, %s): %v", qualifier, name, value, err)
	}
}

func mustConnect(t *testing.T, s *Store, q1, q2 string) {
	t.Helper()
	if err := s.Connect(q1, q2); err != nil {
		t.Fatalf("Connect(%s, %s): %v", q1, q2, err)
	}
}

func ids(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Label()+":"+n.ID())
	}
	sort.Strings(out)
	return out
}

func TestAddNodeAndQueryByID(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")
	mustAdd(t, s, "Dog", "eljo") // same id, different label

	node, err := s.QueryByID("Person:eljo")
	if err != nil {
		t.Fatalf("QueryByID: %v", err)
	}
	if node.Label() != "Person" || node.ID() != "eljo" {
		t.Fatalf("resolved wrong node: %s", node)
	}

	if err := s.AddNode("Person", "eljo"); !errors.Is(err, ErrDuplicateEntity) {
		t.Fatalf("expected ErrDuplicateEntity, got %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("failed AddNode must not mutate the store, len=%d", s.Len())
	}
}

func TestQueryByIDMisses(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")

	if _, err := s.QueryByID("Person:norah"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.QueryByID("Animal:eljo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown label, got %v", err)
	}
	// A key other than id is not an id lookup.
	if _, err := s.QueryByID("Person:name=eljo"); !errors.Is(err, ErrQuerySyntax) {
		t.Fatalf("expected ErrQuerySyntax, got %v", err)
	}
	if _, err := s.QueryByID("Person"); !errors.Is(err, ErrQuerySyntax) {
		t.Fatalf("expected ErrQuerySyntax for bare label, got %v", err)
	}
}

func TestSetPropertyReindexes(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")
	mustSet(t, s, "Person:eljo", "gender", "Male")

	nodes, err := s.QueryExact("Person:gender=Male")
	if err != nil {
		t.Fatalf("QueryExact: %v", err)
	}
	if got := ids(nodes); !reflect.DeepEqual(got, []string{"Person:eljo"}) {
		t.Fatalf("expected eljo under gender=Male, got %v", got)
	}

	// Overwrite: the old index entry must not survive.
	mustSet(t, s, "Person:eljo", "gender", "Female")

	nodes, _ = s.QueryExact("Person:gender=Male")
	if len(nodes) != 0 {
		t.Fatalf("stale index entry after update: %v", ids(nodes))
	}
	nodes, _ = s.QueryExact("Person:gender=Female")
	if got := ids(nodes); !reflect.DeepEqual(got, []string{"Person:eljo"}) {
		t.Fatalf("expected eljo under gender=Female, got %v", got)
	}
}

func TestSetPropertyReservedID(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")

	if err := s.SetProperty("Person:eljo", "id", "other"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}

	node, err := s.QueryByID("Person:eljo")
	if err != nil {
		t.Fatalf("node must remain reachable under its id: %v", err)
	}
	if node.ID() != "eljo" {
		t.Fatalf("id mutated to %q", node.ID())
	}
}

func TestConnectSymmetricAndIdempotent(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")
	mustAdd(t, s, "Person", "norah")
	mustConnect(t, s, "Person:eljo", "Person:norah")
	mustConnect(t, s, "Person:eljo", "Person:norah") // repeat must not duplicate

	eljo, _ := s.QueryByID("Person:eljo")
	norah, _ := s.QueryByID("Person:norah")

	if eljo.Degree() != 1 || norah.Degree() != 1 {
		t.Fatalf("expected degree 1 on both ends, got %d and %d", eljo.Degree(), norah.Degree())
	}
	if eljo.Connections()[0] != norah || norah.Connections()[0] != eljo {
		t.Fatal("connection is not symmetric")
	}
}

func TestConnectSelf(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")

	if err := s.Connect("Person:eljo", "Person:eljo"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
	eljo, _ := s.QueryByID("Person:eljo")
	if eljo.Degree() != 0 {
		t.Fatalf("self connection must not be recorded, degree=%d", eljo.Degree())
	}
}

func TestConnectUnknownNode(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")

	if err := s.Connect("Person:eljo", "Person:ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryExact(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")
	mustAdd(t, s, "Person", "merin")
	mustAdd(t, s, "Dog", "rex")
	mustSet(t, s, "Person:eljo", "gender", "Male")
	mustSet(t, s, "Person:merin", "gender", "Female")

	all, err := s.QueryExact("")
	if err != nil {
		t.Fatalf("QueryExact(\"\"): %v", err)
	}
	if got := ids(all); !reflect.DeepEqual(got, []string{"Dog:rex", "Person:eljo", "Person:merin"}) {
		t.Fatalf("expected every node, got %v", got)
	}

	people, _ := s.QueryExact("Person")
	if got := ids(people); !reflect.DeepEqual(got, []string{"Person:eljo", "Person:merin"}) {
		t.Fatalf("label-only query returned %v", got)
	}

	females, _ := s.QueryExact("Person:gender=Female")
	if got := ids(females); !reflect.DeepEqual(got, []string{"Person:merin"}) {
		t.Fatalf("exact match returned %v", got)
	}

	// Bare Label:value is an id match.
	byID, _ := s.QueryExact("Person:eljo")
	if got := ids(byID); !reflect.DeepEqual(got, []string{"Person:eljo"}) {
		t.Fatalf("id shorthand returned %v", got)
	}

	// Unknown combinations yield empty results, never errors.
	empty, err := s.QueryExact("Person:city=Atlantis")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result, got %v, %v", ids(empty), err)
	}
	empty, err = s.QueryExact("Alien")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result for unknown label, got %v, %v", ids(empty), err)
	}

	if _, err := s.QueryExact("Person:a=b=c"); !errors.Is(err, ErrQuerySyntax) {
		t.Fatalf("expected ErrQuerySyntax, got %v", err)
	}
}

// Node handles returned by queries must stay safe to inspect while other
// goroutines mutate the store. Run with -race.
func TestConcurrentNodeAccess(t *testing.T) {
	s := New()
	mustAdd(t, s, "Person", "eljo")
	mustAdd(t, s, "Person", "norah")
	mustAdd(t, s, "Person", "merin")

	eljo, err := s.QueryByID("Person:eljo")
	if err != nil {
		t.Fatalf("QueryByID: %v", err)
	}

	const iterations = 500
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		peers := []string{"Person:norah", "Person:merin"}
		for i := 0; i < iterations; i++ {
			if err := s.SetProperty("Person:eljo", "city", strconv.Itoa(i)); err != nil {
				t.Errorf("SetProperty: %v", err)
				return
			}
			if err := s.Connect("Person:eljo", peers[i%len(peers)]); err != nil {
				t.Errorf("Connect: %v", err)
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if _, ok := eljo.Properties()[PropertyID]; !ok {
				t.Error("id property missing from snapshot")
				return
			}
			eljo.Connections()
			eljo.Degree()
			_ = eljo.String()
			if _, err := s.QueryExact("Person"); err != nil {
				t.Errorf("QueryExact: %v", err)
				return
			}
			if _, err := s.GraphQuery("Person:eljo", "", 2); err != nil {
				t.Errorf("GraphQuery: %v", err)
				return
			}
		}
	}()

	wg.Wait()

	if v, ok := eljo.Property("city"); !ok || v != strconv.Itoa(iterations-1) {
		t.Fatalf("final city = %q, %v", v, ok)
	}
}
