package tracing

import (
	"errors"
	"testing"

	"github.com/eljog/tracegraph/internal/graphdb"
)

func newService(t *testing.T, people ...string) (*Service, *graphdb.Store) {
	t.Helper()
	store := graphdb.New()
	svc := NewService(store)
	for _, id := range people {
		if err := svc.AddPerson(id); err != nil {
			t.Fatalf("AddPerson(%s): %v", id, err)
		}
	}
	return svc, store
}

func mustZone(t *testing.T, svc *Service, personID string, want Zone) {
	t.Helper()
	got, err := svc.Zone(personID)
	if err != nil {
		t.Fatalf("Zone(%s): %v", personID, err)
	}
	if got != want {
		t.Errorf("Zone(%s) = %s, want %s", personID, got, want)
	}
}

func TestZoneClassification(t *testing.T) {
	svc, _ := newService(t, "eljo", "merin", "norah")

	if err := svc.MarkInfected("eljo"); err != nil {
		t.Fatalf("MarkInfected: %v", err)
	}
	if err := svc.Connect("eljo", "norah"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	mustZone(t, svc, "eljo", ZoneInfected)
	mustZone(t, svc, "norah", ZoneRed)
	// merin has no connection to anyone infected.
	mustZone(t, svc, "merin", ZoneGreen)
}

func TestZoneOrangeSecondLevelContact(t *testing.T) {
	svc, _ := newService(t, "a", "b", "c", "d")

	if err := svc.MarkInfected("a"); err != nil {
		t.Fatalf("MarkInfected: %v", err)
	}
	for _, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}} {
		if err := svc.Connect(pair[0], pair[1]); err != nil {
			t.Fatalf("Connect(%s, %s): %v", pair[0], pair[1], err)
		}
	}

	mustZone(t, svc, "b", ZoneRed)
	mustZone(t, svc, "c", ZoneOrange)
	// d is three hops away from the infection, outside the zoning window.
	mustZone(t, svc, "d", ZoneGreen)
}

func TestZoneAfterRecovery(t *testing.T) {
	svc, _ := newService(t, "eljo", "norah")

	if err := svc.Connect("eljo", "norah"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := svc.MarkInfected("eljo"); err != nil {
		t.Fatalf("MarkInfected: %v", err)
	}
	mustZone(t, svc, "norah", ZoneRed)

	if err := svc.MarkRecovered("eljo"); err != nil {
		t.Fatalf("MarkRecovered: %v", err)
	}
	mustZone(t, svc, "eljo", ZoneGreen)
	mustZone(t, svc, "norah", ZoneGreen)
}

func TestListInfected(t *testing.T) {
	svc, _ := newService(t, "eljo", "merin", "norah")

	if err := svc.MarkInfected("eljo"); err != nil {
		t.Fatalf("MarkInfected: %v", err)
	}
	if err := svc.MarkInfected("merin"); err != nil {
		t.Fatalf("MarkInfected: %v", err)
	}
	if err := svc.MarkRecovered("merin"); err != nil {
		t.Fatalf("MarkRecovered: %v", err)
	}

	infected, err := svc.ListInfected()
	if err != nil {
		t.Fatalf("ListInfected: %v", err)
	}
	if len(infected) != 1 || infected[0].ID() != "eljo" {
		t.Fatalf("expected only eljo infected, got %v", infected)
	}
}

func TestZoneUnknownPerson(t *testing.T) {
	svc, _ := newService(t, "eljo")

	if _, err := svc.Zone("ghost"); !errors.Is(err, graphdb.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContactNetwork(t *testing.T) {
	svc, _ := newService(t, "eljo", "merin", "norah")

	if err := svc.Connect("eljo", "norah"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := svc.Connect("norah", "merin"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := svc.MarkInfected("eljo"); err != nil {
		t.Fatalf("MarkInfected: %v", err)
	}

	report, err := svc.ContactNetwork("eljo", 2)
	if err != nil {
		t.Fatalf("ContactNetwork: %v", err)
	}
	if len(report) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(report))
	}

	if report[0].Level != 0 || len(report[0].Contacts) != 1 {
		t.Fatalf("level 0 = %+v", report[0])
	}
	if report[0].Contacts[0].Zone != ZoneInfected {
		t.Errorf("eljo zone = %s", report[0].Contacts[0].Zone)
	}
	if len(report[1].Contacts) != 1 || report[1].Contacts[0].Zone != ZoneRed {
		t.Errorf("level 1 = %+v", report[1])
	}
	if len(report[2].Contacts) != 1 || report[2].Contacts[0].Zone != ZoneOrange {
		t.Errorf("level 2 = %+v", report[2])
	}
}
