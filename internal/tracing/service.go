// Package tracing layers the contact-tracing workflows on top of the graph
// store: risk zoning, infection status updates, contact network reports and
// the CSV bulk loader.
package tracing

import (
	"github.com/eljog/tracegraph/internal/graphdb"
)

const (
	// LabelPerson is the node label for every person in the contact graph.
	LabelPerson = "Person"

	// PropertyInfected tracks a person's infection status.
	PropertyInfected = "infected"

	infectedYes    = "yes"
	infectedNo     = "no"
	infectedFilter = PropertyInfected + "=" + infectedYes
)

// Zone classifies a person's exposure risk, derived purely from a two-level
// traversal of their contact graph.
type Zone string

const (
	// ZoneInfected marks a person whose own infected property is set.
	ZoneInfected Zone = "Infected"
	// ZoneRed marks a person with an infected direct contact.
	ZoneRed Zone = "Red"
	// ZoneOrange marks a person with an infected second-level contact.
	ZoneOrange Zone = "Orange"
	// ZoneGreen marks everyone else.
	ZoneGreen Zone = "Green"
)

// Contact pairs a person with their computed zone.
type Contact struct {
	Person *graphdb.Node
	Zone   Zone
}

// NetworkLevel groups the contacts found at one traversal depth.
type NetworkLevel struct {
	Level    int
	Contacts []Contact
}

// Service drives the graph store for the contact-tracing workflows. All
// people live under the Person label and are addressed by their id.
type Service struct {
	store *graphdb.Store
}

// NewService wraps the provided store.
func NewService(store *graphdb.Store) *Service {
	return &Service{store: store}
}

// AddPerson registers a new person in the contact graph.
func (s *Service) AddPerson(personID string) error {
	return s.store.AddNode(LabelPerson, personID)
}

// Connect records direct contact between two people.
func (s *Service) Connect(personID1, personID2 string) error {
	return s.store.Connect(personQualifier(personID1), personQualifier(personID2))
}

// MarkInfected flags a person as infected. Their direct contacts drop to Red
// at best, second-level contacts to Orange.
func (s *Service) MarkInfected(personID string) error {
	return s.store.SetProperty(personQualifier(personID), PropertyInfected, infectedYes)
}

// MarkRecovered clears a person's infection flag, which may lift their
// contacts back to Green.
func (s *Service) MarkRecovered(personID string) error {
	return s.store.SetProperty(personQualifier(personID), PropertyInfected, infectedNo)
}

// ListInfected returns everyone currently marked infected.
func (s *Service) ListInfected() ([]*graphdb.Node, error) {
	return s.store.QueryExact(LabelPerson + ":" + infectedFilter)
}

// Zone computes the risk zone for a person by walking their contact graph
// two levels deep, filtered to infected contacts.
func (s *Service) Zone(personID string) (Zone, error) {
	levels, err := s.store.GraphQuery(personQualifier(personID), infectedFilter, 2)
	if err != nil {
		return "", err
	}

	if nodes := levels[0]; len(nodes) > 0 {
		if v, _ := nodes[0].Property(PropertyInfected); v == infectedYes {
			return ZoneInfected, nil
		}
	}
	if len(levels[1]) > 0 {
		return ZoneRed, nil
	}
	if len(levels[2]) > 0 {
		return ZoneOrange, nil
	}
	return ZoneGreen, nil
}

// ContactNetwork walks a person's contact graph up to maxDepth levels and
// annotates every contact with their own risk zone.
func (s *Service) ContactNetwork(personID string, maxDepth int) ([]NetworkLevel, error) {
	levels, err := s.store.GraphQuery(personQualifier(personID), "", maxDepth)
	if err != nil {
		return nil, err
	}

	report := make([]NetworkLevel, 0, len(levels))
	for level := 0; level <= levels.MaxLevel(); level++ {
		nodes, ok := levels[level]
		if !ok {
			continue
		}
		entry := NetworkLevel{Level: level, Contacts: make([]Contact, 0, len(nodes))}
		for _, node := range nodes {
			zone, err := s.Zone(node.ID())
			if err != nil {
				return nil, err
			}
			entry.Contacts = append(entry.Contacts, Contact{Person: node, Zone: zone})
		}
		report = append(report, entry)
	}
	return report, nil
}

func personQualifier(id string) string {
	return LabelPerson + ":" + id
}
