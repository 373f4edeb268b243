package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// Person is a single generated row of the people dataset. Field order
// mirrors the CSV column order.
type Person struct {
	ID       string
	Name     string
	Age      string
	Gender   string
	City     string
	Infected string
}

// Contact pairs two person IDs that have been in contact.
type Contact struct {
	From string
	To   string
}

// Dataset contains the generated people and their contact pairs.
type Dataset struct {
	People   []Person
	Contacts []Contact
}

// PeopleHeader lists the people CSV columns in order. The first column
// must be the identifier.
func PeopleHeader() []string {
	return []string{"id", "name", "age", "gender", "city", "infected"}
}

// Generator produces synthetic contact-tracing data.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.NumPeople <= 0 {
		cfg.NumPeople = DefaultConfig().NumPeople
	}
	if cfg.NumContacts <= 0 {
		cfg.NumContacts = DefaultConfig().NumContacts
	}
	if cfg.InfectionRate <= 0 {
		cfg.InfectionRate = DefaultConfig().InfectionRate
	}
	if cfg.ClusterChance <= 0 {
		cfg.ClusterChance = DefaultConfig().ClusterChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises people and contact pairs. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	people := make([]Person, g.cfg.NumPeople)

	for i := 0; i < g.cfg.NumPeople; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		infected := "no"
		if g.rand.Float64() < g.cfg.InfectionRate {
			infected = "yes"
		}

		people[i] = Person{
			ID:       fmt.Sprintf("person-%06d", i+1),
			Name:     g.randomName(),
			Age:      strconv.Itoa(1 + g.rand.Intn(90)),
			Gender:   g.randomGender(),
			City:     g.randomCity(),
			Infected: infected,
		}
	}

	contacts := make([]Contact, 0, g.cfg.NumContacts)
	seen := make(map[[2]int]struct{}, g.cfg.NumContacts)

	// A recent contact is reused as the next pair's anchor with
	// ClusterChance probability so the graph grows hubs instead of a
	// uniform mesh.
	anchor := g.rand.Intn(len(people))
	for len(contacts) < g.cfg.NumContacts {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		from := anchor
		if g.rand.Float64() >= g.cfg.ClusterChance {
			from = g.rand.Intn(len(people))
		}
		to := g.rand.Intn(len(people))
		if to == from {
			to = (to + 1) % len(people)
		}

		key := [2]int{from, to}
		if from > to {
			key = [2]int{to, from}
		}
		if _, dup := seen[key]; dup {
			anchor = g.rand.Intn(len(people))
			continue
		}
		seen[key] = struct{}{}

		contacts = append(contacts, Contact{
			From: people[from].ID,
			To:   people[to].ID,
		})
		anchor = to
	}

	return Dataset{People: people, Contacts: contacts}, nil
}

func (g *Generator) randomName() string {
	return fmt.Sprintf("%s %s",
		g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))])
}

func (g *Generator) randomGender() string {
	options := []string{"Female", "Male"}
	return options[g.rand.Intn(len(options))]
}

func (g *Generator) randomCity() string {
	return g.nameFragments.cities[g.rand.Intn(len(g.nameFragments.cities))]
}

type nameFragments struct {
	first  []string
	last   []string
	cities []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:  []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:   []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		cities: []string{"Kochi", "Bangalore", "Seattle", "Austin", "Chicago", "Miami", "Denver", "Boston", "Chennai"},
	}
}
