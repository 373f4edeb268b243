package generator

// Config drives the synthetic dataset generator.
type Config struct {
	NumPeople     int
	NumContacts   int
	InfectionRate float64
	ClusterChance float64
	Seed          int64
}

// DefaultConfig returns baseline settings that produce a small but
// interesting contact graph.
func DefaultConfig() Config {
	return Config{
		NumPeople:     1000,
		NumContacts:   3000,
		InfectionRate: 0.05,
		ClusterChance: 0.3,
		Seed:          42,
	}
}
