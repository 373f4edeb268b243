package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eljog/tracegraph/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		people        = flag.Int("people", cfg.NumPeople, "number of people to generate")
		contacts      = flag.Int("contacts", cfg.NumContacts, "number of contact pairs to generate")
		infectionRate = flag.Float64("infection-rate", cfg.InfectionRate, "probability a person starts infected")
		clusterChance = flag.Float64("cluster-chance", cfg.ClusterChance, "probability a contact extends a recent chain")
		seed          = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir     = flag.String("output-dir", "data", "directory to write people.csv and contact.csv")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumPeople:     *people,
		NumContacts:   *contacts,
		InfectionRate: clampProbability(*infectionRate),
		ClusterChance: clampProbability(*clusterChance),
		Seed:          *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d people and %d contacts into %s\n", len(dataset.People), len(dataset.Contacts), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
