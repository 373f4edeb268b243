package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/eljog/tracegraph/internal/config"
	"github.com/eljog/tracegraph/internal/export"
	"github.com/eljog/tracegraph/internal/graph"
	"github.com/eljog/tracegraph/internal/graphdb"
	"github.com/eljog/tracegraph/internal/logging"
	"github.com/eljog/tracegraph/internal/tracing"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	var (
		datasetDir   = flag.String("dataset-dir", "./data", "Directory containing people.csv and contact.csv")
		peoplePath   = flag.String("people", "", "Path to people.csv (overrides dataset-dir)")
		contactsPath = flag.String("contacts", "", "Path to contact.csv (overrides dataset-dir)")
		workers      = flag.Int("workers", 4, "Number of concurrent workers for loading")
		mirror       = flag.Bool("mirror", false, "Mirror the loaded graph to the configured external database")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	peopleFile, contactsFile, err := resolveDatasetPaths(*datasetDir, *peoplePath, *contactsPath)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := graphdb.New()
	loader := tracing.NewLoader(store, *workers)

	start := time.Now()

	people, err := loadFile(ctx, logger, peopleFile, loader.LoadPeople)
	if err != nil {
		logger.Error("people loading failed", "error", err, "path", peopleFile)
		os.Exit(1)
	}
	logger.Info("people loaded", "count", people, "workers", *workers)

	contacts, err := loadFile(ctx, logger, contactsFile, loader.LoadContacts)
	if err != nil {
		logger.Error("contact loading failed", "error", err, "path", contactsFile)
		os.Exit(1)
	}
	logger.Info("contacts loaded", "count", contacts)

	logger.Info("load complete",
		"duration", time.Since(start).String(),
		"nodes", store.Len(),
		"people", people,
		"contacts", contacts,
	)

	if !*mirror {
		return
	}

	if err := mirrorGraph(ctx, logger, cfg, store); err != nil {
		logger.Error("mirroring failed", "error", err)
		os.Exit(1)
	}
}

// loadFile runs a loader function over a dataset file. Partial load errors
// are logged and tolerated; anything else aborts.
func loadFile(ctx context.Context, logger *slog.Logger, path string, load func(context.Context, io.Reader) (int, error)) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	count, err := load(ctx, file)
	if err != nil {
		var loadErr *tracing.LoadError
		if !errors.As(err, &loadErr) {
			return 0, err
		}
		logger.Warn("some rows were skipped", "path", path, "errors", len(loadErr.Errors))
		for _, rowErr := range loadErr.Errors {
			logger.Debug("row skipped", "error", rowErr)
		}
	}
	return count, nil
}

func mirrorGraph(ctx context.Context, logger *slog.Logger, cfg config.Config, store *graphdb.Store) error {
	if cfg.Mirror.URI == "" {
		return graph.ErrMissingURI
	}

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Mirror.URI,
		Database:       cfg.Mirror.Database,
		Username:       cfg.Mirror.Username,
		Password:       cfg.Mirror.Password,
		MaxConnections: cfg.Mirror.MaxConnections,
	})
	if err != nil {
		return fmt.Errorf("create mirror client: %w", err)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing mirror client failed", "error", err)
		}
	}()

	start := time.Now()
	stats, err := export.New(client, store).Export(ctx)
	if err != nil {
		return err
	}

	logger.Info("mirror complete",
		"duration", time.Since(start).String(),
		"nodes", stats.Nodes,
		"connections", stats.Connections,
		"uri", cfg.Mirror.URI,
	)
	return nil
}

func resolveDatasetPaths(baseDir, peoplePath, contactsPath string) (string, string, error) {
	resolve := func(explicitPath, fallbackFile string) (string, error) {
		if explicitPath != "" {
			if _, err := os.Stat(explicitPath); err != nil {
				return "", fmt.Errorf("stat %s: %w", explicitPath, err)
			}
			return explicitPath, nil
		}
		path := filepath.Join(baseDir, fallbackFile)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", errMissingDataset, path)
		}
		return path, nil
	}

	peopleFile, err := resolve(peoplePath, "people.csv")
	if err != nil {
		return "", "", err
	}
	contactsFile, err := resolve(contactsPath, "contact.csv")
	if err != nil {
		return "", "", err
	}
	return peopleFile, contactsFile, nil
}
