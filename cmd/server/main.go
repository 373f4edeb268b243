package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eljog/tracegraph/internal/config"
	"github.com/eljog/tracegraph/internal/graphdb"
	"github.com/eljog/tracegraph/internal/logging"
	"github.com/eljog/tracegraph/internal/server"
	"github.com/eljog/tracegraph/internal/tracing"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	store := graphdb.New()
	if err := loadDatasets(ctx, logger, store, cfg.Data); err != nil {
		logger.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}
	logger.Info("datasets loaded", "nodes", store.Len())

	tracer := tracing.NewService(store)
	apiHandlers := server.NewAPIHandlers(logger, store, tracer)

	router := server.NewRouter(logger, server.RouterDependencies{
		API:              apiHandlers,
		AllowedOrigins:   server.SplitOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.New(logger, cfg.HTTP, router).Run(runCtx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
}

// loadDatasets populates the store from the configured CSV files. Missing
// files are tolerated so the server can start empty and be populated over
// the API.
func loadDatasets(ctx context.Context, logger *slog.Logger, store *graphdb.Store, cfg config.DataConfig) error {
	loader := tracing.NewLoader(store, cfg.LoadWorkers)

	peopleFile, err := os.Open(cfg.PeoplePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("people dataset not found, starting empty", "path", cfg.PeoplePath)
			return nil
		}
		return fmt.Errorf("open people dataset: %w", err)
	}
	defer peopleFile.Close()

	people, err := loader.LoadPeople(ctx, peopleFile)
	if err != nil {
		var loadErr *tracing.LoadError
		if !errors.As(err, &loadErr) {
			return fmt.Errorf("load people: %w", err)
		}
		logger.Warn("some people rows were skipped", "errors", len(loadErr.Errors))
	}
	logger.Info("people loaded", "count", people, "path", cfg.PeoplePath)

	contactsFile, err := os.Open(cfg.ContactsPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("contacts dataset not found", "path", cfg.ContactsPath)
			return nil
		}
		return fmt.Errorf("open contacts dataset: %w", err)
	}
	defer contactsFile.Close()

	contacts, err := loader.LoadContacts(ctx, contactsFile)
	if err != nil {
		var loadErr *tracing.LoadError
		if !errors.As(err, &loadErr) {
			return fmt.Errorf("load contacts: %w", err)
		}
		logger.Warn("some contact rows were skipped", "errors", len(loadErr.Errors))
	}
	logger.Info("contacts loaded", "count", contacts, "path", cfg.ContactsPath)

	return nil
}
