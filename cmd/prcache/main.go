// Command prcache keeps a local cache of GitHub pull requests, saved
// work-item searches and workflow runs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/prcache/internal/adapters/driven/auth"
	"github.com/custodia-labs/prcache/internal/adapters/driven/config/file"
	"github.com/custodia-labs/prcache/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/prcache/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/prcache/internal/adapters/driving/cli"
	"github.com/custodia-labs/prcache/internal/connectors/github"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
	"github.com/custodia-labs/prcache/internal/core/services"
	"github.com/custodia-labs/prcache/internal/logger"
)

// Build variables, set by ldflags during build.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.Default()

	configDir, err := file.DefaultConfigDir()
	if err != nil {
		return err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	if err := settingsService.Validate(); err != nil {
		log.Warn("config %s: %v (using defaults for invalid values)", configStore.Path(), err)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	stores, closeStores := openStores(log)
	defer closeStores()

	tokens := auth.NewConfigTokenProvider(configStore)
	client := github.NewClient(tokens)
	if err := client.SetBaseURL(settings.GitHub.BaseURL); err != nil {
		return err
	}
	source := github.NewSource(client, github.DefaultConfig())

	cache, updates, searches := stores.cache, stores.updates, stores.searches

	executor := services.NewFetchExecutor(source, source, source, searches, cache, updates, log)
	coordinator := services.NewRefreshCoordinator(executor, cache, updates, settings.Refresh, log)
	defer func() {
		if err := coordinator.Close(); err != nil {
			log.Warn("closing refresh coordinator: %v", err)
		}
	}()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Refresh:       coordinator,
		Cache:         services.NewCacheService(cache, updates),
		Searches:      services.NewSavedSearchService(searches),
		Settings:      settingsService,
		Tokens:        tokens,
		VerifyAccount: client.CurrentUser,
		ResetClient:   client.Reset,
		ConfigWatcher: file.NewWatcher(configStore, log),
	})

	return cli.Execute(context.Background())
}

type cacheStores struct {
	cache    driven.CacheStore
	updates  driven.UpdateStateStore
	searches driven.SavedSearchStore
}

// openStores opens the SQLite cache. When the database cannot be opened the
// process falls back to in-memory stores, which last until it exits.
func openStores(log *logger.Logger) (cacheStores, func()) {
	store, err := sqlite.NewStore("")
	if err != nil {
		log.Warn("opening cache database: %v (using an in-memory cache)", err)
		return cacheStores{
			cache:    memory.NewCacheStore(),
			updates:  memory.NewUpdateStateStore(),
			searches: memory.NewSavedSearchStore(),
		}, func() {}
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warn("closing cache database: %v", err)
		}
	}
	return cacheStores{
		cache:    store.CacheStore(),
		updates:  store.UpdateStateStore(),
		searches: store.SavedSearchStore(),
	}, closeStore
}
