// Package di provides dependency injection configuration for the stats engine.
package di

import (
	"github.com/samber/do/v2"

	"github.com/chromahub/rhythm-stats/internal/config"
	"github.com/chromahub/rhythm-stats/internal/di/providers"
	"github.com/chromahub/rhythm-stats/internal/logger"
	"github.com/chromahub/rhythm-stats/internal/service"
	"github.com/chromahub/rhythm-stats/internal/store"
	"github.com/chromahub/rhythm-stats/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideHistoryStore)
	do.Provide(injector, providers.ProvideCatalog)

	// Engine
	do.Provide(injector, providers.ProvideBroadcaster)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideHistoryWatcher)

	return injector
}

// Bootstrap initializes all services and returns nil once every provider
// has been invoked. This triggers lazy initialization of the whole graph.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*store.HistoryStore](injector)
	_ = do.MustInvoke[*providers.CatalogHandle](injector)
	_ = do.MustInvoke[*providers.BroadcasterHandle](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*providers.WatcherHandle](injector)

	return nil
}
