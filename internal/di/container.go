// Package di provides dependency injection configuration for the Rootmarks server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/rootmarks/rootmarks-server/internal/auth"
	"github.com/rootmarks/rootmarks-server/internal/config"
	"github.com/rootmarks/rootmarks-server/internal/di/providers"
	"github.com/rootmarks/rootmarks-server/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCatalog)

	// Storage layer
	do.Provide(injector, providers.ProvidePlantImages)
	do.Provide(injector, providers.ProvideImageProcessor)
	do.Provide(injector, providers.ProvideLookupCache)

	// External services
	do.Provide(injector, providers.ProvideGoogleBooksClient)
	do.Provide(injector, providers.ProvideAnalyzer)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideBadgeService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideLookupService)
	do.Provide(injector, providers.ProvidePlantService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap resolves the service graph, which starts the background
// workers and the HTTP listener.
func Bootstrap(injector *do.RootScope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = asError(r)
		}
	}()

	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CatalogHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
