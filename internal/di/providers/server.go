package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/rootmarks/rootmarks-server/internal/api"
	"github.com/rootmarks/rootmarks-server/internal/auth"
	"github.com/rootmarks/rootmarks-server/internal/config"
	"github.com/rootmarks/rootmarks-server/internal/logger"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
	"github.com/rootmarks/rootmarks-server/internal/ratelimit"
	"github.com/rootmarks/rootmarks-server/internal/service"
)

// Version is reported in the OpenAPI document. Overridden at build time.
var Version = "dev"

// RateLimiterHandle wraps the keyed limiter with Shutdownable.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-user limiter for lookup and plant scans.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)

	// The catalog must be in the store before the first badge check.
	_ = do.MustInvoke[*CatalogHandle](i)

	services := &api.Services{
		Profile: do.MustInvoke[*service.ProfileService](i),
		Badge:   do.MustInvoke[*service.BadgeService](i),
		Book:    do.MustInvoke[*service.BookService](i),
		Lookup:  do.MustInvoke[*service.LookupService](i),
		Plant:   do.MustInvoke[*service.PlantService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, tokens, sseHandle.Manager, m, limiter.KeyedRateLimiter, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Version:        Version,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
