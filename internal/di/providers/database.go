package providers

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/rootmarks/rootmarks-server/internal/catalog"
	"github.com/rootmarks/rootmarks-server/internal/config"
	"github.com/rootmarks/rootmarks-server/internal/logger"
	"github.com/rootmarks/rootmarks-server/internal/sse"
	"github.com/rootmarks/rootmarks-server/internal/store/sqlite"
)

// shutdownTimeout bounds how long each service may take to stop.
const shutdownTimeout = 30 * time.Second

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the celebration event manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, err
	}

	dbPath := cfg.Data.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CatalogHandle owns the badge catalog syncer and its file watcher.
type CatalogHandle struct {
	*catalog.Syncer
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	<-h.done
	return nil
}

// ProvideCatalog loads the badge catalog into the store and, when a catalog
// file is configured, keeps watching it for edits.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	syncer := catalog.NewSyncer(storeHandle.Store, cfg.Catalog.Path, sseHandle.Manager, log.Logger)

	count, err := syncer.Sync(context.Background())
	if err != nil {
		return nil, err
	}
	log.Info("Badge catalog loaded", "badges", count, "path", cfg.Catalog.Path)

	handle := &CatalogHandle{Syncer: syncer}
	if cfg.Catalog.Path == "" || !cfg.Catalog.Watch {
		return handle, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle.cancel = cancel
	handle.done = make(chan struct{})

	go func() {
		defer close(handle.done)
		if err := syncer.Watch(ctx, catalog.DefaultSettleDelay); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Badge catalog watcher stopped", "error", err)
		}
	}()

	log.Info("Watching badge catalog", "path", cfg.Catalog.Path)

	return handle, nil
}
