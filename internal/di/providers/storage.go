package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/rootmarks/rootmarks-server/internal/cache"
	"github.com/rootmarks/rootmarks-server/internal/config"
	"github.com/rootmarks/rootmarks-server/internal/logger"
	"github.com/rootmarks/rootmarks-server/internal/media/images"
)

// PlantImages is the storage for plant scan photos.
type PlantImages struct {
	*images.Storage
}

// ProvidePlantImages provides the plant photo storage.
func ProvidePlantImages(i do.Injector) (*PlantImages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Data.ImagesPath(), "plants")
	if err != nil {
		return nil, fmt.Errorf("plant image storage: %w", err)
	}

	log.Info("Image storage initialized", "path", cfg.Data.ImagesPath())

	return &PlantImages{Storage: storage}, nil
}

// ProvideImageProcessor provides the photo normalizer.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	return images.NewProcessor(images.DefaultMaxEdge), nil
}

// LookupCacheHandle wraps the badger cache with shutdown capability.
type LookupCacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *LookupCacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideLookupCache opens the on-disk cache for book lookups.
func ProvideLookupCache(i do.Injector) (*LookupCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.Open(cache.Options{
		Path: cfg.Data.CachePath(),
		TTL:  cfg.Lookup.CacheTTL,
	}, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("lookup cache: %w", err)
	}

	return &LookupCacheHandle{Cache: c}, nil
}
