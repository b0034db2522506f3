package providers

import (
	"github.com/samber/do/v2"

	"github.com/rootmarks/rootmarks-server/internal/analysis"
	"github.com/rootmarks/rootmarks-server/internal/logger"
	"github.com/rootmarks/rootmarks-server/internal/media/images"
	"github.com/rootmarks/rootmarks-server/internal/metadata/googlebooks"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
	"github.com/rootmarks/rootmarks-server/internal/service"
	"github.com/rootmarks/rootmarks-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, log.Logger), nil
}

// ProvideBadgeService provides the badge service.
func ProvideBadgeService(i do.Injector) (*service.BadgeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBadgeService(storeHandle.Store, sseHandle.Manager, m, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	badgeService := do.MustInvoke[*service.BadgeService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, badgeService, validator, sseHandle.Manager, m, log.Logger), nil
}

// ProvideLookupService provides the book lookup service.
func ProvideLookupService(i do.Injector) (*service.LookupService, error) {
	client := do.MustInvoke[*googlebooks.Client](i)
	cacheHandle := do.MustInvoke[*LookupCacheHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLookupService(client, cacheHandle.Cache, m, log.Logger), nil
}

// ProvidePlantService provides the plant scan service.
func ProvidePlantService(i do.Injector) (*service.PlantService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	plantImages := do.MustInvoke[*PlantImages](i)
	processor := do.MustInvoke[*images.Processor](i)
	analyzer := do.MustInvoke[*analysis.Analyzer](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPlantService(storeHandle.Store, plantImages.Storage, processor, analyzer, m, log.Logger), nil
}
