package api

import (
	"github.com/rootmarks/rootmarks-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Profile *service.ProfileService
	Badge   *service.BadgeService
	Book    *service.BookService
	Lookup  *service.LookupService
	Plant   *service.PlantService
}
