package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rootmarks/rootmarks-server/internal/service"
)

func (s *Server) registerBadgeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBadges",
		Method:      http.MethodGet,
		Path:        "/api/v1/badges",
		Summary:     "List badges",
		Description: "Returns the badge catalog with the reader's earned markers",
		Tags:        []string{"Badges"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBadges)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkBadges",
		Method:      http.MethodPost,
		Path:        "/api/v1/badges/check",
		Summary:     "Check badges",
		Description: "Evaluates the catalog against the reader's totals and awards every newly earned badge",
		Tags:        []string{"Badges"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCheckBadges)
}

// BadgeCatalogOutput wraps the badge catalog for Huma.
type BadgeCatalogOutput struct {
	Body *service.BadgeCatalog
}

// AwardResultOutput wraps an award result for Huma.
type AwardResultOutput struct {
	Body *service.AwardResult
}

func (s *Server) handleListBadges(ctx context.Context, input *AuthInput) (*BadgeCatalogOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	catalog, err := s.services.Badge.Catalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BadgeCatalogOutput{Body: catalog}, nil
}

func (s *Server) handleCheckBadges(ctx context.Context, input *AuthInput) (*AwardResultOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Badge.CheckAndAward(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &AwardResultOutput{Body: result}, nil
}
