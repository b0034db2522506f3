package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rootmarks/rootmarks-server/internal/domain"
)

// Cache-Control values for responses that change at most daily.
const (
	cachePublicDay  = "public, max-age=86400"
	cachePrivateDay = "private, max-age=86400"
)

func (s *Server) registerReferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLevels",
		Method:      http.MethodGet,
		Path:        "/api/v1/levels",
		Summary:     "List level tiers",
		Description: "Returns the experience tier table used for progression display",
		Tags:        []string{"Reference"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLevels)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSeason",
		Method:      http.MethodGet,
		Path:        "/api/v1/season",
		Summary:     "Get seasonal theme",
		Description: "Returns the theme for today's date",
		Tags:        []string{"Reference"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSeason)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAvatars",
		Method:      http.MethodGet,
		Path:        "/api/v1/avatars",
		Summary:     "List avatars",
		Description: "Returns the avatars a reader can pick from",
		Tags:        []string{"Reference"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAvatars)
}

// === DTOs ===

// AuthInput carries only the Authorization header.
type AuthInput struct {
	Authorization string `header:"Authorization"`
}

// LevelsResponse contains the tier table.
type LevelsResponse struct {
	Tiers    []domain.LevelTier `json:"tiers" doc:"Tiers ordered by level"`
	MaxLevel int                `json:"max_level" doc:"Highest level"`
}

// LevelsOutput wraps the levels response for Huma.
type LevelsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         LevelsResponse
}

// SeasonResponse contains the current theme.
type SeasonResponse struct {
	Season domain.Season `json:"season" doc:"halloween, christmas, spring, summer, autumn or winter"`
	Date   string        `json:"date" doc:"Server date the theme was computed for (YYYY-MM-DD)"`
}

// SeasonOutput wraps the season response for Huma.
type SeasonOutput struct {
	Body SeasonResponse
}

// AvatarsResponse contains the avatar catalog.
type AvatarsResponse struct {
	Avatars []domain.Avatar `json:"avatars" doc:"Selectable avatars"`
}

// AvatarsOutput wraps the avatars response for Huma.
type AvatarsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         AvatarsResponse
}

// === Handlers ===

func (s *Server) handleListLevels(ctx context.Context, input *AuthInput) (*LevelsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	return &LevelsOutput{
		CacheControl: cachePublicDay,
		Body: LevelsResponse{
			Tiers:    domain.LevelTiers(),
			MaxLevel: domain.MaxLevel(),
		},
	}, nil
}

func (s *Server) handleGetSeason(ctx context.Context, input *AuthInput) (*SeasonOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	now := s.now()
	return &SeasonOutput{
		Body: SeasonResponse{
			Season: domain.SeasonAt(now),
			Date:   now.Format("2006-01-02"),
		},
	}, nil
}

func (s *Server) handleListAvatars(ctx context.Context, input *AuthInput) (*AvatarsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	return &AvatarsOutput{
		CacheControl: cachePublicDay,
		Body:         AvatarsResponse{Avatars: domain.Avatars()},
	}, nil
}
