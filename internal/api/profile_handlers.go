package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get my profile",
		Description: "Returns the authenticated reader's profile, level and shelf counts. The profile is created on first access.",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectAvatar",
		Method:      http.MethodPut,
		Path:        "/api/v1/profile/avatar",
		Summary:     "Select avatar",
		Description: "Sets the authenticated reader's avatar from the avatar catalog",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSelectAvatar)
}

// === DTOs ===

// ProfileSummaryOutput wraps the profile summary for Huma.
type ProfileSummaryOutput struct {
	Body *service.ProfileSummary
}

// SelectAvatarRequest is the request body for selecting an avatar.
type SelectAvatarRequest struct {
	AvatarID string `json:"avatar_id" minLength:"1" maxLength:"32" doc:"Avatar ID from GET /api/v1/avatars"`
}

// SelectAvatarInput wraps the select avatar request for Huma.
type SelectAvatarInput struct {
	Authorization string `header:"Authorization"`
	Body          SelectAvatarRequest
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body *domain.Profile
}

// === Handlers ===

func (s *Server) handleGetMyProfile(ctx context.Context, input *AuthInput) (*ProfileSummaryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	summary, err := s.services.Profile.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileSummaryOutput{Body: summary}, nil
}

func (s *Server) handleSelectAvatar(ctx context.Context, input *SelectAvatarInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.SelectAvatar(ctx, userID, domain.AvatarID(input.Body.AvatarID))
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profile}, nil
}
