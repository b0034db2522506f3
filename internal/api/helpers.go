package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rootmarks/rootmarks-server/internal/auth"
)

// authenticateRequest validates the Authorization header, makes sure the
// caller has a profile, and returns the user ID.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	claims, err := s.verifyHeader(authHeader)
	if err != nil {
		return "", err
	}

	if err := s.ensureProfile(ctx, claims); err != nil {
		return "", err
	}

	return claims.UserID(), nil
}

// verifyHeader parses "Bearer <token>" and verifies the token.
func (s *Server) verifyHeader(authHeader string) (*auth.Claims, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	token, ok := bearerToken(authHeader)
	if !ok {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return claims, nil
}

// ensureProfile creates the caller's profile on first sight. Books, badges
// and scans all reference it.
func (s *Server) ensureProfile(ctx context.Context, claims *auth.Claims) error {
	userID := claims.UserID()
	if _, ok := s.knownProfiles.Load(userID); ok {
		return nil
	}

	if _, err := s.services.Profile.GetOrCreateProfile(ctx, userID, claims.Username); err != nil {
		return err
	}

	s.knownProfiles.Store(userID, struct{}{})
	return nil
}

func bearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
