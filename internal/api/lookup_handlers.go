package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rootmarks/rootmarks-server/internal/domain"
)

func (s *Server) registerLookupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "lookupBooks",
		Method:      http.MethodPost,
		Path:        "/api/v1/lookup",
		Summary:     "Look up books",
		Description: "Searches Google Books for up to five candidates matching a title or author",
		Tags:        []string{"Lookup"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.rateLimitOperation},
	}, s.handleLookupBooks)
}

// LookupRequest is the request body for a book lookup.
type LookupRequest struct {
	Query string `json:"query" maxLength:"200" doc:"Title, author or ISBN"`
}

// LookupInput wraps the lookup request for Huma.
type LookupInput struct {
	Authorization string `header:"Authorization"`
	Body          LookupRequest
}

// LookupResponse contains lookup candidates.
type LookupResponse struct {
	Results []domain.BookCandidate `json:"results" doc:"Candidates, at most five"`
}

// LookupOutput wraps the lookup response for Huma.
type LookupOutput struct {
	Body LookupResponse
}

func (s *Server) handleLookupBooks(ctx context.Context, input *LookupInput) (*LookupOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	results, err := s.services.Lookup.Search(ctx, input.Body.Query)
	if err != nil {
		return nil, err
	}

	return &LookupOutput{Body: LookupResponse{Results: results}}, nil
}
