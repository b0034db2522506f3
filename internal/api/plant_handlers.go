package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/rootmarks/rootmarks-server/internal/auth"
	"github.com/rootmarks/rootmarks-server/internal/domain"
	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/http/response"
	"github.com/rootmarks/rootmarks-server/internal/media/images"
	"github.com/rootmarks/rootmarks-server/internal/service"
)

// Uploads and images bypass huma: the body is raw bytes in both directions.
func (s *Server) registerPlantRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPlantScans",
		Method:      http.MethodGet,
		Path:        "/api/v1/plant-scans",
		Summary:     "List plant scans",
		Description: "Returns the reader's plant scans, newest first",
		Tags:        []string{"Plants"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPlantScans)
}

// PlantScanResponse contains a scan and the URL its photo is served from.
type PlantScanResponse struct {
	ID           string    `json:"id" doc:"Scan ID"`
	HealthStatus string    `json:"health_status" doc:"First line of the analysis"`
	Tips         string    `json:"tips" doc:"Full analysis text"`
	BlurHash     string    `json:"blur_hash,omitempty" doc:"BlurHash placeholder of the photo"`
	ImageURL     string    `json:"image_url" doc:"Relative URL of the stored photo"`
	CreatedAt    time.Time `json:"created_at" doc:"Scan time"`
}

// ListPlantScansResponse contains the reader's scans.
type ListPlantScansResponse struct {
	Scans []PlantScanResponse `json:"scans" doc:"Scans, newest first"`
}

// ListPlantScansOutput wraps the list response for Huma.
type ListPlantScansOutput struct {
	Body ListPlantScansResponse
}

func toPlantScanResponse(scan *domain.PlantScan) PlantScanResponse {
	return PlantScanResponse{
		ID:           scan.ID,
		HealthStatus: scan.HealthStatus,
		Tips:         scan.Tips,
		BlurHash:     scan.BlurHash,
		ImageURL:     "/plant-scans/" + scan.ID + "/image",
		CreatedAt:    scan.CreatedAt,
	}
}

func (s *Server) handleListPlantScans(ctx context.Context, input *AuthInput) (*ListPlantScansOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	scans, err := s.services.Plant.ListScans(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]PlantScanResponse, len(scans))
	for i, scan := range scans {
		resp[i] = toPlantScanResponse(scan)
	}

	return &ListPlantScansOutput{Body: ListPlantScansResponse{Scans: resp}}, nil
}

// handleCreatePlantScan accepts a raw image body.
// POST /api/v1/plant-scans
func (s *Server) handleCreatePlantScan(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxPlantImageSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.HandleError(w, domainerrors.PayloadTooLargef("image must be smaller than %d MB",
				service.MaxPlantImageSize/(1024*1024)), s.logger)
			return
		}
		response.BadRequest(w, "Failed to read request body", s.logger)
		return
	}

	scan, err := s.services.Plant.Scan(r.Context(), claims.UserID(), r.Header.Get("Content-Type"), data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, toPlantScanResponse(scan), s.logger)
}

// handlePlantScanImage serves a scan photo to its owner.
// GET /plant-scans/{id}/image
func (s *Server) handlePlantScanImage(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	scanID := chi.URLParam(r, "id")
	if scanID == "" {
		response.BadRequest(w, "Scan ID is required", s.logger)
		return
	}

	data, err := s.services.Plant.Image(r.Context(), claims.UserID(), scanID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	etag := images.ETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", cachePrivateDay)

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("failed to write scan image", "scan_id", scanID, "error", err)
	}
}
