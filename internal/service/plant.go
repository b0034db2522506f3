package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/id"
	"github.com/rootmarks/rootmarks-server/internal/media/images"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// MaxPlantImageSize is the largest accepted upload (5 MB).
const MaxPlantImageSize = 5 * 1024 * 1024

// PlantAnalyzer assesses a JPEG photo of a plant.
type PlantAnalyzer interface {
	Analyze(ctx context.Context, jpeg []byte) (string, error)
}

// ImageStore keeps scan photos.
type ImageStore interface {
	Save(id string, data []byte) error
	Get(id string) ([]byte, error)
	Delete(id string) error
	Path(id string) string
}

// PlantService runs plant scans.
type PlantService struct {
	store     store.Store
	images    ImageStore
	processor *images.Processor
	analyzer  PlantAnalyzer
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewPlantService creates a plant service. m may be nil.
func NewPlantService(
	store store.Store,
	imageStore ImageStore,
	processor *images.Processor,
	analyzer PlantAnalyzer,
	m *metrics.Metrics,
	logger *slog.Logger,
) *PlantService {
	return &PlantService{
		store:     store,
		images:    imageStore,
		processor: processor,
		analyzer:  analyzer,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Scan validates and normalizes a photo, asks the analyzer about it, and
// stores the result. Nothing is stored when analysis fails.
func (s *PlantService) Scan(ctx context.Context, userID, contentType string, data []byte) (*domain.PlantScan, error) {
	if len(data) == 0 {
		return nil, domainerrors.Validation("image is required")
	}
	if len(data) > MaxPlantImageSize {
		return nil, domainerrors.PayloadTooLargef("image must be smaller than %d MB", MaxPlantImageSize/(1024*1024))
	}
	if !isImage(contentType, data) {
		return nil, domainerrors.Validation("file must be an image")
	}

	prepared, err := s.processor.Prepare(data)
	if err != nil {
		if errors.Is(err, images.ErrUnsupportedImage) {
			return nil, domainerrors.Validation("unsupported image format")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not process the image")
	}

	analysis, err := s.analyzer.Analyze(ctx, prepared.JPEG)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.metrics.UpstreamError(metrics.ServiceAnalyzer)
		s.logger.Error("plant analysis failed", "user_id", userID, "error", err)
		return nil, domainerrors.Unavailable("plant analysis", err)
	}

	scanID, err := id.Generate(id.PrefixPlantScan)
	if err != nil {
		return nil, err
	}

	if err := s.images.Save(scanID, prepared.JPEG); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not store the image")
	}

	status, tips := domain.ParseAnalysis(analysis)
	scan := &domain.PlantScan{
		ID:           scanID,
		UserID:       userID,
		ImagePath:    s.images.Path(scanID),
		BlurHash:     prepared.BlurHash,
		HealthStatus: status,
		Tips:         tips,
		CreatedAt:    s.now(),
	}

	if err := s.store.CreatePlantScan(ctx, scan); err != nil {
		if delErr := s.images.Delete(scanID); delErr != nil {
			s.logger.Warn("failed to remove orphaned scan image", "scan_id", scanID, "error", delErr)
		}
		return nil, fmt.Errorf("create plant scan: %w", err)
	}

	s.metrics.PlantScanned()
	s.logger.Info("plant scanned",
		"user_id", userID,
		"scan_id", scanID,
		"status", status,
		"width", prepared.Width,
		"height", prepared.Height)

	return scan, nil
}

// ListScans returns the user's scans, newest first.
func (s *PlantService) ListScans(ctx context.Context, userID string) ([]*domain.PlantScan, error) {
	scans, err := s.store.ListPlantScans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plant scans: %w", err)
	}
	return scans, nil
}

// Image returns the stored JPEG of one of the user's scans.
func (s *PlantService) Image(ctx context.Context, userID, scanID string) ([]byte, error) {
	if _, err := s.store.GetPlantScan(ctx, userID, scanID); err != nil {
		return nil, notFound(err, "plant scan %s not found", scanID)
	}

	data, err := s.images.Get(scanID)
	if err != nil {
		if errors.Is(err, images.ErrNotFound) {
			return nil, domainerrors.NotFoundf("image for plant scan %s not found", scanID)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not read the scan image")
	}
	return data, nil
}

// isImage accepts a declared image/* type, or sniffs the data when the
// client sent a generic type.
func isImage(contentType string, data []byte) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && mediaType != "application/octet-stream" {
		return strings.HasPrefix(mediaType, "image/")
	}
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}
