package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

func TestPlantScans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "user-1")

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"scan-1", "scan-2"} {
		scan := &domain.PlantScan{
			ID:           id,
			UserID:       "user-1",
			ImagePath:    "/images/plant-scans/" + id + ".jpg",
			BlurHash:     "LEHV6nWB2yk8",
			HealthStatus: "Healthy",
			Tips:         "Healthy\nKeep it up.",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreatePlantScan(ctx, scan); err != nil {
			t.Fatalf("create scan: %v", err)
		}
	}

	scans, err := s.ListPlantScans(ctx, "user-1")
	if err != nil {
		t.Fatalf("list scans: %v", err)
	}
	if len(scans) != 2 || scans[0].ID != "scan-2" {
		t.Fatalf("expected newest first, got %+v", scans)
	}

	got, err := s.GetPlantScan(ctx, "user-1", "scan-1")
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got.Tips != "Healthy\nKeep it up." {
		t.Errorf("tips: %q", got.Tips)
	}

	if _, err := s.GetPlantScan(ctx, "user-2", "scan-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}
