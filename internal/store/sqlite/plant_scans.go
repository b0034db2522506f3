package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

const plantScanColumns = `id, user_id, image_path, blur_hash, health_status, tips, created_at`

func scanPlantScan(scanner interface{ Scan(dest ...any) error }) (*domain.PlantScan, error) {
	var (
		p         domain.PlantScan
		createdAt string
	)
	if err := scanner.Scan(&p.ID, &p.UserID, &p.ImagePath, &p.BlurHash, &p.HealthStatus, &p.Tips, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlantScan inserts a scan.
func (q *queries) CreatePlantScan(ctx context.Context, p *domain.PlantScan) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO plant_scans (`+plantScanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.ImagePath, p.BlurHash, p.HealthStatus, p.Tips, formatTime(p.CreatedAt))
	return err
}

// GetPlantScan retrieves a scan owned by userID.
func (q *queries) GetPlantScan(ctx context.Context, userID, scanID string) (*domain.PlantScan, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+plantScanColumns+` FROM plant_scans WHERE id = ? AND user_id = ?`, scanID, userID)

	p, err := scanPlantScan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlantScans returns the user's scans newest first.
func (q *queries) ListPlantScans(ctx context.Context, userID string) ([]*domain.PlantScan, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+plantScanColumns+` FROM plant_scans WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := make([]*domain.PlantScan, 0)
	for rows.Next() {
		p, err := scanPlantScan(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, p)
	}
	return scans, rows.Err()
}
