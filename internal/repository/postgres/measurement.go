package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/RMahshie/roomtreat/internal/repository"
	"github.com/RMahshie/roomtreat/pkg/models"
	"github.com/google/uuid"
)

// PostgresMeasurementRepository implements MeasurementRepository for PostgreSQL.
// It also serves stored series to the analysis service by ID.
type PostgresMeasurementRepository struct {
	db *sql.DB
}

// NewPostgresMeasurementRepository creates a new PostgreSQL measurement repository
func NewPostgresMeasurementRepository(db *sql.DB) *PostgresMeasurementRepository {
	return &PostgresMeasurementRepository{db: db}
}

var _ repository.MeasurementRepository = (*PostgresMeasurementRepository)(nil)

// Create inserts an imported measurement with its points
func (r *PostgresMeasurementRepository) Create(ctx context.Context, record *models.MeasurementRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.PointCount = len(record.Points)

	points, err := json.Marshal(record.Points)
	if err != nil {
		return fmt.Errorf("failed to marshal points: %w", err)
	}

	query := `
		INSERT INTO measurements (id, project_id, filename, format, name, channel, captured_at, point_count, archive_key, points, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.ProjectID,
		record.Filename,
		record.Format,
		record.Name,
		record.Channel,
		record.CapturedAt,
		record.PointCount,
		record.ArchiveKey,
		points,
		record.CreatedAt)

	return mapError(err)
}

// GetByID retrieves a measurement and its points
func (r *PostgresMeasurementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MeasurementRecord, error) {
	query := `
		SELECT id, project_id, filename, format, name, channel, captured_at, point_count, archive_key, created_at, points
		FROM measurements
		WHERE id = $1`

	var points []byte
	record, err := scanMeasurement(r.db.QueryRowContext(ctx, query, id), &points)
	if err != nil {
		return nil, mapError(err)
	}
	if err := json.Unmarshal(points, &record.Points); err != nil {
		return nil, fmt.Errorf("failed to unmarshal points: %w", err)
	}
	return record, nil
}

// ListByProject returns a project's measurements newest first, without points
func (r *PostgresMeasurementRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.MeasurementRecord, error) {
	query := `
		SELECT id, project_id, filename, format, name, channel, captured_at, point_count, archive_key, created_at
		FROM measurements
		WHERE project_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*models.MeasurementRecord{}
	for rows.Next() {
		record, err := scanMeasurement(rows, nil)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// LoadSeries returns the stored series for id.
func (r *PostgresMeasurementRepository) LoadSeries(ctx context.Context, id string) (measurement.Series, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return measurement.Series{}, fmt.Errorf("%w: invalid measurement id %q", repository.ErrNotFound, id)
	}
	record, err := r.GetByID(ctx, uid)
	if err != nil {
		return measurement.Series{}, err
	}
	return record.Series(), nil
}

// scanMeasurement reads the common columns, plus the points column when points is non-nil.
func scanMeasurement(row scanner, points *[]byte) (*models.MeasurementRecord, error) {
	var m models.MeasurementRecord
	var projectID, archiveKey sql.NullString
	var capturedAt sql.NullTime

	dest := []any{
		&m.ID,
		&projectID,
		&m.Filename,
		&m.Format,
		&m.Name,
		&m.Channel,
		&capturedAt,
		&m.PointCount,
		&archiveKey,
		&m.CreatedAt,
	}
	if points != nil {
		dest = append(dest, points)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if projectID.Valid {
		m.ProjectID = &projectID.String
	}
	if archiveKey.Valid {
		m.ArchiveKey = &archiveKey.String
	}
	if capturedAt.Valid {
		m.CapturedAt = &capturedAt.Time
	}
	return &m, nil
}
