package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/roomtreat/pkg/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is returned when a unique constraint rejects the write.
	ErrDuplicate = errors.New("repository: duplicate")
)

// ProjectRepository defines the interface for saved room configurations
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, limit, offset int) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MeasurementRepository defines the interface for imported measurement series
type MeasurementRepository interface {
	Create(ctx context.Context, record *models.MeasurementRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MeasurementRecord, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.MeasurementRecord, error)
}
