package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/RMahshie/roomtreat/internal/repository"
	"github.com/RMahshie/roomtreat/pkg/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const projectColumns = `id, name, description, length, width, height, unit, usage, speaker_type, tags, notes, created_at, updated_at`

// PostgresProjectRepository implements ProjectRepository for PostgreSQL
type PostgresProjectRepository struct {
	db *sql.DB
}

// NewPostgresProjectRepository creates a new PostgreSQL project repository
func NewPostgresProjectRepository(db *sql.DB) repository.ProjectRepository {
	return &PostgresProjectRepository{db: db}
}

// Create inserts a new project, assigning its ID and timestamps when unset
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = project.CreatedAt

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.Length,
		project.Width,
		project.Height,
		project.Unit,
		project.Usage,
		project.SpeakerType,
		pq.Array(tags(project.Tags)),
		project.Notes,
		project.CreatedAt,
		project.UpdatedAt)

	return mapError(err)
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return project, nil
}

// List returns projects newest first
func (r *PostgresProjectRepository) List(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// Update replaces the editable fields of a project
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, length = $4, width = $5, height = $6,
		    unit = $7, usage = $8, speaker_type = $9, tags = $10, notes = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.Length,
		project.Width,
		project.Height,
		project.Unit,
		project.Usage,
		project.SpeakerType,
		pq.Array(tags(project.Tags)),
		project.Notes).Scan(&project.CreatedAt, &project.UpdatedAt)

	return mapError(err)
}

// Delete removes a project. Its measurements are kept and detached.
func (r *PostgresProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Length,
		&p.Width,
		&p.Height,
		&p.Unit,
		&p.Usage,
		&p.SpeakerType,
		pq.Array(&p.Tags),
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// tags avoids writing NULL into the NOT NULL array column.
func tags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}
