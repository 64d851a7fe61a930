package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/RMahshie/roomtreat/internal/repository"
	"github.com/RMahshie/roomtreat/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupDatabase starts PostgreSQL, connects through Open and applies the schema
func setupDatabase(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("roomtreat_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, dbURL, 30*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../../migrations/0001_init.up.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)
	return db
}

func TestRepositories_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupDatabase(t)
	ctx := context.Background()
	projects := NewPostgresProjectRepository(db)
	measurements := NewPostgresMeasurementRepository(db)

	p := &models.Project{Name: "Control room", Length: 5, Width: 4, Height: 2.5, Unit: "metric", Usage: "mixing", Tags: []string{"studio"}}
	require.NoError(t, projects.Create(ctx, p))

	dup := &models.Project{Name: "Control room", Length: 3, Width: 3, Height: 2.4, Unit: "metric", Usage: "other"}
	assert.ErrorIs(t, projects.Create(ctx, dup), repository.ErrDuplicate)

	pid := uuid.MustParse(p.ID)
	got, err := projects.GetByID(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, []string{"studio"}, got.Tags)

	got.Notes = "bass build-up at the desk"
	got.Tags = nil
	require.NoError(t, projects.Update(ctx, got))
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	list, err := projects.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bass build-up at the desk", list[0].Notes)
	assert.Empty(t, list[0].Tags)

	captured := time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC)
	rec := &models.MeasurementRecord{
		ProjectID:  &p.ID,
		Filename:   "left.txt",
		Format:     string(measurement.FormatText),
		Name:       "left",
		CapturedAt: &captured,
		Points:     []measurement.Point{{Frequency: 20, Magnitude: 80}, {Frequency: 25, Magnitude: 82, Phase: 12}},
	}
	require.NoError(t, measurements.Create(ctx, rec))

	orphan := uuid.NewString()
	assert.ErrorIs(t, measurements.Create(ctx, &models.MeasurementRecord{ProjectID: &orphan, Format: "txt", Points: rec.Points}), repository.ErrNotFound)

	series, err := measurements.LoadSeries(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Points, series.Points)
	assert.True(t, series.HasPhase)
	require.NotNil(t, series.Metadata.CapturedAt)
	assert.True(t, captured.Equal(*series.Metadata.CapturedAt))

	byProject, err := measurements.ListByProject(ctx, pid)
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, 2, byProject[0].PointCount)

	require.NoError(t, projects.Delete(ctx, pid))
	_, err = projects.GetByID(ctx, pid)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	detached, err := measurements.GetByID(ctx, uuid.MustParse(rec.ID))
	require.NoError(t, err)
	assert.Nil(t, detached.ProjectID)
}
