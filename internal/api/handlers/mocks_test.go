package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/analysis"
	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/RMahshie/roomtreat/internal/panel"
	"github.com/RMahshie/roomtreat/internal/placement"
	"github.com/RMahshie/roomtreat/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalysisService implements analysis.Service for testing
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) AnalyzeRoom(ctx context.Context, dims geometry.RoomDimensions, opts analysis.AnalyzeOptions) (analysis.RoomAnalysis, error) {
	args := m.Called(ctx, dims, opts)
	return args.Get(0).(analysis.RoomAnalysis), args.Error(1)
}

func (m *MockAnalysisService) QuickAnalysis(ctx context.Context, dims geometry.RoomDimensions) (analysis.QuickAnalysis, error) {
	args := m.Called(ctx, dims)
	return args.Get(0).(analysis.QuickAnalysis), args.Error(1)
}

func (m *MockAnalysisService) ImportMeasurement(ctx context.Context, data []byte, filename, hint string) (measurement.Series, error) {
	args := m.Called(ctx, data, filename, hint)
	return args.Get(0).(measurement.Series), args.Error(1)
}

func (m *MockAnalysisService) GenerateTreatmentPlan(ctx context.Context, req analysis.PlanRequest) (analysis.TreatmentPlan, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(analysis.TreatmentPlan), args.Error(1)
}

func (m *MockAnalysisService) DesignPanel(ctx context.Context, req panel.Request) (panel.Design, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(panel.Design), args.Error(1)
}

func (m *MockAnalysisService) SpeakerPlacement(ctx context.Context, dims geometry.RoomDimensions, opts placement.Options) (placement.Result, error) {
	args := m.Called(ctx, dims, opts)
	return args.Get(0).(placement.Result), args.Error(1)
}

func (m *MockAnalysisService) Materials(ctx context.Context, category absorption.Category) analysis.Materials {
	args := m.Called(ctx, category)
	return args.Get(0).(analysis.Materials)
}

// MockProjectRepository implements repository.ProjectRepository for testing
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMeasurementRepository implements repository.MeasurementRepository for testing
type MockMeasurementRepository struct {
	mock.Mock
}

func (m *MockMeasurementRepository) Create(ctx context.Context, record *models.MeasurementRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMeasurementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MeasurementRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.MeasurementRecord), args.Error(1)
}

func (m *MockMeasurementRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.MeasurementRecord, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]*models.MeasurementRecord), args.Error(1)
}

// MockObjectStore implements storage.ObjectStore for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

// requireStatus asserts err is a huma error with the given HTTP status.
func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected a huma status error, got %T", err)
	require.Equal(t, status, se.GetStatus())
}
