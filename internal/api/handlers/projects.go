package handlers

import (
	"context"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/analysis"
	"github.com/RMahshie/roomtreat/internal/placement"
	"github.com/RMahshie/roomtreat/internal/repository"
	"github.com/RMahshie/roomtreat/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProjectHandler handles saved room configurations
type ProjectHandler struct {
	svc          analysis.Service
	projects     repository.ProjectRepository
	measurements repository.MeasurementRepository
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(svc analysis.Service, projects repository.ProjectRepository, measurements repository.MeasurementRepository) *ProjectHandler {
	return &ProjectHandler{
		svc:          svc,
		projects:     projects,
		measurements: measurements,
	}
}

// CreateProject validates and saves a room configuration
func (h *ProjectHandler) CreateProject(ctx context.Context, req *models.CreateProjectRequest) (*models.ProjectResponse, error) {
	project := &models.Project{}
	if err := applyBody(project, req.Body); err != nil {
		return nil, err
	}

	if err := h.projects.Create(ctx, project); err != nil {
		return nil, toHTTPError(ctx, "Failed to create project", err)
	}

	log.Ctx(ctx).Info().Str("projectID", project.ID).Str("name", project.Name).Msg("Project created")
	return &models.ProjectResponse{Body: project}, nil
}

// GetProject returns one project
func (h *ProjectHandler) GetProject(ctx context.Context, req *models.GetProjectRequest) (*models.ProjectResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	project, err := h.projects.GetByID(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to get project", err)
	}
	return &models.ProjectResponse{Body: project}, nil
}

// ListProjects returns a page of projects, newest first
func (h *ProjectHandler) ListProjects(ctx context.Context, req *models.ListProjectsRequest) (*models.ListProjectsResponse, error) {
	projects, err := h.projects.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to list projects", err)
	}
	if projects == nil {
		projects = []*models.Project{}
	}

	return &models.ListProjectsResponse{Body: models.ListProjectsBody{
		Projects: projects,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}}, nil
}

// UpdateProject replaces a project's editable fields
func (h *ProjectHandler) UpdateProject(ctx context.Context, req *models.UpdateProjectRequest) (*models.ProjectResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	project := &models.Project{ID: id.String()}
	if err := applyBody(project, req.Body); err != nil {
		return nil, err
	}

	if err := h.projects.Update(ctx, project); err != nil {
		return nil, toHTTPError(ctx, "Failed to update project", err)
	}
	return &models.ProjectResponse{Body: project}, nil
}

// DeleteProject removes a project. Its measurements are kept but detached.
func (h *ProjectHandler) DeleteProject(ctx context.Context, req *models.DeleteProjectRequest) (*struct{}, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	if err := h.projects.Delete(ctx, id); err != nil {
		return nil, toHTTPError(ctx, "Failed to delete project", err)
	}

	log.Ctx(ctx).Info().Str("projectID", id.String()).Msg("Project deleted")
	return nil, nil
}

// ListMeasurements returns the measurements attached to a project
func (h *ProjectHandler) ListMeasurements(ctx context.Context, req *models.ProjectMeasurementsRequest) (*models.ProjectMeasurementsResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	if _, err := h.projects.GetByID(ctx, id); err != nil {
		return nil, toHTTPError(ctx, "Failed to get project", err)
	}
	records, err := h.measurements.ListByProject(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to list measurements", err)
	}

	resp := &models.ProjectMeasurementsResponse{}
	resp.Body.Measurements = records
	if resp.Body.Measurements == nil {
		resp.Body.Measurements = []*models.MeasurementRecord{}
	}
	return resp, nil
}

// TreatmentPlan builds a treatment plan for the saved room, optionally using
// one of the stored measurements
func (h *ProjectHandler) TreatmentPlan(ctx context.Context, req *models.ProjectPlanRequest) (*models.TreatmentPlanResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	project, err := h.projects.GetByID(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to get project", err)
	}

	planReq := analysis.PlanRequest{
		Room:      project.Dimensions(),
		Placement: placement.Options{SpeakerType: placement.SpeakerType(project.SpeakerType)},
	}
	if req.MeasurementID != "" {
		planReq.Measurement = &analysis.MeasurementSource{ID: req.MeasurementID}
	}

	plan, err := h.svc.GenerateTreatmentPlan(ctx, planReq)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to generate treatment plan", err)
	}
	return &models.TreatmentPlanResponse{Body: plan}, nil
}

// applyBody validates the room and speaker type, then copies the body onto p
// with the unit and usage normalized.
func applyBody(p *models.Project, body models.ProjectBody) error {
	room, err := geometry.NewRoom(body.Room.Dimensions())
	if err != nil {
		return huma.Error422UnprocessableEntity(err.Error(), err)
	}
	speaker, err := placement.ParseSpeakerType(body.SpeakerType)
	if err != nil {
		return huma.Error422UnprocessableEntity(err.Error(), err)
	}

	body.Apply(p)
	p.Unit = string(room.Unit)
	p.Usage = string(room.Usage)
	p.SpeakerType = string(speaker)
	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, huma.Error400BadRequest("Invalid ID format", err)
	}
	return id, nil
}
