package api

import (
	"net/http"

	"github.com/RMahshie/roomtreat/internal/analysis"
	"github.com/RMahshie/roomtreat/internal/api/handlers"
	"github.com/RMahshie/roomtreat/internal/repository"
	"github.com/RMahshie/roomtreat/internal/storage"
	"github.com/danielgtaylor/huma/v2"
)

// Dependencies are the services the routes are built from. Projects,
// Measurements and Store may be nil when no database or archive is configured.
type Dependencies struct {
	Analysis     analysis.Service
	Projects     repository.ProjectRepository
	Measurements repository.MeasurementRepository
	Store        storage.ObjectStore
	MaxBodyBytes int64
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, deps Dependencies) {
	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(deps.Analysis)
	measurementHandler := handlers.NewMeasurementHandler(deps.Analysis, deps.Measurements, deps.Store)

	// Register analysis routes
	huma.Register(api, huma.Operation{
		OperationID: "analyzeRoom",
		Method:      http.MethodPost,
		Path:        "/api/rooms/analyze",
		Summary:     "Analyze a room",
		Description: "Enumerates room modes and returns the Schroeder frequency and RT60 estimate",
		Tags:        []string{"Rooms"},
	}, roomHandler.AnalyzeRoom)

	huma.Register(api, huma.Operation{
		OperationID: "quickAnalysis",
		Method:      http.MethodPost,
		Path:        "/api/rooms/quick",
		Summary:     "Quick room analysis",
		Description: "Returns a first-look summary: room info, axial problem frequencies and short recommendations",
		Tags:        []string{"Rooms"},
	}, roomHandler.QuickAnalysis)

	huma.Register(api, huma.Operation{
		OperationID: "speakerPlacement",
		Method:      http.MethodPost,
		Path:        "/api/rooms/placement",
		Summary:     "Speaker placement",
		Description: "Returns the listening triangle, subwoofer positions and first reflection points",
		Tags:        []string{"Rooms"},
	}, roomHandler.SpeakerPlacement)

	huma.Register(api, huma.Operation{
		OperationID: "generateTreatmentPlan",
		Method:      http.MethodPost,
		Path:        "/api/treatment-plan",
		Summary:     "Generate a treatment plan",
		Description: "Builds a prioritized treatment plan and bill of materials, optionally using a measured response",
		Tags:        []string{"Treatment"},
	}, roomHandler.TreatmentPlan)

	huma.Register(api, huma.Operation{
		OperationID: "exportTreatmentPlanBOM",
		Method:      http.MethodPost,
		Path:        "/api/treatment-plan/bom.xlsx",
		Summary:     "Export bill of materials",
		Description: "Builds a treatment plan and returns it as an XLSX workbook",
		Tags:        []string{"Treatment"},
	}, roomHandler.TreatmentPlanWorkbook)

	huma.Register(api, huma.Operation{
		OperationID: "designPanel",
		Method:      http.MethodPost,
		Path:        "/api/panels/design",
		Summary:     "Design a treatment device",
		Description: "Sizes a broadband panel, corner trap, Helmholtz resonator, membrane absorber or QRD diffuser",
		Tags:        []string{"Treatment"},
	}, roomHandler.DesignPanel)

	huma.Register(api, huma.Operation{
		OperationID: "listMaterials",
		Method:      http.MethodGet,
		Path:        "/api/materials",
		Summary:     "List materials",
		Description: "Returns the absorption catalog and the sheet materials used by tuned devices",
		Tags:        []string{"Treatment"},
	}, roomHandler.Materials)

	// Register measurement routes
	huma.Register(api, huma.Operation{
		OperationID:  "importMeasurement",
		Method:       http.MethodPost,
		Path:         "/api/measurements",
		Summary:      "Import a measurement",
		Description:  "Parses a REW text, FRD or MDAT export. The raw file is archived and the series saved when storage is configured",
		Tags:         []string{"Measurements"},
		MaxBodyBytes: deps.MaxBodyBytes,
	}, measurementHandler.ImportMeasurement)

	if deps.Measurements != nil {
		huma.Register(api, huma.Operation{
			OperationID: "getMeasurement",
			Method:      http.MethodGet,
			Path:        "/api/measurements/{id}",
			Summary:     "Get a measurement",
			Description: "Returns a stored measurement and a download link for the raw file",
			Tags:        []string{"Measurements"},
		}, measurementHandler.GetMeasurement)
	}

	if deps.Projects == nil || deps.Measurements == nil {
		return
	}
	registerProjectRoutes(api, handlers.NewProjectHandler(deps.Analysis, deps.Projects, deps.Measurements))
}

func registerProjectRoutes(api huma.API, h *handlers.ProjectHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "createProject",
		Method:        http.MethodPost,
		Path:          "/api/projects",
		Summary:       "Create a project",
		Description:   "Saves a room configuration",
		Tags:          []string{"Projects"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateProject)

	huma.Register(api, huma.Operation{
		OperationID: "listProjects",
		Method:      http.MethodGet,
		Path:        "/api/projects",
		Summary:     "List projects",
		Description: "Returns saved projects, newest first",
		Tags:        []string{"Projects"},
	}, h.ListProjects)

	huma.Register(api, huma.Operation{
		OperationID: "getProject",
		Method:      http.MethodGet,
		Path:        "/api/projects/{id}",
		Summary:     "Get a project",
		Tags:        []string{"Projects"},
	}, h.GetProject)

	huma.Register(api, huma.Operation{
		OperationID: "updateProject",
		Method:      http.MethodPut,
		Path:        "/api/projects/{id}",
		Summary:     "Update a project",
		Tags:        []string{"Projects"},
	}, h.UpdateProject)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteProject",
		Method:        http.MethodDelete,
		Path:          "/api/projects/{id}",
		Summary:       "Delete a project",
		Description:   "Deletes a project; its measurements are kept and detached",
		Tags:          []string{"Projects"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteProject)

	huma.Register(api, huma.Operation{
		OperationID: "listProjectMeasurements",
		Method:      http.MethodGet,
		Path:        "/api/projects/{id}/measurements",
		Summary:     "List project measurements",
		Tags:        []string{"Projects"},
	}, h.ListMeasurements)

	huma.Register(api, huma.Operation{
		OperationID: "projectTreatmentPlan",
		Method:      http.MethodGet,
		Path:        "/api/projects/{id}/treatment-plan",
		Summary:     "Treatment plan for a project",
		Description: "Builds a treatment plan for the saved room, optionally with a stored measurement",
		Tags:        []string{"Projects"},
	}, h.TreatmentPlan)
}
