package handlers

import (
	"context"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/analysis"
	"github.com/RMahshie/roomtreat/internal/export"
	"github.com/RMahshie/roomtreat/pkg/models"
	"github.com/rs/zerolog/log"
)

// BOMFilename is the download name of the exported bill of materials.
const BOMFilename = "treatment-plan-bom.xlsx"

// RoomHandler handles the stateless analysis requests
type RoomHandler struct {
	svc analysis.Service
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(svc analysis.Service) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// AnalyzeRoom returns the room's modes, Schroeder frequency and reverberation estimate
func (h *RoomHandler) AnalyzeRoom(ctx context.Context, req *models.AnalyzeRoomRequest) (*models.AnalyzeRoomResponse, error) {
	result, err := h.svc.AnalyzeRoom(ctx, req.Body.Room.Dimensions(), analysis.AnalyzeOptions{
		Cutoff:   req.Body.Cutoff,
		Surfaces: req.Body.Surfaces,
	})
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to analyze room", err)
	}
	return &models.AnalyzeRoomResponse{Body: result}, nil
}

// QuickAnalysis returns the reduced first-look analysis
func (h *RoomHandler) QuickAnalysis(ctx context.Context, req *models.QuickAnalysisRequest) (*models.QuickAnalysisResponse, error) {
	result, err := h.svc.QuickAnalysis(ctx, req.Body.Dimensions())
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to analyze room", err)
	}
	return &models.QuickAnalysisResponse{Body: result}, nil
}

// SpeakerPlacement returns the speaker and listener layout
func (h *RoomHandler) SpeakerPlacement(ctx context.Context, req *models.PlacementRequest) (*models.PlacementResponse, error) {
	result, err := h.svc.SpeakerPlacement(ctx, req.Body.Room.Dimensions(), req.Body.Options())
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to compute speaker placement", err)
	}
	return &models.PlacementResponse{Body: result}, nil
}

// TreatmentPlan builds the prioritized treatment plan
func (h *RoomHandler) TreatmentPlan(ctx context.Context, req *models.TreatmentPlanRequest) (*models.TreatmentPlanResponse, error) {
	plan, err := h.svc.GenerateTreatmentPlan(ctx, req.Body.PlanRequest())
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to generate treatment plan", err)
	}
	return &models.TreatmentPlanResponse{Body: plan}, nil
}

// TreatmentPlanWorkbook builds the plan and returns its bill of materials as XLSX
func (h *RoomHandler) TreatmentPlanWorkbook(ctx context.Context, req *models.TreatmentPlanRequest) (*models.BOMWorkbookResponse, error) {
	plan, err := h.svc.GenerateTreatmentPlan(ctx, req.Body.PlanRequest())
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to generate treatment plan", err)
	}

	data, err := export.BOMWorkbook(plan.Plan)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to export bill of materials", err)
	}
	log.Ctx(ctx).Info().
		Int("recommendations", len(plan.Recommendations)).
		Int("bytes", len(data)).
		Msg("Exported bill of materials")

	return &models.BOMWorkbookResponse{
		ContentType:        export.ContentType,
		ContentDisposition: `attachment; filename="` + BOMFilename + `"`,
		Body:               data,
	}, nil
}

// DesignPanel sizes one treatment device
func (h *RoomHandler) DesignPanel(ctx context.Context, req *models.DesignPanelRequest) (*models.DesignPanelResponse, error) {
	design, err := h.svc.DesignPanel(ctx, req.Body)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to design panel", err)
	}
	return &models.DesignPanelResponse{Body: design}, nil
}

// Materials lists the absorption catalog and panel sheet materials
func (h *RoomHandler) Materials(ctx context.Context, req *models.MaterialsRequest) (*models.MaterialsResponse, error) {
	return &models.MaterialsResponse{Body: h.svc.Materials(ctx, absorption.Category(req.Category))}, nil
}
