package handlers

import (
	"context"

	"github.com/RMahshie/roomtreat/internal/analysis"
	"github.com/RMahshie/roomtreat/internal/repository"
	"github.com/RMahshie/roomtreat/internal/storage"
	"github.com/RMahshie/roomtreat/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MeasurementHandler handles measurement imports and lookups.
// repo and store are optional; without them imports are parsed only.
type MeasurementHandler struct {
	svc   analysis.Service
	repo  repository.MeasurementRepository
	store storage.ObjectStore
}

// NewMeasurementHandler creates a new measurement handler
func NewMeasurementHandler(svc analysis.Service, repo repository.MeasurementRepository, store storage.ObjectStore) *MeasurementHandler {
	return &MeasurementHandler{
		svc:   svc,
		repo:  repo,
		store: store,
	}
}

// ImportMeasurement parses an uploaded measurement, archives the raw file and
// persists the series when those backends are configured
func (h *MeasurementHandler) ImportMeasurement(ctx context.Context, req *models.ImportMeasurementRequest) (*models.ImportMeasurementResponse, error) {
	logger := log.Ctx(ctx)

	var projectID *string
	if req.ProjectID != "" {
		if h.repo == nil {
			return nil, huma.Error400BadRequest("project_id requires a configured database", nil)
		}
		id, err := uuid.Parse(req.ProjectID)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid project ID format", err)
		}
		s := id.String()
		projectID = &s
	}

	series, err := h.svc.ImportMeasurement(ctx, req.RawBody, req.Filename, req.Format)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to import measurement", err)
	}

	resp := &models.ImportMeasurementResponse{}
	resp.Body.Series = series
	if h.repo == nil && h.store == nil {
		return resp, nil
	}

	id := uuid.New().String()

	var archiveKey *string
	if h.store != nil {
		key := storage.MeasurementKey(id, req.Filename)
		if err := h.store.Put(ctx, key, req.RawBody, storage.ContentTypeFor(series.Metadata.Format)); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to archive measurement")
		} else {
			archiveKey = &key
			resp.Body.ArchiveKey = key
		}
	}

	if h.repo == nil {
		return resp, nil
	}

	record := &models.MeasurementRecord{
		ID:         id,
		ProjectID:  projectID,
		Filename:   req.Filename,
		Format:     string(series.Metadata.Format),
		Name:       series.Metadata.Name,
		Channel:    series.Metadata.Channel,
		CapturedAt: series.Metadata.CapturedAt,
		ArchiveKey: archiveKey,
		Points:     series.Points,
	}
	if err := h.repo.Create(ctx, record); err != nil {
		if archiveKey != nil {
			if derr := h.store.Delete(ctx, *archiveKey); derr != nil {
				logger.Warn().Err(derr).Str("key", *archiveKey).Msg("Failed to remove orphaned archive")
			}
		}
		return nil, toHTTPError(ctx, "Failed to save measurement", err)
	}

	logger.Info().Str("measurementID", id).Int("points", len(record.Points)).Msg("Measurement saved")
	resp.Body.ID = id
	if projectID != nil {
		resp.Body.ProjectID = *projectID
	}
	return resp, nil
}

// GetMeasurement returns a stored measurement and a download link for its raw file
func (h *MeasurementHandler) GetMeasurement(ctx context.Context, req *models.GetMeasurementRequest) (*models.GetMeasurementResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid measurement ID format", err)
	}

	record, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, "Failed to get measurement", err)
	}

	resp := &models.GetMeasurementResponse{}
	resp.Body.Measurement = record
	if record.ArchiveKey != nil && h.store != nil {
		url, err := h.store.PresignGet(ctx, *record.ArchiveKey, storage.DownloadURLExpiry)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", *record.ArchiveKey).Msg("Failed to presign measurement download")
		} else {
			resp.Body.DownloadURL = url
		}
	}
	return resp, nil
}
