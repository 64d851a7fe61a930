package models

import (
	"time"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/measurement"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// Project is a saved room configuration (for internal use and responses)
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Length      float64   `json:"length"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Unit        string    `json:"unit"`
	Usage       string    `json:"usage"`
	SpeakerType string    `json:"speaker_type,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Dimensions returns the stored room in the core's input form.
func (p *Project) Dimensions() geometry.RoomDimensions {
	return geometry.RoomDimensions{
		Length: p.Length,
		Width:  p.Width,
		Height: p.Height,
		Unit:   geometry.Unit(p.Unit),
		Usage:  geometry.Usage(p.Usage),
	}
}

// MeasurementRecord is an imported frequency response as stored
type MeasurementRecord struct {
	ID         string              `json:"id"`
	ProjectID  *string             `json:"project_id,omitempty"`
	Filename   string              `json:"filename"`
	Format     string              `json:"format"`
	Name       string              `json:"name,omitempty"`
	Channel    string              `json:"channel,omitempty"`
	CapturedAt *time.Time          `json:"captured_at,omitempty"`
	PointCount int                 `json:"point_count"`
	ArchiveKey *string             `json:"archive_key,omitempty"`
	Points     []measurement.Point `json:"points"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Series rebuilds the parsed series from the stored points.
func (r *MeasurementRecord) Series() measurement.Series {
	s := measurement.Series{
		Points: r.Points,
		Metadata: measurement.Metadata{
			Format:     measurement.Format(r.Format),
			Name:       r.Name,
			Channel:    r.Channel,
			CapturedAt: r.CapturedAt,
		},
	}
	for _, p := range r.Points {
		if p.Phase != 0 {
			s.HasPhase = true
			break
		}
	}
	return s
}
