package models

import (
	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/analysis"
	"github.com/RMahshie/roomtreat/internal/panel"
	"github.com/RMahshie/roomtreat/internal/placement"
)

// RoomBody describes a rectangular room in the caller's units
type RoomBody struct {
	Length float64 `json:"length" example:"5" doc:"Room length (front wall to rear wall)"`
	Width  float64 `json:"width" example:"4" doc:"Room width"`
	Height float64 `json:"height" example:"2.5" doc:"Ceiling height"`
	Unit   string  `json:"unit,omitempty" enum:"metric,imperial" doc:"Unit of the dimensions, metres when omitted"`
	Usage  string  `json:"usage,omitempty" enum:"mixing,recording,production,other" doc:"Intended use of the room, mixing when omitted"`
}

// Dimensions converts the body to the core's input form.
func (r RoomBody) Dimensions() geometry.RoomDimensions {
	return geometry.RoomDimensions{
		Length: r.Length,
		Width:  r.Width,
		Height: r.Height,
		Unit:   geometry.Unit(r.Unit),
		Usage:  geometry.Usage(r.Usage),
	}
}

// AnalyzeRoomBody is the full room analysis input
type AnalyzeRoomBody struct {
	Room     RoomBody             `json:"room" doc:"Room geometry"`
	Cutoff   float64              `json:"cutoff,omitempty" doc:"Highest mode frequency to enumerate in Hz (default 300)"`
	Surfaces []absorption.Surface `json:"surfaces,omitempty" doc:"Surface finishes; a typical profile for the usage is assumed when omitted"`
}

// AnalyzeRoomRequest represents a request for a full modal and RT60 analysis
type AnalyzeRoomRequest struct {
	Body AnalyzeRoomBody
}

// AnalyzeRoomResponse carries the room analysis
type AnalyzeRoomResponse struct {
	Body analysis.RoomAnalysis
}

// QuickAnalysisRequest represents a request for the reduced first-look analysis
type QuickAnalysisRequest struct {
	Body RoomBody
}

// QuickAnalysisResponse carries the quick analysis
type QuickAnalysisResponse struct {
	Body analysis.QuickAnalysis
}

// PlacementBody is the speaker placement input
type PlacementBody struct {
	Room             RoomBody `json:"room" doc:"Room geometry"`
	SpeakerType      string   `json:"speaker_type,omitempty" enum:"nearfield,midfield" doc:"Monitor class, nearfield when omitted"`
	ListenerFraction float64  `json:"listener_fraction,omitempty" doc:"Listener distance from the front wall as a fraction of the length (default 0.38)"`
}

// Options converts the body to placement options.
func (b PlacementBody) Options() placement.Options {
	return placement.Options{
		SpeakerType:      placement.SpeakerType(b.SpeakerType),
		ListenerFraction: b.ListenerFraction,
	}
}

// PlacementRequest represents a speaker placement request
type PlacementRequest struct {
	Body PlacementBody
}

// PlacementResponse carries the speaker layout
type PlacementResponse struct {
	Body placement.Result
}

// MeasurementRef selects the optional measurement a plan uses
type MeasurementRef struct {
	ID       string `json:"id,omitempty" doc:"ID of a previously imported measurement"`
	Data     []byte `json:"data,omitempty" doc:"Base64 encoded measurement file"`
	Filename string `json:"filename,omitempty" doc:"Original filename, used for format detection"`
	Format   string `json:"format,omitempty" enum:"auto,txt,frd,mdat" doc:"Format hint"`
}

// TreatmentPlanBody is the treatment plan input
type TreatmentPlanBody struct {
	Room             RoomBody             `json:"room" doc:"Room geometry"`
	Cutoff           float64              `json:"cutoff,omitempty" doc:"Highest mode frequency to enumerate in Hz (default 300)"`
	Surfaces         []absorption.Surface `json:"surfaces,omitempty" doc:"Surface finishes"`
	SpeakerType      string               `json:"speaker_type,omitempty" enum:"nearfield,midfield" doc:"Monitor class"`
	ListenerFraction float64              `json:"listener_fraction,omitempty" doc:"Listener position as a fraction of the length"`
	Measurement      *MeasurementRef      `json:"measurement,omitempty" doc:"Optional measured response"`
}

// PlanRequest converts the body to the facade's request.
func (b TreatmentPlanBody) PlanRequest() analysis.PlanRequest {
	req := analysis.PlanRequest{
		Room:     b.Room.Dimensions(),
		Surfaces: b.Surfaces,
		Cutoff:   b.Cutoff,
		Placement: placement.Options{
			SpeakerType:      placement.SpeakerType(b.SpeakerType),
			ListenerFraction: b.ListenerFraction,
		},
	}
	if m := b.Measurement; m != nil {
		req.Measurement = &analysis.MeasurementSource{ID: m.ID, Data: m.Data, Filename: m.Filename, Format: m.Format}
	}
	return req
}

// TreatmentPlanRequest represents a treatment plan request
type TreatmentPlanRequest struct {
	Body TreatmentPlanBody
}

// TreatmentPlanResponse carries the plan
type TreatmentPlanResponse struct {
	Body analysis.TreatmentPlan
}

// BOMWorkbookResponse streams the plan's bill of materials as a spreadsheet
type BOMWorkbookResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// DesignPanelRequest represents a request to size one treatment device
type DesignPanelRequest struct {
	Body panel.Request
}

// DesignPanelResponse carries the device design
type DesignPanelResponse struct {
	Body panel.Design
}

// MaterialsRequest filters the material catalog
type MaterialsRequest struct {
	Category string `query:"category" enum:"surface,treatment,porous" doc:"Only list materials of this category"`
}

// MaterialsResponse carries the catalogs
type MaterialsResponse struct {
	Body analysis.Materials
}
