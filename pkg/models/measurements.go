package models

import "github.com/RMahshie/roomtreat/internal/measurement"

// ImportMeasurementRequest uploads a raw measurement file
type ImportMeasurementRequest struct {
	Filename  string `query:"filename" example:"left.txt" doc:"Original filename, used for format detection"`
	Format    string `query:"format" enum:"auto,txt,frd,mdat" doc:"Format hint, detected when omitted"`
	ProjectID string `query:"project_id" doc:"Attach the measurement to this project"`
	RawBody   []byte `contentType:"application/octet-stream"`
}

// ImportMeasurementBody is the parsed series plus where it was stored
type ImportMeasurementBody struct {
	ID         string             `json:"id,omitempty" doc:"Measurement ID when persisted"`
	ProjectID  string             `json:"project_id,omitempty" doc:"Owning project"`
	ArchiveKey string             `json:"archive_key,omitempty" doc:"Object key of the archived raw file"`
	Series     measurement.Series `json:"series" doc:"Parsed frequency response"`
}

// ImportMeasurementResponse carries the parsed series
type ImportMeasurementResponse struct {
	Body ImportMeasurementBody
}

// GetMeasurementRequest identifies a stored measurement
type GetMeasurementRequest struct {
	ID string `path:"id" doc:"Measurement ID"`
}

// GetMeasurementBody is a stored measurement and a link to its raw file
type GetMeasurementBody struct {
	Measurement *MeasurementRecord `json:"measurement"`
	DownloadURL string             `json:"download_url,omitempty" doc:"Pre-signed URL for the raw file"`
}

// GetMeasurementResponse carries a stored measurement
type GetMeasurementResponse struct {
	Body GetMeasurementBody
}
