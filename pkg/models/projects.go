package models

// ProjectBody is the editable part of a project
type ProjectBody struct {
	Name        string   `json:"name" minLength:"1" maxLength:"100" doc:"Unique project name"`
	Description string   `json:"description,omitempty" maxLength:"500" doc:"Short description"`
	Room        RoomBody `json:"room" doc:"Room geometry"`
	SpeakerType string   `json:"speaker_type,omitempty" enum:"nearfield,midfield" doc:"Monitor class"`
	Tags        []string `json:"tags,omitempty" maxItems:"20" doc:"Free-form tags"`
	Notes       string   `json:"notes,omitempty" maxLength:"2000" doc:"Additional notes"`
}

// Apply copies the body onto p.
func (b ProjectBody) Apply(p *Project) {
	p.Name = b.Name
	p.Description = b.Description
	p.Length = b.Room.Length
	p.Width = b.Room.Width
	p.Height = b.Room.Height
	p.Unit = b.Room.Unit
	p.Usage = b.Room.Usage
	p.SpeakerType = b.SpeakerType
	p.Tags = b.Tags
	p.Notes = b.Notes
}

// CreateProjectRequest represents a request to save a room configuration
type CreateProjectRequest struct {
	Body ProjectBody
}

// ProjectResponse carries one project
type ProjectResponse struct {
	Body *Project
}

// GetProjectRequest identifies a project
type GetProjectRequest struct {
	ID string `path:"id" doc:"Project ID"`
}

// ListProjectsRequest pages through projects, newest first
type ListProjectsRequest struct {
	Limit  int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset int `query:"offset" minimum:"0" doc:"Rows to skip"`
}

// ListProjectsBody is one page of projects
type ListProjectsBody struct {
	Projects []*Project `json:"projects"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ListProjectsResponse carries a page of projects
type ListProjectsResponse struct {
	Body ListProjectsBody
}

// UpdateProjectRequest replaces a project's editable fields
type UpdateProjectRequest struct {
	ID   string `path:"id" doc:"Project ID"`
	Body ProjectBody
}

// DeleteProjectRequest identifies the project to delete
type DeleteProjectRequest struct {
	ID string `path:"id" doc:"Project ID"`
}

// ProjectMeasurementsRequest lists the measurements attached to a project
type ProjectMeasurementsRequest struct {
	ID string `path:"id" doc:"Project ID"`
}

// ProjectMeasurementsResponse carries the project's measurements without their points
type ProjectMeasurementsResponse struct {
	Body struct {
		Measurements []*MeasurementRecord `json:"measurements" doc:"Measurements, newest first"`
	}
}

// ProjectPlanRequest builds a treatment plan from a saved project
type ProjectPlanRequest struct {
	ID            string `path:"id" doc:"Project ID"`
	MeasurementID string `query:"measurement_id" doc:"Use this stored measurement in the plan"`
}
