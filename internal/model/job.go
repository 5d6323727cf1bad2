package model

// JobStatus mirrors the states tracked by the jobs API
type JobStatus string

const (
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Task type registered with the queue server
const TaskTypeHapticGenerate = "haptic:generate"

// JobMessage is the queue payload that starts a job.
// JobID and VideoFilename are required; a message missing either is rejected
// without any status report.
type JobMessage struct {
	JobID         string         `json:"jobId"`
	VideoFilename string         `json:"videoFilename"`
	Formats       []OutputFormat `json:"formats,omitempty"`
}

// ProcessRequest is the body of the manual processing endpoint
type ProcessRequest struct {
	VideoFilename string         `json:"videoFilename" validate:"required"`
	Formats       []OutputFormat `json:"formats,omitempty" validate:"omitempty,dive,oneof=json ahap"`
}

// ProcessResponse is returned by the manual processing endpoint
type ProcessResponse struct {
	JobID      string    `json:"jobId"`
	Status     JobStatus `json:"status"`
	OutputPath string    `json:"outputPath,omitempty"`
}
