package models

import "time"

// ExportFormat enumerates supported course-table export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "CSV"
	ExportFormatPDF ExportFormat = "PDF"
)

// ExportStatus tracks the lifecycle of an export job.
type ExportStatus string

const (
	ExportStatusQueued  ExportStatus = "QUEUED"
	ExportStatusRunning ExportStatus = "RUNNING"
	ExportStatusDone    ExportStatus = "DONE"
	ExportStatusFailed  ExportStatus = "FAILED"
)

// ExportJob describes one asynchronous course-table export.
type ExportJob struct {
	ID        string       `json:"id"`
	StudentID string       `json:"student_id"`
	Date      time.Time    `json:"date"`
	Format    ExportFormat `json:"format"`
	Status    ExportStatus `json:"status"`
	FilePath  string       `json:"-"`
	Token     string       `json:"token,omitempty"`
	URL       string       `json:"url,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
