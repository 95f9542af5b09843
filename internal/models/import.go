package models

import "time"

// Import job status constants.
const (
	ImportQueued    = "queued"
	ImportRunning   = "running"
	ImportCompleted = "completed"
	ImportFailed    = "failed"
)

// RowError records one rejected or failed import row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the final outcome of a bulk import.
type ImportResult struct {
	TotalRows int        `json:"total_rows"`
	Imported  int        `json:"imported"`
	Updated   int        `json:"updated"`
	Errors    []RowError `json:"errors"`
}

// HasErrors reports whether any row failed during the import.
func (r *ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ImportProgress is emitted after every flushed batch.
type ImportProgress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// ImportJob is the externally visible status record of a bulk import.
type ImportJob struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	Progress   ImportProgress  `json:"progress"`
	Result     *ImportResult   `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
