// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// The `db` tags work with sqlx for database column mapping. There is no ORM;
// the database package writes the SQL.
package models

import (
	"time"
)

// ExtractionStatus is the result of processing one uploaded document.
type ExtractionStatus string

const (
	StatusCompleted ExtractionStatus = "completed"
	StatusSkipped   ExtractionStatus = "skipped"
)

// Extraction is the history record for one document in one request.
// Only metadata is stored; uploaded and extracted bytes never are.
type Extraction struct {
	ID            string           `json:"id" db:"id"`
	BatchID       string           `json:"batch_id" db:"batch_id"`
	OriginalName  string           `json:"original_name" db:"original_name"`
	OutputName    string           `json:"output_name,omitempty" db:"output_name"`
	PageSpec      string           `json:"page_spec" db:"page_spec"`
	SourcePages   int              `json:"source_pages" db:"source_pages"`
	SelectedPages string           `json:"selected_pages" db:"selected_pages"` // Normalized 1-based spec, e.g. "1,3,5-7"
	PageCount     int              `json:"page_count" db:"page_count"`         // Pages in the extracted document
	Status        ExtractionStatus `json:"status" db:"status"`
	WarningKind   string           `json:"warning_kind,omitempty" db:"warning_kind"`
	ErrorMessage  string           `json:"error_message,omitempty" db:"error_message"`
	ClientID      string           `json:"-" db:"client_id"` // JWT subject or client IP
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// --- Request/Response DTOs ---

// DocumentInfo describes one uploaded file for the inspect endpoint.
type DocumentInfo struct {
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count,omitempty"`
	Size      int    `json:"size"`
	Error     string `json:"error,omitempty"`
}

// InspectResponse is returned by POST /api/v1/pdf/inspect.
type InspectResponse struct {
	Documents []DocumentInfo `json:"documents"`
}

// DocumentWarning tells the user why one document was skipped.
type DocumentWarning struct {
	Document string `json:"document"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// ExtractFailureResponse is returned when no document could be extracted.
type ExtractFailureResponse struct {
	ErrorResponse
	BatchID  string            `json:"batch_id"`
	Warnings []DocumentWarning `json:"warnings"`
}

// ExtractionListParams holds query parameters for listing history.
type ExtractionListParams struct {
	Limit   int              `form:"limit"`
	BatchID string           `form:"batch_id"`
	Status  ExtractionStatus `form:"status"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Auth     string `json:"auth"`
}
