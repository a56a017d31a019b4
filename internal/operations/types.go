package operations

import (
	"time"
)

// Step identifiers
const (
	StepIDFetch      = "fetch"
	StepIDNormalize  = "normalize"
	StepIDStatistics = "statistics"
	StepIDExport     = "export"
	StepIDChart      = "chart"
	StepIDReport     = "report"
	StepIDPublish    = "publish"
)

// Step names
const (
	StepNameFetch      = "Fetch Source Data"
	StepNameNormalize  = "Normalize Series"
	StepNameStatistics = "Derive Statistics"
	StepNameExport     = "Write CSV"
	StepNameChart      = "Render Chart"
	StepNameReport     = "Print Summary"
	StepNamePublish    = "Publish Artifacts"
)

// Context keys for operation state
const (
	ContextKeyVariant    = "variant"
	ContextKeyTables     = "raw_tables"
	ContextKeySeries     = "series"
	ContextKeyRatio      = "ratio"
	ContextKeyStatistics = "statistics"
	ContextKeyDerived    = "derived_columns"
	ContextKeyRowsIn     = "rows_in"
	ContextKeyRowsOut    = "rows_out"
	ContextKeySummary    = "summary"
)

// DefaultStepTimeout bounds a single step when the request sets none
const DefaultStepTimeout = 5 * time.Minute

// OperationRequest represents a request to run one variant
type OperationRequest struct {
	Variant     string                 `json:"variant"`
	StepTimeout time.Duration          `json:"step_timeout,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the outcome of a run
type OperationResponse struct {
	ID        string               `json:"id"`
	Variant   string               `json:"variant"`
	Status    OperationStatusValue `json:"status"`
	Duration  time.Duration        `json:"duration"`
	Steps     []StepResult         `json:"steps"`
	Artifacts []string             `json:"artifacts"`
	Error     string               `json:"error,omitempty"`
}

// StepResult is the per-step part of an OperationResponse
type StepResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
}
