package api

import "encoding/json"

// =============================================================================
// Response Types
// =============================================================================

// DeployResponse is the response for a deployment request that reached the
// container runtime.
type DeployResponse struct {
	Status      string   `json:"status"`
	ContainerID string   `json:"container_id,omitempty"`
	Message     string   `json:"message,omitempty"`
	Error       string   `json:"error,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// StatusResponse is the response for a found workload.
type StatusResponse struct {
	Status  string          `json:"status"` // running or stopped
	Health  string          `json:"health"`
	Details json.RawMessage `json:"details"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// =============================================================================
// Error Codes
// =============================================================================

const (
	CodeMissingFile       = "missing_file"
	CodeInvalidFileType   = "invalid_file_type"
	CodePayloadTooLarge   = "payload_too_large"
	CodeUnsupportedFormat = "unsupported_format"
	CodeInvalidDescriptor = "invalid_descriptor"
	CodeMalformedField    = "malformed_field"
	CodeExecutionTimeout  = "execution_timeout"
	CodeExecutionFailed   = "execution_failed"
	CodeRuntimeFailure    = "runtime_failure"
	CodeNotFound          = "not_found"
	CodeMalformedOutput   = "malformed_output"
)
