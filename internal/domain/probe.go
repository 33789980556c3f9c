package domain

import (
	"strings"
	"time"
)

// ValidationResult carries the outcome of validating a probe response beyond
// transport success, e.g. expected-tool coverage or health body schema checks.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

// MCPProbeResult is the outcome of one protocol-level probe (initialize plus
// tools/list) against a server. Immutable once created by the prober.
type MCPProbeResult struct {
	ServerName         string            `json:"serverName"`
	Timestamp          time.Time         `json:"timestamp"`
	Success            bool              `json:"success"`
	ResponseTimeMs     float64           `json:"responseTimeMs"`
	ToolsCount         *int              `json:"toolsCount,omitempty"`
	ExpectedToolsFound []string          `json:"expectedToolsFound,omitempty"`
	MissingTools       []string          `json:"missingTools,omitempty"`
	Validation         *ValidationResult `json:"validation,omitempty"`
	ConnectionError    string            `json:"connectionError,omitempty"`
	ProtocolError      string            `json:"protocolError,omitempty"`
}

// RESTProbeResult is the outcome of one conventional HTTP health-endpoint probe
// against a server. Immutable once created by the prober.
type RESTProbeResult struct {
	ServerName      string            `json:"serverName"`
	Timestamp       time.Time         `json:"timestamp"`
	Success         bool              `json:"success"`
	ResponseTimeMs  float64           `json:"responseTimeMs"`
	StatusCode      int               `json:"statusCode,omitempty"` // 0 when no response was received
	Validation      *ValidationResult `json:"validation,omitempty"`
	ConnectionError string            `json:"connectionError,omitempty"`
	HTTPError       string            `json:"httpError,omitempty"`
}

// ErrorMessage returns the most relevant human-readable error for the probe,
// preferring connection errors, then protocol errors, then validation errors.
func (r *MCPProbeResult) ErrorMessage() string {
	if r == nil {
		return ""
	}
	if r.ConnectionError != "" {
		return r.ConnectionError
	}
	if r.ProtocolError != "" {
		return r.ProtocolError
	}
	if r.Validation != nil && len(r.Validation.Errors) > 0 {
		return joinErrors(r.Validation.Errors)
	}
	return ""
}

// ErrorMessage returns the most relevant human-readable error for the probe,
// preferring connection errors, then HTTP errors, then validation errors.
func (r *RESTProbeResult) ErrorMessage() string {
	if r == nil {
		return ""
	}
	if r.ConnectionError != "" {
		return r.ConnectionError
	}
	if r.HTTPError != "" {
		return r.HTTPError
	}
	if r.Validation != nil && len(r.Validation.Errors) > 0 {
		return joinErrors(r.Validation.Errors)
	}
	return ""
}

func joinErrors(errs []string) string {
	return strings.Join(errs, "; ")
}
