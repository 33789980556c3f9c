package domain

import "time"

const (
	// HealthStatusHealthy indicates both probe paths (or the trusted one, in permissive mode) succeed.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded indicates exactly one probe path succeeds.
	HealthStatusDegraded HealthStatus = "degraded"

	// HealthStatusUnhealthy indicates both probe paths fail.
	HealthStatusUnhealthy HealthStatus = "unhealthy"

	// HealthStatusUnknown indicates neither probe ran, or aggregation itself failed.
	HealthStatusUnknown HealthStatus = "unknown"
)

const (
	PathMCP  ProbePath = "mcp"
	PathREST ProbePath = "rest"
	PathBoth ProbePath = "both"
	PathNone ProbePath = "none"
)

// HealthStatus represents the aggregated state of an MCP server's availability.
type HealthStatus string

// ProbePath identifies which of the two probe paths a value relates to.
type ProbePath string

// CombinedHealthMetrics is the cross-path metrics snapshot embedded in every
// DualHealthCheckResult. All fields are plain values so the struct serializes
// without transformation.
type CombinedHealthMetrics struct {
	MCPResponseTimeMs          float64     `json:"mcpResponseTimeMs"`
	RESTResponseTimeMs         float64     `json:"restResponseTimeMs"`
	CombinedResponseTimeMs     float64     `json:"combinedResponseTimeMs"`
	MCPSuccessRate             float64     `json:"mcpSuccessRate"`
	RESTSuccessRate            float64     `json:"restSuccessRate"`
	CombinedSuccessRate        float64     `json:"combinedSuccessRate"`
	ToolsAvailable             int         `json:"toolsAvailable"`
	ToolsExpected              int         `json:"toolsExpected"`
	ToolsAvailabilityPercent   float64     `json:"toolsAvailabilityPercent"`
	HTTPStatusCodes            map[int]int `json:"httpStatusCodes,omitempty"`
	HealthEndpointAvailability float64     `json:"healthEndpointAvailability"`
}

// DualHealthCheckResult is the single verdict produced for one evaluation of a
// server across both probe paths. It is created once by the aggregator and never
// mutated afterwards.
type DualHealthCheckResult struct {
	ServerName             string                `json:"serverName"`
	Timestamp              time.Time             `json:"timestamp"`
	OverallStatus          HealthStatus          `json:"overallStatus"`
	OverallSuccess         bool                  `json:"overallSuccess"`
	MCPResult              *MCPProbeResult       `json:"mcpResult,omitempty"`
	MCPSuccess             bool                  `json:"mcpSuccess"`
	MCPResponseTimeMs      float64               `json:"mcpResponseTimeMs"`
	RESTResult             *RESTProbeResult      `json:"restResult,omitempty"`
	RESTSuccess            bool                  `json:"restSuccess"`
	RESTResponseTimeMs     float64               `json:"restResponseTimeMs"`
	CombinedResponseTimeMs float64               `json:"combinedResponseTimeMs"`
	HealthScore            float64               `json:"healthScore"`
	AvailablePaths         []ProbePath           `json:"availablePaths"`
	CombinedMetrics        CombinedHealthMetrics `json:"combinedMetrics"`
	MCPError               string                `json:"mcpError,omitempty"`
	RESTError              string                `json:"restError,omitempty"`
}
