package domain

import (
	"fmt"
	"time"
)

const (
	WindowLastHour TimeWindow = "last_hour"
	WindowLastDay  TimeWindow = "last_day"
	WindowLastWeek TimeWindow = "last_week"
)

// TimeWindow names a rolling window over which report statistics are computed.
type TimeWindow string

// Duration returns the length of the rolling window.
func (w TimeWindow) Duration() time.Duration {
	switch w {
	case WindowLastHour:
		return time.Hour
	case WindowLastDay:
		return 24 * time.Hour
	case WindowLastWeek:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// ParseTimeWindow converts a string into a known TimeWindow.
func ParseTimeWindow(s string) (TimeWindow, error) {
	switch TimeWindow(s) {
	case WindowLastHour, WindowLastDay, WindowLastWeek:
		return TimeWindow(s), nil
	case "":
		return WindowLastHour, nil
	default:
		return "", fmt.Errorf("unknown time window: %s", s)
	}
}

// StatusCodeCount is one entry in a report's ranked HTTP status-code table.
type StatusCodeCount struct {
	StatusCode int `json:"statusCode"`
	Count      int `json:"count"`
}

// AggregationReport is an on-demand statistical projection of one server's
// retained metrics over a TimeWindow. It is recomputed on every query and
// never persisted.
type AggregationReport struct {
	ServerName               string            `json:"serverName"`
	Window                   TimeWindow        `json:"window"`
	GeneratedAt              time.Time         `json:"generatedAt"`
	TotalMCPChecks           int64             `json:"totalMcpChecks"`
	TotalRESTChecks          int64             `json:"totalRestChecks"`
	MCPSuccessRate           float64           `json:"mcpSuccessRate"`
	RESTSuccessRate          float64           `json:"restSuccessRate"`
	CombinedSuccessRate      float64           `json:"combinedSuccessRate"`
	AvgMCPResponseTimeMs     float64           `json:"avgMcpResponseTimeMs"`
	AvgRESTResponseTimeMs    float64           `json:"avgRestResponseTimeMs"`
	P95MCPResponseTimeMs     float64           `json:"p95McpResponseTimeMs"`
	P95RESTResponseTimeMs    float64           `json:"p95RestResponseTimeMs"`
	ToolAvailabilityRate     float64           `json:"toolAvailabilityRate"`
	EndpointAvailabilityRate float64           `json:"endpointAvailabilityRate"`
	OverallAvailabilityRate  float64           `json:"overallAvailabilityRate"`
	TopStatusCodes           []StatusCodeCount `json:"topStatusCodes,omitempty"`
	ErrorBreakdown           map[string]int64  `json:"errorBreakdown,omitempty"`
}

// HealthSummary is a fleet-wide rollup across a batch of dual health results.
type HealthSummary struct {
	TotalServers          int                  `json:"totalServers"`
	CountsByStatus        map[HealthStatus]int `json:"countsByStatus"`
	AverageHealthScore    float64              `json:"averageHealthScore"`
	AverageResponseTimeMs float64              `json:"averageResponseTimeMs"`
	MCPSuccessRate        float64              `json:"mcpSuccessRate"`
	RESTSuccessRate       float64              `json:"restSuccessRate"`
}
