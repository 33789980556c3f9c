package metrics

import (
	"github.com/probeops/dualwatch/internal/domain"
)

// CombinedMetrics derives cross-path numbers for one server. It references the
// server's MCPMetrics and RESTMetrics (shared with the Collector, never
// copied) and owns only the combined response-time series plus the overall
// availability counters.
type CombinedMetrics struct {
	ServerName           string
	AvailabilityCount    int64
	UnavailabilityCount  int64
	CombinedResponseTime *Series
	mcp                  *MCPMetrics
	rest                 *RESTMetrics
}

func newCombinedMetrics(serverName string, mcp *MCPMetrics, rest *RESTMetrics) *CombinedMetrics {
	return &CombinedMetrics{
		ServerName:           serverName,
		CombinedResponseTime: NewSeries(),
		mcp:                  mcp,
		rest:                 rest,
	}
}

// record folds one verdict into the combined series and counters. The combined
// response-time sample is appended only when both path times are present; a
// healthy or degraded verdict counts as available. Caller must hold the
// collector lock.
func (m *CombinedMetrics) record(result domain.DualHealthCheckResult) {
	if result.MCPResult != nil && result.RESTResult != nil {
		m.CombinedResponseTime.RecordAt(result.Timestamp, result.CombinedResponseTimeMs)
	}

	switch result.OverallStatus {
	case domain.HealthStatusHealthy, domain.HealthStatusDegraded:
		m.AvailabilityCount++
	default:
		m.UnavailabilityCount++
	}
}

// availabilityRate returns the lifetime share of checks in which the server
// was at least degraded-available.
func (m *CombinedMetrics) availabilityRate() float64 {
	total := m.AvailabilityCount + m.UnavailabilityCount
	if total == 0 {
		return 0.0
	}
	return float64(m.AvailabilityCount) / float64(total)
}
