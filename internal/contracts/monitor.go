package contracts

import (
	"github.com/probeops/dualwatch/internal/domain"
)

// HealthMonitor provides read access to the latest health verdicts.
type HealthMonitor interface {
	// Latest returns the most recent verdict recorded for a server.
	Latest(serverName string) (domain.DualHealthCheckResult, error)

	// LatestAll returns the most recent verdict for every tracked server, sorted by name.
	LatestAll() []domain.DualHealthCheckResult
}

// MetricsRecorder accepts dual health check results for accumulation.
type MetricsRecorder interface {
	// Record folds one verdict into the per-server metrics.
	Record(result domain.DualHealthCheckResult) error
}

// MetricsReporter answers windowed aggregation report queries.
type MetricsReporter interface {
	// Report computes the report for one server over the given window.
	Report(serverName string, window domain.TimeWindow) (domain.AggregationReport, error)

	// AllReports computes one report per tracked server, sorted by name.
	AllReports(window domain.TimeWindow) []domain.AggregationReport

	// Reset removes all tracked state for one server.
	Reset(serverName string) error
}
