package aggregate

import (
	"github.com/probeops/dualwatch/internal/domain"
)

// Summarize rolls a batch of verdicts up into fleet-wide totals. Path success
// rates are computed only over results where that path actually ran.
func Summarize(results []domain.DualHealthCheckResult) domain.HealthSummary {
	summary := domain.HealthSummary{
		TotalServers:   len(results),
		CountsByStatus: make(map[domain.HealthStatus]int, 4),
	}

	if len(results) == 0 {
		return summary
	}

	var scoreSum, timeSum float64
	var mcpRan, mcpOK, restRan, restOK int

	for _, r := range results {
		summary.CountsByStatus[r.OverallStatus]++
		scoreSum += r.HealthScore
		timeSum += r.CombinedResponseTimeMs

		if r.MCPResult != nil {
			mcpRan++
			if r.MCPSuccess {
				mcpOK++
			}
		}
		if r.RESTResult != nil {
			restRan++
			if r.RESTSuccess {
				restOK++
			}
		}
	}

	summary.AverageHealthScore = scoreSum / float64(len(results))
	summary.AverageResponseTimeMs = timeSum / float64(len(results))
	if mcpRan > 0 {
		summary.MCPSuccessRate = float64(mcpOK) / float64(mcpRan)
	}
	if restRan > 0 {
		summary.RESTSuccessRate = float64(restOK) / float64(restRan)
	}

	return summary
}
