package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probeops/dualwatch/internal/domain"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()

		summary := Summarize(nil)
		require.Equal(t, 0, summary.TotalServers)
		require.Empty(t, summary.CountsByStatus)
		require.Zero(t, summary.AverageHealthScore)
	})

	t.Run("mixed batch", func(t *testing.T) {
		t.Parallel()

		results := []domain.DualHealthCheckResult{
			{
				OverallStatus:          domain.HealthStatusHealthy,
				HealthScore:            1.0,
				CombinedResponseTimeMs: 100,
				MCPResult:              &domain.MCPProbeResult{},
				MCPSuccess:             true,
				RESTResult:             &domain.RESTProbeResult{},
				RESTSuccess:            true,
			},
			{
				OverallStatus:          domain.HealthStatusDegraded,
				HealthScore:            0.4,
				CombinedResponseTimeMs: 300,
				MCPResult:              &domain.MCPProbeResult{},
				MCPSuccess:             false,
				RESTResult:             &domain.RESTProbeResult{},
				RESTSuccess:            true,
			},
			{
				// REST-only server: MCP never ran so it should not drag
				// the MCP success rate down.
				OverallStatus:          domain.HealthStatusHealthy,
				HealthScore:            1.0,
				CombinedResponseTimeMs: 50,
				RESTResult:             &domain.RESTProbeResult{},
				RESTSuccess:            true,
			},
		}

		summary := Summarize(results)
		require.Equal(t, 3, summary.TotalServers)
		require.Equal(t, 2, summary.CountsByStatus[domain.HealthStatusHealthy])
		require.Equal(t, 1, summary.CountsByStatus[domain.HealthStatusDegraded])
		require.InDelta(t, 0.8, summary.AverageHealthScore, 1e-9)
		require.InDelta(t, 150, summary.AverageResponseTimeMs, 1e-9)
		require.InDelta(t, 0.5, summary.MCPSuccessRate, 1e-9)
		require.InDelta(t, 1.0, summary.RESTSuccessRate, 1e-9)
	})
}
