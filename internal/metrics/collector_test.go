package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/probeops/dualwatch/internal/domain"
	"github.com/probeops/dualwatch/internal/errors"
)

func newTestCollector(t *testing.T, opt ...CollectorOption) *Collector {
	t.Helper()

	c, err := NewCollector(hclog.NewNullLogger(), opt...)
	require.NoError(t, err)
	return c
}

// healthyResult builds a verdict where both paths succeeded.
func healthyResult(serverName string, ts time.Time) domain.DualHealthCheckResult {
	toolsCount := 2
	return domain.DualHealthCheckResult{
		ServerName:    serverName,
		Timestamp:     ts,
		OverallStatus: domain.HealthStatusHealthy,
		MCPResult: &domain.MCPProbeResult{
			ServerName:         serverName,
			Timestamp:          ts,
			Success:            true,
			ResponseTimeMs:     100,
			ToolsCount:         &toolsCount,
			ExpectedToolsFound: []string{"get_current_time", "convert_time"},
			Validation:         &domain.ValidationResult{IsValid: true},
		},
		RESTResult: &domain.RESTProbeResult{
			ServerName:     serverName,
			Timestamp:      ts,
			Success:        true,
			StatusCode:     200,
			ResponseTimeMs: 200,
		},
		CombinedResponseTimeMs: 150,
	}
}

// unhealthyResult builds a verdict where both paths failed.
func unhealthyResult(serverName string, ts time.Time) domain.DualHealthCheckResult {
	return domain.DualHealthCheckResult{
		ServerName:    serverName,
		Timestamp:     ts,
		OverallStatus: domain.HealthStatusUnhealthy,
		MCPResult: &domain.MCPProbeResult{
			ServerName:      serverName,
			Timestamp:       ts,
			Success:         false,
			ResponseTimeMs:  300,
			ConnectionError: "dial tcp: connection refused",
		},
		RESTResult: &domain.RESTProbeResult{
			ServerName:     serverName,
			Timestamp:      ts,
			Success:        false,
			StatusCode:     503,
			ResponseTimeMs: 400,
			HTTPError:      "health endpoint returned status 503",
		},
		CombinedResponseTimeMs: 350,
	}
}

func TestNewCollector(t *testing.T) {
	t.Parallel()

	t.Run("nil logger rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewCollector(nil)
		require.Error(t, err)
	})

	t.Run("invalid option rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewCollector(hclog.NewNullLogger(), WithRetention(-time.Hour))
		require.Error(t, err)
	})
}

func TestCollector_Record(t *testing.T) {
	t.Parallel()

	t.Run("missing server name rejected", func(t *testing.T) {
		t.Parallel()

		c := newTestCollector(t)
		err := c.Record(domain.DualHealthCheckResult{})
		require.ErrorIs(t, err, errors.ErrNoProbeResults)
		require.Empty(t, c.ServerNames())
	})

	t.Run("latest tracks most recent verdict", func(t *testing.T) {
		t.Parallel()

		c := newTestCollector(t)
		now := time.Now().UTC()

		require.NoError(t, c.Record(healthyResult("time", now.Add(-time.Minute))))
		require.NoError(t, c.Record(unhealthyResult("time", now)))

		latest, err := c.Latest("time")
		require.NoError(t, err)
		require.Equal(t, domain.HealthStatusUnhealthy, latest.OverallStatus)
	})

	t.Run("latest for unknown server", func(t *testing.T) {
		t.Parallel()

		c := newTestCollector(t)
		_, err := c.Latest("ghost")
		require.ErrorIs(t, err, errors.ErrServerNotFound)
	})

	t.Run("latest all sorted by name", func(t *testing.T) {
		t.Parallel()

		c := newTestCollector(t)
		now := time.Now().UTC()
		require.NoError(t, c.Record(healthyResult("zeta", now)))
		require.NoError(t, c.Record(healthyResult("alpha", now)))

		results := c.LatestAll()
		require.Len(t, results, 2)
		require.Equal(t, "alpha", results[0].ServerName)
		require.Equal(t, "zeta", results[1].ServerName)
	})
}

func TestCollector_Reset(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	now := time.Now().UTC()
	require.NoError(t, c.Record(healthyResult("time", now)))
	require.NoError(t, c.Record(healthyResult("fetch", now)))

	require.ErrorIs(t, c.Reset("ghost"), errors.ErrServerNotFound)

	require.NoError(t, c.Reset("time"))
	require.Equal(t, []string{"fetch"}, c.ServerNames())
	_, err := c.Latest("time")
	require.ErrorIs(t, err, errors.ErrServerNotFound)

	c.ResetAll()
	require.Empty(t, c.ServerNames())
}

func TestCollector_Report(t *testing.T) {
	t.Parallel()

	t.Run("unknown server", func(t *testing.T) {
		t.Parallel()

		c := newTestCollector(t)
		_, err := c.Report("ghost", domain.WindowLastHour)
		require.ErrorIs(t, err, errors.ErrServerNotFound)
	})

	t.Run("windowed report math", func(t *testing.T) {
		t.Parallel()

		c := newTestCollector(t)
		now := time.Now().UTC()
		require.NoError(t, c.Record(healthyResult("time", now.Add(-2*time.Minute))))
		require.NoError(t, c.Record(unhealthyResult("time", now.Add(-time.Minute))))

		report, err := c.Report("time", domain.WindowLastHour)
		require.NoError(t, err)

		require.Equal(t, "time", report.ServerName)
		require.Equal(t, domain.WindowLastHour, report.Window)
		require.Equal(t, int64(2), report.TotalMCPChecks)
		require.Equal(t, int64(2), report.TotalRESTChecks)
		require.InDelta(t, 0.5, report.MCPSuccessRate, 1e-9)
		require.InDelta(t, 0.5, report.RESTSuccessRate, 1e-9)
		require.InDelta(t, 0.5, report.CombinedSuccessRate, 1e-9)
		require.InDelta(t, 200, report.AvgMCPResponseTimeMs, 1e-9)
		require.InDelta(t, 300, report.AvgRESTResponseTimeMs, 1e-9)
		require.InDelta(t, 300, report.P95MCPResponseTimeMs, 1e-9)
		require.InDelta(t, 400, report.P95RESTResponseTimeMs, 1e-9)
		require.InDelta(t, 1.0, report.ToolAvailabilityRate, 1e-9)
		require.InDelta(t, 0.5, report.EndpointAvailabilityRate, 1e-9)
		require.InDelta(t, 0.5, report.OverallAvailabilityRate, 1e-9)
		require.Equal(t, map[string]int64{"connection": 1, "http": 1}, report.ErrorBreakdown)

		// Tied status-code counts rank by ascending code.
		require.Equal(t, []domain.StatusCodeCount{
			{StatusCode: 200, Count: 1},
			{StatusCode: 503, Count: 1},
		}, report.TopStatusCodes)
	})

	t.Run("all reports sorted", func(t *testing.T) {
		t.Parallel()

		c := newTestCollector(t)
		now := time.Now().UTC()
		require.NoError(t, c.Record(healthyResult("zeta", now)))
		require.NoError(t, c.Record(healthyResult("alpha", now)))

		reports := c.AllReports(domain.WindowLastHour)
		require.Len(t, reports, 2)
		require.Equal(t, "alpha", reports[0].ServerName)
		require.Equal(t, "zeta", reports[1].ServerName)
	})
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	now := time.Now().UTC()

	const servers = 20
	const perServer = 10

	var wg sync.WaitGroup
	for i := range servers {
		name := fmt.Sprintf("server-%02d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perServer {
				require.NoError(t, c.Record(healthyResult(name, now)))
			}
		}()
	}
	wg.Wait()

	require.Len(t, c.ServerNames(), servers)
	reports := c.AllReports(domain.WindowLastHour)
	require.Len(t, reports, servers)
	for _, report := range reports {
		require.Equal(t, int64(perServer), report.TotalMCPChecks)
		require.InDelta(t, 1.0, report.MCPSuccessRate, 1e-9)
	}
}

func TestCollector_RetentionWorker(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t,
		WithRetention(time.Hour),
		WithCleanupInterval(10*time.Millisecond),
	)

	// Samples recorded well past the retention horizon.
	old := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, c.Record(healthyResult("time", old)))

	c.Start()
	c.Start() // second Start is a no-op
	defer c.Stop()

	require.Eventually(t, func() bool {
		snapshot := c.Export()
		server := snapshot.Servers["time"]
		return len(server.MCP.ResponseTime) == 0 && len(server.REST.ResponseTime) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Lifetime counters survive pruning.
	report, err := c.Report("time", domain.WindowLastDay)
	require.NoError(t, err)
	require.Equal(t, int64(1), report.TotalMCPChecks)

	c.Stop()
	c.Stop() // second Stop is a no-op
}
