package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probeops/dualwatch/internal/domain"
)

func TestRenderReport(t *testing.T) {
	t.Parallel()

	report := domain.AggregationReport{
		ServerName:               "time",
		Window:                   domain.WindowLastHour,
		TotalMCPChecks:           10,
		TotalRESTChecks:          8,
		MCPSuccessRate:           0.9,
		RESTSuccessRate:          0.75,
		CombinedSuccessRate:      0.825,
		AvgMCPResponseTimeMs:     120,
		AvgRESTResponseTimeMs:    80,
		P95MCPResponseTimeMs:     310,
		P95RESTResponseTimeMs:    190,
		ToolAvailabilityRate:     1.0,
		EndpointAvailabilityRate: 0.75,
		OverallAvailabilityRate:  0.875,
		TopStatusCodes: []domain.StatusCodeCount{
			{StatusCode: 200, Count: 6},
			{StatusCode: 503, Count: 2},
		},
		ErrorBreakdown: map[string]int64{
			"http":       2,
			"connection": 1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, report))

	expected := "time (last_hour):\n" +
		"  checks:\tmcp=10 rest=8\n" +
		"  success:\tmcp=90.0% rest=75.0% combined=82.5%\n" +
		"  latency:\tmcp avg=120ms p95=310ms, rest avg=80ms p95=190ms\n" +
		"  availability:\ttools=100.0% endpoint=75.0% overall=87.5%\n" +
		"  status 200:\t6\n" +
		"  status 503:\t2\n" +
		"  errors[connection]:\t1\n" +
		"  errors[http]:\t2\n"
	require.Equal(t, expected, buf.String())
}

func TestRenderReport_SkipsEmptySections(t *testing.T) {
	t.Parallel()

	report := domain.AggregationReport{
		ServerName: "fetch",
		Window:     domain.WindowLastDay,
	}

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, report))

	require.NotContains(t, buf.String(), "status ")
	require.NotContains(t, buf.String(), "errors[")
}
