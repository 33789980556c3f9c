package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/probeops/dualwatch/internal/domain"
	"github.com/probeops/dualwatch/internal/errors"
)

// topStatusCodeCount caps the ranked status-code table in reports.
const topStatusCodeCount = 5

// Report computes the windowed aggregation report for one server from the
// current in-memory state. Querying never mutates state; the report is
// recomputed on every call.
func (c *Collector) Report(serverName string, window domain.TimeWindow) (domain.AggregationReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mcp, ok := c.mcp[serverName]
	if !ok {
		return domain.AggregationReport{}, fmt.Errorf("%w: %s", errors.ErrServerNotFound, serverName)
	}
	rest := c.rest[serverName]
	combined := c.combined[serverName]

	return c.buildReportLocked(serverName, window, mcp, rest, combined), nil
}

// AllReports computes one report per tracked server over the same window,
// sorted by server name. Servers with no recorded data are skipped.
func (c *Collector) AllReports(window domain.TimeWindow) []domain.AggregationReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	reports := make([]domain.AggregationReport, 0, len(c.mcp))
	for _, name := range c.serverNamesLocked() {
		mcp := c.mcp[name]
		rest := c.rest[name]
		if mcp.TotalRequests == 0 && (rest == nil || rest.TotalRequests == 0) {
			continue
		}
		reports = append(reports, c.buildReportLocked(name, window, mcp, rest, c.combined[name]))
	}
	return reports
}

func (c *Collector) buildReportLocked(
	serverName string,
	window domain.TimeWindow,
	mcp *MCPMetrics,
	rest *RESTMetrics,
	combined *CombinedMetrics,
) domain.AggregationReport {
	d := window.Duration()

	report := domain.AggregationReport{
		ServerName:  serverName,
		Window:      window,
		GeneratedAt: time.Now().UTC(),
	}

	if mcp != nil {
		report.TotalMCPChecks = mcp.TotalRequests
		report.MCPSuccessRate = rate(mcp.SuccessCount, mcp.TotalRequests)
		report.AvgMCPResponseTimeMs = mcp.ResponseTime.Average(d)
		report.P95MCPResponseTimeMs = mcp.ResponseTime.Percentile(95, d)
		report.ToolAvailabilityRate = toolAvailability(mcp, d)
	}

	if rest != nil {
		report.TotalRESTChecks = rest.TotalRequests
		report.RESTSuccessRate = rate(rest.SuccessCount, rest.TotalRequests)
		report.AvgRESTResponseTimeMs = rest.ResponseTime.Average(d)
		report.P95RESTResponseTimeMs = rest.ResponseTime.Percentile(95, d)
		report.EndpointAvailabilityRate = rest.EndpointAvailability.Average(d)
		report.TopStatusCodes = topStatusCodes(rest.StatusCodes, topStatusCodeCount)
	}

	report.CombinedSuccessRate = combinedSuccessRate(mcp, rest)
	if combined != nil {
		report.OverallAvailabilityRate = combined.availabilityRate()
	}
	report.ErrorBreakdown = errorBreakdown(mcp, rest)

	return report
}

// toolAvailability derives the windowed share of expected tools that were
// found, from the found/missing tool series.
func toolAvailability(mcp *MCPMetrics, window time.Duration) float64 {
	found := mcp.FoundTools.Average(window)
	missing := mcp.MissingTools.Average(window)
	if found+missing == 0 {
		return 0.0
	}
	return found / (found + missing)
}

func combinedSuccessRate(mcp *MCPMetrics, rest *RESTMetrics) float64 {
	var success, total int64
	if mcp != nil {
		success += mcp.SuccessCount
		total += mcp.TotalRequests
	}
	if rest != nil {
		success += rest.SuccessCount
		total += rest.TotalRequests
	}
	return rate(success, total)
}

// errorBreakdown merges the per-category failure counters from both paths.
// Zero categories are omitted.
func errorBreakdown(mcp *MCPMetrics, rest *RESTMetrics) map[string]int64 {
	breakdown := make(map[string]int64)

	add := func(category ErrorCategory, n int64) {
		if n > 0 {
			breakdown[string(category)] += n
		}
	}

	if mcp != nil {
		add(ErrorCategoryConnection, mcp.ConnectionErrors)
		add(ErrorCategoryTimeout, mcp.TimeoutErrors)
		add(ErrorCategoryProtocol, mcp.ProtocolErrors)
		add(ErrorCategoryGeneral, mcp.GeneralErrors)
	}
	if rest != nil {
		add(ErrorCategoryConnection, rest.ConnectionErrors)
		add(ErrorCategoryTimeout, rest.TimeoutErrors)
		add(ErrorCategoryHTTP, rest.HTTPErrors)
		add(ErrorCategoryGeneral, rest.GeneralErrors)
	}

	if len(breakdown) == 0 {
		return nil
	}
	return breakdown
}

// topStatusCodes ranks the status-code table by frequency, breaking count ties
// by ascending code for stable output.
func topStatusCodes(codes map[int]int64, limit int) []domain.StatusCodeCount {
	if len(codes) == 0 {
		return nil
	}

	ranked := make([]domain.StatusCodeCount, 0, len(codes))
	for code, count := range codes {
		ranked = append(ranked, domain.StatusCodeCount{StatusCode: code, Count: int(count)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].StatusCode < ranked[j].StatusCode
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func rate(success, total int64) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(success) / float64(total)
}
