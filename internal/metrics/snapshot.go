package metrics

import (
	"fmt"
	"time"

	"github.com/probeops/dualwatch/internal/domain"
	"github.com/probeops/dualwatch/internal/errors"
)

// Snapshot is the fully serializable representation of a Collector's state,
// produced by Export and accepted by Import. All counters and retained series
// points round-trip losslessly.
type Snapshot struct {
	ExportedAt time.Time                 `json:"exportedAt"`
	Servers    map[string]ServerSnapshot `json:"servers"`
}

// ServerSnapshot captures everything tracked for one server.
type ServerSnapshot struct {
	MCP      MCPSnapshot                   `json:"mcp"`
	REST     RESTSnapshot                  `json:"rest"`
	Combined CombinedSnapshot              `json:"combined"`
	Latest   *domain.DualHealthCheckResult `json:"latest,omitempty"`
}

// MCPSnapshot mirrors MCPMetrics with series flattened to point slices.
type MCPSnapshot struct {
	TotalRequests      int64       `json:"totalRequests"`
	SuccessCount       int64       `json:"successCount"`
	FailureCount       int64       `json:"failureCount"`
	ConnectionErrors   int64       `json:"connectionErrors"`
	TimeoutErrors      int64       `json:"timeoutErrors"`
	ProtocolErrors     int64       `json:"protocolErrors"`
	GeneralErrors      int64       `json:"generalErrors"`
	ValidationPasses   int64       `json:"validationPasses"`
	ValidationFailures int64       `json:"validationFailures"`
	ResponseTime       []DataPoint `json:"responseTime,omitempty"`
	ToolsCount         []DataPoint `json:"toolsCount,omitempty"`
	FoundTools         []DataPoint `json:"foundTools,omitempty"`
	MissingTools       []DataPoint `json:"missingTools,omitempty"`
}

// RESTSnapshot mirrors RESTMetrics with series flattened to point slices.
type RESTSnapshot struct {
	TotalRequests        int64         `json:"totalRequests"`
	SuccessCount         int64         `json:"successCount"`
	FailureCount         int64         `json:"failureCount"`
	ConnectionErrors     int64         `json:"connectionErrors"`
	TimeoutErrors        int64         `json:"timeoutErrors"`
	HTTPErrors           int64         `json:"httpErrors"`
	GeneralErrors        int64         `json:"generalErrors"`
	ValidationPasses     int64         `json:"validationPasses"`
	ValidationFailures   int64         `json:"validationFailures"`
	StatusCodes          map[int]int64 `json:"statusCodes,omitempty"`
	ResponseTime         []DataPoint   `json:"responseTime,omitempty"`
	EndpointAvailability []DataPoint   `json:"endpointAvailability,omitempty"`
}

// CombinedSnapshot mirrors the owned parts of CombinedMetrics; the referenced
// per-path metrics are not duplicated here.
type CombinedSnapshot struct {
	AvailabilityCount    int64       `json:"availabilityCount"`
	UnavailabilityCount  int64       `json:"unavailabilityCount"`
	CombinedResponseTime []DataPoint `json:"combinedResponseTime,omitempty"`
}

// Export serializes the entire per-server metrics state into a Snapshot.
// The snapshot is a deep copy; later mutations of the collector don't leak in.
func (c *Collector) Export() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := Snapshot{
		ExportedAt: time.Now().UTC(),
		Servers:    make(map[string]ServerSnapshot, len(c.mcp)),
	}

	for name, mcp := range c.mcp {
		server := ServerSnapshot{
			MCP: MCPSnapshot{
				TotalRequests:      mcp.TotalRequests,
				SuccessCount:       mcp.SuccessCount,
				FailureCount:       mcp.FailureCount,
				ConnectionErrors:   mcp.ConnectionErrors,
				TimeoutErrors:      mcp.TimeoutErrors,
				ProtocolErrors:     mcp.ProtocolErrors,
				GeneralErrors:      mcp.GeneralErrors,
				ValidationPasses:   mcp.ValidationPasses,
				ValidationFailures: mcp.ValidationFailures,
				ResponseTime:       mcp.ResponseTime.Points(),
				ToolsCount:         mcp.ToolsCount.Points(),
				FoundTools:         mcp.FoundTools.Points(),
				MissingTools:       mcp.MissingTools.Points(),
			},
		}

		if rest, ok := c.rest[name]; ok {
			server.REST = RESTSnapshot{
				TotalRequests:        rest.TotalRequests,
				SuccessCount:         rest.SuccessCount,
				FailureCount:         rest.FailureCount,
				ConnectionErrors:     rest.ConnectionErrors,
				TimeoutErrors:        rest.TimeoutErrors,
				HTTPErrors:           rest.HTTPErrors,
				GeneralErrors:        rest.GeneralErrors,
				ValidationPasses:     rest.ValidationPasses,
				ValidationFailures:   rest.ValidationFailures,
				StatusCodes:          copyStatusCodes(rest.StatusCodes),
				ResponseTime:         rest.ResponseTime.Points(),
				EndpointAvailability: rest.EndpointAvailability.Points(),
			}
		}

		if combined, ok := c.combined[name]; ok {
			server.Combined = CombinedSnapshot{
				AvailabilityCount:    combined.AvailabilityCount,
				UnavailabilityCount:  combined.UnavailabilityCount,
				CombinedResponseTime: combined.CombinedResponseTime.Points(),
			}
		}

		if latest, ok := c.latest[name]; ok {
			l := latest
			server.Latest = &l
		}

		snapshot.Servers[name] = server
	}

	return snapshot
}

// Import replaces the collector's state with the snapshot's contents. The
// combined metrics of each server are re-linked to the freshly restored
// per-path metrics objects, never duplicated. On error no state is changed.
func (c *Collector) Import(snapshot Snapshot) error {
	mcp := make(map[string]*MCPMetrics, len(snapshot.Servers))
	rest := make(map[string]*RESTMetrics, len(snapshot.Servers))
	combined := make(map[string]*CombinedMetrics, len(snapshot.Servers))
	latest := make(map[string]domain.DualHealthCheckResult, len(snapshot.Servers))

	for name, server := range snapshot.Servers {
		if name == "" {
			return fmt.Errorf("%w: snapshot contains a server with no name", errors.ErrSnapshotImport)
		}

		m := newMCPMetrics(name)
		m.TotalRequests = server.MCP.TotalRequests
		m.SuccessCount = server.MCP.SuccessCount
		m.FailureCount = server.MCP.FailureCount
		m.ConnectionErrors = server.MCP.ConnectionErrors
		m.TimeoutErrors = server.MCP.TimeoutErrors
		m.ProtocolErrors = server.MCP.ProtocolErrors
		m.GeneralErrors = server.MCP.GeneralErrors
		m.ValidationPasses = server.MCP.ValidationPasses
		m.ValidationFailures = server.MCP.ValidationFailures
		restoreSeries(m.ResponseTime, server.MCP.ResponseTime)
		restoreSeries(m.ToolsCount, server.MCP.ToolsCount)
		restoreSeries(m.FoundTools, server.MCP.FoundTools)
		restoreSeries(m.MissingTools, server.MCP.MissingTools)
		mcp[name] = m

		r := newRESTMetrics(name)
		r.TotalRequests = server.REST.TotalRequests
		r.SuccessCount = server.REST.SuccessCount
		r.FailureCount = server.REST.FailureCount
		r.ConnectionErrors = server.REST.ConnectionErrors
		r.TimeoutErrors = server.REST.TimeoutErrors
		r.HTTPErrors = server.REST.HTTPErrors
		r.GeneralErrors = server.REST.GeneralErrors
		r.ValidationPasses = server.REST.ValidationPasses
		r.ValidationFailures = server.REST.ValidationFailures
		for code, count := range server.REST.StatusCodes {
			r.StatusCodes[code] = count
		}
		restoreSeries(r.ResponseTime, server.REST.ResponseTime)
		restoreSeries(r.EndpointAvailability, server.REST.EndpointAvailability)
		rest[name] = r

		cm := newCombinedMetrics(name, m, r)
		cm.AvailabilityCount = server.Combined.AvailabilityCount
		cm.UnavailabilityCount = server.Combined.UnavailabilityCount
		restoreSeries(cm.CombinedResponseTime, server.Combined.CombinedResponseTime)
		combined[name] = cm

		if server.Latest != nil {
			latest[name] = *server.Latest
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mcp = mcp
	c.rest = rest
	c.combined = combined
	c.latest = latest

	return nil
}

func restoreSeries(s *Series, points []DataPoint) {
	for _, p := range points {
		s.RecordAt(p.Timestamp, p.Value)
	}
}

func copyStatusCodes(codes map[int]int64) map[int]int64 {
	if len(codes) == 0 {
		return nil
	}
	out := make(map[int]int64, len(codes))
	for code, count := range codes {
		out[code] = count
	}
	return out
}
