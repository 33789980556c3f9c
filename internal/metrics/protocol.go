package metrics

import (
	"strings"

	"github.com/probeops/dualwatch/internal/domain"
)

const (
	ErrorCategoryConnection ErrorCategory = "connection"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryProtocol   ErrorCategory = "protocol"
	ErrorCategoryHTTP       ErrorCategory = "http"
	ErrorCategoryGeneral    ErrorCategory = "general"
)

// ErrorCategory classifies a probe failure for the per-category error counters.
type ErrorCategory string

// MCPMetrics accumulates per-server counters and series for the protocol probe
// path. Instances are created lazily by the Collector and guarded by its lock.
type MCPMetrics struct {
	ServerName         string
	TotalRequests      int64
	SuccessCount       int64
	FailureCount       int64
	ConnectionErrors   int64
	TimeoutErrors      int64
	ProtocolErrors     int64
	GeneralErrors      int64
	ValidationPasses   int64
	ValidationFailures int64
	ResponseTime       *Series
	ToolsCount         *Series
	FoundTools         *Series
	MissingTools       *Series
}

// RESTMetrics accumulates per-server counters and series for the REST probe
// path, including a status-code frequency table and a health-endpoint
// availability series.
type RESTMetrics struct {
	ServerName           string
	TotalRequests        int64
	SuccessCount         int64
	FailureCount         int64
	ConnectionErrors     int64
	TimeoutErrors        int64
	HTTPErrors           int64
	GeneralErrors        int64
	ValidationPasses     int64
	ValidationFailures   int64
	StatusCodes          map[int]int64
	ResponseTime         *Series
	EndpointAvailability *Series
}

func newMCPMetrics(serverName string) *MCPMetrics {
	return &MCPMetrics{
		ServerName:   serverName,
		ResponseTime: NewSeries(),
		ToolsCount:   NewSeries(),
		FoundTools:   NewSeries(),
		MissingTools: NewSeries(),
	}
}

func newRESTMetrics(serverName string) *RESTMetrics {
	return &RESTMetrics{
		ServerName:           serverName,
		StatusCodes:          make(map[int]int64),
		ResponseTime:         NewSeries(),
		EndpointAvailability: NewSeries(),
	}
}

// record folds one protocol probe result into the counters and series.
// Caller must hold the collector lock.
func (m *MCPMetrics) record(r *domain.MCPProbeResult) {
	m.TotalRequests++
	m.ResponseTime.RecordAt(r.Timestamp, r.ResponseTimeMs)

	if r.Success {
		m.SuccessCount++
	} else {
		m.FailureCount++
		switch classifyFailure(r.ConnectionError, r.ProtocolError, false) {
		case ErrorCategoryConnection:
			m.ConnectionErrors++
		case ErrorCategoryTimeout:
			m.TimeoutErrors++
		case ErrorCategoryProtocol:
			m.ProtocolErrors++
		default:
			m.GeneralErrors++
		}
	}

	if r.ToolsCount != nil {
		m.ToolsCount.RecordAt(r.Timestamp, float64(*r.ToolsCount))
	}
	if r.Validation != nil {
		m.FoundTools.RecordAt(r.Timestamp, float64(len(r.ExpectedToolsFound)))
		m.MissingTools.RecordAt(r.Timestamp, float64(len(r.MissingTools)))
		if r.Validation.IsValid {
			m.ValidationPasses++
		} else {
			m.ValidationFailures++
		}
	}
}

// record folds one REST probe result into the counters and series.
// Caller must hold the collector lock.
func (m *RESTMetrics) record(r *domain.RESTProbeResult) {
	m.TotalRequests++
	m.ResponseTime.RecordAt(r.Timestamp, r.ResponseTimeMs)
	m.EndpointAvailability.RecordAt(r.Timestamp, boolSample(r.Success))

	if r.StatusCode != 0 {
		m.StatusCodes[r.StatusCode]++
	}

	if r.Success {
		m.SuccessCount++
	} else {
		m.FailureCount++
		switch classifyFailure(r.ConnectionError, r.HTTPError, true) {
		case ErrorCategoryConnection:
			m.ConnectionErrors++
		case ErrorCategoryTimeout:
			m.TimeoutErrors++
		case ErrorCategoryHTTP:
			m.HTTPErrors++
		default:
			m.GeneralErrors++
		}
	}

	if r.Validation != nil {
		if r.Validation.IsValid {
			m.ValidationPasses++
		} else {
			m.ValidationFailures++
		}
	}
}

// classifyFailure buckets a probe failure: a connection error wins, then a
// timeout indicator in the path error message, then the path-specific
// category when a protocol/HTTP error is present, and general otherwise.
func classifyFailure(connectionError, pathError string, rest bool) ErrorCategory {
	if connectionError != "" {
		return ErrorCategoryConnection
	}
	if isTimeout(pathError) {
		return ErrorCategoryTimeout
	}
	if pathError != "" {
		if rest {
			return ErrorCategoryHTTP
		}
		return ErrorCategoryProtocol
	}
	return ErrorCategoryGeneral
}

func isTimeout(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded")
}

func boolSample(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
