// Package aggregate turns raw dual-path probe results into single health
// verdicts with a numeric confidence score.
//
// The Aggregator holds no per-server state and is safe for concurrent use; the
// only shared value is the default configuration, which is swapped atomically.
package aggregate

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/probeops/dualwatch/internal/domain"
	"github.com/probeops/dualwatch/internal/errors"
)

// Latency penalty knee points and divisors per probe path.
// Responses slower than the knee lose up to 30% of their score.
const (
	mcpLatencyKneeMs     = 5000.0
	mcpLatencyDivisorMs  = 10000.0
	restLatencyKneeMs    = 3000.0
	restLatencyDivisorMs = 7000.0
	maxLatencyPenalty    = 0.3
	maxValidationPenalty = 0.5
	validationErrorStep  = 0.1
)

// Pair bundles the two optional probe results for one server evaluation.
type Pair struct {
	MCP  *domain.MCPProbeResult
	REST *domain.RESTProbeResult
}

// ItemResult is the per-pair outcome of a batch aggregation. When Err is set,
// Result still carries a substituted unknown-status verdict so batch consumers
// never lose a server from the output.
type ItemResult struct {
	Result domain.DualHealthCheckResult
	Err    error
}

// Aggregator computes dual health verdicts. Construct with New.
type Aggregator struct {
	logger hclog.Logger
	cfg    atomic.Pointer[Config]
}

// New creates an Aggregator using cfg as the default configuration.
// A nil cfg selects DefaultConfig. An invalid cfg is rejected here (rather than
// silently replaced) so that wiring mistakes fail at startup.
func New(logger hclog.Logger, cfg *Config) (*Aggregator, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	a := &Aggregator{
		logger: logger.Named("aggregator"),
	}

	c := DefaultConfig()
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		c = *cfg
	}
	a.cfg.Store(&c)

	return a, nil
}

// Config returns the current default aggregation configuration.
func (a *Aggregator) Config() Config {
	return *a.cfg.Load()
}

// SetConfig atomically replaces the default configuration so in-flight
// aggregations never observe a partially updated config.
func (a *Aggregator) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg.Store(&cfg)
	return nil
}

// Aggregate produces the dual health verdict for one (mcp, rest) result pair.
// Either result may be nil; supplying neither is an error. A nil cfg uses the
// aggregator's default; an invalid cfg is replaced by the default with a
// logged warning, never an error.
func (a *Aggregator) Aggregate(
	mcp *domain.MCPProbeResult,
	rest *domain.RESTProbeResult,
	cfg *Config,
) (domain.DualHealthCheckResult, error) {
	if mcp == nil && rest == nil {
		return domain.DualHealthCheckResult{}, errors.ErrNoProbeResults
	}

	effective := a.effectiveConfig(cfg)

	serverName, timestamp := identity(mcp, rest)
	mcpSuccess := mcp != nil && mcp.Success
	restSuccess := rest != nil && rest.Success

	status := determineOverallStatus(mcpSuccess, restSuccess, effective.Priority)
	score := a.calculateHealthScore(mcp, rest, effective)
	combined := createCombinedMetrics(mcp, rest)

	result := domain.DualHealthCheckResult{
		ServerName:             serverName,
		Timestamp:              timestamp,
		OverallStatus:          status,
		OverallSuccess:         status == domain.HealthStatusHealthy,
		MCPResult:              mcp,
		MCPSuccess:             mcpSuccess,
		RESTResult:             rest,
		RESTSuccess:            restSuccess,
		CombinedResponseTimeMs: combined.CombinedResponseTimeMs,
		HealthScore:            score,
		AvailablePaths:         determineAvailablePaths(mcp, rest),
		CombinedMetrics:        combined,
		MCPError:               mcp.ErrorMessage(),
		RESTError:              rest.ErrorMessage(),
	}
	if mcp != nil {
		result.MCPResponseTimeMs = mcp.ResponseTimeMs
	}
	if rest != nil {
		result.RESTResponseTimeMs = rest.ResponseTimeMs
	}

	return result, nil
}

// AggregateAll evaluates a batch of pairs, isolating per-pair failures.
// A failed pair yields an ItemResult with Err set and an unknown-status verdict
// carrying the error text, never aborting the rest of the batch.
func (a *Aggregator) AggregateAll(pairs []Pair, cfg *Config) []ItemResult {
	results := make([]ItemResult, 0, len(pairs))

	for _, p := range pairs {
		res, err := a.Aggregate(p.MCP, p.REST, cfg)
		if err != nil {
			name, ts := identity(p.MCP, p.REST)
			a.logger.Warn("Skipping unaggregatable probe pair", "server", name, "error", err)
			res = domain.DualHealthCheckResult{
				ServerName:     name,
				Timestamp:      ts,
				OverallStatus:  domain.HealthStatusUnknown,
				AvailablePaths: []domain.ProbePath{domain.PathNone},
				MCPError:       err.Error(),
				RESTError:      err.Error(),
			}
		}
		results = append(results, ItemResult{Result: res, Err: err})
	}

	return results
}

// effectiveConfig resolves the configuration for one aggregation call,
// falling back to the aggregator default when cfg is nil or invalid.
func (a *Aggregator) effectiveConfig(cfg *Config) Config {
	if cfg == nil {
		return *a.cfg.Load()
	}
	if violations := cfg.Violations(); len(violations) > 0 {
		a.logger.Warn("Invalid aggregation config supplied, using defaults", "violations", violations)
		return *a.cfg.Load()
	}
	return *cfg
}

// identity extracts the server name and timestamp for a result pair,
// preferring the MCP result when both are present.
func identity(mcp *domain.MCPProbeResult, rest *domain.RESTProbeResult) (string, time.Time) {
	switch {
	case mcp != nil:
		return mcp.ServerName, mcp.Timestamp
	case rest != nil:
		return rest.ServerName, rest.Timestamp
	default:
		return "", time.Now().UTC()
	}
}

// determineOverallStatus classifies a server from the two path outcomes.
// The rules are evaluated strictly in order: both-success, both-failure, then
// the mixed case resolved by the priority configuration. Unknown is never
// produced here; callers handle the neither-probe-ran case before this point.
func determineOverallStatus(mcpSuccess, restSuccess bool, priority PriorityConfig) domain.HealthStatus {
	switch {
	case mcpSuccess && restSuccess:
		return domain.HealthStatusHealthy
	case !mcpSuccess && !restSuccess:
		return domain.HealthStatusUnhealthy
	}

	// Exactly one path succeeded.
	if priority.RequireBothForHealthy {
		return domain.HealthStatusDegraded
	}
	if priority.DegradedOnSingleFailure {
		return domain.HealthStatusDegraded
	}

	// Permissive mode: the succeeding path wins only with strictly greater weight.
	if mcpSuccess && priority.MCPWeight > priority.RESTWeight {
		return domain.HealthStatusHealthy
	}
	if restSuccess && priority.RESTWeight > priority.MCPWeight {
		return domain.HealthStatusHealthy
	}

	return domain.HealthStatusDegraded
}

// calculateHealthScore combines the per-path scores into a single value in [0, 1].
func (a *Aggregator) calculateHealthScore(
	mcp *domain.MCPProbeResult,
	rest *domain.RESTProbeResult,
	cfg Config,
) float64 {
	switch {
	case mcp == nil && rest == nil:
		return 0.0
	case rest == nil:
		return mcpPathScore(mcp)
	case mcp == nil:
		return restPathScore(rest)
	}

	mcpScore := mcpPathScore(mcp)
	restScore := restPathScore(rest)

	switch cfg.ScoreMethod {
	case MethodWeightedAverage:
		return clampScore(mcpScore*cfg.Priority.MCPWeight + restScore*cfg.Priority.RESTWeight)
	case MethodMinimum:
		return math.Min(mcpScore, restScore)
	case MethodMaximum:
		return math.Max(mcpScore, restScore)
	default:
		a.logger.Warn(
			"Unknown health score method, falling back to weighted average",
			"method", cfg.ScoreMethod,
		)
		return clampScore(mcpScore*cfg.Priority.MCPWeight + restScore*cfg.Priority.RESTWeight)
	}
}

// mcpPathScore scores a single protocol probe result. A failed probe scores 0;
// a successful one starts at 1.0 and is multiplicatively penalized for missing
// tools, validation errors, and excessive latency.
func mcpPathScore(r *domain.MCPProbeResult) float64 {
	if r == nil || !r.Success {
		return 0.0
	}

	score := 1.0

	if r.Validation != nil {
		found := len(r.ExpectedToolsFound)
		missing := len(r.MissingTools)
		if found+missing > 0 {
			score *= float64(found) / float64(found+missing)
		}
		score *= 1.0 - validationPenalty(len(r.Validation.Errors))
	}

	score *= 1.0 - latencyPenalty(r.ResponseTimeMs, mcpLatencyKneeMs, mcpLatencyDivisorMs)

	return clampScore(score)
}

// restPathScore scores a single REST probe result. Non-2xx status classes are
// penalized by severity, then validation errors and latency apply as for MCP.
func restPathScore(r *domain.RESTProbeResult) float64 {
	if r == nil || !r.Success {
		return 0.0
	}

	score := 1.0

	if sc := r.StatusCode; sc != 0 && (sc < 200 || sc >= 300) {
		switch {
		case sc >= 500:
			score *= 0.1
		case sc >= 400:
			score *= 0.3
		case sc >= 300:
			score *= 0.8
		}
	}

	if r.Validation != nil {
		score *= 1.0 - validationPenalty(len(r.Validation.Errors))
	}

	score *= 1.0 - latencyPenalty(r.ResponseTimeMs, restLatencyKneeMs, restLatencyDivisorMs)

	return clampScore(score)
}

func validationPenalty(errorCount int) float64 {
	return math.Min(maxValidationPenalty, float64(errorCount)*validationErrorStep)
}

func latencyPenalty(responseTimeMs, kneeMs, divisorMs float64) float64 {
	if responseTimeMs <= kneeMs {
		return 0.0
	}
	return math.Min(maxLatencyPenalty, (responseTimeMs-kneeMs)/divisorMs)
}

func clampScore(score float64) float64 {
	return math.Max(0.0, math.Min(1.0, score))
}

// createCombinedMetrics builds the cross-path snapshot from whichever results
// are present; absent paths contribute nothing to the combined means.
func createCombinedMetrics(mcp *domain.MCPProbeResult, rest *domain.RESTProbeResult) domain.CombinedHealthMetrics {
	m := domain.CombinedHealthMetrics{}

	var times []float64
	var successes []float64

	if mcp != nil {
		m.MCPResponseTimeMs = mcp.ResponseTimeMs
		m.MCPSuccessRate = boolRate(mcp.Success)
		times = append(times, mcp.ResponseTimeMs)
		successes = append(successes, boolRate(mcp.Success))

		if mcp.Validation != nil {
			found := len(mcp.ExpectedToolsFound)
			expected := found + len(mcp.MissingTools)
			m.ToolsAvailable = found
			m.ToolsExpected = expected
			if expected > 0 {
				m.ToolsAvailabilityPercent = float64(found) / float64(expected) * 100.0
			}
		}
	}

	if rest != nil {
		m.RESTResponseTimeMs = rest.ResponseTimeMs
		m.RESTSuccessRate = boolRate(rest.Success)
		m.HealthEndpointAvailability = boolRate(rest.Success)
		times = append(times, rest.ResponseTimeMs)
		successes = append(successes, boolRate(rest.Success))

		if rest.StatusCode != 0 {
			m.HTTPStatusCodes = map[int]int{rest.StatusCode: 1}
		}
	}

	m.CombinedResponseTimeMs = mean(times)
	m.CombinedSuccessRate = mean(successes)

	return m
}

// determineAvailablePaths lists the currently succeeding probe paths, with
// "both" appended when the two agree and exactly ["none"] when neither succeeds.
func determineAvailablePaths(mcp *domain.MCPProbeResult, rest *domain.RESTProbeResult) []domain.ProbePath {
	var paths []domain.ProbePath

	if mcp != nil && mcp.Success {
		paths = append(paths, domain.PathMCP)
	}
	if rest != nil && rest.Success {
		paths = append(paths, domain.PathREST)
	}
	if len(paths) == 2 {
		paths = append(paths, domain.PathBoth)
	}
	if len(paths) == 0 {
		paths = []domain.ProbePath{domain.PathNone}
	}

	return paths
}

func boolRate(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
