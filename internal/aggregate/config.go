package aggregate

import (
	"fmt"
	"strings"

	"github.com/probeops/dualwatch/internal/errors"
)

const (
	// MethodWeightedAverage combines the two path scores using the configured weights.
	MethodWeightedAverage ScoreMethod = "weighted_average"

	// MethodMinimum takes the worse of the two path scores.
	MethodMinimum ScoreMethod = "minimum"

	// MethodMaximum takes the better of the two path scores.
	MethodMaximum ScoreMethod = "maximum"
)

// ScoreMethod selects how the two per-path scores are combined into one health score.
type ScoreMethod string

// PriorityConfig controls the relative trust placed in each probe path and how
// disagreement between the paths is resolved.
type PriorityConfig struct {
	// MCPWeight is the relative weight of the protocol probe path.
	MCPWeight float64 `json:"mcpWeight" toml:"mcp_weight"`

	// RESTWeight is the relative weight of the REST probe path.
	RESTWeight float64 `json:"restWeight" toml:"rest_weight"`

	// RequireBothForHealthy forces a DEGRADED verdict whenever only one path succeeds.
	RequireBothForHealthy bool `json:"requireBothForHealthy" toml:"require_both_for_healthy"`

	// DegradedOnSingleFailure marks a server DEGRADED when exactly one path fails.
	// When false the verdict follows the weight of the succeeding path (permissive mode).
	DegradedOnSingleFailure bool `json:"degradedOnSingleFailure" toml:"degraded_on_single_failure"`
}

// Config holds every tunable of the health aggregation algorithm.
// DefaultConfig should be used as the starting point for modifications.
type Config struct {
	Priority PriorityConfig `json:"priority" toml:"priority"`

	// ScoreMethod selects the score combination strategy.
	// An unrecognized value falls back to MethodWeightedAverage at aggregation
	// time with a logged warning; it is deliberately not a validation failure.
	ScoreMethod ScoreMethod `json:"scoreMethod" toml:"score_method"`

	// FailureThreshold is the score at or below which a server is considered failing.
	FailureThreshold float64 `json:"failureThreshold" toml:"failure_threshold"`

	// DegradedThreshold is the score at or below which a server is considered degraded.
	DegradedThreshold float64 `json:"degradedThreshold" toml:"degraded_threshold"`
}

// DefaultConfig returns the documented default aggregation configuration:
// MCP-weighted 0.6/0.4, degraded on any single-path failure, weighted-average scoring.
func DefaultConfig() Config {
	return Config{
		Priority: PriorityConfig{
			MCPWeight:               0.6,
			RESTWeight:              0.4,
			RequireBothForHealthy:   false,
			DegradedOnSingleFailure: true,
		},
		ScoreMethod:       MethodWeightedAverage,
		FailureThreshold:  0.3,
		DegradedThreshold: 0.7,
	}
}

// Violations returns a list of human-readable configuration problems,
// or an empty slice when the configuration is usable.
func (c Config) Violations() []string {
	var violations []string

	if c.Priority.MCPWeight < 0 || c.Priority.MCPWeight > 1 {
		violations = append(violations, fmt.Sprintf("mcp weight must be within [0, 1], got %v", c.Priority.MCPWeight))
	}
	if c.Priority.RESTWeight < 0 || c.Priority.RESTWeight > 1 {
		violations = append(violations, fmt.Sprintf("rest weight must be within [0, 1], got %v", c.Priority.RESTWeight))
	}
	if c.Priority.MCPWeight == 0 && c.Priority.RESTWeight == 0 {
		violations = append(violations, "at least one path weight must be greater than zero")
	}
	if c.FailureThreshold < 0 || c.FailureThreshold > 1 {
		violations = append(violations, fmt.Sprintf("failure threshold must be within [0, 1], got %v", c.FailureThreshold))
	}
	if c.DegradedThreshold < 0 || c.DegradedThreshold > 1 {
		violations = append(violations, fmt.Sprintf("degraded threshold must be within [0, 1], got %v", c.DegradedThreshold))
	}
	if c.FailureThreshold > c.DegradedThreshold {
		violations = append(
			violations,
			fmt.Sprintf(
				"failure threshold (%v) cannot exceed degraded threshold (%v)",
				c.FailureThreshold,
				c.DegradedThreshold,
			),
		)
	}

	return violations
}

// Validate returns an error describing every configuration violation, or nil.
func (c Config) Validate() error {
	violations := c.Violations()
	if len(violations) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(violations, "; "))
}
