// Package probe implements the dual-path prober: a protocol-level MCP probe
// (initialize plus tools/list) and a conventional REST health-endpoint probe,
// run concurrently per server. The prober owns transport timeouts and error
// classification; it hands completed result records to the aggregation engine
// and never interprets them itself.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/probeops/dualwatch/internal/domain"
)

// Target describes one server to probe. Either URL may be empty, in which case
// that path is skipped and its result is nil.
type Target struct {
	// Name identifies the server in results and metrics.
	Name string

	// MCPURL is the streamable HTTP endpoint of the MCP server.
	MCPURL string

	// RESTURL is the conventional health endpoint.
	RESTURL string

	// ExpectedTools lists tool names the MCP server must expose.
	ExpectedTools []string

	// HealthSchema optionally holds a JSON schema the health body must satisfy.
	HealthSchema string
}

// DualProber runs both probe paths for a target concurrently.
type DualProber struct {
	logger hclog.Logger
	mcp    *MCPProber
	rest   *RESTProber
}

// NewDualProber creates a prober running both paths with the given per-path timeouts.
func NewDualProber(logger hclog.Logger, mcpTimeout, restTimeout time.Duration) (*DualProber, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	mcpProber, err := NewMCPProber(logger, mcpTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP prober: %w", err)
	}
	restProber, err := NewRESTProber(logger, restTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST prober: %w", err)
	}

	return &DualProber{
		logger: logger.Named("probe"),
		mcp:    mcpProber,
		rest:   restProber,
	}, nil
}

// Probe runs the configured paths for one target concurrently and returns
// whichever results were produced. A path with no configured URL yields nil.
func (p *DualProber) Probe(ctx context.Context, target Target) (*domain.MCPProbeResult, *domain.RESTProbeResult) {
	var mcpResult *domain.MCPProbeResult
	var restResult *domain.RESTProbeResult

	g, probeCtx := errgroup.WithContext(ctx)

	if target.MCPURL != "" {
		g.Go(func() error {
			mcpResult = p.mcp.Probe(probeCtx, target)
			return nil
		})
	}
	if target.RESTURL != "" {
		g.Go(func() error {
			restResult = p.rest.Probe(probeCtx, target)
			return nil
		})
	}

	// Probes report failures on their results, never as errors.
	_ = g.Wait()

	return mcpResult, restResult
}
