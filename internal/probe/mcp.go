package probe

import (
	"context"
	stdErrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/probeops/dualwatch/internal/domain"
)

// MCPProber performs the protocol-level probe path: connect, initialize, and
// list tools over a streamable HTTP MCP transport.
type MCPProber struct {
	logger  hclog.Logger
	timeout time.Duration
}

// NewMCPProber creates a prober for the MCP path.
func NewMCPProber(logger hclog.Logger, timeout time.Duration) (*MCPProber, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	return &MCPProber{
		logger:  logger.Named("probe.mcp"),
		timeout: timeout,
	}, nil
}

// Probe runs one protocol probe against the target. It always returns a
// result; transport failures are recorded on the result, never returned as an
// error, so the caller can feed partial outcomes into aggregation.
func (p *MCPProber) Probe(ctx context.Context, target Target) *domain.MCPProbeResult {
	result := &domain.MCPProbeResult{
		ServerName: target.Name,
		Timestamp:  time.Now().UTC(),
	}

	start := time.Now()
	defer func() {
		result.ResponseTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	}()

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	mcpClient, err := client.NewStreamableHttpClient(target.MCPURL)
	if err != nil {
		result.ConnectionError = fmt.Sprintf("failed to create MCP client: %v", err)
		return result
	}
	defer func() {
		if err := mcpClient.Close(); err != nil {
			p.logger.Debug("Error closing MCP client", "server", target.Name, "error", err)
		}
	}()

	if err := mcpClient.Start(probeCtx); err != nil {
		p.classifyError(result, err, "failed to connect to MCP server")
		return result
	}

	_, err = mcpClient.Initialize(probeCtx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "dualwatch", Version: "0.1.0"},
		},
	})
	if err != nil {
		p.classifyError(result, err, "failed to initialize MCP session")
		return result
	}

	toolsResult, err := mcpClient.ListTools(probeCtx, mcp.ListToolsRequest{})
	if err != nil {
		result.ProtocolError = fmt.Sprintf("tools/list failed: %v", err)
		return result
	}

	count := len(toolsResult.Tools)
	result.ToolsCount = &count
	result.Success = true
	result.Validation = validateTools(toolsResult.Tools, target.ExpectedTools, result)

	p.logger.Debug("MCP probe completed", "server", target.Name, "tools", count)

	return result
}

// classifyError records err on the result, separating timeouts from plain
// connection failures so metrics can bucket them.
func (p *MCPProber) classifyError(result *domain.MCPProbeResult, err error, prefix string) {
	if stdErrors.Is(err, context.DeadlineExceeded) {
		result.ProtocolError = fmt.Sprintf("%s: timeout after %s", prefix, p.timeout)
		return
	}
	result.ConnectionError = fmt.Sprintf("%s: %v", prefix, err)
}

// validateTools checks the listed tools against the expected set, filling the
// found/missing fields on the result.
func validateTools(tools []mcp.Tool, expected []string, result *domain.MCPProbeResult) *domain.ValidationResult {
	if len(expected) == 0 {
		return &domain.ValidationResult{IsValid: true}
	}

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}

	validation := &domain.ValidationResult{IsValid: true}
	for _, want := range expected {
		if slices.Contains(names, want) {
			result.ExpectedToolsFound = append(result.ExpectedToolsFound, want)
		} else {
			result.MissingTools = append(result.MissingTools, want)
		}
	}

	if len(result.MissingTools) > 0 {
		validation.IsValid = false
		validation.Errors = append(
			validation.Errors,
			fmt.Sprintf("missing %d of %d expected tools", len(result.MissingTools), len(expected)),
		)
	}

	return validation
}
