package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/probeops/dualwatch/internal/cmd"
	"github.com/probeops/dualwatch/internal/domain"
	"github.com/probeops/dualwatch/internal/filter"
)

// StatusCmd should be used to represent the 'status' command.
type StatusCmd struct {
	*internalcmd.BaseCmd
	Addr    string
	Filters []string
	format  internalcmd.OutputFormat
}

// NewStatusCmd creates a newly configured (Cobra) command.
func NewStatusCmd(baseCmd *internalcmd.BaseCmd) *cobra.Command {
	c := &StatusCmd{
		BaseCmd: baseCmd,
	}

	cobraCmd := &cobra.Command{
		Use:   "status [server-name]",
		Short: "Show the latest health verdicts from a running daemon",
		Long: "Show the latest dual-path health verdict per server from a running daemon. " +
			"With a server name, shows only that server.",
		RunE: c.run,
		Args: cobra.MaximumNArgs(1),
	}

	cobraCmd.Flags().StringVar(
		&c.Addr,
		"addr",
		"localhost:8090",
		"Address of the running daemon API",
	)

	cobraCmd.Flags().StringArrayVar(
		&c.Filters,
		"filter",
		nil,
		"Filter verdicts by key=value (keys: status, path), repeatable",
	)

	allowedOutputFormats := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowedOutputFormats.String()),
	)

	return cobraCmd
}

func (c *StatusCmd) run(cobraCmd *cobra.Command, args []string) error {
	client, err := newAPIClient(c.Addr)
	if err != nil {
		return err
	}

	handler, err := internalcmd.FormatHandler(cobraCmd.OutOrStdout(), c.format, renderVerdict)
	if err != nil {
		return err
	}

	ctx := cobraCmd.Context()

	if len(args) == 1 {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("server-name cannot be empty")
		}

		var result domain.DualHealthCheckResult
		if err := client.get(ctx, "/health/servers/"+name, nil, &result); err != nil {
			return err
		}
		return handler.HandleResult(result)
	}

	var resp struct {
		Servers []domain.DualHealthCheckResult `json:"servers"`
	}
	if err := client.get(ctx, "/health/servers", nil, &resp); err != nil {
		return err
	}

	verdicts, err := filterVerdicts(resp.Servers, c.Filters)
	if err != nil {
		return err
	}
	return handler.HandleResults(verdicts...)
}

// filterVerdicts narrows verdicts down to those matching every key=value filter.
func filterVerdicts(verdicts []domain.DualHealthCheckResult, rawFilters []string) ([]domain.DualHealthCheckResult, error) {
	filters := make(map[string]string, len(rawFilters))
	for _, raw := range rawFilters {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", raw)
		}
		filters[key] = value
	}

	opts, err := filter.NewOptions(
		filter.WithMatcher("status", filter.Equals(func(r domain.DualHealthCheckResult) string {
			return string(r.OverallStatus)
		})),
		filter.WithMatcher("path", filter.HasAny(func(r domain.DualHealthCheckResult) []string {
			paths := make([]string, 0, len(r.AvailablePaths))
			for _, p := range r.AvailablePaths {
				paths = append(paths, string(p))
			}
			return paths
		})),
	)
	if err != nil {
		return nil, err
	}

	return opts.Apply(verdicts, filters)
}

// renderVerdict writes one verdict as human-readable text.
func renderVerdict(w io.Writer, result domain.DualHealthCheckResult) error {
	paths := make([]string, 0, len(result.AvailablePaths))
	for _, p := range result.AvailablePaths {
		paths = append(paths, string(p))
	}

	_, err := fmt.Fprintf(w, "%s: %s (score %.2f, paths: %s)\n",
		result.ServerName,
		result.OverallStatus,
		result.HealthScore,
		strings.Join(paths, ", "),
	)
	if err != nil {
		return err
	}

	if result.MCPError != "" {
		if _, err := fmt.Fprintf(w, "  mcp error: %s\n", result.MCPError); err != nil {
			return err
		}
	}
	if result.RESTError != "" {
		if _, err := fmt.Fprintf(w, "  rest error: %s\n", result.RESTError); err != nil {
			return err
		}
	}

	return nil
}
