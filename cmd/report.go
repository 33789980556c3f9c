package cmd

import (
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/probeops/dualwatch/internal/cmd"
	"github.com/probeops/dualwatch/internal/domain"
)

// ReportCmd should be used to represent the 'report' command.
type ReportCmd struct {
	*internalcmd.BaseCmd
	Addr   string
	Window string
	format internalcmd.OutputFormat
}

// NewReportCmd creates a newly configured (Cobra) command.
func NewReportCmd(baseCmd *internalcmd.BaseCmd) *cobra.Command {
	c := &ReportCmd{
		BaseCmd: baseCmd,
	}

	cobraCmd := &cobra.Command{
		Use:   "report [server-name]",
		Short: "Show windowed aggregation reports from a running daemon",
		Long: "Show windowed aggregation reports from a running daemon. " +
			"With a server name, shows only that server's report.",
		RunE: c.run,
		Args: cobra.MaximumNArgs(1),
	}

	cobraCmd.Flags().StringVar(
		&c.Addr,
		"addr",
		"localhost:8090",
		"Address of the running daemon API",
	)

	cobraCmd.Flags().StringVar(
		&c.Window,
		"window",
		string(domain.WindowLastHour),
		fmt.Sprintf("Rolling time window (one of: %s, %s, %s)",
			domain.WindowLastHour, domain.WindowLastDay, domain.WindowLastWeek),
	)

	allowedOutputFormats := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowedOutputFormats.String()),
	)

	return cobraCmd
}

func (c *ReportCmd) run(cobraCmd *cobra.Command, args []string) error {
	// Fail fast on an invalid window before hitting the API.
	if _, err := domain.ParseTimeWindow(c.Window); err != nil {
		return err
	}

	client, err := newAPIClient(c.Addr)
	if err != nil {
		return err
	}

	handler, err := internalcmd.FormatHandler(cobraCmd.OutOrStdout(), c.format, renderReport)
	if err != nil {
		return err
	}

	ctx := cobraCmd.Context()
	query := url.Values{"window": []string{c.Window}}

	if len(args) == 1 {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("server-name cannot be empty")
		}

		var report domain.AggregationReport
		if err := client.get(ctx, "/metrics/reports/"+name, query, &report); err != nil {
			return err
		}
		return handler.HandleResult(report)
	}

	var resp struct {
		Reports []domain.AggregationReport `json:"reports"`
	}
	if err := client.get(ctx, "/metrics/reports", query, &resp); err != nil {
		return err
	}
	return handler.HandleResults(resp.Reports...)
}

// renderReport writes one aggregation report as human-readable text.
func renderReport(w io.Writer, report domain.AggregationReport) error {
	_, err := fmt.Fprintf(w, "%s (%s):\n"+
		"  checks:\tmcp=%d rest=%d\n"+
		"  success:\tmcp=%.1f%% rest=%.1f%% combined=%.1f%%\n"+
		"  latency:\tmcp avg=%.0fms p95=%.0fms, rest avg=%.0fms p95=%.0fms\n"+
		"  availability:\ttools=%.1f%% endpoint=%.1f%% overall=%.1f%%\n",
		report.ServerName,
		report.Window,
		report.TotalMCPChecks,
		report.TotalRESTChecks,
		report.MCPSuccessRate*100,
		report.RESTSuccessRate*100,
		report.CombinedSuccessRate*100,
		report.AvgMCPResponseTimeMs,
		report.P95MCPResponseTimeMs,
		report.AvgRESTResponseTimeMs,
		report.P95RESTResponseTimeMs,
		report.ToolAvailabilityRate*100,
		report.EndpointAvailabilityRate*100,
		report.OverallAvailabilityRate*100,
	)
	if err != nil {
		return err
	}

	for _, sc := range report.TopStatusCodes {
		if _, err := fmt.Fprintf(w, "  status %d:\t%d\n", sc.StatusCode, sc.Count); err != nil {
			return err
		}
	}
	// Sort categories for deterministic output.
	categories := slices.Collect(maps.Keys(report.ErrorBreakdown))
	slices.Sort(categories)
	for _, category := range categories {
		if _, err := fmt.Fprintf(w, "  errors[%s]:\t%d\n", category, report.ErrorBreakdown[category]); err != nil {
			return err
		}
	}

	return nil
}
