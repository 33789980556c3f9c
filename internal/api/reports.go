package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/probeops/dualwatch/internal/contracts"
	"github.com/probeops/dualwatch/internal/domain"
	"github.com/probeops/dualwatch/internal/errors"
)

// ReportRequest asks for one server's windowed aggregation report.
type ReportRequest struct {
	Name   string `doc:"Name of the server to report on" example:"time"      path:"name"`
	Window string `doc:"Rolling time window"             example:"last_hour" query:"window"`
}

// ReportResponse wraps one aggregation report.
type ReportResponse struct {
	Body domain.AggregationReport
}

// ReportsRequest asks for every tracked server's report over one window.
type ReportsRequest struct {
	Window string `doc:"Rolling time window" example:"last_hour" query:"window"`
}

// ReportsResponse wraps the per-server reports.
type ReportsResponse struct {
	Body struct {
		Reports []domain.AggregationReport `doc:"One report per tracked server" json:"reports"`
	}
}

// ResetServerRequest names the server whose metrics should be removed.
type ResetServerRequest struct {
	Name string `doc:"Name of the server to reset" example:"time" path:"name"`
}

// RegisterMetricsRoutes sets up the aggregation report API endpoint routes.
func RegisterMetricsRoutes(routerAPI huma.API, reporter contracts.MetricsReporter, apiPathPrefix string) {
	metricsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Metrics"}

	huma.Register(
		metricsAPI,
		huma.Operation{
			OperationID: "listReports",
			Method:      http.MethodGet,
			Path:        "/reports",
			Summary:     "List windowed aggregation reports for all servers",
			Tags:        tags,
		},
		func(ctx context.Context, input *ReportsRequest) (*ReportsResponse, error) {
			window, err := parseWindow(input.Window)
			if err != nil {
				return nil, err
			}

			resp := &ReportsResponse{}
			resp.Body.Reports = reporter.AllReports(window)
			return resp, nil
		},
	)

	huma.Register(
		metricsAPI,
		huma.Operation{
			OperationID: "getReport",
			Method:      http.MethodGet,
			Path:        "/reports/{name}",
			Summary:     "Get the windowed aggregation report for a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ReportRequest) (*ReportResponse, error) {
			window, err := parseWindow(input.Window)
			if err != nil {
				return nil, err
			}

			report, err := reporter.Report(input.Name, window)
			if err != nil {
				return nil, err
			}
			return &ReportResponse{Body: report}, nil
		},
	)

	huma.Register(
		metricsAPI,
		huma.Operation{
			OperationID: "resetServerMetrics",
			Method:      http.MethodDelete,
			Path:        "/servers/{name}",
			Summary:     "Remove all tracked metrics for a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ResetServerRequest) (*struct{}, error) {
			if err := reporter.Reset(input.Name); err != nil {
				return nil, err
			}
			return &struct{}{}, nil
		},
	)
}

func parseWindow(s string) (domain.TimeWindow, error) {
	window, err := domain.ParseTimeWindow(s)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrInvalidTimeWindow, s)
	}
	return window, nil
}
