package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/probeops/dualwatch/internal/aggregate"
	"github.com/probeops/dualwatch/internal/contracts"
	"github.com/probeops/dualwatch/internal/domain"
)

// ServerVerdictRequest represents the incoming request for one server's verdict.
type ServerVerdictRequest struct {
	Name string `doc:"Name of the server to check" example:"time" path:"name"`
}

// ServerVerdictResponse wraps the latest dual health verdict for one server.
type ServerVerdictResponse struct {
	Body domain.DualHealthCheckResult
}

// ServersVerdictsResponse is the response for listing all current verdicts.
type ServersVerdictsResponse struct {
	Body struct {
		Servers []domain.DualHealthCheckResult `doc:"Latest verdict per tracked server" json:"servers"`
	}
}

// HealthSummaryResponse wraps the fleet-wide health rollup.
type HealthSummaryResponse struct {
	Body domain.HealthSummary
}

// RegisterHealthRoutes sets up the health verdict API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, monitor contracts.HealthMonitor, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "listServerVerdicts",
			Method:      http.MethodGet,
			Path:        "/servers",
			Summary:     "List the latest dual health verdicts for all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersVerdictsResponse, error) {
			resp := &ServersVerdictsResponse{}
			resp.Body.Servers = monitor.LatestAll()
			return resp, nil
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getServerVerdict",
			Method:      http.MethodGet,
			Path:        "/servers/{name}",
			Summary:     "Get the latest dual health verdict for a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerVerdictRequest) (*ServerVerdictResponse, error) {
			result, err := monitor.Latest(input.Name)
			if err != nil {
				return nil, err
			}
			return &ServerVerdictResponse{Body: result}, nil
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getHealthSummary",
			Method:      http.MethodGet,
			Path:        "/summary",
			Summary:     "Get the fleet-wide health summary",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*HealthSummaryResponse, error) {
			return &HealthSummaryResponse{Body: aggregate.Summarize(monitor.LatestAll())}, nil
		},
	)
}
