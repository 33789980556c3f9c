package daemon

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/probeops/dualwatch/internal/contracts"
	"github.com/probeops/dualwatch/internal/metrics"
)

func newTestCollector(t *testing.T) *metrics.Collector {
	t.Helper()

	collector, err := metrics.NewCollector(hclog.NewNullLogger())
	require.NoError(t, err)

	return collector
}

func TestIsValidAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		addr        string
		errContains string
	}{
		{
			name: "host and numeric port",
			addr: "localhost:8090",
		},
		{
			name: "all interfaces",
			addr: "0.0.0.0:8090",
		},
		{
			name: "empty host",
			addr: ":8090",
		},
		{
			name: "named port",
			addr: "localhost:http",
		},
		{
			name:        "missing port",
			addr:        "localhost",
			errContains: "invalid address format",
		},
		{
			name:        "empty address",
			addr:        "",
			errContains: "invalid address format",
		},
		{
			name:        "bogus named port",
			addr:        "localhost:not-a-port",
			errContains: "invalid address port: not-a-port",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := IsValidAddr(tc.addr)
			if tc.errContains != "" {
				require.ErrorContains(t, err, tc.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAPIDependencies_Validate(t *testing.T) {
	t.Parallel()

	collector := newTestCollector(t)
	logger := hclog.NewNullLogger()

	tests := []struct {
		name        string
		deps        APIDependencies
		errContains string
	}{
		{
			name: "valid",
			deps: APIDependencies{
				Addr:     "localhost:8090",
				Monitor:  collector,
				Reporter: collector,
				Logger:   logger,
			},
		},
		{
			name: "bad address",
			deps: APIDependencies{
				Addr:     "localhost",
				Monitor:  collector,
				Reporter: collector,
				Logger:   logger,
			},
			errContains: "invalid API address",
		},
		{
			name: "nil monitor",
			deps: APIDependencies{
				Addr:     "localhost:8090",
				Reporter: collector,
				Logger:   logger,
			},
			errContains: "health monitor cannot be nil",
		},
		{
			name: "typed nil monitor",
			deps: APIDependencies{
				Addr:     "localhost:8090",
				Monitor:  (*metrics.Collector)(nil),
				Reporter: collector,
				Logger:   logger,
			},
			errContains: "health monitor cannot be nil",
		},
		{
			name: "nil reporter",
			deps: APIDependencies{
				Addr:    "localhost:8090",
				Monitor: collector,
				Logger:  logger,
			},
			errContains: "metrics reporter cannot be nil",
		},
		{
			name: "nil logger",
			deps: APIDependencies{
				Addr:     "localhost:8090",
				Monitor:  collector,
				Reporter: collector,
			},
			errContains: "logger cannot be nil",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.deps.Validate()
			if tc.errContains != "" {
				require.ErrorContains(t, err, tc.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewAPIDependencies(t *testing.T) {
	t.Parallel()

	collector := newTestCollector(t)

	deps, err := NewAPIDependencies(hclog.NewNullLogger(), collector, collector, "localhost:8090")
	require.NoError(t, err)
	require.Equal(t, "localhost:8090", deps.Addr)
	require.Implements(t, (*contracts.HealthMonitor)(nil), deps.Monitor)
	require.Implements(t, (*contracts.MetricsReporter)(nil), deps.Reporter)

	_, err = NewAPIDependencies(nil, collector, collector, "localhost:8090")
	require.ErrorContains(t, err, "logger cannot be nil")
}
