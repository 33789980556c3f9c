package daemon

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestNewOptions_Defaults(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	require.NoError(t, err)

	require.Equal(t, 30*time.Second, opts.ProbeInterval)
	require.Equal(t, 10*time.Second, opts.MCPTimeout)
	require.Equal(t, 5*time.Second, opts.RESTTimeout)
	require.Empty(t, opts.APIOptions)
}

func TestNewOptions_Overrides(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions(
		WithProbeInterval(time.Minute),
		WithMCPTimeout(2*time.Second),
		WithRESTTimeout(time.Second),
		WithAPIOptions(WithCORSEnabled(true)),
	)
	require.NoError(t, err)

	require.Equal(t, time.Minute, opts.ProbeInterval)
	require.Equal(t, 2*time.Second, opts.MCPTimeout)
	require.Equal(t, time.Second, opts.RESTTimeout)
	require.Len(t, opts.APIOptions, 1)
}

func TestNewOptions_Violations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		option      Option
		errContains string
	}{
		{
			name:        "zero probe interval",
			option:      WithProbeInterval(0),
			errContains: "probe interval must be positive",
		},
		{
			name:        "negative mcp timeout",
			option:      WithMCPTimeout(-time.Second),
			errContains: "mcp timeout must be positive",
		},
		{
			name:        "zero rest timeout",
			option:      WithRESTTimeout(0),
			errContains: "rest timeout must be positive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOptions(tc.option)
			require.ErrorContains(t, err, tc.errContains)
		})
	}
}

func TestDependencies_Validate(t *testing.T) {
	t.Parallel()

	logger := hclog.NewNullLogger()

	tests := []struct {
		name        string
		deps        Dependencies
		errContains string
	}{
		{
			name: "valid",
			deps: Dependencies{Logger: logger, CfgLoader: &stubLoader{}, APIAddr: "localhost:8090"},
		},
		{
			name:        "nil logger",
			deps:        Dependencies{CfgLoader: &stubLoader{}, APIAddr: "localhost:8090"},
			errContains: "logger cannot be nil",
		},
		{
			name:        "nil config loader",
			deps:        Dependencies{Logger: logger, APIAddr: "localhost:8090"},
			errContains: "config loader cannot be nil",
		},
		{
			name:        "bad api address",
			deps:        Dependencies{Logger: logger, CfgLoader: &stubLoader{}, APIAddr: "localhost"},
			errContains: "invalid api address",
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
