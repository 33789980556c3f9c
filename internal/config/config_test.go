package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/probeops/dualwatch/internal/aggregate"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".dualwatch.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefaultLoader_Load(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}

	path := writeConfigFile(t, `
[[servers]]
name = "time"
mcp_url = "http://localhost:9000/mcp"
rest_url = "http://localhost:9000/healthz"
expected_tools = ["get_current_time"]

[[servers]]
name = "fetch"
rest_url = "http://localhost:9001/healthz"

[monitor]
interval = "15s"
mcp_timeout = "3s"

[metrics]
retention = "48h"

[api]
addr = "127.0.0.1:9999"

[aggregation.priority]
mcp_weight = 0.7
rest_weight = 0.3
`)

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Servers, 2)
	require.Equal(t, "time", cfg.Servers[0].Name)
	require.Equal(t, "http://localhost:9000/mcp", cfg.Servers[0].MCPURL)
	require.Equal(t, []string{"get_current_time"}, cfg.Servers[0].ExpectedTools)
	require.Empty(t, cfg.Servers[1].MCPURL)

	require.NotNil(t, cfg.Monitor)
	require.Equal(t, 15*time.Second, cfg.Monitor.Interval.OrDefault(0))
	require.Equal(t, 3*time.Second, cfg.Monitor.MCPTimeout.OrDefault(0))
	require.Nil(t, cfg.Monitor.RESTTimeout)

	require.NotNil(t, cfg.Metrics)
	require.Equal(t, 48*time.Hour, cfg.Metrics.Retention.OrDefault(0))

	require.NotNil(t, cfg.API)
	require.Equal(t, "127.0.0.1:9999", cfg.API.Addr)

	require.NotNil(t, cfg.Aggregation)
	require.InDelta(t, 0.7, cfg.Aggregation.Priority.MCPWeight, 0.0001)
}

func TestDefaultLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		path        func(t *testing.T) string
		errContains string
	}{
		{
			name: "empty path",
			path: func(_ *testing.T) string {
				return "   "
			},
			errContains: "path cannot be empty",
		},
		{
			name: "missing file",
			path: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(t.TempDir(), "nope.toml")
			},
			errContains: "config file cannot be found, run: 'dualwatch init'",
		},
		{
			name: "malformed toml",
			path: func(t *testing.T) string {
				t.Helper()
				return writeConfigFile(t, "[[servers]\nname = ")
			},
			errContains: "failed to decode config",
		},
		{
			name: "no servers",
			path: func(t *testing.T) string {
				t.Helper()
				return writeConfigFile(t, "servers = []\n")
			},
			errContains: "at least one server must be configured",
		},
		{
			name: "server without urls",
			path: func(t *testing.T) string {
				t.Helper()
				return writeConfigFile(t, "[[servers]]\nname = \"time\"\n")
			},
			errContains: `server "time": at least one of mcp_url or rest_url must be set`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			loader := &DefaultLoader{}
			_, err := loader.Load(tc.path(t))
			require.ErrorIs(t, err, ErrConfigLoadFailed)
			require.ErrorContains(t, err, tc.errContains)
		})
	}
}

func TestDefaultLoader_Init(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	path := filepath.Join(t.TempDir(), ".dualwatch.toml")

	require.NoError(t, loader.Init(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "servers = []")

	err = loader.Init(path)
	require.ErrorContains(t, err, "already exists")
}

func TestConfig_Violations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		expected []string
	}{
		{
			name: "valid",
			cfg: Config{
				Servers: []ServerEntry{{Name: "time", MCPURL: "http://localhost:9000/mcp"}},
			},
			expected: nil,
		},
		{
			name: "empty server name",
			cfg: Config{
				Servers: []ServerEntry{{Name: "  ", MCPURL: "http://localhost:9000/mcp"}},
			},
			expected: []string{"servers[0]: name cannot be empty"},
		},
		{
			name: "duplicate server name",
			cfg: Config{
				Servers: []ServerEntry{
					{Name: "time", MCPURL: "http://localhost:9000/mcp"},
					{Name: "time", RESTURL: "http://localhost:9001/healthz"},
				},
			},
			expected: []string{`servers[1]: duplicate server name "time"`},
		},
		{
			name: "aggregation violations are prefixed",
			cfg: Config{
				Servers: []ServerEntry{{Name: "time", MCPURL: "http://localhost:9000/mcp"}},
				Aggregation: &aggregate.Config{
					Priority: aggregate.PriorityConfig{
						MCPWeight:  -1,
						RESTWeight: 0.5,
					},
					ScoreMethod:       aggregate.MethodWeightedAverage,
					FailureThreshold:  0.3,
					DegradedThreshold: 0.7,
				},
			},
			expected: []string{"aggregation: mcp weight must be within [0, 1], got -1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, tc.cfg.Violations())
		})
	}
}
