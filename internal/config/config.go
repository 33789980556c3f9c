// Package config loads and validates the .dualwatch.toml project file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/probeops/dualwatch/internal/aggregate"
)

// ErrConfigLoadFailed wraps every failure mode of loading the config file.
var ErrConfigLoadFailed = fmt.Errorf("config load failed")

// Loader abstracts access to configuration so commands can be tested without
// touching the filesystem.
type Loader interface {
	// Load reads and validates the config file at path.
	Load(path string) (*Config, error)

	// Init creates the base skeleton configuration file.
	Init(path string) error
}

// ServerEntry configures one monitored server.
type ServerEntry struct {
	// Name identifies the server in metrics, reports and the API.
	Name string `toml:"name"`

	// MCPURL is the streamable HTTP endpoint of the MCP server. Optional,
	// but at least one of MCPURL/RESTURL must be set.
	MCPURL string `toml:"mcp_url,omitempty"`

	// RESTURL is the conventional health endpoint. Optional.
	RESTURL string `toml:"rest_url,omitempty"`

	// ExpectedTools lists tool names the MCP server must expose.
	ExpectedTools []string `toml:"expected_tools,omitempty"`

	// HealthSchemaFile optionally points at a JSON schema for the health body.
	HealthSchemaFile string `toml:"health_schema_file,omitempty"`
}

// MonitorSection configures the probing loop.
type MonitorSection struct {
	// Interval between probe rounds. Defaults to 30s.
	Interval *Duration `toml:"interval,omitempty"`

	// MCPTimeout bounds one protocol probe. Defaults to 10s.
	MCPTimeout *Duration `toml:"mcp_timeout,omitempty"`

	// RESTTimeout bounds one REST probe. Defaults to 5s.
	RESTTimeout *Duration `toml:"rest_timeout,omitempty"`

	// StateFile optionally persists collector state across restarts.
	StateFile string `toml:"state_file,omitempty"`
}

// MetricsSection configures the metrics store.
type MetricsSection struct {
	// Retention is the maximum sample age before pruning. Defaults to 24h.
	Retention *Duration `toml:"retention,omitempty"`

	// CleanupInterval is how often the retention worker runs. Defaults to 1h.
	CleanupInterval *Duration `toml:"cleanup_interval,omitempty"`
}

// APISection configures the HTTP API server.
type APISection struct {
	// Addr to bind the API server (e.g. "0.0.0.0:8090").
	Addr string `toml:"addr,omitempty"`

	// CORS configuration for cross-origin requests.
	CORS *CORSSection `toml:"cors,omitempty"`
}

// CORSSection contains Cross-Origin Resource Sharing configuration.
type CORSSection struct {
	Enable        *bool     `toml:"enable,omitempty"`
	Origins       []string  `toml:"allow_origins,omitempty"`
	Methods       []string  `toml:"allow_methods,omitempty"`
	Headers       []string  `toml:"allow_headers,omitempty"`
	ExposeHeaders []string  `toml:"expose_headers,omitempty"`
	Credentials   *bool     `toml:"allow_credentials,omitempty"`
	MaxAge        *Duration `toml:"max_age,omitempty"`
}

// Config is the root of the .dualwatch.toml file.
type Config struct {
	Servers     []ServerEntry     `toml:"servers"`
	Monitor     *MonitorSection   `toml:"monitor,omitempty"`
	Metrics     *MetricsSection   `toml:"metrics,omitempty"`
	API         *APISection       `toml:"api,omitempty"`
	Aggregation *aggregate.Config `toml:"aggregation,omitempty"`
}

// Violations returns a list of configuration problems, or an empty slice.
func (c *Config) Violations() []string {
	var violations []string

	if len(c.Servers) == 0 {
		violations = append(violations, "at least one server must be configured")
	}

	seen := make(map[string]struct{}, len(c.Servers))
	for i, s := range c.Servers {
		if strings.TrimSpace(s.Name) == "" {
			violations = append(violations, fmt.Sprintf("servers[%d]: name cannot be empty", i))
			continue
		}
		if _, dup := seen[s.Name]; dup {
			violations = append(violations, fmt.Sprintf("servers[%d]: duplicate server name %q", i, s.Name))
		}
		seen[s.Name] = struct{}{}

		if s.MCPURL == "" && s.RESTURL == "" {
			violations = append(violations, fmt.Sprintf("server %q: at least one of mcp_url or rest_url must be set", s.Name))
		}
	}

	if c.Aggregation != nil {
		for _, v := range c.Aggregation.Violations() {
			violations = append(violations, fmt.Sprintf("aggregation: %s", v))
		}
	}

	return violations
}

// DefaultLoader loads configuration from TOML files on disk.
type DefaultLoader struct{}

// Init creates the base skeleton configuration file for a dualwatch project.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content := `# dualwatch configuration
#
# [[servers]]
# name = "time"
# mcp_url = "http://localhost:9000/mcp"
# rest_url = "http://localhost:9000/healthz"
# expected_tools = ["get_current_time"]

servers = []
`

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Load reads, decodes and validates the config file at path.
func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'dualwatch init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	if violations := cfg.Violations(); len(violations) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrConfigLoadFailed, strings.Join(violations, "; "))
	}

	return cfg, nil
}
