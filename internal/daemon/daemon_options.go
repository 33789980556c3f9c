package daemon

import (
	"fmt"
	"time"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// ProbeInterval is the delay between consecutive probe rounds.
	// The configuration file can override this value.
	ProbeInterval time.Duration

	// MCPTimeout bounds a single MCP protocol probe.
	MCPTimeout time.Duration

	// RESTTimeout bounds a single REST health probe.
	RESTTimeout time.Duration

	// APIOptions are forwarded to the embedded API server.
	APIOptions []APIOption
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order with later options overriding earlier ones.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		ProbeInterval: DefaultProbeInterval(),
		MCPTimeout:    DefaultMCPTimeout(),
		RESTTimeout:   DefaultRESTTimeout(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithProbeInterval configures the delay between probe rounds.
func WithProbeInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval <= 0 {
			return fmt.Errorf("probe interval must be positive, got %v", interval)
		}
		o.ProbeInterval = interval
		return nil
	}
}

// WithMCPTimeout configures the per-probe timeout for the MCP path.
func WithMCPTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("mcp timeout must be positive, got %v", timeout)
		}
		o.MCPTimeout = timeout
		return nil
	}
}

// WithRESTTimeout configures the per-probe timeout for the REST path.
func WithRESTTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("rest timeout must be positive, got %v", timeout)
		}
		o.RESTTimeout = timeout
		return nil
	}
}

// WithAPIOptions forwards options to the embedded API server.
func WithAPIOptions(opts ...APIOption) Option {
	return func(o *Options) error {
		o.APIOptions = append(o.APIOptions, opts...)
		return nil
	}
}

// DefaultProbeInterval is the default delay between probe rounds.
func DefaultProbeInterval() time.Duration {
	return 30 * time.Second
}

// DefaultMCPTimeout is the default timeout for a single MCP protocol probe.
func DefaultMCPTimeout() time.Duration {
	return 10 * time.Second
}

// DefaultRESTTimeout is the default timeout for a single REST health probe.
func DefaultRESTTimeout() time.Duration {
	return 5 * time.Second
}
