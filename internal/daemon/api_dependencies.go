package daemon

import (
	"fmt"
	"net"
	"reflect"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/probeops/dualwatch/internal/contracts"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8090").
	Addr string

	// Monitor provides the latest health verdicts.
	Monitor contracts.HealthMonitor

	// Reporter answers windowed aggregation report queries.
	Reporter contracts.MetricsReporter

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	monitor contracts.HealthMonitor,
	reporter contracts.MetricsReporter,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:     addr,
		Monitor:  monitor,
		Reporter: reporter,
		Logger:   logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := IsValidAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Monitor == nil || reflect.ValueOf(d.Monitor).IsNil() {
		return fmt.Errorf("health monitor cannot be nil")
	}
	if d.Reporter == nil || reflect.ValueOf(d.Reporter).IsNil() {
		return fmt.Errorf("metrics reporter cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}

// IsValidAddr returns an error if the address is not a valid "host:port" string.
func IsValidAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %w", err)
	}

	if port == "" {
		return fmt.Errorf("address missing port")
	}

	if _, err := strconv.Atoi(port); err != nil {
		// Try looking up the named port.
		if _, err := net.LookupPort("tcp", port); err != nil {
			return fmt.Errorf("invalid address port: %s", port)
		}
	}

	_ = host // it's ok to accept an empty host (listens on all interfaces)

	return nil
}
