package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/probeops/dualwatch/internal/config"
)

// Dependencies contains the required external dependencies for the daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Logger for daemon operations.
	Logger hclog.Logger

	// CfgLoader loads the daemon configuration file.
	CfgLoader config.Loader

	// APIAddr specifies the network address the API server binds.
	APIAddr string
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(logger hclog.Logger, cfgLoader config.Loader, apiAddr string) (Dependencies, error) {
	deps := Dependencies{
		Logger:    logger,
		CfgLoader: cfgLoader,
		APIAddr:   apiAddr,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	if d.CfgLoader == nil || reflect.ValueOf(d.CfgLoader).IsNil() {
		return fmt.Errorf("config loader cannot be nil")
	}
	if err := IsValidAddr(d.APIAddr); err != nil {
		return fmt.Errorf("invalid api address '%s': %w", d.APIAddr, err)
	}
	return nil
}
