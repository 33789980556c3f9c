package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/probeops/dualwatch/internal/cmd"
	"github.com/probeops/dualwatch/internal/config"
	"github.com/probeops/dualwatch/internal/daemon"
	"github.com/probeops/dualwatch/internal/flags"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	Dev       bool
	Addr      string
	Interval  time.Duration
	cfgLoader config.Loader
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &DaemonCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--dev] [--addr]",
		Short: "Launches a dualwatch daemon instance",
		Long:  "Launches a dualwatch daemon instance, which probes configured servers on both paths and serves results via HTTP API",
		RunE:  c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Dev,
		"dev",
		false,
		"Run the daemon in development-focused mode",
	)

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"0.0.0.0:8090",
		"Address for the daemon to bind (not applicable in --dev mode)",
	)

	cobraCommand.Flags().DurationVar(
		&c.Interval,
		"interval",
		daemon.DefaultProbeInterval(),
		"Delay between probe rounds (the config file can override this)",
	)

	cobraCommand.MarkFlagsMutuallyExclusive("dev", "addr")

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
func (c *DaemonCmd) run(_ *cobra.Command, _ []string) error {
	logger := c.Logger()

	addr := strings.TrimSpace(c.Addr)

	// Override address for dev mode.
	if c.Dev {
		devAddr := "localhost:8090"
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	if err := daemon.IsValidAddr(addr); err != nil {
		return err
	}

	deps, err := daemon.NewDependencies(logger, c.cfgLoader, addr)
	if err != nil {
		return fmt.Errorf("error configuring dualwatch daemon: %w", err)
	}

	d, err := daemon.NewDaemon(deps, daemon.WithProbeInterval(c.Interval))
	if err != nil {
		return fmt.Errorf("failed to create dualwatch daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	// Print --dev mode banner if required.
	if c.Dev {
		banner := fmt.Sprintf("dualwatch daemon running in 'dev' mode.\n\n"+
			"  Local API:\thttp://%s/api/v1\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Config file:\t%s\n",
			addr, addr, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		fmt.Print(banner)
	}

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		err := <-runErr // Wait for cleanup and deferred logging.
		return err      // Graceful Ctrl+C / SIGTERM.
	case err := <-runErr:
		if err != nil {
			logger.Error("daemon exited with error", "error", err)
		}
		return err // Propagate daemon failure.
	}
}
