package cmd

import (
	"github.com/spf13/cobra"

	"github.com/probeops/dualwatch/internal/cmd"
	"github.com/probeops/dualwatch/internal/flags"
)

// RootCmd should be used to represent the root 'dualwatch' command.
type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the command tree and runs the selected command.
func Execute() error {
	rootCmd, err := NewRootCmd()
	if err != nil {
		return err
	}
	return rootCmd.Execute()
}

// NewRootCmd creates the root (Cobra) command with all subcommands attached.
func NewRootCmd() (*cobra.Command, error) {
	c := &RootCmd{
		BaseCmd: &cmd.BaseCmd{},
	}

	rootCmd := &cobra.Command{
		Use:   "dualwatch <command> [args]",
		Short: "'dualwatch' monitors MCP servers over both protocol and REST health paths.",
		Long: `'dualwatch' probes MCP servers twice on every round: once at the protocol level
(initialize plus tools/list) and once against the conventional REST health endpoint.
The two observations are aggregated into a single health verdict with a confidence
score, accumulated into windowed metrics, and served over an HTTP API.`,
		SilenceUsage: true,
		Version:      cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewInitCmd(c.BaseCmd))

	daemonCmd, err := NewDaemonCmd(c.BaseCmd)
	if err != nil {
		return nil, err
	}
	rootCmd.AddCommand(daemonCmd)

	rootCmd.AddCommand(NewStatusCmd(c.BaseCmd))
	rootCmd.AddCommand(NewReportCmd(c.BaseCmd))

	return rootCmd, nil
}
