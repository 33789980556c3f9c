package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/probeops/dualwatch/internal/cmd"
	"github.com/probeops/dualwatch/internal/config"
	"github.com/probeops/dualwatch/internal/flags"
)

// InitCmd should be used to represent the 'init' command.
type InitCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

// NewInitCmd creates a newly configured (Cobra) command.
func NewInitCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &InitCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new dualwatch configuration file",
		Long:  "Initialize a new dualwatch configuration file in the current directory (or at --config-file)",
		RunE:  c.run,
	}
}

func (c *InitCmd) run(cobraCmd *cobra.Command, _ []string) error {
	path := flags.ConfigFile

	if err := c.cfgLoader.Init(path); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	_, _ = fmt.Fprintf(cobraCmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
