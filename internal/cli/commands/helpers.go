// Package commands implements the radops subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/openradius/radops/internal/cli/config"
	"github.com/openradius/radops/internal/cli/output"
)

// getConfig returns the configuration loaded by the root command's
// PersistentPreRunE, or defaults when a command runs outside it (tests).
func getConfig() *config.Config {
	return config.GetCurrentConfig()
}

// newRenderer builds a renderer on the command's writers, honoring the
// configured output mode.
func newRenderer(cmd *cobra.Command) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(getConfig().Output))
}
