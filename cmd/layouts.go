package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwnmux/pwnmux/internal/layout"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Manage the bundled pane layouts",
}

var layoutsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bundled layouts and their install state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range layout.Names() {
			state := " "
			if layout.IsInstalled(name) {
				state = "✓"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", state, name)
		}
		return nil
	},
}

var layoutsInstallCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a bundled layout into ~/.config/pwnmux/layouts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := layout.Install(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n  ✓ Layout written to %s\n", path)
		return nil
	},
}

func init() {
	layoutsCmd.AddCommand(layoutsListCmd)
	layoutsCmd.AddCommand(layoutsInstallCmd)
	rootCmd.AddCommand(layoutsCmd)
}
