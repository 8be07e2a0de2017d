package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/dwq/cli/internal/ui"
	"github.com/satishbabariya/dwq/cli/internal/version"
)

func newVersionCommand() *cobra.Command {
	var full bool
	var constraint string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if constraint != "" {
				ok, err := info.Satisfies(constraint)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("dwq %s does not satisfy %q", info.Version, constraint)
				}
			}
			if full {
				fmt.Fprintln(ui.Out, info.FullString())
			} else {
				fmt.Fprintln(ui.Out, info.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include build details")
	cmd.Flags().StringVar(&constraint, "check", "", "fail unless the version satisfies a constraint, e.g. \">= 0.1\"")
	return cmd
}
