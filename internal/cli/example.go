package cli

import (
	"github.com/rook-computer/mirror/internal/assets"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "example [yaml|hcl]",
		Short:     "Print an example configuration",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"yaml", "hcl"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "yaml"
			if len(args) == 1 {
				format = args[0]
			}
			data, err := assets.Example(format)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "example config"), "format", format)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
