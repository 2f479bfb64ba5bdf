// Package cli implements the mirror command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rook-computer/mirror/internal/build"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface for mirror.
type CLI struct {
	launcher Launcher
	rootCmd  *cobra.Command
}

// Launcher starts the mirror with the options parsed from the command line.
type Launcher interface {
	Launch(ctx context.Context, opts RunOptions) error
}

// New creates a new CLI instance that hands run and simulate to l.
func New(l Launcher) *CLI {
	rootCmd := &cobra.Command{
		Use:           "mirror",
		Short:         "Modular magic mirror for Linux framebuffers",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		launcher: l,
		rootCmd:  rootCmd,
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newSimulateCmd())
	rootCmd.AddCommand(c.newExampleCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
