// Command mirror drives a modular magic mirror on a Linux framebuffer.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/mirror/internal/cli"
	"github.com/rook-computer/mirror/modules"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(cli.Mirror{Stderr: stderr, Register: modules.RegisterBuiltins})
	c.SetArgs(args)
	c.SetOutput(stdout, stderr)

	if err := c.Execute(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	return 0
}
