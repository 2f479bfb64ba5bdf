package cli

import (
	"github.com/rook-computer/mirror/internal/config"
	"github.com/rook-computer/mirror/internal/render"
	"github.com/spf13/cobra"
)

// RunOptions are the command line switches of run and simulate.
type RunOptions struct {
	ConfigPath string
	Overrides  config.Overrides
	FrameDebug bool
	Debug      bool
	Verbose    bool

	// Framebuffer is the device used unless the run is headless.
	Framebuffer string
	// Headless keeps frames in memory instead of drawing them.
	Headless bool
	// Snapshot receives the last frame as PNG on exit; implies Headless.
	Snapshot string
	// Frames stops the mirror after that many frames; 0 runs until quit.
	Frames   int64
	StdioLog string

	// Listen overrides debug_listen and MIRROR_DEBUG_LISTEN.
	Listen string
	// Simulate also accepts quit, reload and resize requests over HTTP.
	Simulate bool
}

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := readCommonFlags(cmd)
			opts.Debug, _ = cmd.Flags().GetBool("debug")
			opts.Framebuffer, _ = cmd.Flags().GetString("fb")
			opts.Headless, _ = cmd.Flags().GetBool("headless")
			opts.Frames, _ = cmd.Flags().GetInt64("frames")
			opts.StdioLog, _ = cmd.Flags().GetString("stdio-log")
			if opts.Snapshot != "" {
				opts.Headless = true
			}
			return c.launcher.Launch(cmd.Context(), opts)
		},
	}
	addCommonFlags(cmd, "")
	cmd.Flags().BoolP("fullscreen", "F", false, "Stretch the mirror over the whole framebuffer")
	cmd.Flags().Int("x", 0, "Horizontal offset on the framebuffer when not fullscreen")
	cmd.Flags().Int("y", 0, "Vertical offset on the framebuffer when not fullscreen")
	cmd.Flags().BoolP("debug", "d", false, "Stop on the first module draw error")
	cmd.Flags().String("fb", render.DefaultFramebuffer, "Framebuffer device")
	cmd.Flags().Bool("headless", false, "Render in memory only")
	cmd.Flags().Int64("frames", 0, "Stop after this many frames (0 runs until quit)")
	cmd.Flags().String("stdio-log", "", "Append stdout and stderr to this file; also configurable via "+EnvStdioLog)
	return cmd
}

func (c *CLI) newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the mirror headless behind the debug API",
		Long: "Run the mirror without a framebuffer. The last frame is served at /api/v1/frame.png " +
			"and POST /sim/quit, /sim/reload and /sim/resize?w=&h= drive the loop.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := readCommonFlags(cmd)
			opts.Headless = true
			opts.Simulate = true
			return c.launcher.Launch(cmd.Context(), opts)
		},
	}
	addCommonFlags(cmd, defaultSimulatorListen)
	return cmd
}

const defaultSimulatorListen = ":8080"

// addCommonFlags registers the flags shared by run and simulate.
func addCommonFlags(cmd *cobra.Command, listen string) {
	cmd.Flags().StringP("config", "c", "", "Configuration file (.yaml, .yml or .hcl)")
	_ = cmd.MarkFlagRequired("config")
	cmd.Flags().Float64P("scale", "s", 0, "Override the configured scale")
	cmd.Flags().Float64P("fps", "f", 0, "Override the configured frame rate")
	cmd.Flags().StringP("module", "m", "", "Load only the named module")
	cmd.Flags().BoolP("frame-debug", "g", false, "Outline every module rectangle")
	cmd.Flags().BoolP("verbose", "v", false, "Log debug messages")
	cmd.Flags().String("snapshot", "", "Write the last frame to this PNG file on exit")
	cmd.Flags().String("listen", listen, "Serve the debug API on this address")
}

// readCommonFlags collects the shared flags. Overrides are only set for
// flags given on the command line so the file keeps its values otherwise.
func readCommonFlags(cmd *cobra.Command) RunOptions {
	flags := cmd.Flags()
	var opts RunOptions
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Overrides.Module, _ = flags.GetString("module")
	opts.FrameDebug, _ = flags.GetBool("frame-debug")
	opts.Verbose, _ = flags.GetBool("verbose")
	opts.Snapshot, _ = flags.GetString("snapshot")
	opts.Listen, _ = flags.GetString("listen")

	if flags.Changed("scale") {
		v, _ := flags.GetFloat64("scale")
		opts.Overrides.Scale = &v
	}
	if flags.Changed("fps") {
		v, _ := flags.GetFloat64("fps")
		opts.Overrides.FPS = &v
	}
	if flags.Changed("fullscreen") {
		v, _ := flags.GetBool("fullscreen")
		opts.Overrides.Fullscreen = &v
	}
	if flags.Changed("x") {
		v, _ := flags.GetInt("x")
		opts.Overrides.X = &v
	}
	if flags.Changed("y") {
		v, _ := flags.GetInt("y")
		opts.Overrides.Y = &v
	}
	return opts
}
