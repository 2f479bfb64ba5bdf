package cli

import (
	"context"
	"io"
	"os"

	"github.com/rook-computer/mirror/internal/app"
	"github.com/rook-computer/mirror/internal/config"
	"github.com/rook-computer/mirror/internal/input"
	"github.com/rook-computer/mirror/internal/logging"
	"github.com/rook-computer/mirror/internal/registry"
	"github.com/rook-computer/mirror/internal/render"
	"github.com/rook-computer/mirror/internal/system"
	"github.com/rook-computer/mirror/internal/web"
)

// EnvStdioLog names a file that receives stdout and stderr when
// --stdio-log is not given.
const EnvStdioLog = "MIRROR_STDIO_LOG"

// Mirror is the Launcher used by the binary. It wires the output device,
// console, input sources and debug server around an app.App.
type Mirror struct {
	Stderr io.Writer
	// Register adds the modules compiled into the binary.
	Register func(*registry.Registry)
}

func (m Mirror) Launch(ctx context.Context, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stderr := m.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := logging.New(stderr)
	logger.SetVerbose(opts.Verbose || opts.Debug)

	if path := stdioLog(opts); path != "" {
		if err := system.RedirectStdIO(path); err != nil {
			logger.Warnf("main", "stdio log redirect: %v", err)
		}
	}

	// The output device is chosen before the loop loads the file itself.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := opts.Overrides.Apply(cfg); err != nil {
		return err
	}
	serverCfg, err := web.ServerConfigFromEnv(cfg.Mirror.DebugListen)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		serverCfg.ListenAddr = opts.Listen
	}

	out, frames := output(opts, cfg, serverCfg.ListenAddr != "", logger)

	reg := registry.New()
	if m.Register != nil {
		m.Register(reg)
	}
	a := app.New(reg, out, app.Options{
		ConfigPath: opts.ConfigPath,
		Overrides:  opts.Overrides,
		FrameDebug: opts.FrameDebug,
		Debug:      opts.Debug,
		MaxFrames:  opts.Frames,
	})
	a.Logger = logger

	if !opts.Headless {
		a.Console = system.NewConsole(logger)
		system.WatchExitKeys(ctx, logger, func() {
			a.Events.Send(input.Event{Kind: input.Quit, Source: "keyboard"})
		})
	}
	input.WatchSignals(ctx, a.Events)

	if serverCfg.ListenAddr != "" {
		api := web.APIV1Config{State: a.Store}
		if frames != nil {
			api.Frames = frames
		}
		var events input.Sender
		if opts.Simulate {
			events = a.Events
		}
		srv := web.NewHTTPServer(serverCfg, web.NewDefaultMux(api, events))
		srv.Logger = logger
		a.Web = srv
	}

	return a.Run(ctx)
}

// output picks the device frames are presented on. The returned
// ImageOutput, when not nil, also holds the last frame for the debug API.
func output(opts RunOptions, cfg *config.Config, serve bool, logger *logging.Logger) (render.Output, *render.ImageOutput) {
	if opts.Headless {
		frames := render.NewImageOutput(opts.Snapshot)
		return frames, frames
	}

	fbOut := render.NewFramebufferOutput(opts.Framebuffer)
	fbOut.Fullscreen = cfg.Mirror.Fullscreen
	fbOut.X, fbOut.Y = cfg.Mirror.X, cfg.Mirror.Y
	fbOut.Logger = logger
	if !serve {
		return fbOut, nil
	}
	frames := render.NewImageOutput("")
	return render.Tee{fbOut, frames}, frames
}

func stdioLog(opts RunOptions) string {
	if opts.StdioLog != "" {
		return opts.StdioLog
	}
	return os.Getenv(EnvStdioLog)
}
