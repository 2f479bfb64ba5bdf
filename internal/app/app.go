// Package app runs the mirror: it loads the configuration, owns the drawing
// context shared by all modules and drives the fixed-rate render loop.
package app

import (
	"context"
	"image"
	"time"

	"github.com/rook-computer/mirror/internal/config"
	"github.com/rook-computer/mirror/internal/imagecache"
	"github.com/rook-computer/mirror/internal/input"
	"github.com/rook-computer/mirror/internal/registry"
	"github.com/rook-computer/mirror/internal/render"
	"github.com/rook-computer/mirror/internal/render/layout"
	"github.com/rook-computer/mirror/internal/state"
	"github.com/rook-computer/mirror/mirror"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options are the per-run switches that do not live in the config file.
type Options struct {
	ConfigPath string
	Overrides  config.Overrides
	// FrameDebug outlines every module rectangle.
	FrameDebug bool
	// Debug makes a module draw failure stop the mirror instead of
	// disabling the module.
	Debug bool
	// MaxFrames stops the loop after that many frames; 0 runs until quit.
	MaxFrames int64
}

// Console is the terminal the framebuffer shares, see system.Console.
type Console interface {
	Acquire() error
	Release() error
}

// Runner is a background service supervised next to the loop.
type Runner interface {
	Run(ctx context.Context) error
}

type App struct {
	Options
	Registry *registry.Registry
	Output   render.Output
	Store    *state.Store
	Events   *input.Bus
	Logger   mirror.Logger
	// Optional collaborators.
	Console Console
	Web     Runner

	cfg     *config.Config
	screen  layout.Screen
	device  image.Point // set by a resize event
	surface *render.Surface
	fonts   *render.FontSet
	cache   *imagecache.Cache
	qrcodes *render.QRCodes

	started  time.Time
	frames   int64
	overruns int64
	last     time.Duration
}

func New(reg *registry.Registry, out render.Output, opts Options) *App {
	return &App{
		Options:  opts,
		Registry: reg,
		Output:   out,
		Store:    state.NewStore(),
		Events:   input.NewBus(),
		Logger:   mirror.NoopLogger{},
		qrcodes:  render.NewQRCodes(),
	}
}

// Run starts the mirror and blocks until a quit event, ctx cancellation or
// a fatal error. Configuration and module load failures are returned before
// the loop starts.
func (app *App) Run(ctx context.Context) error {
	app.Store.SetPhase(state.Starting)
	defer app.Store.SetPhase(state.Stopped)

	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	app.fonts = render.NewFontSet(app.Logger)
	app.apply(cfg)
	app.Registry.Dir = cfg.Dir
	app.Registry.Logger = app.Logger

	if err := app.Output.Open(ctx); err != nil {
		return zerr.Wrap(err, "open output")
	}
	defer func() {
		if err := app.Output.Close(); err != nil {
			app.Logger.Errorf("app", "close output: %v", err)
		}
	}()
	if app.Console != nil {
		_ = app.Console.Acquire()
		defer func() { _ = app.Console.Release() }()
	}

	app.started = time.Now()
	if cfg.Mirror.Splash > 0 {
		app.drawSplash("loading modules")
		app.present()
	}
	if err := app.Registry.LoadAll(app, cfg.Modules, app.screen); err != nil {
		app.Logger.Errorf("app", "%v", err)
		return err
	}
	app.publish()

	webCtx, stopWeb := context.WithCancel(ctx)
	defer stopWeb()
	g, gctx := errgroup.WithContext(webCtx)
	g.Go(func() error {
		defer stopWeb()
		return app.loop(gctx)
	})
	if app.Web != nil {
		g.Go(func() error { return app.Web.Run(gctx) })
	}
	return g.Wait()
}

func (app *App) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := app.Overrides.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply installs cfg as the current configuration: screen, surface, text
// defaults and image cache. A device size set by a resize event takes
// precedence over the configured screen. It runs before the loop or between
// frames.
func (app *App) apply(cfg *config.Config) {
	app.cfg = cfg
	app.screen = cfg.Mirror.Screen()
	device := app.screen.Device()
	if app.device != (image.Point{}) {
		app.fitDevice()
		device = image.Rectangle{Max: app.device}
	}
	defaults := render.TextDefaults{Size: cfg.Mirror.FontSize, Color: cfg.Mirror.FontColor, Font: cfg.Mirror.FontName}

	if app.surface == nil {
		app.surface = render.NewSurface(device.Dx(), device.Dy(), cfg.Mirror.Scale, app.fonts, defaults)
	} else {
		if app.surface.Canvas().Bounds() != device {
			app.surface.Resize(device.Dx(), device.Dy())
		}
		app.surface.SetScale(cfg.Mirror.Scale)
		app.surface.SetDefaults(defaults)
	}

	if app.cache == nil || app.cache.Dir() != cfg.Mirror.CacheDir {
		app.cache = imagecache.New(cfg.Mirror.CacheDir, cfg.Dir, app.Logger)
	}

	app.Store.SetConfig(cfg.Path)
	app.Store.UpdateScreen(state.ScreenInfo{Width: app.screen.Width, Height: app.screen.Height, Scale: app.screen.Scale})
	app.Logger.Infof("app", "screen %dx%d scale %.2f (%dx%d device), %.2f fps, cache %q",
		app.screen.Width, app.screen.Height, app.screen.Scale, device.Dx(), device.Dy(), cfg.Mirror.FPS, cfg.Mirror.CacheDir)
}

func sameSize(a, b layout.Screen) bool {
	return a.Width == b.Width && a.Height == b.Height
}

// Surface exposes the canvas, mainly for tests and snapshots.
func (app *App) Surface() *render.Surface { return app.surface }
