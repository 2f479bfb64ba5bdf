package app

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/rook-computer/mirror/internal/input"
	"github.com/rook-computer/mirror/internal/registry"
	"github.com/rook-computer/mirror/internal/render"
	"github.com/rook-computer/mirror/internal/state"
	"github.com/rook-computer/mirror/mirror"
)

// loop draws frames at the configured rate until quit. Events are handled
// only between frames, never while a module draws.
func (app *App) loop(ctx context.Context) error {
	app.Store.SetPhase(state.Running)
	app.Logger.Infof("loop", "running %d modules", len(app.Registry.Instances()))

	var pending []input.Event
	for {
		pending = append(pending, app.Events.Drain()...)
		if app.handleEvents(pending) || ctx.Err() != nil {
			break
		}
		pending = pending[:0]

		start := time.Now()
		if err := app.frame(start); err != nil {
			app.Store.SetPhase(state.Stopping)
			return err
		}
		app.last = time.Since(start)
		app.frames++
		app.publish()

		if app.MaxFrames > 0 && app.frames >= app.MaxFrames {
			break
		}

		wait := app.cfg.Mirror.FrameInterval() - app.last
		if wait < 0 {
			app.overruns++
			wait = 0
		}
		pending = app.sleep(ctx, wait, pending)
	}

	app.Store.SetPhase(state.Stopping)
	app.Logger.Infof("loop", "stopping after %d frames", app.frames)
	return nil
}

// sleep waits out the rest of the frame interval, collecting events into
// pending. Only a quit or ctx cancellation ends the wait early, so a burst of
// resize or reload events cannot push the frame rate above the target.
func (app *App) sleep(ctx context.Context, wait time.Duration, pending []input.Event) []input.Event {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return pending
		case <-timer.C:
			return pending
		case ev := <-app.Events.Wait():
			pending = append(pending, ev)
			if ev.Kind == input.Quit || app.Events.QuitRequested() {
				return pending
			}
		}
	}
}

// handleEvents applies resize and reload events and reports whether a quit
// was requested.
func (app *App) handleEvents(events []input.Event) bool {
	quit := false
	for _, ev := range events {
		app.Logger.Debugf("loop", "event %s from %s", ev.Kind, ev.Source)
		switch ev.Kind {
		case input.Quit:
			quit = true
		case input.Resize:
			app.resize(ev.Width, ev.Height)
		case input.Reload:
			app.reload()
		}
	}
	return quit
}

// frame clears the canvas, draws every module and presents the result.
func (app *App) frame(now time.Time) error {
	app.surface.Leave()
	app.surface.Clear(render.Background)

	for _, res := range app.Registry.DrawAll(app) {
		if err := app.handleResult(res, now); err != nil {
			return err
		}
	}

	if app.FrameDebug {
		for _, inst := range app.Registry.Instances() {
			app.surface.Enter(inst.Bounds)
			app.surface.OutlineRegion(render.DebugOutline)
		}
		app.surface.Leave()
	}
	if app.splashActive(now) {
		app.drawSplash("")
	}
	app.present()
	return nil
}

// handleResult applies the failure policy: asset errors skip the module for
// this frame only, other draw errors disable it for the rest of the run (or
// stop the mirror in debug mode), and budget overruns skip the next frame.
func (app *App) handleResult(res registry.DrawResult, now time.Time) error {
	inst := res.Instance
	switch {
	case res.Skipped:
		return nil
	case res.Err == nil:
		inst.ClearError()
		if budget := app.cfg.Mirror.DrawBudget; budget > 0 && res.Duration > budget {
			app.Logger.Warnf("loop", "module %s took %v (budget %v), skipping next frame", inst.Name(), res.Duration, budget)
			inst.SkipNext()
		}
		return nil
	case errors.Is(res.Err, mirror.ErrAsset):
		if inst.NoteError(res.Err.Error()) {
			app.Logger.Warnf("loop", "%v", res.Err)
		}
		return nil
	case app.Debug:
		app.Logger.Errorf("loop", "%v", res.Err)
		return res.Err
	default:
		inst.Disable(res.Err, now)
		app.Logger.Errorf("loop", "%v; module disabled", res.Err)
		return nil
	}
}

func (app *App) present() {
	if err := app.Output.Present(app.surface.Canvas()); err != nil {
		app.Logger.Errorf("loop", "present: %v", err)
	}
}

// resize adopts a new device size. The logical screen follows it so that
// anchored modules stay docked to their edges. The size sticks across
// reloads until the configured screen size changes.
func (app *App) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	app.device = image.Pt(width, height)
	app.fitDevice()
	app.surface.Resize(width, height)
	app.Registry.Relayout(app.screen)
	app.Store.UpdateScreen(state.ScreenInfo{Width: app.screen.Width, Height: app.screen.Height, Scale: app.screen.Scale})
	app.Logger.Infof("loop", "resized to %dx%d device pixels", width, height)
}

// fitDevice derives the logical screen from the device size of the last
// resize event.
func (app *App) fitDevice() {
	scale := app.screen.Scale
	if scale <= 0 {
		scale = 1
	}
	app.screen.Width = int(float64(app.device.X)/scale + 0.5)
	app.screen.Height = int(float64(app.device.Y)/scale + 0.5)
}

// reload re-reads the configuration. Unchanged modules keep their locals;
// on any error the running configuration stays in place.
func (app *App) reload() {
	app.Store.SetPhase(state.Reloading)
	defer app.Store.SetPhase(state.Running)

	cfg, err := app.loadConfig()
	if err != nil {
		app.Logger.Errorf("loop", "reload: %v", err)
		return
	}
	previous, device := app.cfg, app.device
	if !sameSize(previous.Mirror.Screen(), cfg.Mirror.Screen()) {
		app.device = image.Point{}
	}
	app.apply(cfg)
	if err := app.Registry.Reload(app, cfg.Modules, app.screen); err != nil {
		app.Logger.Errorf("loop", "reload: %v", err)
		app.device = device
		app.apply(previous)
		return
	}
	app.Logger.Infof("loop", "reloaded %s", cfg.Path)
}

// publish copies the runtime state into the store. Module debug info is
// collected here, on the loop goroutine.
func (app *App) publish() {
	instances := app.Registry.Instances()
	statuses := make([]registry.Status, 0, len(instances))
	for _, inst := range instances {
		statuses = append(statuses, inst.Status())
	}
	app.Store.UpdateModules(statuses)

	fps := 0.0
	if elapsed := time.Since(app.started).Seconds(); elapsed > 0 {
		fps = float64(app.frames) / elapsed
	}
	app.Store.UpdateFrames(state.FrameInfo{
		Count:     app.frames,
		Last:      app.last,
		FPS:       fps,
		Target:    app.cfg.Mirror.FPS,
		Overruns:  app.overruns,
		StartedAt: app.started,
	})
	app.Store.UpdateCache(state.CacheInfo{Dir: app.cache.Dir(), Persistent: app.cache.Persistent(), Stats: app.cache.Stats()})
}

// Frames returns how many frames were drawn.
func (app *App) Frames() int64 { return app.frames }
