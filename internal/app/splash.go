package app

import (
	"time"

	"github.com/rook-computer/mirror/internal/render"
	"github.com/rook-computer/mirror/mirror"
)

const splashTitle = "mirror"

func (app *App) splashActive(now time.Time) bool {
	return app.cfg.Mirror.Splash > 0 && now.Sub(app.started) < app.cfg.Mirror.Splash
}

// drawSplash covers the whole screen with the title and an optional status line.
func (app *App) drawSplash(status string) {
	s := app.surface
	s.Leave()
	s.Clear(render.Background)

	size := app.cfg.Mirror.FontSize
	cx, cy := s.Width()/2, s.Height()/2
	s.DrawText(splashTitle, cx, cy, mirror.TextStyle{Size: size * 2, Adjust: mirror.Center | mirror.Bottom, Width: -1})
	if status != "" {
		s.DrawText(status, cx, cy+size/2, mirror.TextStyle{Size: max(size/2, 8), Adjust: mirror.Center | mirror.Top, Width: -1})
	}
}
