package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/rook-computer/mirror/internal/imagecache"
	"github.com/rook-computer/mirror/internal/logging"
	"github.com/rook-computer/mirror/internal/registry"
	"github.com/rook-computer/mirror/mirror"
	"go.trai.ch/zerr"
)

// Bind makes inst the active region of the surface and returns the context
// handed to the module. It implements registry.Binder.
func (app *App) Bind(inst *registry.Instance) mirror.Mirror {
	app.surface.Enter(inst.Bounds)
	return &moduleContext{app: app, inst: inst, logger: logging.Scoped(app.Logger, inst.Name())}
}

func (app *App) Unbind() { app.surface.Leave() }

// moduleContext is the mirror.Mirror a module sees during Init and Draw.
// Only the loop goroutine uses it.
type moduleContext struct {
	app    *App
	inst   *registry.Instance
	logger mirror.Logger
}

var _ mirror.Mirror = (*moduleContext)(nil)

func (m *moduleContext) Width() int        { return m.inst.Logical.Dx() }
func (m *moduleContext) Height() int       { return m.inst.Logical.Dy() }
func (m *moduleContext) ScreenWidth() int  { return m.app.screen.Width }
func (m *moduleContext) ScreenHeight() int { return m.app.screen.Height }
func (m *moduleContext) Scale() float64    { return m.app.surface.Scale() }
func (m *moduleContext) FontSize() int     { return m.app.surface.Defaults().Size }

func (m *moduleContext) DrawText(text string, x, y int, style mirror.TextStyle) int {
	return m.app.surface.DrawText(text, x, y, style)
}

func (m *moduleContext) MeasureText(text string, style mirror.TextStyle) (int, int) {
	return m.app.surface.MeasureText(text, style)
}

func (m *moduleContext) FillRect(x, y, w, h int, c color.Color) {
	m.app.surface.FillRect(x, y, w, h, c)
}

func (m *moduleContext) DrawRect(x, y, w, h int, c color.Color, thickness int) {
	m.app.surface.DrawRect(x, y, w, h, c, thickness)
}

func (m *moduleContext) DrawLine(x0, y0, x1, y1 int, c color.Color, thickness int) {
	m.app.surface.DrawLine(x0, y0, x1, y1, c, thickness)
}

func (m *moduleContext) DrawCircle(cx, cy, radius int, c color.Color, fill bool) {
	m.app.surface.DrawCircle(cx, cy, radius, c, fill)
}

// LoadImage finds name next to the module first, then in the config
// directory, and scales it through the image cache. A zero width or height
// keeps the aspect ratio; both zero keep the source size in logical pixels.
func (m *moduleContext) LoadImage(name string, opts mirror.ImageOptions) (*mirror.Image, error) {
	path, err := m.findAsset(name)
	if err != nil {
		return nil, err
	}
	srcW, srcH, err := imagecache.Dimensions(path)
	if err != nil {
		return nil, err
	}
	w, h := proportional(srcW, srcH, opts.Width, opts.Height)
	dw, dh := m.app.surface.ScaledSize(w, h)

	key := imagecache.Key{Source: path, Width: dw, Height: dh}
	scale := imagecache.DefaultScale
	if opts.Invert {
		key.Variant = "invert"
		scale = func(src image.Image, w, h int) image.Image {
			return invert(imagecache.DefaultScale(src, w, h))
		}
	}
	bitmap, err := m.app.cache.GetOrCreate(key, scale)
	if err != nil {
		return nil, err
	}
	return mirror.NewImage(bitmap, m.app.surface.Scale()), nil
}

func (m *moduleContext) DrawImage(img *mirror.Image, x, y int) {
	if img == nil {
		return
	}
	m.app.surface.DrawBitmap(img.Bitmap(), x, y)
}

func (m *moduleContext) DrawImageFile(path string, x, y, w, h int) error {
	img, err := m.LoadImage(path, mirror.ImageOptions{Width: w, Height: h})
	if err != nil {
		return err
	}
	m.DrawImage(img, x, y)
	return nil
}

func (m *moduleContext) DrawQRCode(payload string, x, y, size int) error {
	px, _ := m.app.surface.ScaledSize(size, size)
	img, err := m.app.qrcodes.Get(payload, px)
	if err != nil {
		return err
	}
	m.app.surface.DrawBitmap(img, x, y)
	return nil
}

func (m *moduleContext) Setting(key string) (any, bool) {
	v, ok := m.app.cfg.Mirror.Settings[key]
	return v, ok
}

func (m *moduleContext) Logger() mirror.Logger { return m.logger }

// findAsset resolves name against the module directory (for plugin
// modules) and the config directory.
func (m *moduleContext) findAsset(name string) (string, error) {
	if name == "" {
		return "", zerr.Wrap(mirror.ErrAsset, "empty image name")
	}
	if filepath.IsAbs(name) {
		return name, nil
	}

	var dirs []string
	if src := m.inst.Spec.Source; strings.HasSuffix(src, ".so") {
		if !filepath.IsAbs(src) {
			src = filepath.Join(m.app.cfg.Dir, src)
		}
		dirs = append(dirs, filepath.Dir(src))
	}
	dirs = append(dirs, m.app.cfg.Dir)

	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", zerr.With(mirror.Classify(mirror.ErrAsset, err.Error(), err), "path", candidate)
		}
	}
	return "", zerr.With(mirror.Classify(mirror.ErrAsset, fmt.Sprintf("image %q not found", name), os.ErrNotExist), "dirs", strings.Join(dirs, ","))
}

// proportional fills a missing target dimension from the source aspect ratio.
func proportional(srcW, srcH, w, h int) (int, int) {
	switch {
	case srcW <= 0 || srcH <= 0:
		return w, h
	case w <= 0 && h <= 0:
		return srcW, srcH
	case h <= 0:
		return w, max(int(float64(w)*float64(srcH)/float64(srcW)+0.5), 1)
	case w <= 0:
		return max(int(float64(h)*float64(srcW)/float64(srcH)+0.5), 1), h
	}
	return w, h
}

// invert flips the color channels and keeps alpha.
func invert(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			// premultiplied: invert against alpha, not 0xFF
			out.SetRGBA(x, y, color.RGBA{R: c.A - c.R, G: c.A - c.G, B: c.A - c.B, A: c.A})
		}
	}
	return out
}
