// Package mirror defines the contract between the mirror runtime and the
// modules it draws. Modules only depend on this package.
package mirror

import (
	"image"
	"image/color"
)

// Module draws into its assigned rectangle once per frame.
//
// locals is the value returned by Init (nil when the module has no Init).
// It is owned by the module instance and handed back unchanged on every call,
// so pointer payloads can be mutated freely between frames.
type Module interface {
	Draw(m Mirror, locals any) error
}

// Initializer is implemented by modules that need one-time setup.
// Init runs exactly once, before the first frame.
type Initializer interface {
	Init(m Mirror, cfg Config) (any, error)
}

// DebugInfoer is implemented by modules that expose extra runtime details
// on the debug endpoint.
type DebugInfoer interface {
	DebugInfo(locals any) map[string]any
}

// Funcs adapts a pair of plain functions to Module and Initializer.
type Funcs struct {
	InitFunc func(m Mirror, cfg Config) (any, error)
	DrawFunc func(m Mirror, locals any) error
}

func (f Funcs) Init(m Mirror, cfg Config) (any, error) {
	if f.InitFunc == nil {
		return nil, nil
	}
	return f.InitFunc(m, cfg)
}

func (f Funcs) Draw(m Mirror, locals any) error {
	if f.DrawFunc == nil {
		return nil
	}
	return f.DrawFunc(m, locals)
}

// Mirror is the drawing context handed to modules.
//
// All coordinates are logical pixels relative to the module's top-left corner.
// Anything drawn outside the module rectangle is clipped.
type Mirror interface {
	// Width and Height return the module size in logical pixels.
	Width() int
	Height() int
	ScreenWidth() int
	ScreenHeight() int
	Scale() float64
	// FontSize is the configured default text size.
	FontSize() int

	// DrawText draws text and returns the width of the widest rendered line.
	DrawText(text string, x, y int, style TextStyle) int
	MeasureText(text string, style TextStyle) (width, height int)

	FillRect(x, y, w, h int, c color.Color)
	DrawRect(x, y, w, h int, c color.Color, thickness int)
	DrawLine(x0, y0, x1, y1 int, c color.Color, thickness int)
	DrawCircle(cx, cy, radius int, c color.Color, fill bool)

	// LoadImage resolves name relative to the module and config directories
	// and returns a scaled bitmap, reusing the on-disk cache when possible.
	LoadImage(name string, opts ImageOptions) (*Image, error)
	DrawImage(img *Image, x, y int)
	// DrawImageFile scales the image at path to w x h and draws it.
	DrawImageFile(path string, x, y, w, h int) error
	DrawQRCode(payload string, x, y, size int) error

	// Setting returns a value from the global mirror section.
	Setting(key string) (any, bool)
	Logger() Logger
}

// ImageOptions controls LoadImage. A zero Width or Height keeps the aspect
// ratio of the source; both zero keeps the source size.
type ImageOptions struct {
	Width  int
	Height int
	Invert bool
}

// Image is a bitmap already scaled to device pixels.
type Image struct {
	bitmap image.Image
	scale  float64
}

func NewImage(bitmap image.Image, scale float64) *Image {
	if scale <= 0 {
		scale = 1
	}
	return &Image{bitmap: bitmap, scale: scale}
}

func (i *Image) Bitmap() image.Image { return i.bitmap }

// Width returns the logical width.
func (i *Image) Width() int {
	if i == nil || i.bitmap == nil {
		return 0
	}
	return int(float64(i.bitmap.Bounds().Dx())/i.scale + 0.5)
}

// Height returns the logical height.
func (i *Image) Height() int {
	if i == nil || i.bitmap == nil {
		return 0
	}
	return int(float64(i.bitmap.Bounds().Dy())/i.scale + 0.5)
}

// Logger is the component-tagged logger used across the runtime.
type Logger interface {
	Debugf(component string, format string, args ...any)
	Infof(component string, format string, args ...any)
	Warnf(component string, format string, args ...any)
	Errorf(component string, format string, args ...any)
}

type NoopLogger struct{}

func (NoopLogger) Debugf(string, string, ...any) {}
func (NoopLogger) Infof(string, string, ...any)  {}
func (NoopLogger) Warnf(string, string, ...any)  {}
func (NoopLogger) Errorf(string, string, ...any) {}
