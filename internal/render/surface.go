package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/rook-computer/mirror/internal/render/layout"
)

// Surface is the frame buffer modules draw into.
//
// It works in logical pixels relative to the active region: every call is
// scaled, translated by the region origin and clipped to the region, so a
// module can never paint outside its rectangle.
type Surface struct {
	canvas   *image.RGBA
	scale    float64
	fonts    *FontSet
	defaults TextDefaults

	region image.Rectangle
	clip   image.Rectangle
}

// NewSurface allocates a canvas of w x h device pixels.
func NewSurface(w, h int, scale float64, fonts *FontSet, defaults TextDefaults) *Surface {
	if scale <= 0 {
		scale = 1
	}
	if fonts == nil {
		fonts = NewFontSet(nil)
	}
	if defaults.Size <= 0 {
		defaults.Size = DefaultFontSize
	}
	if defaults.Color == nil {
		defaults.Color = Foreground
	}
	s := &Surface{scale: scale, fonts: fonts, defaults: defaults}
	s.Resize(w, h)
	return s
}

// Resize replaces the canvas. Content is discarded.
func (s *Surface) Resize(w, h int) {
	s.canvas = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	s.Leave()
}

func (s *Surface) SetScale(scale float64) {
	if scale > 0 {
		s.scale = scale
	}
}

func (s *Surface) SetDefaults(d TextDefaults) {
	if d.Size > 0 {
		s.defaults.Size = d.Size
	}
	if d.Color != nil {
		s.defaults.Color = d.Color
	}
	s.defaults.Font = d.Font
}

func (s *Surface) Defaults() TextDefaults { return s.defaults }
func (s *Surface) Canvas() *image.RGBA    { return s.canvas }
func (s *Surface) Scale() float64         { return s.scale }

// Enter makes bounds (device pixels) the active region.
func (s *Surface) Enter(bounds image.Rectangle) {
	s.region = layout.Normalize(bounds)
	s.clip = layout.Clip(s.region, s.canvas.Bounds())
}

// Leave makes the whole canvas the active region.
func (s *Surface) Leave() {
	s.region = s.canvas.Bounds()
	s.clip = s.region
}

// Region returns the active region in device pixels.
func (s *Surface) Region() image.Rectangle { return s.region }

// Width and Height return the active region size in logical pixels.
func (s *Surface) Width() int  { return s.logical(s.region.Dx()) }
func (s *Surface) Height() int { return s.logical(s.region.Dy()) }

func (s *Surface) px(v int) int {
	return int(math.Round(float64(v) * s.scale))
}

func (s *Surface) logical(v int) int {
	return int(math.Round(float64(v) / s.scale))
}

// pt maps a logical module coordinate to a device canvas point.
func (s *Surface) pt(x, y int) image.Point {
	return s.region.Min.Add(image.Pt(s.px(x), s.px(y)))
}

// Clear fills the whole canvas regardless of the active region.
func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.canvas, s.canvas.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *Surface) FillRect(x, y, w, h int, c color.Color) {
	r := layout.Normalize(image.Rectangle{Min: s.pt(x, y), Max: s.pt(x+w, y+h)})
	s.fillDevice(r, c)
}

func (s *Surface) fillDevice(r image.Rectangle, c color.Color) {
	r = r.Intersect(s.clip)
	if r.Empty() {
		return
	}
	draw.Draw(s.canvas, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// DrawRect strokes the outline of a rectangle with the given logical thickness.
func (s *Surface) DrawRect(x, y, w, h int, c color.Color, thickness int) {
	r := layout.Normalize(image.Rectangle{Min: s.pt(x, y), Max: s.pt(x+w, y+h)})
	s.strokeDevice(r, c, max(s.px(max(thickness, 1)), 1))
}

func (s *Surface) strokeDevice(r image.Rectangle, c color.Color, t int) {
	if r.Dx() <= 2*t || r.Dy() <= 2*t {
		s.fillDevice(r, c)
		return
	}
	inner := layout.Inset(r, t)
	s.fillDevice(image.Rect(r.Min.X, r.Min.Y, r.Max.X, inner.Min.Y), c)
	s.fillDevice(image.Rect(r.Min.X, inner.Max.Y, r.Max.X, r.Max.Y), c)
	s.fillDevice(image.Rect(r.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), c)
	s.fillDevice(image.Rect(inner.Max.X, inner.Min.Y, r.Max.X, inner.Max.Y), c)
}

// OutlineRegion strokes the border of the active region, one device pixel wide.
func (s *Surface) OutlineRegion(c color.Color) {
	s.strokeDevice(s.region, c, 1)
}

// DrawBitmap blits img unscaled with its top-left corner at logical (x, y).
func (s *Surface) DrawBitmap(img image.Image, x, y int) {
	if img == nil {
		return
	}
	b := img.Bounds()
	dst := image.Rectangle{Min: s.pt(x, y), Max: s.pt(x, y).Add(b.Size())}
	clipped := dst.Intersect(s.clip)
	if clipped.Empty() {
		return
	}
	sp := b.Min.Add(clipped.Min.Sub(dst.Min))
	draw.Draw(s.canvas, clipped, img, sp, draw.Over)
}

// ScaledSize converts a logical size to device pixels for image requests.
func (s *Surface) ScaledSize(w, h int) (int, int) {
	return max(s.px(w), 1), max(s.px(h), 1)
}
