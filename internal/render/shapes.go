package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// path collects a vector outline in canvas coordinates and fills it clipped
// to the active region.
type path struct {
	s *Surface
	z *vector.Rasterizer
}

func (s *Surface) newPath() *path {
	return &path{s: s, z: vector.NewRasterizer(s.clip.Dx(), s.clip.Dy())}
}

func (p *path) local(x, y float64) (float32, float32) {
	return float32(x - float64(p.s.clip.Min.X)), float32(y - float64(p.s.clip.Min.Y))
}

func (p *path) moveTo(x, y float64) { p.z.MoveTo(p.local(x, y)) }
func (p *path) lineTo(x, y float64) { p.z.LineTo(p.local(x, y)) }

func (p *path) cubeTo(bx, by, cx, cy, dx, dy float64) {
	x1, y1 := p.local(bx, by)
	x2, y2 := p.local(cx, cy)
	x3, y3 := p.local(dx, dy)
	p.z.CubeTo(x1, y1, x2, y2, x3, y3)
}

// circle adds a closed circle. ccw reverses the winding so that an inner
// circle punches a hole into an outer one.
func (p *path) circle(cx, cy, r float64, ccw bool) {
	k := r * kappa
	if !ccw {
		p.moveTo(cx+r, cy)
		p.cubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		p.cubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		p.cubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		p.cubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	} else {
		p.moveTo(cx+r, cy)
		p.cubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
		p.cubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
		p.cubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
		p.cubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	}
	p.z.ClosePath()
}

func (p *path) fill(c color.Color) {
	if p.s.clip.Empty() {
		return
	}
	p.z.Draw(p.s.canvas, p.s.clip, image.NewUniform(c), image.Point{})
}

// DrawLine draws an anti-aliased segment of the given logical thickness.
func (s *Surface) DrawLine(x0, y0, x1, y1 int, c color.Color, thickness int) {
	if s.clip.Empty() {
		return
	}
	a, b := s.pt(x0, y0), s.pt(x1, y1)
	ax, ay, bx, by := float64(a.X), float64(a.Y), float64(b.X), float64(b.Y)
	half := math.Max(float64(s.px(max(thickness, 1))), 1) / 2

	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length == 0 {
		s.fillDevice(image.Rect(a.X, a.Y, a.X+1, a.Y+1), c)
		return
	}
	nx, ny := -dy/length*half, dx/length*half

	p := s.newPath()
	p.moveTo(ax+nx, ay+ny)
	p.lineTo(bx+nx, by+ny)
	p.lineTo(bx-nx, by-ny)
	p.lineTo(ax-nx, ay-ny)
	p.z.ClosePath()
	p.fill(c)
}

// DrawCircle draws a filled disc or a ring one logical pixel wide.
func (s *Surface) DrawCircle(cx, cy, radius int, c color.Color, fill bool) {
	if s.clip.Empty() || radius <= 0 {
		return
	}
	center := s.pt(cx, cy)
	x, y := float64(center.X), float64(center.Y)
	r := float64(s.px(radius))

	p := s.newPath()
	p.circle(x, y, r, false)
	if !fill {
		inner := r - math.Max(float64(s.px(1)), 1)
		if inner > 0 {
			p.circle(x, y, inner, true)
		}
	}
	p.fill(c)
}
