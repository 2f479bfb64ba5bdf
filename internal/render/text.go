package render

import (
	"image"
	"image/color"
	"strings"

	"github.com/rook-computer/mirror/mirror"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type textLayout struct {
	face       font.Face
	lines      []string
	widths     []int
	widest     int
	ascent     int
	lineHeight int
}

func (l textLayout) height() int { return l.lineHeight * len(l.lines) }

func (s *Surface) resolveStyle(style mirror.TextStyle) (font.Face, color.Color) {
	size := style.Size
	if size <= 0 {
		size = s.defaults.Size
	}
	c := style.Color
	if c == nil {
		c = s.defaults.Color
	}
	name := style.Font
	if name == "" {
		name = s.defaults.Font
	}
	return s.fonts.Face(name, s.px(size)), c
}

func (s *Surface) layoutText(text string, face font.Face, style mirror.TextStyle) textLayout {
	limit := 0
	switch {
	case style.Width > 0:
		limit = s.px(style.Width)
	case style.Width == 0:
		limit = s.region.Dx()
	}

	m := face.Metrics()
	l := textLayout{face: face, ascent: m.Ascent.Ceil()}
	l.lineHeight = max(m.Height.Ceil(), (m.Ascent + m.Descent).Ceil())
	for _, paragraph := range strings.Split(text, "\n") {
		l.lines = append(l.lines, wrap(face, paragraph, limit)...)
	}
	for _, line := range l.lines {
		w := font.MeasureString(face, line).Ceil()
		l.widths = append(l.widths, w)
		l.widest = max(l.widest, w)
	}
	return l
}

// wrap breaks text into lines no wider than limit device pixels.
// Words longer than limit get a line of their own. limit <= 0 disables wrapping.
func wrap(face font.Face, text string, limit int) []string {
	if limit <= 0 || font.MeasureString(face, text).Ceil() <= limit {
		return []string{text}
	}
	var (
		lines   []string
		current string
	)
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && font.MeasureString(face, candidate).Ceil() > limit {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" || len(lines) == 0 {
		lines = append(lines, current)
	}
	return lines
}

// MeasureText returns the logical size text would occupy with style.
func (s *Surface) MeasureText(text string, style mirror.TextStyle) (int, int) {
	face, _ := s.resolveStyle(style)
	l := s.layoutText(text, face, style)
	return s.logical(l.widest), s.logical(l.height())
}

// DrawText draws text so that the point selected by style.Adjust lands on
// logical (x, y). Each wrapped line is aligned on its own. It returns the
// logical width of the widest line.
func (s *Surface) DrawText(text string, x, y int, style mirror.TextStyle) int {
	face, c := s.resolveStyle(style)
	l := s.layoutText(text, face, style)

	origin := s.pt(x, y)
	_, dy := style.Adjust.Offset(l.widest, l.height())
	shadow := max(s.px(2), 1)

	dst := s.canvas.SubImage(s.clip).(*image.RGBA)
	for i, line := range l.lines {
		dx, _ := style.Adjust.Offset(l.widths[i], 0)
		baseline := origin.Add(image.Pt(dx, dy+i*l.lineHeight+l.ascent))
		if style.Shadow {
			drawString(dst, face, Shadow, line, baseline.Add(image.Pt(shadow, shadow)))
		}
		drawString(dst, face, c, line, baseline)
	}
	return s.logical(l.widest)
}

func drawString(dst *image.RGBA, face font.Face, c color.Color, text string, baseline image.Point) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(baseline.X, baseline.Y),
	}
	d.DrawString(text)
}
