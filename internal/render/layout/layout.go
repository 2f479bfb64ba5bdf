package layout

import (
	"fmt"
	"image"
	"math"
)

// Edge tells which screen edge an Offset is measured from.
type Edge int

const (
	Start Edge = iota // top or left
	End               // bottom or right
)

// Offset is a module position along one axis.
type Offset struct {
	Edge Edge
	Px   int
}

func FromStart(px int) Offset { return Offset{Edge: Start, Px: px} }
func FromEnd(px int) Offset   { return Offset{Edge: End, Px: px} }

// ParseOffset maps a signed configured value onto an Offset.
// Negative values dock to the far edge.
func ParseOffset(v int) Offset {
	if v < 0 {
		return FromEnd(-v)
	}
	return FromStart(v)
}

// Abs returns the absolute position of a span of size extent on an axis of size dim.
func (o Offset) Abs(dim, extent int) int {
	if o.Edge == End {
		return dim - o.Px - extent
	}
	return o.Px
}

func (o Offset) String() string {
	if o.Edge == End {
		return fmt.Sprintf("end-%d", o.Px)
	}
	return fmt.Sprintf("%d", o.Px)
}

// Screen is the logical screen size plus the factor applied to reach device pixels.
type Screen struct {
	Width  int
	Height int
	Scale  float64
}

func (s Screen) scale() float64 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

// Device returns the device pixel rectangle covering the whole screen.
func (s Screen) Device() image.Rectangle {
	return image.Rect(0, 0, s.Px(s.Width), s.Px(s.Height))
}

// Px converts a logical length to device pixels.
func (s Screen) Px(v int) int {
	return int(math.Round(float64(v) * s.scale()))
}

// Logical returns the module rectangle in logical pixels.
func Logical(top, left Offset, width, height int, screen Screen) image.Rectangle {
	x := left.Abs(screen.Width, width)
	y := top.Abs(screen.Height, height)
	return image.Rect(x, y, x+width, y+height)
}

// Resolve returns the module rectangle in device pixels. It never fails:
// rectangles that end up off-screen are clipped at draw time.
func Resolve(top, left Offset, width, height int, screen Screen) image.Rectangle {
	r := Logical(top, left, width, height, screen)
	return image.Rect(screen.Px(r.Min.X), screen.Px(r.Min.Y), screen.Px(r.Max.X), screen.Px(r.Max.Y))
}

// Clip intersects rect with the screen. The result may be empty.
func Clip(rect, screen image.Rectangle) image.Rectangle {
	return Normalize(rect).Intersect(screen)
}

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}
