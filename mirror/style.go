package mirror

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Adjustment selects which point of the text box lands on the given
// coordinate. Horizontal and vertical flags combine, e.g. Center|Middle.
// The zero value means Left|Top.
type Adjustment uint8

const (
	Left Adjustment = 1 << iota
	Center
	Right
	Top
	Middle
	Bottom
)

// Offset returns how far a box of size w x h must be moved so that the
// selected anchor sits at its origin.
func (a Adjustment) Offset(w, h int) (dx, dy int) {
	switch {
	case a&Center != 0:
		dx = -w / 2
	case a&Right != 0:
		dx = -w
	}
	switch {
	case a&Middle != 0:
		dy = -h / 2
	case a&Bottom != 0:
		dy = -h
	}
	return dx, dy
}

func (a Adjustment) String() string {
	var parts []string
	for _, f := range []struct {
		flag Adjustment
		name string
	}{{Left, "left"}, {Center, "center"}, {Right, "right"}, {Top, "top"}, {Middle, "middle"}, {Bottom, "bottom"}} {
		if a&f.flag != 0 {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "left|top"
	}
	return strings.Join(parts, "|")
}

// ParseAdjustment reads names like "center", "right|bottom" or "center middle".
func ParseAdjustment(s string) (Adjustment, error) {
	var a Adjustment
	for _, part := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == '|' || r == ' ' || r == ',' }) {
		switch part {
		case "left":
			a |= Left
		case "center", "centre":
			a |= Center
		case "right":
			a |= Right
		case "top":
			a |= Top
		case "middle":
			a |= Middle
		case "bottom":
			a |= Bottom
		default:
			return 0, fmt.Errorf("unknown adjustment %q", part)
		}
	}
	return a, nil
}

// TextStyle overrides the global text defaults for one call.
// A zero Size or nil Color falls back to the configured defaults.
type TextStyle struct {
	Size   int
	Color  color.Color
	Font   string
	Adjust Adjustment
	Shadow bool
	// Width wraps text at this many logical pixels. Zero wraps only when the
	// text would not fit the module, a negative value never wraps.
	Width int
}

// ParseHexColor parses "rrggbb", "#rrggbb" or "rrggbbaa".
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(s) == 6 {
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
