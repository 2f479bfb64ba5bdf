package modules

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rook-computer/mirror/mirror"
)

var (
	demoFrame = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	demoDot   = color.RGBA{R: 0xFF, G: 0xA0, A: 0xFF}
)

// Demo exercises the drawing API: a frame, a dot orbiting the center and
// a frame counter. It is handy for checking placement and frame rate.
type Demo struct{}

type demoState struct {
	frames int
}

func (Demo) Init(mirror.Mirror, mirror.Config) (any, error) {
	return &demoState{}, nil
}

func (Demo) Draw(m mirror.Mirror, locals any) error {
	st := locals.(*demoState)
	st.frames++

	w, h := m.Width(), m.Height()
	m.DrawRect(0, 0, w, h, demoFrame, 2)
	m.DrawLine(0, h-1, w-1, 0, demoFrame, 1)

	r := min(w, h) / 4
	angle := float64(st.frames%12) * math.Pi / 6
	cx := w/2 + int(float64(r)*math.Cos(angle))
	cy := h/2 + int(float64(r)*math.Sin(angle))
	m.DrawCircle(cx, cy, max(r/4, 2), demoDot, true)

	m.DrawText(fmt.Sprintf("frame %d", st.frames), 6, 6, mirror.TextStyle{Size: max(m.FontSize()/2, 8), Width: -1})
	return nil
}

func (Demo) DebugInfo(locals any) map[string]any {
	st, ok := locals.(*demoState)
	if !ok {
		return nil
	}
	return map[string]any{"frames": st.frames}
}
