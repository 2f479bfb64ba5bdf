package render

import "image/color"

// Colors used by the runtime itself.
var (
	Background = color.RGBA{A: 0xFF}
	Foreground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Shadow     = color.RGBA{A: 0xFF}

	// DebugOutline frames every module when frame debugging is on.
	DebugOutline = color.RGBA{G: 0xFF, A: 0xFF}
)

// TextDefaults apply when a TextStyle leaves a field unset.
type TextDefaults struct {
	Size  int
	Color color.Color
	Font  string
}

const DefaultFontSize = 40
