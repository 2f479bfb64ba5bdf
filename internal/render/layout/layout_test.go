package layout_test

import (
	"image"
	"testing"

	"github.com/rook-computer/mirror/internal/render/layout"
	"github.com/stretchr/testify/assert"
)

func TestParseOffset(t *testing.T) {
	assert.Equal(t, layout.FromStart(0), layout.ParseOffset(0))
	assert.Equal(t, layout.FromStart(15), layout.ParseOffset(15))
	assert.Equal(t, layout.FromEnd(110), layout.ParseOffset(-110))
}

func TestResolveDocksToFarEdge(t *testing.T) {
	screen := layout.Screen{Width: 1200, Height: 1600, Scale: 1}

	got := layout.Resolve(layout.ParseOffset(-110), layout.ParseOffset(-270), 250, 100, screen)

	assert.Equal(t, image.Rect(680, 1390, 930, 1490), got)
}

func TestResolveAnchorMath(t *testing.T) {
	screens := []layout.Screen{
		{Width: 640, Height: 480},
		{Width: 1920, Height: 1080, Scale: 1},
		{Width: 100, Height: 50, Scale: 1},
	}
	for _, screen := range screens {
		for _, k := range []int{0, 1, 17, 300} {
			const w, h = 40, 30
			fromStart := layout.Resolve(layout.FromStart(k), layout.FromStart(k), w, h, screen)
			assert.Equal(t, k, fromStart.Min.Y)
			assert.Equal(t, k, fromStart.Min.X)

			fromEnd := layout.Resolve(layout.FromEnd(k), layout.FromEnd(k), w, h, screen)
			assert.Equal(t, screen.Height-k-h, fromEnd.Min.Y)
			assert.Equal(t, screen.Width-k-w, fromEnd.Min.X)
			assert.Equal(t, w, fromEnd.Dx())
			assert.Equal(t, h, fromEnd.Dy())
		}
	}
}

func TestParseOffsetSign(t *testing.T) {
	assert.Equal(t, layout.FromStart(0), layout.ParseOffset(0))
	assert.Equal(t, layout.FromStart(0), layout.ParseOffset(-0))
	assert.Equal(t, layout.FromStart(12), layout.ParseOffset(12))
	assert.Equal(t, layout.FromEnd(12), layout.ParseOffset(-12))
}

func TestResolveIsIdempotent(t *testing.T) {
	screen := layout.Screen{Width: 800, Height: 600, Scale: 1.5}
	top, left := layout.FromEnd(20), layout.FromStart(33)

	first := layout.Resolve(top, left, 101, 57, screen)
	second := layout.Resolve(top, left, 101, 57, screen)

	assert.Equal(t, first, second)
}

func TestResolveAppliesScale(t *testing.T) {
	screen := layout.Screen{Width: 400, Height: 300, Scale: 2}

	got := layout.Resolve(layout.FromEnd(10), layout.FromStart(5), 100, 50, screen)

	assert.Equal(t, image.Rect(10, 480, 210, 580), got)
	assert.Equal(t, image.Rect(0, 0, 800, 600), screen.Device())
}

func TestResolveOffScreenDoesNotFail(t *testing.T) {
	screen := layout.Screen{Width: 100, Height: 100}

	got := layout.Resolve(layout.FromStart(500), layout.FromStart(500), 50, 50, screen)

	assert.Equal(t, image.Rect(500, 500, 550, 550), got)
	assert.True(t, layout.Clip(got, screen.Device()).Empty())
}

func TestClipPartiallyVisible(t *testing.T) {
	got := layout.Clip(image.Rect(-10, 90, 30, 130), image.Rect(0, 0, 100, 100))
	assert.Equal(t, image.Rect(0, 90, 30, 100), got)
}

func TestInset(t *testing.T) {
	assert.Equal(t, image.Rect(2, 2, 8, 8), layout.Inset(image.Rect(0, 0, 10, 10), 2))
	assert.Equal(t, image.Rect(0, 0, 10, 10), layout.Inset(image.Rect(0, 0, 10, 10), 0))
}
