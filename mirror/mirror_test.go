package mirror_test

import (
	"errors"
	"image/color"
	"io/fs"
	"testing"

	"github.com/rook-computer/mirror/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"42", 42},
		{"-7", -7},
		{"true", true},
		{"Yes", true},
		{"no", false},
		{"1.5", 1.5},
		{"hello", "hello"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, mirror.Coerce(tt.raw))
		})
	}
}

func TestConfigAccessors(t *testing.T) {
	cfg := mirror.Config{
		"size":   12,
		"ratio":  "0.25",
		"on":     "yes",
		"name":   "clock",
		"color":  "ff0000",
		"black":  0,
		"broken": "zz",
	}

	assert.Equal(t, 12, cfg.Int("size", 0))
	assert.Equal(t, 3, cfg.Int("missing", 3))
	assert.InDelta(t, 0.25, cfg.Float("ratio", 0), 1e-9)
	assert.InDelta(t, 12.0, cfg.Float("size", 0), 1e-9)
	assert.True(t, cfg.Bool("on", false))
	assert.Equal(t, "clock", cfg.String("name", ""))
	assert.Equal(t, "12", cfg.String("size", ""))
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, cfg.Color("color", nil))
	assert.Equal(t, color.RGBA{A: 0xFF}, cfg.Color("black", nil))
	assert.Equal(t, color.White, cfg.Color("broken", color.White))

	clone := cfg.Clone()
	clone["size"] = 1
	assert.Equal(t, 12, cfg.Int("size", 0))
}

func TestAdjustmentOffset(t *testing.T) {
	tests := []struct {
		name   string
		adjust mirror.Adjustment
		dx, dy int
	}{
		{"zero value is top left", 0, 0, 0},
		{"center", mirror.Center, -50, 0},
		{"right bottom", mirror.Right | mirror.Bottom, -100, -20},
		{"center middle", mirror.Center | mirror.Middle, -50, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx, dy := tt.adjust.Offset(100, 20)
			assert.Equal(t, tt.dx, dx)
			assert.Equal(t, tt.dy, dy)
		})
	}
}

func TestParseAdjustment(t *testing.T) {
	a, err := mirror.ParseAdjustment("Right|middle")
	require.NoError(t, err)
	assert.Equal(t, mirror.Right|mirror.Middle, a)
	assert.Equal(t, "right|middle", a.String())

	_, err = mirror.ParseAdjustment("diagonal")
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	c, err := mirror.ParseHexColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}, c)

	c, err = mirror.ParseHexColor("10203080")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)

	_, err = mirror.ParseHexColor("fff")
	assert.Error(t, err)
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := zerr.With(zerr.Wrap(mirror.ErrAsset, "missing.png"), "path", "/tmp/missing.png")
	assert.True(t, errors.Is(err, mirror.ErrAsset))
	assert.False(t, errors.Is(err, mirror.ErrConfig))
}

func TestClassifyKeepsCause(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "sun.png", Err: fs.ErrNotExist}
	err := zerr.With(mirror.Classify(mirror.ErrAsset, cause.Error(), cause), "path", "sun.png")

	assert.EqualError(t, err, "open sun.png: file does not exist: asset error")
	assert.ErrorIs(t, err, mirror.ErrAsset)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "sun.png", pathErr.Path)

	bare := mirror.Classify(mirror.ErrConfig, "missing field", nil)
	assert.EqualError(t, bare, "missing field: config error")
	assert.ErrorIs(t, bare, mirror.ErrConfig)
	assert.NotErrorIs(t, bare, mirror.ErrAsset)
}
