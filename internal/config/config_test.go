package config_test

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/rook-computer/mirror/internal/config"
	"github.com/rook-computer/mirror/internal/render/layout"
	"github.com/rook-computer/mirror/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
mirror:
  screen_width: 1200
  screen_height: 1600
  fullscreen: yes
  scale: 0.5
  font_size: 30
  font_color: "000000"
  cache_dir: imgcache
  fps: 2
  draw_budget: 250
  location: Berlin
modules:
  weather:
    source: text
    top: -110
    left: -270
    width: 250
    height: 100
    text: "yes"
    shadow: yes
    ratio: 1.5
  clock:
    source: clock
    top: 10
    left: 20
    width: 300
    height: 80
    font_size: 60
`

const hclConfig = `
mirror {
  screen_width  = 800
  screen_height = 480
  fps           = 0.5
  splash        = 0
}

module "first" {
  source = "text"
  top    = 0
  left   = 0
  width  = 100
  height = 50
  text   = "hello"
  ratio  = 0.75
  tags   = ["a", "b"]
}

module "second" {
  source = "clock"
  top    = -10
  left   = 5
  width  = 200
  height = 40
}
`

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "mirror.yaml", yamlConfig)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	m := cfg.Mirror
	assert.Equal(t, 1200, m.ScreenWidth)
	assert.Equal(t, 1600, m.ScreenHeight)
	assert.True(t, m.Fullscreen)
	assert.InDelta(t, 0.5, m.Scale, 1e-9)
	assert.Equal(t, 30, m.FontSize)
	assert.Equal(t, color.RGBA{A: 0xFF}, m.FontColor)
	assert.Equal(t, filepath.Join(cfg.Dir, "imgcache"), m.CacheDir)
	assert.Equal(t, 500*time.Millisecond, m.FrameInterval())
	assert.Equal(t, 250*time.Millisecond, m.DrawBudget)
	assert.Equal(t, config.DefaultSplash, m.Splash)
	assert.Equal(t, "Berlin", m.Settings.String("location", ""))

	require.Len(t, cfg.Modules, 2)
	weather := cfg.Modules[0]
	assert.Equal(t, "weather", weather.Name)
	assert.Equal(t, "text", weather.Source)
	assert.Equal(t, layout.FromEnd(110), weather.Top)
	assert.Equal(t, layout.FromEnd(270), weather.Left)
	assert.Equal(t, "yes", weather.Settings["text"])
	assert.Equal(t, true, weather.Settings["shadow"])
	assert.Equal(t, 1.5, weather.Settings["ratio"])
	assert.Equal(t, 30, weather.Settings["font_size"])

	clock := cfg.Modules[1]
	assert.Equal(t, "clock", clock.Name)
	assert.Equal(t, 60, clock.Settings["font_size"])
}

func TestModuleBoundsFromConfig(t *testing.T) {
	path := writeConfig(t, "mirror.yaml", yamlConfig)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	screen := cfg.Mirror.Screen()
	screen.Scale = 1
	logical, device := cfg.Modules[0].Bounds(screen)

	assert.Equal(t, image.Pt(680, 1390), logical.Min)
	assert.Equal(t, logical, device)
}

func TestLoadHCL(t *testing.T) {
	path := writeConfig(t, "mirror.hcl", hclConfig)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Mirror.ScreenWidth)
	assert.Equal(t, 2*time.Second, cfg.Mirror.FrameInterval())
	assert.Equal(t, time.Duration(0), cfg.Mirror.Splash)
	assert.Equal(t, filepath.Join(cfg.Dir, config.DefaultCacheDir), cfg.Mirror.CacheDir)

	require.Len(t, cfg.Modules, 2)
	assert.Equal(t, "first", cfg.Modules[0].Name)
	assert.Equal(t, "hello", cfg.Modules[0].Settings["text"])
	assert.Equal(t, 0.75, cfg.Modules[0].Settings["ratio"])
	assert.Equal(t, []any{"a", "b"}, cfg.Modules[0].Settings["tags"])
	assert.Equal(t, 100, cfg.Modules[0].Settings["width"])
	assert.Equal(t, "second", cfg.Modules[1].Name)
	assert.Equal(t, layout.FromEnd(10), cfg.Modules[1].Top)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "missing screen size",
			file: "a.yaml",
			body: "mirror:\n  screen_width: 100\n",
		},
		{
			name: "missing global section",
			file: "b.yaml",
			body: "modules:\n  a:\n    source: text\n",
		},
		{
			name: "module without source",
			file: "c.yaml",
			body: "mirror:\n  screen_width: 10\n  screen_height: 10\nmodules:\n  a:\n    top: 0\n    left: 0\n    width: 1\n    height: 1\n",
		},
		{
			name: "negative width",
			file: "d.yaml",
			body: "mirror:\n  screen_width: 10\n  screen_height: 10\nmodules:\n  a:\n    source: text\n    top: 0\n    left: 0\n    width: -1\n    height: 1\n",
		},
		{
			name: "non numeric top",
			file: "e.yaml",
			body: "mirror:\n  screen_width: 10\n  screen_height: 10\nmodules:\n  a:\n    source: text\n    top: high\n    left: 0\n    width: 1\n    height: 1\n",
		},
		{
			name: "duplicate module",
			file: "f.hcl",
			body: "mirror {\n screen_width = 1\n screen_height = 1\n}\nmodule \"a\" {\n source = \"text\"\n top = 0\n left = 0\n width = 1\n height = 1\n}\nmodule \"a\" {\n source = \"text\"\n top = 0\n left = 0\n width = 1\n height = 1\n}\n",
		},
		{
			name: "bad color",
			file: "g.yaml",
			body: "mirror:\n  screen_width: 10\n  screen_height: 10\n  font_color: purple\n",
		},
		{
			name: "zero fps",
			file: "h.yaml",
			body: "mirror:\n  screen_width: 10\n  screen_height: 10\n  fps: 0\n",
		},
		{
			name: "malformed yaml",
			file: "i.yaml",
			body: "mirror: [\n",
		},
		{
			name: "malformed hcl",
			file: "j.hcl",
			body: "mirror {\n",
		},
		{
			name: "unsupported extension",
			file: "k.ini",
			body: "[mirror]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, mirror.ErrConfig), "got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.Is(err, mirror.ErrConfig))
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "open", pathErr.Op)
}

func TestParserDiagnosticsAreKept(t *testing.T) {
	_, err := config.Load(writeConfig(t, "broken.hcl", "mirror {\n"))
	require.ErrorIs(t, err, mirror.ErrConfig)

	var diags hcl.Diagnostics
	require.ErrorAs(t, err, &diags)
	assert.True(t, diags.HasErrors())
	assert.Contains(t, err.Error(), diags.Error())
}

func TestOverrides(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "mirror.yaml", yamlConfig))
	require.NoError(t, err)

	scale, fps, fullscreen, x := 2.0, 10.0, false, 40
	err = config.Overrides{Scale: &scale, FPS: &fps, Fullscreen: &fullscreen, X: &x, Module: "clock"}.Apply(cfg)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, cfg.Mirror.Scale, 1e-9)
	assert.Equal(t, 100*time.Millisecond, cfg.Mirror.FrameInterval())
	assert.False(t, cfg.Mirror.Fullscreen)
	assert.Equal(t, 40, cfg.Mirror.X)
	require.Len(t, cfg.Modules, 1)
	assert.Equal(t, "clock", cfg.Modules[0].Name)

	err = config.Overrides{Module: "missing"}.Apply(cfg)
	assert.True(t, errors.Is(err, mirror.ErrConfig))

	bad := -1.0
	err = config.Overrides{Scale: &bad}.Apply(cfg)
	assert.True(t, errors.Is(err, mirror.ErrConfig))
}

func TestSameGeometry(t *testing.T) {
	a := config.ModuleSpec{Top: layout.FromStart(1), Left: layout.FromEnd(2), Width: 3, Height: 4}
	b := a
	b.Name = "other"
	assert.True(t, a.SameGeometry(b))
	b.Width = 5
	assert.False(t, a.SameGeometry(b))
}
