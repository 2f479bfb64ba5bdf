// Package config loads the mirror configuration: one global section plus one
// section per module, in the order they appear in the file.
package config

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/rook-computer/mirror/internal/render/layout"
	"github.com/rook-computer/mirror/mirror"
	"go.trai.ch/zerr"
)

const (
	DefaultScale      = 1.0
	DefaultFontSize   = 40
	DefaultFontColor  = "ffffff"
	DefaultFPS        = 1.0
	DefaultSplash     = 4 * time.Second
	DefaultCacheDir   = "cache"
	globalSectionName = "mirror"
)

// Mirror is the global section.
type Mirror struct {
	ScreenWidth  int
	ScreenHeight int
	Fullscreen   bool
	Scale        float64
	FontSize     int
	FontColor    color.RGBA
	FontName     string
	// CacheDir is absolute; relative values are resolved against the config directory.
	CacheDir    string
	FPS         float64
	Splash      time.Duration
	DrawBudget  time.Duration
	X           int
	Y           int
	DebugListen string
	// Settings holds every key of the section, including the ones above.
	Settings mirror.Config
}

// Screen returns the logical screen used for geometry.
func (m Mirror) Screen() layout.Screen {
	return layout.Screen{Width: m.ScreenWidth, Height: m.ScreenHeight, Scale: m.Scale}
}

// FrameInterval is the frame budget derived from FPS.
func (m Mirror) FrameInterval() time.Duration {
	if m.FPS <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / m.FPS)
}

// ModuleSpec describes one configured module. It is not modified after loading.
type ModuleSpec struct {
	Name     string
	Source   string
	Top      layout.Offset
	Left     layout.Offset
	Width    int
	Height   int
	Settings mirror.Config
}

// Bounds resolves the spec against a screen, in device pixels.
func (s ModuleSpec) Bounds(screen layout.Screen) (logical, device image.Rectangle) {
	logical = layout.Logical(s.Top, s.Left, s.Width, s.Height, screen)
	device = layout.Resolve(s.Top, s.Left, s.Width, s.Height, screen)
	return logical, device
}

// SameGeometry reports whether two specs occupy the same rectangle.
func (s ModuleSpec) SameGeometry(o ModuleSpec) bool {
	return s.Top == o.Top && s.Left == o.Left && s.Width == o.Width && s.Height == o.Height
}

type Config struct {
	Path    string
	Dir     string
	Mirror  Mirror
	Modules []ModuleSpec
}

// Module returns the spec with the given name.
func (c *Config) Module(name string) (ModuleSpec, bool) {
	for _, m := range c.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleSpec{}, false
}

// Overrides carries command line values that win over the file.
// Nil fields leave the configured value alone.
type Overrides struct {
	Scale      *float64
	FPS        *float64
	Fullscreen *bool
	X          *int
	Y          *int
	// Module keeps only the named module.
	Module string
}

// Apply changes cfg in place.
func (o Overrides) Apply(cfg *Config) error {
	if o.Scale != nil {
		if *o.Scale <= 0 {
			return configError("scale must be positive", "field", "scale")
		}
		cfg.Mirror.Scale = *o.Scale
	}
	if o.FPS != nil {
		if *o.FPS <= 0 {
			return configError("fps must be positive", "field", "fps")
		}
		cfg.Mirror.FPS = *o.FPS
	}
	if o.Fullscreen != nil {
		cfg.Mirror.Fullscreen = *o.Fullscreen
	}
	if o.X != nil {
		cfg.Mirror.X = *o.X
	}
	if o.Y != nil {
		cfg.Mirror.Y = *o.Y
	}
	if o.Module != "" {
		spec, ok := cfg.Module(o.Module)
		if !ok {
			return configError("no such module", "module", o.Module)
		}
		cfg.Modules = []ModuleSpec{spec}
	}
	return nil
}

// Load reads the file at path. The format follows the extension:
// .yaml/.yml or .hcl.
func Load(path string) (*Config, error) {
	var (
		doc *document
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = parseYAML(path)
	case ".hcl":
		doc, err = parseHCL(path)
	default:
		return nil, configError("unsupported config format", "path", path)
	}
	if err != nil {
		return nil, err
	}
	return build(path, doc)
}

// document is the format independent shape of a config file.
type document struct {
	global  map[string]any
	modules []section
}

type section struct {
	name   string
	values map[string]any
}

func build(path string, doc *document) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg := &Config{Path: abs, Dir: filepath.Dir(abs)}

	if doc.global == nil {
		return nil, configError("missing section", "section", globalSectionName)
	}
	m, err := buildMirror(doc.global, cfg.Dir)
	if err != nil {
		return nil, err
	}
	cfg.Mirror = m

	seen := make(map[string]bool, len(doc.modules))
	for _, sec := range doc.modules {
		if seen[sec.name] {
			return nil, configError("duplicate module", "module", sec.name)
		}
		seen[sec.name] = true
		spec, err := buildModule(sec, m)
		if err != nil {
			return nil, err
		}
		cfg.Modules = append(cfg.Modules, spec)
	}
	return cfg, nil
}

func buildMirror(values map[string]any, dir string) (Mirror, error) {
	settings := mirror.Config(values).Clone()
	m := Mirror{Settings: settings}

	var err error
	if m.ScreenWidth, err = requiredInt(settings, "screen_width", globalSectionName); err != nil {
		return m, err
	}
	if m.ScreenHeight, err = requiredInt(settings, "screen_height", globalSectionName); err != nil {
		return m, err
	}
	if m.ScreenWidth <= 0 || m.ScreenHeight <= 0 {
		return m, configError("screen size must be positive", "section", globalSectionName)
	}

	m.Fullscreen = settings.Bool("fullscreen", false)
	m.Scale = settings.Float("scale", DefaultScale)
	if m.Scale <= 0 {
		return m, configError("scale must be positive", "field", "scale")
	}
	m.FontSize = settings.Int("font_size", DefaultFontSize)
	if m.FontSize <= 0 {
		return m, configError("font_size must be positive", "field", "font_size")
	}
	rawColor := settings.String("font_color", DefaultFontColor)
	if i, ok := settings["font_color"].(int); ok {
		// all-digit colors such as 000000 were coerced to numbers
		rawColor = fmt.Sprintf("%06d", i)
	}
	fontColor, err := mirror.ParseHexColor(rawColor)
	if err != nil {
		return m, configCause(err, "field", "font_color")
	}
	m.FontColor = fontColor
	m.FontName = settings.String("font_name", "")
	if m.FontName != "" && strings.ContainsRune(m.FontName, '.') && !filepath.IsAbs(m.FontName) {
		m.FontName = filepath.Join(dir, m.FontName)
	}

	m.CacheDir = settings.String("cache_dir", DefaultCacheDir)
	if m.CacheDir != "" && !filepath.IsAbs(m.CacheDir) {
		m.CacheDir = filepath.Join(dir, m.CacheDir)
	}

	m.FPS = settings.Float("fps", DefaultFPS)
	if m.FPS <= 0 || math.IsInf(m.FPS, 0) || math.IsNaN(m.FPS) {
		return m, configError("fps must be positive", "field", "fps")
	}
	m.Splash = seconds(settings.Float("splash", DefaultSplash.Seconds()))
	m.DrawBudget = time.Duration(settings.Int("draw_budget", 0)) * time.Millisecond
	m.X = settings.Int("x", 0)
	m.Y = settings.Int("y", 0)
	m.DebugListen = settings.String("debug_listen", "")
	return m, nil
}

func buildModule(sec section, global Mirror) (ModuleSpec, error) {
	settings := mirror.Config(sec.values).Clone()
	spec := ModuleSpec{Name: sec.name, Settings: settings}

	spec.Source = settings.String("source", "")
	if spec.Source == "" {
		return spec, configError("missing field", "module", sec.name, "field", "source")
	}

	top, err := requiredInt(settings, "top", sec.name)
	if err != nil {
		return spec, err
	}
	left, err := requiredInt(settings, "left", sec.name)
	if err != nil {
		return spec, err
	}
	spec.Top, spec.Left = layout.ParseOffset(top), layout.ParseOffset(left)

	if spec.Width, err = requiredInt(settings, "width", sec.name); err != nil {
		return spec, err
	}
	if spec.Height, err = requiredInt(settings, "height", sec.name); err != nil {
		return spec, err
	}
	if spec.Width < 0 || spec.Height < 0 {
		return spec, configError("width and height must not be negative", "module", sec.name)
	}

	if _, ok := settings["font_size"]; !ok {
		settings["font_size"] = global.FontSize
	}
	if _, ok := settings["font_name"]; !ok && global.FontName != "" {
		settings["font_name"] = global.FontName
	}
	return spec, nil
}

func requiredInt(values mirror.Config, key, section string) (int, error) {
	v, ok := values[key]
	if !ok {
		return 0, configError("missing field", "section", section, "field", key)
	}
	i, ok := asInt(v)
	if !ok {
		return 0, configError(fmt.Sprintf("%s must be an integer, got %v", key, v), "section", section, "field", key)
	}
	return i, nil
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
	case string:
		if i, ok := mirror.Coerce(t).(int); ok {
			return i, true
		}
	}
	return 0, false
}

func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

// configError classifies msg as ErrConfig. kv pairs are attached as metadata
// and repeated in the message so the diagnostic stands on its own.
func configError(msg string, kv ...string) error {
	return classifyConfig(msg, nil, kv)
}

// configCause is configError for a failure reported by another package; the
// cause stays reachable with errors.Is and errors.As.
func configCause(cause error, kv ...string) error {
	return classifyConfig(cause.Error(), cause, kv)
}

func classifyConfig(msg string, cause error, kv []string) error {
	var where []string
	for i := 0; i+1 < len(kv); i += 2 {
		where = append(where, kv[i]+"="+kv[i+1])
	}
	if len(where) > 0 {
		msg += " (" + strings.Join(where, " ") + ")"
	}
	err := mirror.Classify(mirror.ErrConfig, msg, cause)
	for i := 0; i+1 < len(kv); i += 2 {
		err = zerr.With(err, kv[i], kv[i+1])
	}
	return err
}
