package mirror

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Config holds every key configured for one module instance.
// Values are coerced with Coerce when they come from text.
type Config map[string]any

// Coerce turns a configured string into the most specific scalar:
// integers, then booleans (true/yes/false/no), then floats, else the string.
func Coerce(raw string) any {
	s := strings.TrimSpace(raw)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	switch strings.ToLower(s) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return raw
}

func (c Config) String(key, def string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (c Config) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func (c Config) Float(key string, def float64) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func (c Config) Bool(key string, def bool) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		if b, ok := Coerce(v).(bool); ok {
			return b
		}
	}
	return def
}

// Color reads a hex color, returning def when the key is missing or invalid.
func (c Config) Color(key string, def color.Color) color.Color {
	v, ok := c[key]
	if !ok {
		return def
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case int:
		s = fmt.Sprintf("%06d", t)
	default:
		return def
	}
	rgba, err := ParseHexColor(s)
	if err != nil {
		return def
	}
	return rgba
}

// Clone returns a shallow copy.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
