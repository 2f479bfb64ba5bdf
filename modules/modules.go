// Package modules contains the modules compiled into the mirror binary.
// They are addressed by name from a module's source key; anything else is
// loaded as a Go plugin.
package modules

import (
	"time"

	"github.com/rook-computer/mirror/internal/registry"
	"github.com/rook-computer/mirror/mirror"
)

// RegisterBuiltins makes clock, text, image, qrcode and demo available.
func RegisterBuiltins(reg *registry.Registry) {
	reg.Register("clock", func() mirror.Module { return &Clock{Now: time.Now} })
	reg.Register("text", func() mirror.Module { return Text{} })
	reg.Register("image", func() mirror.Module { return Image{} })
	reg.Register("qrcode", func() mirror.Module { return QRCode{} })
	reg.Register("demo", func() mirror.Module { return Demo{} })
}

// anchor returns the point inside a w x h box that adjust refers to.
func anchor(adjust mirror.Adjustment, w, h int) (int, int) {
	x, y := 0, 0
	switch {
	case adjust&mirror.Center != 0:
		x = w / 2
	case adjust&mirror.Right != 0:
		x = w
	}
	switch {
	case adjust&mirror.Middle != 0:
		y = h / 2
	case adjust&mirror.Bottom != 0:
		y = h
	}
	return x, y
}

// textStyle reads the text keys shared by clock and text.
func textStyle(m mirror.Mirror, cfg mirror.Config) (mirror.TextStyle, error) {
	style := mirror.TextStyle{
		Size:   cfg.Int("font_size", m.FontSize()),
		Font:   cfg.String("font_name", ""),
		Shadow: cfg.Bool("shadow", false),
		Color:  cfg.Color("color", nil),
	}
	if raw := cfg.String("adjust", ""); raw != "" {
		adjust, err := mirror.ParseAdjustment(raw)
		if err != nil {
			return style, err
		}
		style.Adjust = adjust
	}
	return style, nil
}
