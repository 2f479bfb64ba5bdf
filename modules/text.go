package modules

import (
	"errors"

	"github.com/rook-computer/mirror/mirror"
)

// Text draws a fixed string, wrapped to the module width.
type Text struct{}

type textState struct {
	text  string
	style mirror.TextStyle
}

func (Text) Init(m mirror.Mirror, cfg mirror.Config) (any, error) {
	text := cfg.String("text", "")
	if text == "" {
		return nil, errors.New("text is required")
	}
	style, err := textStyle(m, cfg)
	if err != nil {
		return nil, err
	}
	return &textState{text: text, style: style}, nil
}

func (Text) Draw(m mirror.Mirror, locals any) error {
	st := locals.(*textState)
	x, y := anchor(st.style.Adjust, m.Width(), m.Height())
	m.DrawText(st.text, x, y, st.style)
	return nil
}
