package modules

import (
	"errors"

	"github.com/rook-computer/mirror/mirror"
)

// QRCode renders payload as the largest square that fits the module, with
// an optional caption underneath.
type QRCode struct{}

type qrState struct {
	payload string
	caption string
}

func (QRCode) Init(_ mirror.Mirror, cfg mirror.Config) (any, error) {
	payload := cfg.String("payload", "")
	if payload == "" {
		return nil, errors.New("payload is required")
	}
	return &qrState{payload: payload, caption: cfg.String("caption", "")}, nil
}

func (QRCode) Draw(m mirror.Mirror, locals any) error {
	st := locals.(*qrState)
	w, h := m.Width(), m.Height()
	style := mirror.TextStyle{Size: max(m.FontSize()/2, 8), Adjust: mirror.Center | mirror.Bottom, Width: -1}
	if st.caption != "" {
		_, th := m.MeasureText(st.caption, style)
		h -= th
		m.DrawText(st.caption, m.Width()/2, m.Height(), style)
	}
	size := min(w, h)
	if size <= 0 {
		return nil
	}
	return m.DrawQRCode(st.payload, (w-size)/2, (h-size)/2, size)
}
