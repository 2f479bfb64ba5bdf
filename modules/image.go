package modules

import (
	"errors"

	"github.com/rook-computer/mirror/mirror"
)

// Image shows a picture centered in the module. The file is looked up next
// to the config and scaled to fit the module, keeping its aspect ratio.
// Missing files are reported and retried on every frame.
type Image struct{}

type imageState struct {
	path   string
	invert bool
	drawn  bool
}

func (Image) Init(_ mirror.Mirror, cfg mirror.Config) (any, error) {
	path := cfg.String("path", "")
	if path == "" {
		return nil, errors.New("path is required")
	}
	return &imageState{path: path, invert: cfg.Bool("invert", false)}, nil
}

func (Image) Draw(m mirror.Mirror, locals any) error {
	st := locals.(*imageState)
	img, err := m.LoadImage(st.path, mirror.ImageOptions{Width: m.Width(), Invert: st.invert})
	if err != nil {
		st.drawn = false
		return err
	}
	if img.Height() > m.Height() {
		img, err = m.LoadImage(st.path, mirror.ImageOptions{Height: m.Height(), Invert: st.invert})
		if err != nil {
			st.drawn = false
			return err
		}
	}
	m.DrawImage(img, (m.Width()-img.Width())/2, (m.Height()-img.Height())/2)
	st.drawn = true
	return nil
}

func (Image) DebugInfo(locals any) map[string]any {
	st, ok := locals.(*imageState)
	if !ok {
		return nil
	}
	return map[string]any{"path": st.path, "drawn": st.drawn}
}
