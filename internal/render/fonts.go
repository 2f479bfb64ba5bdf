package render

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/mirror/internal/assets"
	"github.com/rook-computer/mirror/mirror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

type faceKey struct {
	name string
	px   int
}

// parsedFont holds whichever parser accepted the file.
type parsedFont struct {
	tt *truetype.Font
	ot *opentype.Font
}

// FontSet parses fonts lazily and caches one face per name and pixel size.
// Names are either built-in (regular, bold, mono) or paths to .ttf/.otf files.
type FontSet struct {
	Logger mirror.Logger

	mu    sync.Mutex
	fonts map[string]*parsedFont
	faces map[faceKey]font.Face
}

func NewFontSet(logger mirror.Logger) *FontSet {
	if logger == nil {
		logger = mirror.NoopLogger{}
	}
	return &FontSet{Logger: logger, fonts: make(map[string]*parsedFont), faces: make(map[faceKey]font.Face)}
}

// Face returns a face for name at px pixels. Unknown or broken fonts fall
// back to the default font, and to basicfont if even that fails.
func (s *FontSet) Face(name string, px int) font.Face {
	if name == "" {
		name = assets.DefaultFont
	}
	if px <= 0 {
		px = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := faceKey{name: name, px: px}
	if face, ok := s.faces[key]; ok {
		return face
	}

	face := s.newFace(name, px)
	if face == nil && name != assets.DefaultFont {
		face = s.newFace(assets.DefaultFont, px)
	}
	if face == nil {
		s.Logger.Errorf("font", "no usable font for %q, using basicfont", name)
		face = basicfont.Face7x13
	}
	s.faces[key] = face
	return face
}

func (s *FontSet) newFace(name string, px int) font.Face {
	f := s.load(name)
	if f == nil {
		return nil
	}
	if f.tt != nil {
		return truetype.NewFace(f.tt, &truetype.Options{Size: float64(px), DPI: 72, Hinting: font.HintingFull})
	}
	face, err := opentype.NewFace(f.ot, &opentype.FaceOptions{Size: float64(px), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		s.Logger.Errorf("font", "face %s at %dpx: %v", name, px, err)
		return nil
	}
	return face
}

func (s *FontSet) load(name string) *parsedFont {
	if f, ok := s.fonts[name]; ok {
		return f
	}

	data, ok := assets.Fonts[name]
	if !ok {
		//nolint:gosec // Font paths come from the mirror configuration
		raw, err := os.ReadFile(name)
		if err != nil {
			s.Logger.Errorf("font", "read %s: %v", name, err)
			s.fonts[name] = nil
			return nil
		}
		data = raw
	}

	var f *parsedFont
	if strings.EqualFold(filepath.Ext(name), ".otf") {
		ot, err := opentype.Parse(data)
		if err != nil {
			s.Logger.Errorf("font", "opentype parse %s: %v", name, err)
		} else {
			f = &parsedFont{ot: ot}
		}
	} else {
		tt, err := truetype.Parse(data)
		if err != nil {
			s.Logger.Errorf("font", "truetype parse %s: %v", name, err)
		} else {
			f = &parsedFont{tt: tt}
		}
	}
	if f != nil {
		s.Logger.Infof("font", "loaded %s", name)
	}
	s.fonts[name] = f
	return f
}
