package assets

import (
	"embed"
	"io/fs"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFont is used when no font_name is configured.
const DefaultFont = "regular"

// Fonts are the built-in TrueType fonts, addressable by name from configs.
var Fonts = map[string][]byte{
	"regular": goregular.TTF,
	"bold":    gobold.TTF,
	"mono":    gomono.TTF,
}

//go:embed examples
var examplesFS embed.FS

// Examples holds sample configurations rooted at internal/assets/examples.
var Examples fs.FS

func init() {
	sub, err := fs.Sub(examplesFS, "examples")
	if err != nil {
		panic(err)
	}
	Examples = sub
}

// Example returns the sample configuration for format ("yaml" or "hcl").
func Example(format string) ([]byte, error) {
	return fs.ReadFile(Examples, "mirror."+format)
}
