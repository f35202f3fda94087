package render

import (
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	DefaultFontPath = "DejaVuSans.ttf"
	DefaultFontSize = 64
)

// fontSource is one step of the fallback chain.
type fontSource struct {
	name string
	load func() ([]byte, error)
}

// FontProvider resolves the caption font once and hands out faces.
//
// Resolution walks the chain: configured file, the embedded Go Regular
// font, then basicfont. It never fails; callers always get a usable face.
type FontProvider struct {
	size    float64
	sources []fontSource
	logger  hclog.Logger

	once   sync.Once
	parsed *opentype.Font
	source string
}

// NewFontProvider builds a provider preferring the font file at path.
func NewFontProvider(path string, size float64, logger hclog.Logger) *FontProvider {
	if path == "" {
		path = DefaultFontPath
	}
	if size <= 0 {
		size = DefaultFontSize
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FontProvider{
		size:   size,
		logger: logger,
		sources: []fontSource{
			{name: path, load: func() ([]byte, error) { return os.ReadFile(path) }},
			{name: "goregular", load: func() ([]byte, error) { return goregular.TTF, nil }},
		},
	}
}

func (p *FontProvider) resolve() {
	p.once.Do(func() {
		for _, src := range p.sources {
			f, err := tryLoad(src)
			if err != nil {
				p.logger.Warn("font unavailable, trying next", "font", src.name, "error", err)
				continue
			}
			p.parsed, p.source = f, src.name
			p.logger.Debug("font resolved", "font", src.name, "size", p.size)
			return
		}
		p.source = "basicfont"
		p.logger.Warn("no scalable font available, using basicfont")
	})
}

func tryLoad(src fontSource) (*opentype.Font, error) {
	data, err := src.load()
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.name, err)
	}
	return f, nil
}

// Source names the font that won resolution.
func (p *FontProvider) Source() string {
	p.resolve()
	return p.source
}

// Face returns a new face for one caller. Faces are not safe for concurrent
// use, so each composite gets its own. The caller closes it.
func (p *FontProvider) Face() font.Face {
	p.resolve()
	if p.parsed != nil {
		face, err := opentype.NewFace(p.parsed, &opentype.FaceOptions{
			Size:    p.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return face
		}
		p.logger.Warn("font face creation failed, using basicfont", "font", p.source, "error", err)
	}
	return basicfont.Face7x13
}
