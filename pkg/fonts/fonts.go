// Package fonts measures label text with real font metrics.
//
// Row labels are truncated when their rendered width exceeds a pixel
// budget. The browser measures with the live font; offline renderers use
// this package instead, which lays text out with the Go Regular face (a
// metric-compatible stand-in for the sans-serif labels) and falls back to
// a fixed 7x13 bitmap face if the outline font cannot be loaded.
package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontFamily is the CSS font-family used for axis text.
const FontFamily = "Arial, Helvetica, sans-serif"

// Measurer measures strings with a parsed outline font. Faces are created
// lazily per size and cached; a Measurer is safe for concurrent use.
type Measurer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// New parses the embedded Go Regular font.
func New() (*Measurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &Measurer{font: f, faces: make(map[float64]font.Face)}, nil
}

var (
	defaultOnce     sync.Once
	defaultMeasurer *Measurer
)

// Default returns a shared Measurer. If the outline font cannot be parsed
// the returned Measurer measures with the bitmap face.
func Default() *Measurer {
	defaultOnce.Do(func() {
		m, err := New()
		if err != nil {
			m = &Measurer{faces: make(map[float64]font.Face)}
		}
		defaultMeasurer = m
	})
	return defaultMeasurer
}

// MeasureString returns the advance width of s in pixels at size.
func (m *Measurer) MeasureString(s string, size float64) float64 {
	face := m.face(size)
	if face == nil {
		return Bitmap(s, size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return toPixels(font.MeasureString(face, s))
}

func (m *Measurer) face(size float64) font.Face {
	if m.font == nil || size <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	m.faces[size] = f
	return f
}

// Bitmap measures s with the 7x13 bitmap face, scaled linearly from its
// nominal 14px size.
func Bitmap(s string, size float64) float64 {
	w := toPixels(font.MeasureString(basicfont.Face7x13, s))
	return w * size / 14
}

func toPixels(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
