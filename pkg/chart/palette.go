package chart

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stackbar/pkg/errors"
)

// DefaultPalette is assigned to categories in discovery order.
var DefaultPalette = []string{
	"#b0e0e6", "#89ffe6", "#87cefa", "#00bfff", "#b0c4de",
	"#1e90ff", "#6495ed", "#4682b4", "#5f9ea0", "#009688",
	"#5b765b", "#4caf50", "#8bc34a", "#7b68ee", "#483d8b",
	"#0000ff", "#00008b", "#8a2be2", "#4b0082", "#f2a777",
}

// UnknownColor fills keys that are not part of the scale.
const UnknownColor = "#ccc"

// ColorScale assigns palette colors to category keys by position, cycling
// when there are more keys than colors.
type ColorScale struct {
	index   map[string]int
	palette []string
}

// NewColorScale builds a color scale over keys. An empty palette uses
// [DefaultPalette]; custom colors must be hex (#rgb or #rrggbb, the leading
// # optional) and are normalized to lowercase #rrggbb.
func NewColorScale(keys []string, palette []string) (ColorScale, error) {
	colors := DefaultPalette
	if len(palette) > 0 {
		var err error
		if colors, err = ParsePalette(palette); err != nil {
			return ColorScale{}, err
		}
	}

	index := make(map[string]int, len(keys))
	for _, k := range keys {
		if _, ok := index[k]; !ok {
			index[k] = len(index)
		}
	}
	return ColorScale{index: index, palette: colors}, nil
}

// Color returns the color for key.
func (c ColorScale) Color(key string) string {
	i, ok := c.index[key]
	if !ok || len(c.palette) == 0 {
		return UnknownColor
	}
	return c.palette[i%len(c.palette)]
}

// ParsePalette validates and normalizes a list of hex colors.
func ParsePalette(palette []string) ([]string, error) {
	out := make([]string, 0, len(palette))
	for _, raw := range palette {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, "#") {
			s = "#" + s
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPalette, err, "invalid color %q", raw)
		}
		out = append(out, c.Hex())
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidPalette, "palette has no colors")
	}
	return out, nil
}
