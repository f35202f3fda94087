package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultBackground is the near-black fill used when no colour is requested.
var DefaultBackground = color.RGBA{R: 12, G: 12, B: 16, A: 255}

// ParseHexColor parses "#rrggbb" or "rrggbb". An empty string yields
// DefaultBackground.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return DefaultBackground, nil
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
