package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kozaktomas/photolog/internal/layout"
)

// Color is an RGB colour with 0-255 components.
type Color struct {
	R, G, B int
}

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid colour %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

// Style holds the typographic settings shared by the emitter and the measurer.
type Style struct {
	FontFamily    string // core PDF font
	TitleSizePt   float64
	BodySizePt    float64 // labels and values
	LineHeightMM  float64
	LabelWidthMM  float64 // entry label column
	HeaderLabelMM float64 // header label column
	RuleWidthMM   float64
	Brand         Color // title and rules
	Text          Color
	Title         string
}

// DefaultStyle returns Helvetica 10pt on 5mm lines with a navy brand colour.
func DefaultStyle() Style {
	return Style{
		FontFamily:    "Helvetica",
		TitleSizePt:   16,
		BodySizePt:    10,
		LineHeightMM:  5,
		LabelWidthMM:  layout.LabelColumnMM,
		HeaderLabelMM: 34,
		RuleWidthMM:   0.3,
		Brand:         Color{R: 31, G: 78, B: 121},
		Text:          Color{R: 33, G: 33, B: 33},
		Title:         "PHOTOGRAPHIC LOG",
	}
}
