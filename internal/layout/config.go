package layout

import (
	"errors"
	"fmt"
)

// Strategy selects how entries are distributed across pages.
type Strategy string

const (
	// StrategyMeasured packs entries while their measured height fits.
	StrategyMeasured Strategy = "measured"
	// StrategyGrouped puts a fixed number of entries on each page.
	StrategyGrouped Strategy = "grouped"
)

// ParseStrategy parses "measured" or "grouped".
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyMeasured, StrategyGrouped:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("invalid layout strategy %q: must be measured or grouped", s)
	}
}

// PageSize is a portrait page size in mm.
type PageSize struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

// Standard page sizes.
var (
	A4     = PageSize{Name: "A4", WidthMM: 210.0, HeightMM: 297.0}
	Letter = PageSize{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4}
)

// headerRuleOffsetMM is the distance of the header rule above the body top.
const headerRuleOffsetMM = 3.0

// PlaceholderHeightMM is the body space taken by the "no entries" notice.
const PlaceholderHeightMM = 12.0

// LabelColumnMM is the width of the entry label column inside the text column.
const LabelColumnMM = 24.0

// MinValueColumnMM is the narrowest value column left beside the labels.
const MinValueColumnMM = 16.0

// MinSlotHeightMM is the smallest grouped slot: four label lines and one
// description line at 5mm.
const MinSlotHeightMM = 25.0

// Config holds the page geometry (mm) and pagination settings.
type Config struct {
	Page            PageSize
	TopMarginMM     float64 // 15mm
	BottomMarginMM  float64 // 15mm
	LeftMarginMM    float64 // 15mm
	RightMarginMM   float64 // 15mm
	HeaderHeightMM  float64 // title + header fields + rule (45mm)
	FooterHeightMM  float64 // folio zone (10mm)
	SeparatorMM     float64 // gap between entries, holds the rule (8mm)
	ColumnGutterMM  float64 // between text and image column (5mm)
	TextColumnRatio float64 // share of the row given to text (0.4)
	Strategy        Strategy
	GroupSize       int // entries per page for StrategyGrouped
}

// DefaultConfig returns the A4 portrait layout with measured flow.
func DefaultConfig() Config {
	return Config{
		Page:            A4,
		TopMarginMM:     15.0,
		BottomMarginMM:  15.0,
		LeftMarginMM:    15.0,
		RightMarginMM:   15.0,
		HeaderHeightMM:  45.0,
		FooterHeightMM:  10.0,
		SeparatorMM:     8.0,
		ColumnGutterMM:  5.0,
		TextColumnRatio: 0.4,
		Strategy:        StrategyMeasured,
		GroupSize:       2,
	}
}

// ContentWidth returns the horizontal space between the margins.
// 210 - 15 - 15 = 180mm on A4.
func (c Config) ContentWidth() float64 {
	return c.Page.WidthMM - c.LeftMarginMM - c.RightMarginMM
}

// TextColumnWidth returns the width of the entry text column.
func (c Config) TextColumnWidth() float64 {
	return (c.ContentWidth() - c.ColumnGutterMM) * c.TextColumnRatio
}

// ImageColumnWidth returns the width of the entry image column.
func (c Config) ImageColumnWidth() float64 {
	return (c.ContentWidth() - c.ColumnGutterMM) * (1 - c.TextColumnRatio)
}

// ImageColumnX returns the left edge of the image column.
func (c Config) ImageColumnX() float64 {
	return c.LeftMarginMM + c.TextColumnWidth() + c.ColumnGutterMM
}

// BodyTop returns the Y (from page top) where entries start.
func (c Config) BodyTop() float64 {
	return c.TopMarginMM + c.HeaderHeightMM
}

// BodyBottom returns the Y (from page top) where the footer zone begins.
func (c Config) BodyBottom() float64 {
	return c.Page.HeightMM - c.BottomMarginMM - c.FooterHeightMM
}

// Available returns the body height for entries.
// 297 - 15 - 15 - 45 - 10 = 212mm on A4.
func (c Config) Available() float64 {
	return c.BodyBottom() - c.BodyTop()
}

// SlotHeight returns the height of one StrategyGrouped slot.
func (c Config) SlotHeight() float64 {
	g := max(c.GroupSize, 1)
	return (c.Available() - float64(g-1)*c.SeparatorMM) / float64(g)
}

// Validate checks that the geometry leaves room for a body.
func (c Config) Validate() error {
	var errs []error
	if c.Page.WidthMM <= 0 || c.Page.HeightMM <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.TextColumnRatio <= 0 || c.TextColumnRatio >= 1 {
		errs = append(errs, fmt.Errorf("text column ratio %.2f must be between 0 and 1", c.TextColumnRatio))
	} else if w := c.TextColumnWidth(); w < LabelColumnMM+MinValueColumnMM {
		errs = append(errs, fmt.Errorf("text column is %.1fmm, need at least %.1fmm for labels and values", w, LabelColumnMM+MinValueColumnMM))
	}
	if c.ContentWidth()-c.ColumnGutterMM <= 0 {
		errs = append(errs, errors.New("margins leave no content width"))
	}
	if c.Available() <= 0 {
		errs = append(errs, errors.New("margins, header and footer leave no body height"))
	}
	if c.SeparatorMM < 0 {
		errs = append(errs, errors.New("separator must not be negative"))
	}
	switch c.Strategy {
	case StrategyMeasured:
	case StrategyGrouped:
		if c.GroupSize < 1 {
			errs = append(errs, fmt.Errorf("group size %d must be at least 1", c.GroupSize))
		} else if slot := c.SlotHeight(); slot < MinSlotHeightMM {
			errs = append(errs, fmt.Errorf("group size %d leaves %.1fmm per entry, need at least %.1fmm", c.GroupSize, slot, MinSlotHeightMM))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown strategy %q", c.Strategy))
	}
	return errors.Join(errs...)
}
