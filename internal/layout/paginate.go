// Package layout partitions a photo log into fixed-size pages.
//
// Coordinates are millimetres measured from the top-left corner of the page.
// Paginate is pure: it never draws, and the only external input is the
// Measurer used by the measured strategy.
package layout

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/photolog/internal/photolog"
)

// Measurer is the measurement oracle used by the measured strategy.
type Measurer interface {
	// TextHeight returns the height of the entry's text block set in a
	// column of the given width.
	TextHeight(e photolog.PhotoEntry, width float64) float64
	// ImageSize returns the native pixel size of the entry image.
	ImageSize(e photolog.PhotoEntry) (w, h int, ok bool)
}

// ItemKind identifies a draw item.
type ItemKind string

const (
	ItemHeader      ItemKind = "header"
	ItemRule        ItemKind = "rule"
	ItemEntry       ItemKind = "entry"
	ItemPlaceholder ItemKind = "placeholder"
)

// Item is one positioned block on a page.
type Item struct {
	Kind   ItemKind
	Y      float64 // from page top
	Height float64
	// Entry fields, set for ItemEntry only.
	Entry       photolog.PhotoEntry
	TextHeight  float64
	ImageHeight float64
	Oversized   bool // taller than a full page body
}

// Bottom returns the Y of the item's lower edge.
func (it Item) Bottom() float64 {
	return it.Y + it.Height
}

// Page is one page of the layout.
type Page struct {
	Number int
	Total  int
	Items  []Item
}

// Entries returns the photo entries placed on the page, in order.
func (p Page) Entries() []photolog.PhotoEntry {
	var out []photolog.PhotoEntry
	for _, it := range p.Items {
		if it.Kind == ItemEntry {
			out = append(out, it.Entry)
		}
	}
	return out
}

// IsPlaceholder reports whether the page holds the "no entries" notice.
func (p Page) IsPlaceholder() bool {
	for _, it := range p.Items {
		if it.Kind == ItemPlaceholder {
			return true
		}
	}
	return false
}

// PageLayout is the full page partition of one export.
type PageLayout struct {
	Config Config
	Header photolog.HeaderRecord
	Pages  []Page
}

// EntryCount returns the number of entries placed across all pages.
func (pl *PageLayout) EntryCount() int {
	n := 0
	for _, p := range pl.Pages {
		n += len(p.Entries())
	}
	return n
}

// Paginate computes the page partition of entries.
func Paginate(header photolog.HeaderRecord, entries photolog.EntryList, m Measurer, cfg Config) (*PageLayout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}

	pb := &pageBuilder{config: cfg}
	if len(entries) == 0 {
		pb.openPage()
		pb.current.Items = append(pb.current.Items, Item{
			Kind:   ItemPlaceholder,
			Y:      cfg.BodyTop(),
			Height: PlaceholderHeightMM,
		})
		pb.closePage()
	} else {
		switch cfg.Strategy {
		case StrategyGrouped:
			pb.buildGrouped(entries, m)
		default:
			if m == nil {
				return nil, errors.New("measured layout requires a measurer")
			}
			pb.buildMeasured(entries, m)
		}
	}

	for i := range pb.pages {
		pb.pages[i].Total = len(pb.pages)
	}
	return &PageLayout{Config: cfg, Header: header, Pages: pb.pages}, nil
}

// pageBuilder tracks state while flowing entries onto pages.
type pageBuilder struct {
	config  Config
	pages   []Page
	current *Page
	used    float64 // body height consumed on the current page, separators included
}

// openPage starts a new page with the header block and its rule.
func (pb *pageBuilder) openPage() {
	cfg := pb.config
	pb.current = &Page{Number: len(pb.pages) + 1}
	pb.used = 0
	pb.current.Items = append(pb.current.Items,
		Item{Kind: ItemHeader, Y: cfg.TopMarginMM, Height: cfg.HeaderHeightMM - headerRuleOffsetMM},
		Item{Kind: ItemRule, Y: cfg.BodyTop() - headerRuleOffsetMM},
	)
}

func (pb *pageBuilder) closePage() {
	if pb.current == nil {
		return
	}
	pb.pages = append(pb.pages, *pb.current)
	pb.current = nil
}

func (pb *pageBuilder) entryCount() int {
	if pb.current == nil {
		return 0
	}
	return len(pb.current.Entries())
}

// place appends an entry at the current cursor, preceded by a rule in the
// separator gap when it is not the first entry of the page.
func (pb *pageBuilder) place(it Item) {
	cfg := pb.config
	if pb.entryCount() > 0 {
		pb.current.Items = append(pb.current.Items, Item{
			Kind: ItemRule,
			Y:    cfg.BodyTop() + pb.used - cfg.SeparatorMM/2,
		})
	}
	it.Kind = ItemEntry
	it.Y = cfg.BodyTop() + pb.used
	it.Oversized = it.Height > cfg.Available()
	pb.current.Items = append(pb.current.Items, it)
	pb.used += it.Height + cfg.SeparatorMM
}

// buildMeasured places entries while they fit and breaks the page on the
// first entry that would overflow. An entry is never split; one taller than
// the body is placed alone at the top of a fresh page.
func (pb *pageBuilder) buildMeasured(entries photolog.EntryList, m Measurer) {
	cfg := pb.config
	pb.openPage()
	for _, e := range entries {
		it := measureEntry(e, m, cfg)
		if pb.entryCount() > 0 && pb.used+it.Height > cfg.Available() {
			pb.closePage()
			pb.openPage()
		}
		pb.place(it)
	}
	pb.closePage()
}

// measureEntry returns an entry item sized to max(text, scaled image).
func measureEntry(e photolog.PhotoEntry, m Measurer, cfg Config) Item {
	it := Item{Entry: e}
	it.TextHeight = m.TextHeight(e, cfg.TextColumnWidth())
	if w, h, ok := m.ImageSize(e); ok && w > 0 && h > 0 {
		it.ImageHeight = float64(h) * (cfg.ImageColumnWidth() / float64(w))
	}
	it.Height = max(it.TextHeight, it.ImageHeight)
	return it
}

// buildGrouped chunks entries into pages of GroupSize equal slots without
// measuring them.
func (pb *pageBuilder) buildGrouped(entries photolog.EntryList, m Measurer) {
	cfg := pb.config
	g := cfg.GroupSize
	slot := cfg.SlotHeight()

	for start := 0; start < len(entries); start += g {
		end := min(start+g, len(entries))
		pb.openPage()
		for _, e := range entries[start:end] {
			it := Item{Entry: e, Height: slot}
			if m != nil {
				it.TextHeight = m.TextHeight(e, cfg.TextColumnWidth())
				if w, h, ok := m.ImageSize(e); ok && w > 0 && h > 0 {
					it.ImageHeight = min(slot, float64(h)*(cfg.ImageColumnWidth()/float64(w)))
				}
			}
			pb.place(it)
		}
		pb.closePage()
	}
}
