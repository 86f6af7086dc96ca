package layout

import (
	"testing"

	"github.com/kozaktomas/photolog/internal/photolog"
)

func TestValidateLayout_Clean(t *testing.T) {
	list := entries(4)
	pl, err := Paginate(photolog.HeaderRecord{}, list, uniform(list, 80), DefaultConfig())
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if w := ValidateLayout(pl); len(w) != 0 {
		t.Errorf("expected no warnings, got %v", w)
	}
}

func TestValidateLayout_Oversized(t *testing.T) {
	list := entries(1)
	pl, err := Paginate(photolog.HeaderRecord{}, list, uniform(list, 500), DefaultConfig())
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	warnings := ValidateLayout(pl)
	if len(warnings) != 1 || warnings[0].EntryID != 1 || warnings[0].Severity != "warning" {
		t.Errorf("expected one oversized warning for entry 1, got %v", warnings)
	}
}

func TestValidateLayout_Overlap(t *testing.T) {
	cfg := DefaultConfig()
	pl := &PageLayout{
		Config: cfg,
		Pages: []Page{{
			Number: 1,
			Total:  1,
			Items: []Item{
				{Kind: ItemEntry, Entry: photolog.PhotoEntry{ID: 1}, Y: cfg.BodyTop(), Height: 60},
				{Kind: ItemEntry, Entry: photolog.PhotoEntry{ID: 2}, Y: cfg.BodyTop() + 40, Height: 60},
			},
		}},
	}
	found := false
	for _, w := range ValidateLayout(pl) {
		if w.EntryID == 1 && w.Severity == "error" {
			found = true
		}
	}
	if !found {
		t.Error("expected overlap error, got none")
	}
}

func TestValidateLayout_FooterIntrusion(t *testing.T) {
	cfg := DefaultConfig()
	pl := &PageLayout{
		Config: cfg,
		Pages: []Page{{
			Number: 1,
			Total:  1,
			Items: []Item{
				{Kind: ItemEntry, Entry: photolog.PhotoEntry{ID: 7}, Y: cfg.BodyBottom() - 10, Height: 30},
			},
		}},
	}
	warnings := ValidateLayout(pl)
	if len(warnings) != 1 || warnings[0].Severity != "error" {
		t.Errorf("expected footer intrusion error, got %v", warnings)
	}
}

func TestValidateLayout_Numbering(t *testing.T) {
	pl := &PageLayout{
		Config: DefaultConfig(),
		Pages:  []Page{{Number: 1, Total: 2}, {Number: 3, Total: 2}},
	}
	warnings := ValidateLayout(pl)
	if len(warnings) != 1 || warnings[0].PageNumber != 3 {
		t.Errorf("expected one numbering error on page 3, got %v", warnings)
	}
}

func TestValidateLayout_GroupedTextOverflowsSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategyGrouped
	cfg.GroupSize = 3

	list := entries(3)
	heights := uniform(list, 30)
	heights.heights[2] = 90 // taller than the 65mm slot

	pl, err := Paginate(photolog.HeaderRecord{}, list, heights, cfg)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	warnings := ValidateLayout(pl)
	if len(warnings) != 1 || warnings[0].EntryID != 2 || warnings[0].Severity != "warning" {
		t.Errorf("expected one clipped-text warning for entry 2, got %v", warnings)
	}
}

func TestValidateLayout_ImageTallerThanSlot(t *testing.T) {
	cfg := DefaultConfig()
	pl := &PageLayout{
		Config: cfg,
		Pages: []Page{{
			Number: 1,
			Total:  1,
			Items: []Item{
				{Kind: ItemEntry, Entry: photolog.PhotoEntry{ID: 4}, Y: cfg.BodyTop(), Height: 40, ImageHeight: 55},
			},
		}},
	}
	warnings := ValidateLayout(pl)
	if len(warnings) != 1 || warnings[0].EntryID != 4 || warnings[0].Severity != "warning" {
		t.Errorf("expected one image warning for entry 4, got %v", warnings)
	}
}
