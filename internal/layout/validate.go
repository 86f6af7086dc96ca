package layout

import "fmt"

// ValidationWarning describes a layout issue found during validation.
type ValidationWarning struct {
	PageNumber int
	EntryID    int64 // 0 for page-level issues
	Message    string
	Severity   string // "error" or "warning"
}

// ValidateLayout checks all pages for layout integrity issues.
func ValidateLayout(pl *PageLayout) []ValidationWarning {
	var warnings []ValidationWarning
	for i, page := range pl.Pages {
		if page.Number != i+1 || page.Total != len(pl.Pages) {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				Message:    fmt.Sprintf("page numbered %d of %d at position %d of %d", page.Number, page.Total, i+1, len(pl.Pages)),
				Severity:   "error",
			})
		}
		warnings = append(warnings, validatePage(page, pl.Config)...)
	}
	return warnings
}

func validatePage(page Page, config Config) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.01

	var placed []Item
	for _, it := range page.Items {
		if it.Kind != ItemEntry {
			continue
		}
		placed = append(placed, it)

		if it.Oversized {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				EntryID:    it.Entry.ID,
				Message:    fmt.Sprintf("entry %s is %.1fmm tall, page body holds %.1fmm; content will be clipped", it.Entry.PhotoNumber(), it.Height, config.Available()),
				Severity:   "warning",
			})
			continue
		}
		if it.TextHeight > it.Height+eps {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				EntryID:    it.Entry.ID,
				Message:    fmt.Sprintf("entry %s text needs %.1fmm, slot holds %.1fmm; text will be clipped", it.Entry.PhotoNumber(), it.TextHeight, it.Height),
				Severity:   "warning",
			})
		}
		if it.ImageHeight > it.Height+eps {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				EntryID:    it.Entry.ID,
				Message:    fmt.Sprintf("entry %s image is %.1fmm tall, slot holds %.1fmm", it.Entry.PhotoNumber(), it.ImageHeight, it.Height),
				Severity:   "warning",
			})
		}
		if it.Y < config.BodyTop()-eps {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				EntryID:    it.Entry.ID,
				Message:    fmt.Sprintf("entry top (%.2f) extends above body top (%.2f)", it.Y, config.BodyTop()),
				Severity:   "error",
			})
		}
		if it.Bottom() > config.BodyBottom()+eps {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				EntryID:    it.Entry.ID,
				Message:    fmt.Sprintf("entry bottom (%.2f) extends into footer (%.2f)", it.Bottom(), config.BodyBottom()),
				Severity:   "error",
			})
		}
	}

	for i := 0; i < len(placed); i++ {
		for j := i + 1; j < len(placed); j++ {
			if spansOverlap(placed[i].Y, placed[i].Height, placed[j].Y, placed[j].Height, eps) {
				warnings = append(warnings, ValidationWarning{
					PageNumber: page.Number,
					EntryID:    placed[i].Entry.ID,
					Message:    fmt.Sprintf("entry %s overlaps with entry %s", placed[i].Entry.PhotoNumber(), placed[j].Entry.PhotoNumber()),
					Severity:   "error",
				})
			}
		}
	}
	return warnings
}

// spansOverlap checks if two vertical spans overlap with tolerance.
func spansOverlap(y1, h1, y2, h2, eps float64) bool {
	return y1+h1 > y2+eps && y2+h2 > y1+eps
}
