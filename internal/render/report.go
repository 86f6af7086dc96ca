package render

import "fmt"

// LowResDPIThreshold is the effective resolution below which a placed
// photo is flagged as low-res.
const LowResDPIThreshold = 200.0

// Report contains metadata about a PDF export for quality analysis.
type Report struct {
	Title      string       `json:"title"`
	PageCount  int          `json:"page_count"`
	PhotoCount int          `json:"photo_count"`
	Pages      []ReportPage `json:"pages"`
	Warnings   []string     `json:"warnings"`
}

// ReportPage describes a single page in the export report.
type ReportPage struct {
	PageNumber int           `json:"page_number"`
	Photos     []ReportPhoto `json:"photos,omitempty"`
}

// ReportPhoto describes a single entry placement in the export report.
type ReportPhoto struct {
	EntryID      int64   `json:"entry_id"`
	PhotoNumber  string  `json:"photo_number"`
	WidthMM      float64 `json:"width_mm,omitempty"`
	HeightMM     float64 `json:"height_mm,omitempty"`
	EffectiveDPI float64 `json:"effective_dpi"`
	LowRes       bool    `json:"low_res"`
}

// addDPIWarnings scans report pages and adds warnings for low-res photos.
func addDPIWarnings(report *Report) {
	for _, rp := range report.Pages {
		for _, photo := range rp.Photos {
			if photo.LowRes {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("Page %d, photo %s: effective DPI %.0f is below %d",
						rp.PageNumber, photo.PhotoNumber, photo.EffectiveDPI, int(LowResDPIThreshold)))
			}
		}
	}
}
