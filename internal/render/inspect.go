package render

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pointsPerMM converts PDF user space units to millimetres.
const pointsPerMM = 72.0 / 25.4

// PageSize is the size of one page of an inspected PDF, in millimetres.
type PageSize struct {
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
}

// Inspection summarizes a produced PDF.
type Inspection struct {
	PageCount int        `json:"page_count"`
	Pages     []PageSize `json:"pages"`
}

// Inspect reads a PDF back and reports its page count and page sizes.
func Inspect(rs io.ReadSeeker) (*Inspection, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	count, err := api.PageCount(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind PDF: %w", err)
	}
	dims, err := api.PageDims(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read page sizes: %w", err)
	}

	ins := &Inspection{PageCount: count}
	for _, d := range dims {
		ins.Pages = append(ins.Pages, PageSize{
			WidthMM:  d.Width / pointsPerMM,
			HeightMM: d.Height / pointsPerMM,
		})
	}
	return ins, nil
}
