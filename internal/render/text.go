package render

import (
	"sync"

	"github.com/go-pdf/fpdf"

	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/photolog"
)

// textLine is one line of an entry's text block. Labels are set bold at the
// column's left edge; text starts at indent.
type textLine struct {
	label  string
	text   string
	indent float64
}

// entryLines wraps an entry's fields into lines for a column of the given
// width. pdf supplies the font metrics; tr maps UTF-8 to the core font
// encoding. The emitter and the measurer both use it so that measured and
// drawn heights agree.
func entryLines(pdf *fpdf.Fpdf, tr func(string) string, e photolog.PhotoEntry, width float64, st Style) []textLine {
	pdf.SetFont(st.FontFamily, "", st.BodySizePt)

	var lines []textLine
	fields := []struct{ label, value string }{
		{"Photo No.:", e.PhotoNumber()},
		{"Date:", e.Date},
		{"Location:", e.Location},
	}
	for _, f := range fields {
		wrapped := pdf.SplitLines([]byte(tr(f.value)), width-st.LabelWidthMM)
		if len(wrapped) == 0 {
			wrapped = [][]byte{nil}
		}
		for i, w := range wrapped {
			l := textLine{text: string(w), indent: st.LabelWidthMM}
			if i == 0 {
				l.label = f.label
			}
			lines = append(lines, l)
		}
	}

	lines = append(lines, textLine{label: "Description:"})
	for _, w := range pdf.SplitLines([]byte(tr(e.Description)), width) {
		lines = append(lines, textLine{text: string(w)})
	}
	return lines
}

// Measurer measures entries with the same font metrics the emitter draws
// with. It is safe for concurrent use.
type Measurer struct {
	mu    sync.Mutex
	pdf   *fpdf.Fpdf
	tr    func(string) string
	style Style
}

// NewMeasurer returns a Measurer for the given style.
func NewMeasurer(st Style) *Measurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &Measurer{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		style: st,
	}
}

// TextHeight returns the height of the entry's wrapped text block.
func (m *Measurer) TextHeight(e photolog.PhotoEntry, width float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(len(entryLines(m.pdf, m.tr, e, width, m.style))) * m.style.LineHeightMM
}

// ImageSize returns the pixel size of the entry's image.
func (m *Measurer) ImageSize(e photolog.PhotoEntry) (int, int, bool) {
	if !e.HasImage() {
		return 0, 0, false
	}
	_, data, err := imaging.DecodeDataURL(e.ImageURL)
	if err != nil {
		return 0, 0, false
	}
	w, h, err := imaging.Dimensions(data)
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}
