// Package render draws a computed page layout into a PDF document.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/layout"
	"github.com/kozaktomas/photolog/internal/photolog"
)

// PageError reports the page on which emission failed.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("failed to render page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// placeholderText is drawn in the body of a log without entries.
const placeholderText = "No photos have been added to this log."

// Emit draws every page of pl and returns the encoded PDF together with an
// export report. Pages are drawn strictly in order; the first failing page
// aborts the export.
func Emit(ctx context.Context, pl *layout.PageLayout, st Style) ([]byte, *Report, error) {
	cfg := pl.Config
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: cfg.Page.WidthMM, Ht: cfg.Page.HeightMM},
	})
	pdf.SetMargins(cfg.LeftMarginMM, cfg.TopMarginMM, cfg.RightMarginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(pl.Header.ProjectName, true)
	pdf.SetSubject(st.Title, true)
	pdf.SetCreator("photolog", true)

	em := &emitter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		style:  st,
		config: cfg,
		header: pl.Header,
		images: make(map[int64]registeredImage),
	}

	report := &Report{
		Title:     pl.Header.ProjectName,
		PageCount: len(pl.Pages),
		Warnings:  []string{},
	}
	for _, page := range pl.Pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rp, err := em.drawPage(page)
		if err != nil {
			return nil, nil, &PageError{Page: page.Number, Err: err}
		}
		report.PhotoCount += len(rp.Photos)
		report.Pages = append(report.Pages, rp)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	addDPIWarnings(report)
	return buf.Bytes(), report, nil
}

type registeredImage struct {
	name    string
	options fpdf.ImageOptions
	width   int
	height  int
}

type emitter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	style  Style
	config layout.Config
	header photolog.HeaderRecord
	images map[int64]registeredImage
}

func (em *emitter) drawPage(page layout.Page) (ReportPage, error) {
	rp := ReportPage{PageNumber: page.Number}
	em.pdf.AddPage()

	for _, it := range page.Items {
		switch it.Kind {
		case layout.ItemHeader:
			em.drawHeader(it.Y)
		case layout.ItemRule:
			em.drawRule(it.Y)
		case layout.ItemPlaceholder:
			em.drawPlaceholder(it.Y)
		case layout.ItemEntry:
			photo, err := em.drawEntry(it)
			if err != nil {
				return rp, fmt.Errorf("photo %s: %w", it.Entry.PhotoNumber(), err)
			}
			rp.Photos = append(rp.Photos, photo)
		}
		if err := em.pdf.Error(); err != nil {
			return rp, err
		}
	}
	em.drawFooter(page)
	return rp, em.pdf.Error()
}

func (em *emitter) setColor(c Color) {
	em.pdf.SetTextColor(c.R, c.G, c.B)
}

func (em *emitter) drawHeader(y float64) {
	pdf, st, cfg := em.pdf, em.style, em.config
	left := cfg.LeftMarginMM
	width := cfg.ContentWidth()

	pdf.SetFont(st.FontFamily, "B", st.TitleSizePt)
	em.setColor(st.Brand)
	pdf.SetXY(left, y)
	pdf.CellFormat(width, 8, em.tr(st.Title), "", 0, "L", false, 0, "")

	colW := width / 2
	rows := [][2]struct{ label, value string }{
		{{"Proponent:", em.header.Proponent}, {"Location:", em.header.Location}},
		{{"Project Name:", em.header.ProjectName}, {"Date:", em.header.Date}},
		{{"Project Number:", em.header.ProjectNumber}, {}},
	}
	rowY := y + 11
	for _, row := range rows {
		for col, f := range row {
			if f.label == "" {
				continue
			}
			x := left + float64(col)*colW
			em.drawLabelValue(x, rowY, st.HeaderLabelMM, colW-st.HeaderLabelMM, f.label, f.value)
		}
		rowY += st.LineHeightMM + 1
	}
}

// drawLabelValue draws a bold label and a single-line value truncated to
// valueW.
func (em *emitter) drawLabelValue(x, y, labelW, valueW float64, label, value string) {
	pdf, st := em.pdf, em.style
	pdf.SetFont(st.FontFamily, "B", st.BodySizePt)
	em.setColor(st.Text)
	pdf.SetXY(x, y)
	pdf.CellFormat(labelW, st.LineHeightMM, em.tr(label), "", 0, "L", false, 0, "")

	pdf.SetFont(st.FontFamily, "", st.BodySizePt)
	pdf.SetXY(x+labelW, y)
	pdf.CellFormat(valueW, st.LineHeightMM, em.fit(em.tr(value), valueW), "", 0, "L", false, 0, "")
}

// fit shortens s with an ellipsis until it fits into w in the current font.
func (em *emitter) fit(s string, w float64) string {
	limit := w - 2*em.pdf.GetCellMargin()
	if em.pdf.GetStringWidth(s) <= limit {
		return s
	}
	ellipsis := "..."
	for len(s) > 0 && em.pdf.GetStringWidth(s+ellipsis) > limit {
		s = s[:len(s)-1]
	}
	return s + ellipsis
}

func (em *emitter) drawRule(y float64) {
	pdf, st, cfg := em.pdf, em.style, em.config
	pdf.SetDrawColor(st.Brand.R, st.Brand.G, st.Brand.B)
	pdf.SetLineWidth(st.RuleWidthMM)
	pdf.Line(cfg.LeftMarginMM, y, cfg.Page.WidthMM-cfg.RightMarginMM, y)
}

func (em *emitter) drawPlaceholder(y float64) {
	pdf, st, cfg := em.pdf, em.style, em.config
	pdf.SetFont(st.FontFamily, "I", st.BodySizePt)
	em.setColor(st.Text)
	pdf.SetXY(cfg.LeftMarginMM, y)
	pdf.CellFormat(cfg.ContentWidth(), layout.PlaceholderHeightMM, em.tr(placeholderText), "", 0, "C", false, 0, "")
}

func (em *emitter) drawFooter(page layout.Page) {
	pdf, st, cfg := em.pdf, em.style, em.config
	pdf.SetFont(st.FontFamily, "", st.BodySizePt-1)
	em.setColor(st.Text)
	pdf.SetXY(cfg.LeftMarginMM, cfg.BodyBottom())
	folio := fmt.Sprintf("Page %d of %d", page.Number, page.Total)
	pdf.CellFormat(cfg.ContentWidth(), cfg.FooterHeightMM, folio, "", 0, "CB", false, 0, "")
}

func (em *emitter) drawEntry(it layout.Item) (ReportPhoto, error) {
	pdf, st, cfg := em.pdf, em.style, em.config
	e := it.Entry
	photo := ReportPhoto{EntryID: e.ID, PhotoNumber: e.PhotoNumber()}

	left := cfg.LeftMarginMM
	width := cfg.TextColumnWidth()
	y := it.Y
	for _, l := range entryLines(pdf, em.tr, e, width, st) {
		em.setColor(st.Text)
		if l.label != "" {
			pdf.SetFont(st.FontFamily, "B", st.BodySizePt)
			pdf.SetXY(left, y)
			pdf.CellFormat(st.LabelWidthMM, st.LineHeightMM, em.tr(l.label), "", 0, "L", false, 0, "")
		}
		if l.text != "" {
			pdf.SetFont(st.FontFamily, "", st.BodySizePt)
			pdf.SetXY(left+l.indent, y)
			pdf.CellFormat(width-l.indent, st.LineHeightMM, l.text, "", 0, "L", false, 0, "")
		}
		y += st.LineHeightMM
	}

	if !e.HasImage() {
		return photo, nil
	}
	img, err := em.register(e)
	if err != nil {
		return photo, err
	}

	// Scale to the column width, then clamp to the slot and the body.
	colW := cfg.ImageColumnWidth()
	drawW := colW
	drawH := float64(img.height) * colW / float64(img.width)
	maxH := math.Min(it.Height, cfg.BodyBottom()-it.Y)
	if drawH > maxH && maxH > 0 {
		drawH = maxH
		drawW = float64(img.width) * maxH / float64(img.height)
	}
	x := cfg.ImageColumnX() + colW - drawW
	pdf.ImageOptions(img.name, x, it.Y, drawW, drawH, false, img.options, 0, "")

	photo.WidthMM = math.Round(drawW*10) / 10
	photo.HeightMM = math.Round(drawH*10) / 10
	photo.EffectiveDPI = effectiveDPI(img.width, drawW)
	photo.LowRes = photo.EffectiveDPI > 0 && photo.EffectiveDPI < LowResDPIThreshold
	return photo, nil
}

// register embeds the entry image once and returns its handle.
func (em *emitter) register(e photolog.PhotoEntry) (registeredImage, error) {
	if img, ok := em.images[e.ID]; ok {
		return img, nil
	}
	mime, data, err := imaging.DecodeDataURL(e.ImageURL)
	if err != nil {
		return registeredImage{}, err
	}
	imageType, data, err := embeddable(mime, data)
	if err != nil {
		return registeredImage{}, err
	}
	w, h, err := imaging.Dimensions(data)
	if err != nil {
		return registeredImage{}, err
	}

	img := registeredImage{
		name:    fmt.Sprintf("photo-%d", e.ID),
		options: fpdf.ImageOptions{ImageType: imageType, ReadDpi: false},
		width:   w,
		height:  h,
	}
	if info := em.pdf.RegisterImageOptionsReader(img.name, img.options, bytes.NewReader(data)); info == nil {
		if err := em.pdf.Error(); err != nil {
			return registeredImage{}, err
		}
		return registeredImage{}, fmt.Errorf("failed to register image")
	}
	em.images[e.ID] = img
	return img, nil
}

// embeddable returns the fpdf image type for data, re-encoding formats the
// PDF writer cannot embed as JPEG.
func embeddable(mime string, data []byte) (string, []byte, error) {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "JPG", data, nil
	case "image/png":
		return "PNG", data, nil
	case "image/gif":
		return "GIF", data, nil
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", imaging.ErrUnsupportedType, mime)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 90}); err != nil {
		return "", nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return "JPG", buf.Bytes(), nil
}

// effectiveDPI returns the print resolution of widthPx pixels drawn over
// widthMM millimetres.
func effectiveDPI(widthPx int, widthMM float64) float64 {
	if widthMM <= 0 {
		return 0
	}
	dpi := float64(widthPx) / widthMM * 25.4
	return math.Round(dpi*10) / 10
}
