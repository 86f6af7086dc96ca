// Package imaging normalizes uploaded photos to the fixed 4:3 frame used by
// the log layout.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedType is returned for input that is not a decodable image.
var ErrUnsupportedType = errors.New("unsupported file type")

// TargetAspect is the output aspect ratio (4:3).
const TargetAspect = 4.0 / 3.0

// Policy selects how non-4:3 images are brought to the target frame.
type Policy string

const (
	// PolicyCrop centre-crops landscape and square images to 4:3 and passes
	// portrait images through unchanged.
	PolicyCrop Policy = "crop"
	// PolicyFit scales every image into the 4:3 canvas and fills the rest
	// with white.
	PolicyFit Policy = "fit"
)

// ParsePolicy parses "crop" or "fit".
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyCrop, PolicyFit:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("invalid image policy %q: must be crop or fit", s)
	}
}

// Mode records what Normalize did to an image.
type Mode string

const (
	ModeCropped     Mode = "cropped"
	ModeFitted      Mode = "fitted"
	ModePassThrough Mode = "passthrough"
)

// Options configures Normalize.
type Options struct {
	Policy  Policy
	Width   int // output canvas width in px; the height follows at 4:3
	Quality int // JPEG quality 1-100
}

// DefaultOptions returns the crop policy on a 1200x900 canvas at quality 85.
func DefaultOptions() Options {
	return Options{
		Policy:  PolicyCrop,
		Width:   1200,
		Quality: 85,
	}
}

// CanvasSize returns the output canvas size in px, always 4:3.
func (o Options) CanvasSize() (w, h int) {
	o = o.withDefaults()
	return o.Width, o.Width * 3 / 4
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Policy == "" {
		o.Policy = d.Policy
	}
	// Multiples of 4 keep the derived height exact.
	o.Width -= o.Width % 4
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = d.Quality
	}
	return o
}

// Result is a normalized image.
type Result struct {
	Data         []byte
	MIME         string
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
	Mode         Mode
}

// CropRect returns the centred 4:3 source rectangle of a w x h image.
// Images wider than 4:3 lose their sides, the rest lose top and bottom.
func CropRect(w, h int) image.Rectangle {
	source := float64(w) / float64(h)
	if source > TargetAspect {
		cw := float64(h) * 4 / 3
		sx := (float64(w) - cw) / 2
		x0 := int(math.Round(sx))
		return image.Rect(x0, 0, x0+int(math.Round(cw)), h)
	}
	ch := float64(w) * 3 / 4
	sy := (float64(h) - ch) / 2
	y0 := int(math.Round(sy))
	return image.Rect(0, y0, w, y0+int(math.Round(ch)))
}

// FitRect returns the centred rectangle of a w x h image scaled to fit inside
// a cw x ch canvas without cropping.
func FitRect(w, h, cw, ch int) image.Rectangle {
	scale := math.Min(float64(cw)/float64(w), float64(ch)/float64(h))
	dw := int(math.Round(float64(w) * scale))
	dh := int(math.Round(float64(h) * scale))
	x0 := (cw - dw) / 2
	y0 := (ch - dh) / 2
	return image.Rect(x0, y0, x0+dw, y0+dh)
}

// Transform returns the normalized form of img. Portrait images under the
// crop policy are returned as-is. The input is never modified.
func Transform(img image.Image, opts Options) (image.Image, Mode) {
	opts = opts.withDefaults()
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cw, ch := opts.CanvasSize()

	switch {
	case opts.Policy == PolicyFit:
		canvas := image.NewRGBA(image.Rect(0, 0, cw, ch))
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		dst := FitRect(w, h, cw, ch)
		draw.CatmullRom.Scale(canvas, dst, img, b, draw.Over, nil)
		return canvas, ModeFitted
	case h > w:
		return img, ModePassThrough
	default:
		canvas := image.NewRGBA(image.Rect(0, 0, cw, ch))
		src := CropRect(w, h).Add(b.Min)
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, src, draw.Src, nil)
		return canvas, ModeCropped
	}
}

// Normalize decodes data, brings it to the 4:3 frame and re-encodes it as
// JPEG. Portrait JPEG and PNG input under the crop policy is returned
// byte-for-byte; other portrait formats are re-encoded at native size.
func Normalize(data []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedType
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	out, mode := Transform(img, opts)
	res := &Result{
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
		Width:        out.Bounds().Dx(),
		Height:       out.Bounds().Dy(),
		Mode:         mode,
	}

	if mode == ModePassThrough && (format == "jpeg" || format == "png") {
		res.Data = append([]byte(nil), data...)
		res.MIME = "image/" + format
		return res, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	res.Data = buf.Bytes()
	res.MIME = "image/jpeg"
	return res, nil
}

// Dimensions returns the pixel size of encoded image data without decoding
// the pixels.
func Dimensions(data []byte) (w, h int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return 0, 0, ErrUnsupportedType
		}
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
