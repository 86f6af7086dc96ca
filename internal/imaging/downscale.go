package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// previewQuality is the JPEG quality of Downscale output.
const previewQuality = 85

// Downscale re-encodes data as JPEG with its longest edge at most maxEdge
// pixels. Smaller images keep their size.
func Downscale(data []byte, maxEdge int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedType
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	var out image.Image = img
	if w, h := b.Dx(), b.Dy(); maxEdge > 0 && max(w, h) > maxEdge {
		dw, dh := maxEdge, maxEdge
		if w > h {
			dh = h * maxEdge / w
		} else {
			dw = w * maxEdge / h
		}
		scaled := image.NewRGBA(image.Rect(0, 0, max(dw, 1), max(dh, 1)))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: previewQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
