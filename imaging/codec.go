package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	// Registered decoders for the raster formats found inside workbooks.
	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	DefaultMaxDim  = 800
	DefaultQuality = 85
)

// Codec decodes raster bytes, flattens transparency, bounds dimensions and
// re-encodes compactly. It is stateless and safe for concurrent use.
type Codec struct {
	MaxDim  int // longest allowed edge; larger images are scaled down
	Quality int // JPEG encode quality, 1-100
}

func NewCodec(maxDim, quality int) *Codec {
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Codec{MaxDim: maxDim, Quality: quality}
}

// Decode parses raw raster bytes into an in-memory image.
func (c *Codec) Decode(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Flatten composites img onto a white background, producing an opaque image.
// Alpha-carrying modes (RGBA, NRGBA, palettes with transparency) all end up
// flat; already-opaque images pass through unchanged apart from the copy.
func (c *Codec) Flatten(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)
	return flat
}

// Downscale returns img scaled so neither dimension exceeds MaxDim, keeping
// the aspect ratio. Images already within bounds are returned as-is; this
// never upscales.
func (c *Codec) Downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= c.MaxDim && h <= c.MaxDim {
		return img
	}

	scale := float64(c.MaxDim) / float64(w)
	if hs := float64(c.MaxDim) / float64(h); hs < scale {
		scale = hs
	}

	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// EncodeJPEG re-encodes img with the configured quality.
func (c *Codec) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Process runs the full decode → flatten → downscale → encode chain.
func (c *Codec) Process(raw []byte) ([]byte, error) {
	img, err := c.Decode(raw)
	if err != nil {
		return nil, err
	}
	return c.EncodeJPEG(c.Downscale(c.Flatten(img)))
}
