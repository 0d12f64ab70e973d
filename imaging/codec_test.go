package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePNG renders a w×h image filled with c.
func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFlattenProducesOpaqueImage(t *testing.T) {
	codec := NewCodec(0, 0)

	raw := encodePNG(t, 8, 8, color.NRGBA{R: 200, G: 10, B: 10, A: 128})
	img, err := codec.Decode(raw)
	require.NoError(t, err)

	flat := codec.Flatten(img)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			_, _, _, a := flat.At(x, y).RGBA()
			assert.Equal(t, uint32(0xffff), a, "pixel (%d,%d) should be opaque", x, y)
		}
	}
}

func TestDownscaleKeepsAspectRatio(t *testing.T) {
	codec := NewCodec(100, DefaultQuality)

	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	scaled := codec.Downscale(img)

	bounds := scaled.Bounds()
	assert.Equal(t, 100, bounds.Dx())
	assert.Equal(t, 50, bounds.Dy())
}

func TestDownscaleNeverUpscales(t *testing.T) {
	codec := NewCodec(800, DefaultQuality)

	img := image.NewRGBA(image.Rect(0, 0, 50, 30))
	scaled := codec.Downscale(img)

	assert.Equal(t, 50, scaled.Bounds().Dx())
	assert.Equal(t, 30, scaled.Bounds().Dy())
}

func TestProcessEmitsBoundedJPEG(t *testing.T) {
	codec := NewCodec(100, DefaultQuality)

	raw := encodePNG(t, 300, 120, color.NRGBA{R: 40, G: 80, B: 160, A: 255})
	out, err := codec.Process(raw)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, cfg.Width, 100)
	assert.LessOrEqual(t, cfg.Height, 100)
}

func TestProcessRejectsGarbage(t *testing.T) {
	codec := NewCodec(0, 0)

	_, err := codec.Process([]byte("definitely not an image"))
	assert.Error(t, err)
}
