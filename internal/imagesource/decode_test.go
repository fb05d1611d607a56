package imagesource

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func twoByTwo() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})
	img.Set(0, 1, color.NRGBA{R: 70, G: 80, B: 90, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

func requireKind(t *testing.T, err error, kind DecodeKind) {
	t.Helper()
	var derr *DecodeError
	require.True(t, errors.As(err, &derr), "expected *DecodeError, got %v", err)
	assert.Equal(t, kind, derr.Kind)
}

func TestDecodeRGB(t *testing.T) {
	grid, format, err := Decode(bytes.NewReader(encodePNG(t, twoByTwo())))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 2, grid.Width())
	assert.Equal(t, 2, grid.Height())

	r, g, b := grid.RGB(1, 0)
	assert.Equal(t, []uint8{40, 50, 60}, []uint8{r, g, b})
	r, g, b = grid.RGB(0, 1)
	assert.Equal(t, []uint8{70, 80, 90}, []uint8{r, g, b})
}

func TestDecodeRGBADropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 10})

	grid, _, err := Decode(bytes.NewReader(encodePNG(t, img)))
	require.NoError(t, err)

	// Channels come back as stored, not premultiplied by the low alpha.
	r, g, b := grid.RGB(0, 0)
	assert.Equal(t, []uint8{200, 100, 50}, []uint8{r, g, b})
}

func TestDecodeRejectsColorModels(t *testing.T) {
	rect := image.Rect(0, 0, 2, 2)
	pal := image.NewPaletted(rect, color.Palette{color.Black, color.White})
	deep := image.NewRGBA64(rect)
	deep.Set(0, 0, color.RGBA64{R: 1000, G: 2000, B: 3000, A: 0xffff})

	tests := []struct {
		name string
		img  image.Image
	}{
		{"palette", pal},
		{"gray", image.NewGray(rect)},
		{"gray16", image.NewGray16(rect)},
		{"rgb16", deep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, format, err := Decode(bytes.NewReader(encodePNG(t, tt.img)))
			assert.Nil(t, grid)
			assert.Equal(t, "png", format)
			requireKind(t, err, ColorModel)
		})
	}
}

func TestDecodeSignature(t *testing.T) {
	for _, in := range [][]byte{nil, []byte("GIF89a...."), []byte("\x89PNX\r\n\x1a\n")} {
		grid, _, err := Decode(bytes.NewReader(in))
		assert.Nil(t, grid)
		requireKind(t, err, Signature)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := encodePNG(t, twoByTwo())

	for _, n := range []int{len(pngSignature) + 4, len(data) / 2, len(data) - 13} {
		grid, _, err := Decode(bytes.NewReader(data[:n]))
		assert.Nil(t, grid, "truncated to %d bytes", n)
		requireKind(t, err, Corrupt)
	}
}

func TestDecodeTIFF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, twoByTwo(), nil))

	grid, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "tiff", format)
	r, g, b := grid.RGB(1, 1)
	assert.Equal(t, []uint8{255, 255, 255}, []uint8{r, g, b})

	buf.Reset()
	require.NoError(t, tiff.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)), nil))
	_, _, err = Decode(&buf)
	requireKind(t, err, ColorModel)
}

func TestDecodeTIFFAssociatedAlpha(t *testing.T) {
	px := color.NRGBA{R: 200, G: 100, B: 50, A: 128}
	straight := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	straight.Set(0, 0, px)
	// Setting through image.RGBA premultiplies, and the TIFF encoder then
	// writes associated alpha.
	assoc := image.NewRGBA(image.Rect(0, 0, 1, 1))
	assoc.Set(0, 0, px)

	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, assoc, nil))
	fromTIFF, _, err := Decode(&buf)
	require.NoError(t, err)
	fromPNG, _, err := Decode(bytes.NewReader(encodePNG(t, straight)))
	require.NoError(t, err)

	pr, pg, pb := fromPNG.RGB(0, 0)
	tr, tg, tb := fromTIFF.RGB(0, 0)
	assert.Equal(t, []uint8{200, 100, 50}, []uint8{pr, pg, pb})
	// Premultiplying to 8 bits loses a little precision, never the alpha
	// factor itself.
	assert.InDelta(t, pr, tr, 2)
	assert.InDelta(t, pg, tg, 2)
	assert.InDelta(t, pb, tb, 2)
}

func TestDecodeBMP(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(2, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))

	grid, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	r, g, b := grid.RGB(2, 0)
	assert.Equal(t, []uint8{1, 2, 3}, []uint8{r, g, b})
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, twoByTwo()), 0o644))

	grid, _, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, grid.Width())

	_, _, err = Open(filepath.Join(dir, "missing.png"))
	var ferr *FileOpenError
	require.True(t, errors.As(err, &ferr))
	assert.True(t, os.IsNotExist(ferr.Err))
}

func TestNewPixelGrid(t *testing.T) {
	pix := []uint8{1, 2, 3, 4, 5, 6}
	grid, err := NewPixelGrid(2, 1, pix)
	require.NoError(t, err)

	pix[0] = 99
	r, _, _ := grid.RGB(0, 0)
	assert.Equal(t, uint8(1), r, "grid must not alias the caller's slice")

	_, err = NewPixelGrid(2, 2, pix)
	assert.Error(t, err)
	_, err = NewPixelGrid(0, 1, nil)
	assert.Error(t, err)
}
