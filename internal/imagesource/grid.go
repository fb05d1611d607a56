// Package imagesource decodes raster images into RGB pixel grids.
package imagesource

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// PixelGrid is a width x height grid of 8-bit RGB samples.
//
// Imagine width is three, height is two and pixel data is:
//
//	a b c
//	d e f
//
// This is stored as a b c d e f, three bytes per pixel, so pixel (x, y)
// starts at 3*(x + y*width).
type PixelGrid struct {
	width  int
	height int
	pix    []uint8
}

// NewPixelGrid copies pix, which must hold exactly 3*width*height bytes of
// row-major RGB data.
func NewPixelGrid(width, height int, pix []uint8) (*PixelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid grid size %dx%d", width, height)
	}
	if len(pix) != 3*width*height {
		return nil, errors.Errorf("grid %dx%d needs %d bytes, got %d", width, height, 3*width*height, len(pix))
	}
	buf := make([]uint8, len(pix))
	copy(buf, pix)
	return &PixelGrid{width: width, height: height, pix: buf}, nil
}

func (g *PixelGrid) Width() int  { return g.width }
func (g *PixelGrid) Height() int { return g.height }

// RGB returns the channels of pixel (x, y).
func (g *PixelGrid) RGB(x, y int) (r, gr, b uint8) {
	i := 3 * (x + y*g.width)
	return g.pix[i], g.pix[i+1], g.pix[i+2]
}

// fromImage copies the colour channels of an 8-bit RGB(A) image, dropping
// alpha. NRGBA channels are taken as stored. RGBA channels are
// premultiplied (TIFF with associated alpha decodes this way), so
// translucent pixels are converted back to straight colour first.
func fromImage(img image.Image) (*PixelGrid, bool) {
	var (
		src           []uint8
		stride        int
		rect          image.Rectangle
		premultiplied bool
	)
	switch m := img.(type) {
	case *image.NRGBA:
		src, stride, rect = m.Pix, m.Stride, m.Rect
	case *image.RGBA:
		src, stride, rect = m.Pix, m.Stride, m.Rect
		premultiplied = true
	default:
		return nil, false
	}

	w, h := rect.Dx(), rect.Dy()
	g := &PixelGrid{width: w, height: h, pix: make([]uint8, 3*w*h)}
	for y := 0; y < h; y++ {
		row := src[y*stride:]
		dst := g.pix[3*y*w:]
		for x := 0; x < w; x++ {
			p := row[4*x : 4*x+4]
			r, gr, b := p[0], p[1], p[2]
			if premultiplied && p[3] != 0xff {
				c := color.NRGBAModel.Convert(color.RGBA{R: r, G: gr, B: b, A: p[3]}).(color.NRGBA)
				r, gr, b = c.R, c.G, c.B
			}
			dst[3*x] = r
			dst[3*x+1] = gr
			dst[3*x+2] = b
		}
	}
	return g, true
}
