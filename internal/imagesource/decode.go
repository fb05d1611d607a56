package imagesource

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// PNG colour types allowed by the IHDR check.
const (
	pngColorRGB  = 2
	pngColorRGBA = 6
)

type format struct {
	name   string
	magic  []string
	check  func(head []byte) *DecodeError
	decode func(io.Reader) (image.Image, error)
}

var formats = []format{
	{name: "png", magic: []string{pngSignature}, check: checkPNGHeader, decode: png.Decode},
	{name: "tiff", magic: []string{"II*\x00", "MM\x00*"}, decode: tiff.Decode},
	{name: "bmp", magic: []string{"BM"}, decode: bmp.Decode},
}

// headerLen covers the PNG signature plus the IHDR chunk up to the colour type.
const headerLen = 26

// Open reads and decodes the image at path.
func Open(path string) (*PixelGrid, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &FileOpenError{Path: path, Err: err}
	}
	defer f.Close()
	return Decode(f)
}

// Decode sniffs the format from the leading bytes of r and decodes it into
// a PixelGrid. It also returns the detected format name. Only 8-bit RGB and
// RGBA images are accepted; alpha is discarded.
func Decode(r io.Reader) (*PixelGrid, string, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(headerLen)
	if err != nil && err != io.EOF {
		return nil, "", &DecodeError{Kind: Corrupt, Err: err}
	}

	f, ok := sniff(head)
	if !ok {
		return nil, "", &DecodeError{Kind: Signature}
	}
	if f.check != nil {
		if derr := f.check(head); derr != nil {
			return nil, f.name, derr
		}
	}

	img, err := f.decode(br)
	if err != nil {
		return nil, f.name, &DecodeError{Kind: Corrupt, Format: f.name, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, f.name, &DecodeError{Kind: Corrupt, Format: f.name, Detail: "empty image"}
	}

	grid, ok := fromImage(img)
	if !ok {
		return nil, f.name, &DecodeError{
			Kind:   ColorModel,
			Format: f.name,
			Detail: fmt.Sprintf("%T", img),
		}
	}
	return grid, f.name, nil
}

func sniff(head []byte) (format, bool) {
	for _, f := range formats {
		for _, m := range f.magic {
			if bytes.HasPrefix(head, []byte(m)) {
				return f, true
			}
		}
	}
	return format{}, false
}

// checkPNGHeader rejects PNGs that image/png would otherwise widen into an
// RGBA buffer, such as grey+alpha or 16-bit images.
func checkPNGHeader(head []byte) *DecodeError {
	if len(head) < headerLen || string(head[12:16]) != "IHDR" {
		return &DecodeError{Kind: Corrupt, Format: "png", Detail: "missing IHDR"}
	}
	if binary.BigEndian.Uint32(head[8:12]) != 13 {
		return &DecodeError{Kind: Corrupt, Format: "png", Detail: "bad IHDR length"}
	}
	depth, colorType := head[24], head[25]
	if colorType != pngColorRGB && colorType != pngColorRGBA {
		return &DecodeError{Kind: ColorModel, Format: "png", Detail: fmt.Sprintf("color type %d", colorType)}
	}
	if depth != 8 {
		return &DecodeError{Kind: ColorModel, Format: "png", Detail: fmt.Sprintf("bit depth %d", depth)}
	}
	return nil
}
