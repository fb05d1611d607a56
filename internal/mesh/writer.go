package mesh

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strconv"

	"github.com/hschendel/stl"
	"github.com/pkg/errors"
)

// DefaultSolidName names the solid in the ASCII header and trailer.
const DefaultSolidName = "PngToStl"

// ASCIIWriter streams triangles in ASCII STL syntax. Write errors are
// sticky and reported again by Close.
type ASCIIWriter struct {
	w    *bufio.Writer
	name string
	buf  []byte
}

// NewASCIIWriter writes the solid header to w and returns a sink for the
// facets.
func NewASCIIWriter(w io.Writer, name string) *ASCIIWriter {
	a := &ASCIIWriter{w: bufio.NewWriter(w), name: name, buf: make([]byte, 0, 256)}
	a.w.WriteString("solid " + name + "\n")
	return a
}

func appendVertex(buf []byte, v stl.Vec3) []byte {
	buf = append(buf, "\t\tvertex"...)
	for _, c := range v {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, float64(c), 'f', -1, 32)
	}
	return append(buf, '\n')
}

func (a *ASCIIWriter) WriteTriangle(t stl.Triangle) error {
	b := append(a.buf[:0], "facet normal 0 0 0\n\touter loop\n"...)
	for _, v := range t.Vertices {
		b = appendVertex(b, v)
	}
	b = append(b, "\tendloop\nendfacet\n"...)
	a.buf = b
	_, err := a.w.Write(b)
	return err
}

// Close writes the endsolid trailer and flushes.
func (a *ASCIIWriter) Close() error {
	if _, err := a.w.WriteString("endsolid " + a.name + "\n"); err != nil {
		return err
	}
	return a.w.Flush()
}

const (
	binaryHeaderSize   = 80
	binaryTriangleSize = 50
)

// BinaryTriangleCount checks that n triangles fit the 32-bit count field of
// a binary STL.
func BinaryTriangleCount(n int) (uint32, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, errors.Errorf("binary stl: %d triangles do not fit the 32-bit count", n)
	}
	return uint32(n), nil
}

// BinaryWriter streams triangles in binary STL. The binary format stores
// the triangle count before the triangles, so it must be known up front.
type BinaryWriter struct {
	w       *bufio.Writer
	want    uint32
	written uint32
	rec     [binaryTriangleSize]byte
}

// NewBinaryWriter writes the 80 byte header, padded with zeros, and the
// triangle count.
func NewBinaryWriter(w io.Writer, header string, count uint32) *BinaryWriter {
	b := &BinaryWriter{w: bufio.NewWriter(w), want: count}
	var head [binaryHeaderSize + 4]byte
	copy(head[:binaryHeaderSize], header)
	binary.LittleEndian.PutUint32(head[binaryHeaderSize:], count)
	b.w.Write(head[:])
	return b
}

func (b *BinaryWriter) WriteTriangle(t stl.Triangle) error {
	if b.written == b.want {
		return errors.Errorf("binary stl: more than the %d declared triangles", b.want)
	}
	put := func(off int, v stl.Vec3) {
		for i, c := range v {
			binary.LittleEndian.PutUint32(b.rec[off+4*i:], math.Float32bits(c))
		}
	}
	put(0, t.Normal)
	for i, v := range t.Vertices {
		put(12+12*i, v)
	}
	binary.LittleEndian.PutUint16(b.rec[48:], t.Attributes)
	if _, err := b.w.Write(b.rec[:]); err != nil {
		return err
	}
	b.written++
	return nil
}

// Close flushes, and fails if fewer triangles than declared were written.
func (b *BinaryWriter) Close() error {
	if err := b.w.Flush(); err != nil {
		return err
	}
	if b.written != b.want {
		return errors.Errorf("binary stl: wrote %d of %d declared triangles", b.written, b.want)
	}
	return nil
}

// SolidSink collects triangles into an in-memory stl.Solid.
type SolidSink struct {
	Solid *stl.Solid
}

func NewSolidSink(name string) *SolidSink {
	return &SolidSink{Solid: &stl.Solid{Name: name, IsAscii: true}}
}

func (s *SolidSink) WriteTriangle(t stl.Triangle) error {
	s.Solid.AppendTriangle(t)
	return nil
}

func (s *SolidSink) Close() error { return nil }

// CountingSink counts the triangles passed through to Sink.
type CountingSink struct {
	Sink  TriangleSink
	Count int
}

func (c *CountingSink) WriteTriangle(t stl.Triangle) error {
	if err := c.Sink.WriteTriangle(t); err != nil {
		return err
	}
	c.Count++
	return nil
}

func (c *CountingSink) Close() error { return c.Sink.Close() }
