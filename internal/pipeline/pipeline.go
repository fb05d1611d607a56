// Package pipeline runs an image through height quantization and box
// emission.
package pipeline

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/antirez/pngtostl/internal/heightfield"
	"github.com/antirez/pngtostl/internal/imagesource"
	"github.com/antirez/pngtostl/internal/mesh"
)

// Options are the settings Convert needs.
type Options struct {
	HeightField heightfield.Config
	// PixelSize is the footprint of one pixel's column in millimetres.
	PixelSize float64
}

// SinkFactory opens the mesh output once the image is decoded. The grid is
// passed so writers that need the triangle count up front can compute it.
type SinkFactory func(grid *imagesource.PixelGrid) (mesh.TriangleSink, error)

// TriangleCount is the number of triangles Convert emits for grid.
func TriangleCount(grid *imagesource.PixelGrid) int {
	return mesh.TrianglesPerBox * grid.Width() * grid.Height()
}

// Validate checks opts before any input is read.
func (o Options) Validate() error {
	if err := o.HeightField.Validate(); err != nil {
		return err
	}
	if !(o.PixelSize > 0) {
		return errors.Errorf("pixel size must be positive, got %v", o.PixelSize)
	}
	return nil
}

// Convert computes the luminance maximum of grid, then emits one box per
// pixel in row-major order. sink is closed on every path.
func Convert(grid *imagesource.PixelGrid, opts Options, sink mesh.TriangleSink, log *zap.Logger) (err error) {
	counter := &mesh.CountingSink{Sink: sink}
	defer func() {
		if cerr := counter.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "finishing mesh")
		}
		if err == nil {
			log.Info("mesh written", zap.Int("triangles", counter.Count))
		}
	}()

	if err := opts.Validate(); err != nil {
		return err
	}

	field := heightfield.New(grid, opts.HeightField)
	log.Info("luminance pass done",
		zap.Int("width", field.Width()),
		zap.Int("height", field.Height()),
		zap.Float64("max", field.Max()))
	if field.Max() == 0 {
		log.Warn("image is entirely black, emitting a flat base")
	}
	if ce := log.Check(zap.DebugLevel, "level histogram"); ce != nil {
		ce.Write(zap.Ints("pixels", field.Histogram()))
	}

	size := float32(opts.PixelSize)
	for y := 0; y < field.Height(); y++ {
		for x := 0; x < field.Width(); x++ {
			h := float32(field.HeightAt(x, y))
			if err := mesh.EmitBox(counter, float32(x)*size, float32(y)*size, size, h); err != nil {
				return errors.Wrapf(err, "writing pixel (%d, %d)", x, y)
			}
		}
	}
	return nil
}

// ConvertFile decodes the image at path, then opens the output and converts.
// The factory is not called unless decoding succeeds, so a bad input never
// produces output.
func ConvertFile(path string, opts Options, open SinkFactory, log *zap.Logger) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	grid, format, err := imagesource.Open(path)
	if err != nil {
		return err
	}
	log.Info("decoded image",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", grid.Width()),
		zap.Int("height", grid.Height()))

	sink, err := open(grid)
	if err != nil {
		return err
	}
	return Convert(grid, opts, sink, log)
}
