// Package heightfield turns pixel colours into quantized column heights.
//
// Heights are computed in two passes: a luminance pass that finds the
// brightest pixel of the grid, then a per-pixel pass that maps each
// luminance onto one of Levels discrete steps relative to that maximum.
package heightfield

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/antirez/pngtostl/internal/imagesource"
)

// Model selects how a pixel's brightness is measured.
type Model string

const (
	// Mean is the unweighted mean of the three channels.
	Mean Model = "mean"
	// Lightness is CIE L*, rescaled to the 0..255 range of Mean.
	Lightness Model = "lightness"
)

// Config controls quantization. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Levels       int
	ReliefHeight float64
	BaseHeight   float64
	// Negative makes darker pixels taller.
	Negative bool
	Model    Model
}

func DefaultConfig() Config {
	return Config{
		Levels:       20,
		ReliefHeight: 1,
		BaseHeight:   0.2,
		Negative:     true,
		Model:        Mean,
	}
}

// Validate reports the first setting that cannot produce a height.
func (c Config) Validate() error {
	switch {
	case c.Levels < 2:
		return errors.Errorf("levels must be at least 2, got %d", c.Levels)
	case !(c.ReliefHeight > 0) || math.IsInf(c.ReliefHeight, 0):
		return errors.Errorf("relief height must be a positive number, got %v", c.ReliefHeight)
	case !(c.BaseHeight >= 0) || math.IsInf(c.BaseHeight, 0):
		return errors.Errorf("base height must be a non-negative number, got %v", c.BaseHeight)
	}
	switch c.Model {
	case Mean, Lightness, "":
	default:
		return errors.Errorf("unknown luminance model %q", c.Model)
	}
	return nil
}

// Luminance is (r+g+b)/3, unrounded.
func Luminance(r, g, b uint8) float64 {
	return float64(int(r)+int(g)+int(b)) / 3
}

// LuminanceOf measures a pixel with the given model. An empty model means
// Mean.
func LuminanceOf(m Model, r, g, b uint8) float64 {
	if m == Lightness {
		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		l, _, _ := c.Lab()
		return l * 255
	}
	return Luminance(r, g, b)
}

// MaxLuminance returns the largest value in lum. lum must not be empty.
func MaxLuminance(lum []float64) float64 {
	return floats.Max(lum)
}

// Level quantizes l against the grid maximum lmax into 0..Levels-1, with
// math.Round (ties away from zero). When lmax is 0 the image is uniformly
// black and every pixel is level 0, without the polarity inversion.
func Level(l, lmax float64, cfg Config) int {
	if lmax <= 0 {
		return 0
	}
	top := cfg.Levels - 1
	level := int(math.Round(float64(top) * l / lmax))
	if level < 0 {
		level = 0
	} else if level > top {
		level = top
	}
	if cfg.Negative {
		level = top - level
	}
	return level
}

// Height converts a level into millimetres: BaseHeight plus the level's
// share of ReliefHeight.
func Height(level int, cfg Config) float64 {
	return cfg.BaseHeight + cfg.ReliefHeight*float64(level)/float64(cfg.Levels)
}

// Field holds the luminance of every pixel of a grid, and its maximum.
type Field struct {
	cfg    Config
	width  int
	height int
	lum    []float64
	max    float64
}

// New runs the luminance pass over grid.
func New(grid *imagesource.PixelGrid, cfg Config) *Field {
	w, h := grid.Width(), grid.Height()
	f := &Field{
		cfg:    cfg,
		width:  w,
		height: h,
		lum:    make([]float64, 0, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := grid.RGB(x, y)
			f.lum = append(f.lum, LuminanceOf(cfg.Model, r, g, b))
		}
	}
	f.max = MaxLuminance(f.lum)
	return f
}

func (f *Field) Width() int  { return f.width }
func (f *Field) Height() int { return f.height }

// Max is the brightest luminance found in the grid.
func (f *Field) Max() float64 { return f.max }

// LevelAt returns the quantized level of pixel (x, y).
func (f *Field) LevelAt(x, y int) int {
	return Level(f.lum[x+y*f.width], f.max, f.cfg)
}

// HeightAt returns the column height of pixel (x, y) in millimetres.
func (f *Field) HeightAt(x, y int) float64 {
	return Height(f.LevelAt(x, y), f.cfg)
}

// Histogram counts pixels per level.
func (f *Field) Histogram() []int {
	hist := make([]int, f.cfg.Levels)
	for _, l := range f.lum {
		hist[Level(l, f.max, f.cfg)]++
	}
	return hist
}
