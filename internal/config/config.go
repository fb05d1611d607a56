// Package config handles conversion settings: defaults, an optional YAML
// file, and validation.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/antirez/pngtostl/internal/heightfield"
	"github.com/antirez/pngtostl/internal/logger"
	"github.com/antirez/pngtostl/internal/mesh"
)

// MinLevels is the lowest level count; smaller values are raised to it.
const MinLevels = 2

// Config holds all conversion settings.
type Config struct {
	Relief  ReliefConfig  `yaml:"relief"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ReliefConfig holds the height field settings, in millimetres.
type ReliefConfig struct {
	ReliefHeight float64 `yaml:"relief_height"`
	BaseHeight   float64 `yaml:"base_height"`
	Levels       int     `yaml:"levels"`
	Negative     bool    `yaml:"negative"`
	PixelSize    float64 `yaml:"pixel_size"`
	Luminance    string  `yaml:"luminance"` // mean or lightness
}

// OutputConfig holds mesh output settings.
type OutputConfig struct {
	Path      string `yaml:"path"` // empty means standard output
	Binary    bool   `yaml:"binary"`
	SolidName string `yaml:"solid_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock conversion settings.
func Default() *Config {
	hf := heightfield.DefaultConfig()
	return &Config{
		Relief: ReliefConfig{
			ReliefHeight: hf.ReliefHeight,
			BaseHeight:   hf.BaseHeight,
			Levels:       hf.Levels,
			Negative:     hf.Negative,
			PixelSize:    1,
			Luminance:    string(hf.Model),
		},
		Output: OutputConfig{
			SolidName: mesh.DefaultSolidName,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadFile merges the YAML file at path over cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "parsing config %s", path)
	}
	return nil
}

// Normalize raises Levels to MinLevels.
func (c *Config) Normalize() {
	if c.Relief.Levels < MinLevels {
		c.Relief.Levels = MinLevels
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if err := c.HeightField().Validate(); err != nil {
		return err
	}
	if !(c.Relief.PixelSize > 0) {
		return errors.Errorf("pixel size must be positive, got %v", c.Relief.PixelSize)
	}
	if c.Output.SolidName == "" {
		return errors.New("solid name must not be empty")
	}
	if strings.ContainsAny(c.Output.SolidName, "\r\n") {
		return errors.Errorf("solid name %q must fit on one line", c.Output.SolidName)
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return errors.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// HeightField returns the quantization settings.
func (c *Config) HeightField() heightfield.Config {
	return heightfield.Config{
		Levels:       c.Relief.Levels,
		ReliefHeight: c.Relief.ReliefHeight,
		BaseHeight:   c.Relief.BaseHeight,
		Negative:     c.Relief.Negative,
		Model:        heightfield.Model(c.Relief.Luminance),
	}
}
