package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antirez/pngtostl/internal/heightfield"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1.0, cfg.Relief.ReliefHeight)
	assert.Equal(t, 0.2, cfg.Relief.BaseHeight)
	assert.Equal(t, 20, cfg.Relief.Levels)
	assert.True(t, cfg.Relief.Negative)
	assert.Equal(t, 1.0, cfg.Relief.PixelSize)
	assert.Equal(t, "mean", cfg.Relief.Luminance)
	assert.Equal(t, "", cfg.Output.Path)
	assert.False(t, cfg.Output.Binary)
	assert.Equal(t, "PngToStl", cfg.Output.SolidName)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
relief:
  relief_height: 2.5
  levels: 8
  negative: false
  luminance: lightness

output:
  binary: true
  solid_name: Portrait

logging:
  level: debug
  log_file: pngtostl.log
`)

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, 2.5, cfg.Relief.ReliefHeight)
	assert.Equal(t, 0.2, cfg.Relief.BaseHeight, "unset keys keep their defaults")
	assert.Equal(t, 8, cfg.Relief.Levels)
	assert.False(t, cfg.Relief.Negative)
	assert.True(t, cfg.Output.Binary)
	assert.Equal(t, "Portrait", cfg.Output.SolidName)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "pngtostl.log", cfg.Logging.LogFile)

	hf := cfg.HeightField()
	assert.Equal(t, heightfield.Lightness, hf.Model)
	assert.Equal(t, 8, hf.Levels)
}

func TestLoadFileRejectsMultiLineName(t *testing.T) {
	path := writeConfig(t, `
output:
  solid_name: "Two\nLines"
`)
	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))
	assert.Error(t, cfg.Validate())
}

func TestLoadFileInvalid(t *testing.T) {
	path := writeConfig(t, `
relief:
  levels: lots
  invalid syntax here
`)
	assert.Error(t, LoadFile(Default(), path))
	assert.Error(t, LoadFile(Default(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestNormalizeClampsLevels(t *testing.T) {
	for _, levels := range []int{-3, 0, 1} {
		cfg := Default()
		cfg.Relief.Levels = levels
		cfg.Normalize()
		assert.Equal(t, MinLevels, cfg.Relief.Levels)
		assert.NoError(t, cfg.Validate())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relief", func(c *Config) { c.Relief.ReliefHeight = -1 }},
		{"base", func(c *Config) { c.Relief.BaseHeight = -1 }},
		{"pixel size", func(c *Config) { c.Relief.PixelSize = 0 }},
		{"luminance", func(c *Config) { c.Relief.Luminance = "bogus" }},
		{"solid name", func(c *Config) { c.Output.SolidName = "" }},
		{"multi-line solid name", func(c *Config) { c.Output.SolidName = "Top\nendsolid Top" }},
		{"carriage return in name", func(c *Config) { c.Output.SolidName = "Top\r" }},
		{"log level", func(c *Config) { c.Logging.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
