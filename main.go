// Command pngtostl converts an RGB image into an STL relief: every pixel
// becomes a column whose height follows its brightness.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/antirez/pngtostl/internal/config"
	"github.com/antirez/pngtostl/internal/imagesource"
	"github.com/antirez/pngtostl/internal/logger"
	"github.com/antirez/pngtostl/internal/mesh"
	"github.com/antirez/pngtostl/internal/pipeline"
)

// fileSink closes the output file after the mesh sink is done with it.
type fileSink struct {
	mesh.TriangleSink
	f *os.File
}

func (s fileSink) Close() error {
	err := s.TriangleSink.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// newSink returns a constructor for the configured writer. It fails before
// anything is opened when the mesh cannot be represented.
func newSink(cfg *config.Config, grid *imagesource.PixelGrid) (func(io.Writer) mesh.TriangleSink, error) {
	if !cfg.Output.Binary {
		return func(w io.Writer) mesh.TriangleSink {
			return mesh.NewASCIIWriter(w, cfg.Output.SolidName)
		}, nil
	}
	count, err := mesh.BinaryTriangleCount(pipeline.TriangleCount(grid))
	if err != nil {
		return nil, err
	}
	return func(w io.Writer) mesh.TriangleSink {
		return mesh.NewBinaryWriter(w, cfg.Output.SolidName, count)
	}, nil
}

func openSink(cfg *config.Config, stdout io.Writer) pipeline.SinkFactory {
	return func(grid *imagesource.PixelGrid) (mesh.TriangleSink, error) {
		build, err := newSink(cfg, grid)
		if err != nil {
			return nil, err
		}
		if cfg.Output.Path == "" {
			return build(stdout), nil
		}
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return nil, errors.Wrap(err, "creating output")
		}
		return fileSink{TriangleSink: build(f), f: f}, nil
	}
}

func convert(filename string, cfg *config.Config, stdout, stderr io.Writer) error {
	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile, stderr)
	defer log.Sync()

	log.Debug("settings",
		zap.Float64("relief_height", cfg.Relief.ReliefHeight),
		zap.Float64("base_height", cfg.Relief.BaseHeight),
		zap.Int("levels", cfg.Relief.Levels),
		zap.Bool("negative", cfg.Relief.Negative),
		zap.String("output", cfg.Output.Path))

	opts := pipeline.Options{
		HeightField: cfg.HeightField(),
		PixelSize:   cfg.Relief.PixelSize,
	}
	return pipeline.ConvertFile(filename, opts, openSink(cfg, stdout), log)
}

// realMain runs the command and returns the process exit status.
func realMain(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 0
	}

	opts, err := parseArgs(args)
	if err == flag.ErrHelp {
		printUsage(stderr)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Invalid options: %v\n", err)
		printUsage(stderr)
		return 1
	}

	cfg, err := opts.resolve()
	if err == nil {
		err = convert(opts.filename, cfg, stdout, stderr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}
