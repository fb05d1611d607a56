package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/antirez/pngtostl/internal/config"
)

// InvalidOption is returned for unknown flags, bad flag values and a
// missing or surplus filename.
type InvalidOption struct {
	Msg string
}

func (e *InvalidOption) Error() string { return e.Msg }

func invalidOption(format string, args ...interface{}) *InvalidOption {
	return &InvalidOption{Msg: fmt.Sprintf(format, args...)}
}

// polarity lets --negative and --positive write the same setting, so the
// last one given wins.
type polarity struct {
	negative *bool
	value    bool
}

func (p polarity) String() string {
	if p.negative == nil {
		return ""
	}
	return strconv.FormatBool(*p.negative == p.value)
}

func (p polarity) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*p.negative = p.value
	} else {
		*p.negative = !p.value
	}
	return nil
}

func (p polarity) IsBoolFlag() bool { return true }

type options struct {
	filename   string
	configPath string

	reliefHeight float64
	baseHeight   float64
	levels       int
	negative     bool
	pixelSize    float64
	luminance    string

	output string
	binary bool
	name   string

	logLevel string
	logFile  string

	// set records the flags given on the command line, which override the
	// config file.
	set map[string]bool
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: pngtostl image.png [options]
  --relief-height <mm> | Relief height.      Default: 1 mm
  --base-height <mm>   | Fixed base height.  Default: .2 mm
  --levels <n>         | Number of different levels (heights/greys). Default: 20, minimum 2
  --negative           | Use thicker plastic for black (default).
  --positive           | Use thicker plastic for white.
  --pixel-size <mm>    | Footprint of one pixel.  Default: 1 mm
  --luminance <model>  | mean (default) or lightness.
  --output <file>      | Write the STL here instead of standard output.
  --binary             | Write binary STL instead of ASCII.
  --name <name>        | Solid name.  Default: PngToStl
  --config <file>      | YAML config file, overridden by flags.
  --log-level <level>  | debug, info, warn (default) or error.
  --log-file <file>    | Also log to this file.
  --help               | Show this help.
`)
}

// parseArgs parses args (without the program name). Options may come
// before or after the filename. It returns flag.ErrHelp for --help.
func parseArgs(args []string) (*options, error) {
	def := config.Default()
	o := &options{set: map[string]bool{}}

	fs := flag.NewFlagSet("pngtostl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.StringVar(&o.configPath, "config", "", "")
	fs.Float64Var(&o.reliefHeight, "relief-height", def.Relief.ReliefHeight, "")
	fs.Float64Var(&o.baseHeight, "base-height", def.Relief.BaseHeight, "")
	fs.IntVar(&o.levels, "levels", def.Relief.Levels, "")
	o.negative = def.Relief.Negative
	fs.Var(polarity{negative: &o.negative, value: true}, "negative", "")
	fs.Var(polarity{negative: &o.negative, value: false}, "positive", "")
	fs.Float64Var(&o.pixelSize, "pixel-size", def.Relief.PixelSize, "")
	fs.StringVar(&o.luminance, "luminance", def.Relief.Luminance, "")
	fs.StringVar(&o.output, "output", def.Output.Path, "")
	fs.BoolVar(&o.binary, "binary", def.Output.Binary, "")
	fs.StringVar(&o.name, "name", def.Output.SolidName, "")
	fs.StringVar(&o.logLevel, "log-level", def.Logging.Level, "")
	fs.StringVar(&o.logFile, "log-file", def.Logging.LogFile, "")

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if err == flag.ErrHelp {
				return nil, err
			}
			return nil, invalidOption("%v", err)
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		if o.filename != "" {
			return nil, invalidOption("unexpected argument %q", rest[0])
		}
		o.filename = rest[0]
		rest = rest[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		o.set[f.Name] = true
	})
	if o.filename == "" {
		return nil, invalidOption("No PNG filename given")
	}
	return o, nil
}

// resolve layers defaults, the config file and the flags given, in that
// order, and validates the result.
func (o *options) resolve() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		if err := config.LoadFile(cfg, o.configPath); err != nil {
			return nil, err
		}
	}

	if o.set["relief-height"] {
		cfg.Relief.ReliefHeight = o.reliefHeight
	}
	if o.set["base-height"] {
		cfg.Relief.BaseHeight = o.baseHeight
	}
	if o.set["levels"] {
		cfg.Relief.Levels = o.levels
	}
	if o.set["negative"] || o.set["positive"] {
		cfg.Relief.Negative = o.negative
	}
	if o.set["pixel-size"] {
		cfg.Relief.PixelSize = o.pixelSize
	}
	if o.set["luminance"] {
		cfg.Relief.Luminance = o.luminance
	}
	if o.set["output"] {
		cfg.Output.Path = o.output
	}
	if o.set["binary"] {
		cfg.Output.Binary = o.binary
	}
	if o.set["name"] {
		cfg.Output.SolidName = o.name
	}
	if o.set["log-level"] {
		cfg.Logging.Level = o.logLevel
	}
	if o.set["log-file"] {
		cfg.Logging.LogFile = o.logFile
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, invalidOption("%v", err)
	}
	return cfg, nil
}
