// Command stlcheck reads an STL file and reports its triangle count,
// bounding box and the triangles that fail validation.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hschendel/stl"
)

type report struct {
	name      string
	triangles int
	measure   stl.SolidMeasure
	problems  int
}

func check(path string, recalc bool) (*report, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if recalc {
		// pngtostl writes zero normals.
		solid.RecalculateNormals()
	}
	r := &report{name: solid.Name, triangles: len(solid.Triangles), measure: solid.Measure()}
	r.problems = len(solid.Validate())
	return r, nil
}

func realMain(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stlcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	recalc := fs.Bool("recalc", true, "recalculate normals from winding before validating")
	strict := fs.Bool("strict", false, "exit 2 if any triangle fails validation")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage of stlcheck [OPTIONS] <stl file>:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	r, err := check(fs.Arg(0), *recalc)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "solid %q: %d triangles\n", r.name, r.triangles)
	if r.triangles > 0 {
		m := r.measure
		fmt.Fprintf(stdout, "bounds: (%g, %g, %g) - (%g, %g, %g)\n",
			m.Min[0], m.Min[1], m.Min[2], m.Max[0], m.Max[1], m.Max[2])
		fmt.Fprintf(stdout, "size: %g x %g x %g\n", m.Len[0], m.Len[1], m.Len[2])
	}
	fmt.Fprintf(stdout, "%d triangles with problems\n", r.problems)
	if *strict && r.problems > 0 {
		return 2
	}
	return 0
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}
