// Public domain.

// Package rlprog is the removelines command.
package rlprog

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/soniakeys/exit"

	"github.com/soniakeys/removelines/internal/rlconf"
	"github.com/soniakeys/removelines/internal/rlfilter"
	"github.com/soniakeys/removelines/internal/rlhist"
)

const versionString = "removelines version 1.0 Go source."
const copyrightString = "Public domain."

// UsageExit is the exit code for command line errors.
const UsageExit = 255

func Main() {
	defer exit.Handler()

	code, err := Run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		exit.Log(err)
	}
	if code != 0 {
		os.Exit(code)
	}
}

// Run runs removelines with command line arguments args.
//
// Command line problems are reported on stderr and give a nonzero exit
// code.  Errors reading or writing files are returned.
func Run(args []string, stdout, stderr io.Writer) (code int, err error) {
	cl, code := parseCommandLine(args, stdout, stderr)
	if cl == nil {
		return code, nil
	}
	r, err := rlfilter.FilterFile(cl.in, cl.out, cl.opt)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(stdout, "%s: %s\n", rlfilter.Program, r.Message())
	return 0, nil
}

type commandLine struct {
	in, out string
	opt     rlfilter.Options
}

const usage = `
Usage: removelines [options] <input-xylist> <output-xylist>
       removelines -h                     display help
       removelines -v                     display version and copyright

Options:
       -X <x-column>         default X
       -Y <y-column>         default Y
       -s <significance>     default 100
       -e <extension>        default 1
       -w <bin-width>        default 1
       -o <bin-offset>       default 0.5
       -exact                score bins with the true Poisson probability
       -c <config-file>
`

// parseCommandLine returns nil and an exit code if there is nothing
// to filter.  Options and arguments may be given in any order.
func parseCommandLine(args []string, stdout, stderr io.Writer) (*commandLine, int) {
	cl := commandLine{opt: rlfilter.DefaultOptions()}
	fs := flag.NewFlagSet(rlfilter.Program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { io.WriteString(stderr, usage) }
	dh := fs.Bool("h", false, "")
	dv := fs.Bool("v", false, "")
	dc := fs.String("c", "", "")
	xCol := fs.String("X", cl.opt.XCol, "")
	yCol := fs.String("Y", cl.opt.YCol, "")
	cut := fs.Float64("s", cl.opt.Cut, "")
	ext := fs.Int("e", cl.opt.Ext, "")
	width := fs.Float64("w", cl.opt.BinWidth, "")
	offset := fs.Float64("o", cl.opt.BinOffset, "")
	exact := fs.Bool("exact", false, "")

	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printHelp(stdout)
				return nil, 0
			}
			return nil, UsageExit
		}
		rest := fs.Args()
		if n := len(args) - len(rest); n > 0 && args[n-1] == "--" {
			pos = append(pos, rest...)
			break
		}
		if len(rest) == 0 {
			break
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
	switch {
	case *dh:
		printHelp(stdout)
		return nil, 0
	case *dv:
		fmt.Fprintln(stdout, versionString)
		fmt.Fprintln(stdout, copyrightString)
		return nil, 0
	case len(pos) != 2:
		fs.Usage()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Got arguments:", pos)
		return nil, UsageExit
	}
	cl.in, cl.out = pos[0], pos[1]

	// config file first, then anything given on the command line
	if *dc > "" {
		if err := rlconf.ReadFile(*dc, &cl.opt); err != nil {
			fmt.Fprintln(stderr, err)
			return nil, UsageExit
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "X":
			cl.opt.XCol = *xCol
		case "Y":
			cl.opt.YCol = *yCol
		case "s":
			cl.opt.Cut = *cut
		case "e":
			cl.opt.Ext = *ext
		case "w":
			cl.opt.BinWidth = *width
		case "o":
			cl.opt.BinOffset = *offset
		case "exact":
			cl.opt.Model = rlhist.Compat
			if *exact {
				cl.opt.Model = rlhist.Poisson
			}
		}
	})
	if err := cl.opt.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", rlfilter.Program, err)
		return nil, UsageExit
	}
	return &cl, 0
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `
Removelines removes lines of sources from an xylist, a FITS binary table of
detected source positions.  Bad columns, bleed trails and other detector
artifacts show up as many sources sharing nearly the same x or y.

Each axis is binned at the bin width.  Counts of occupied bins are compared
to a Poisson model with a shared rate, and bins scoring a log-likelihood
below minus the significance are lines.  Sources in a line on either axis
are removed.  Larger significance removes fewer sources.

The output xylist records the filtering in HISTORY cards and the number of
sources removed in keyword REMLINEN.
`)
	fmt.Fprint(w, usage)
	fmt.Fprintln(w, `
Config file keys (YAML):
   x_column, y_column, extension, cut, bin_width, bin_offset, exact

For full documentation:
   go doc github.com/soniakeys/removelines`)
}
