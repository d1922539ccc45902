// Public domain.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/soniakeys/exit"

	"github.com/soniakeys/removelines/internal/rlconf"
	"github.com/soniakeys/removelines/internal/rlfilter"
	"github.com/soniakeys/removelines/internal/rlhist"
)

const versionString = "rlstat version 0.1"
const copyrightString = "Public domain."

func main() {
	defer exit.Handler()

	flag.Usage = func() {
		os.Stderr.WriteString("Usage: rlstat [options] <xylist>\n")
		flag.PrintDefaults()
		os.Stderr.WriteString(`
For full documentation:
   go doc github.com/soniakeys/removelines/rlstat
`)
	}
	o := rlfilter.DefaultOptions()
	cfg := flag.String("c", "", "config file")
	xCol := flag.String("X", o.XCol, "name of X column")
	yCol := flag.String("Y", o.YCol, "name of Y column")
	cut := flag.Float64("s", o.Cut, "significance to cut at")
	ext := flag.Int("e", o.Ext, "FITS extension to read")
	width := flag.Float64("w", o.BinWidth, "bin width")
	offset := flag.Float64("o", o.BinOffset, "bin offset")
	exact := flag.Bool("exact", false, "score bins with the true Poisson probability")
	all := flag.Bool("a", false, "list all occupied bins")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	if *cfg > "" {
		if err := rlconf.ReadFile(*cfg, &o); err != nil {
			log.Fatalln(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "X":
			o.XCol = *xCol
		case "Y":
			o.YCol = *yCol
		case "s":
			o.Cut = *cut
		case "e":
			o.Ext = *ext
		case "w":
			o.BinWidth = *width
		case "o":
			o.BinOffset = *offset
		case "exact":
			o.Model = rlhist.Compat
			if *exact {
				o.Model = rlhist.Poisson
			}
		}
	})
	if err := o.Validate(); err != nil {
		log.Fatalln(err)
	}
	if err := report(os.Stdout, flag.Arg(0), o, *all); err != nil {
		exit.Log(err)
	}
}

// report writes line statistics of the xylist in file fn.
func report(w io.Writer, fn string, o rlfilter.Options, all bool) error {
	c, err := rlfilter.Open(fn)
	if err != nil {
		return err
	}
	t, err := c.Extension(o.Ext)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "File:       ", fn)
	fmt.Fprintln(w, "Extension:  ", o.Ext)
	if t == nil {
		fmt.Fprintln(w, "Sources:     none, extension has no data")
		return nil
	}
	n := t.NumRows()
	fmt.Fprintln(w, "Sources:    ", n)
	if n == 0 {
		return nil
	}
	fmt.Fprintf(w, "Cut:         %g (%v)\n", o.Cut, o.Model)

	bad := make([]bool, n)
	for _, col := range []string{o.XCol, o.YCol} {
		v, err := t.Column(col)
		if err != nil {
			return err
		}
		h, err := rlhist.New(v, o.BinWidth, o.BinOffset, o.Model)
		if err != nil {
			return fmt.Errorf("column %s: %w", col, err)
		}
		axis(w, col, h, -o.Cut, all)
		for i, k := range h.Keep(v, -o.Cut) {
			if !k {
				bad[i] = true
			}
		}
	}
	removed := 0
	for _, b := range bad {
		if b {
			removed++
		}
	}
	fmt.Fprintf(w, "\nRemovelines would remove %d sources.\n", removed)
	return nil
}

func axis(w io.Writer, col string, h *rlhist.Hist, logCut float64, all bool) {
	fmt.Fprintf(w, "\n%s:  %d occupied bins, mean excess %.4f\n",
		col, len(h.Occupied), h.Mean)
	lines := 0
	sources := 0
	heading := false
	for i, b := range h.Occupied {
		line := h.LogLik[i] < logCut
		if line {
			lines++
			sources += int(h.Counts[b])
		}
		if !line && !all {
			continue
		}
		if !heading {
			fmt.Fprintln(w, "      Bin left   Count       Log-lik")
			heading = true
		}
		mark := ""
		if line {
			mark = " *"
		}
		fmt.Fprintf(w, "  %12.6g %7.0f %13.2f%s\n",
			h.Edges[b], h.Counts[b], h.LogLik[i], mark)
	}
	s := "s"
	if lines == 1 {
		s = ""
	}
	fmt.Fprintf(w, "%s:  %d line%s, %d sources\n", col, lines, s, sources)
}
