// Public domain.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/soniakeys/exit"
	xrand "golang.org/x/exp/rand"

	"github.com/soniakeys/removelines/internal/rlfits"
)

const versionString = "mkxy version 0.1 Go source."
const copyrightString = "Public domain."

// params describes the sources to generate.
type params struct {
	n             int
	width, height float64
	lx, ly        float64 // line positions, used if hasLX, hasLY
	hasLX, hasLY  bool
	ln            int
	seed          uint64
}

func main() {
	defer exit.Handler()

	flag.Usage = func() {
		os.Stderr.WriteString(`Usage:
  mkxy [options] <output-xylist>
  mkxy -v                         Display version and copyright.

Options:
  -n <count>    default 1000
  -x <width>    default 2048
  -y <height>   default 2048
  -lx <column>
  -ly <row>
  -ln <count>   default 50
  -seed <n>     default 1

For full documentation:
   go doc github.com/soniakeys/removelines/mkxy
`)
	}
	var s params
	flag.IntVar(&s.n, "n", 1000, "")
	flag.Float64Var(&s.width, "x", 2048, "")
	flag.Float64Var(&s.height, "y", 2048, "")
	flag.Float64Var(&s.lx, "lx", 0, "")
	flag.Float64Var(&s.ly, "ly", 0, "")
	flag.IntVar(&s.ln, "ln", 50, "")
	flag.Uint64Var(&s.seed, "seed", 1, "")
	vers := flag.Bool("v", false, "")
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
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lx":
			s.hasLX = true
		case "ly":
			s.hasLY = true
		}
	})
	f, err := generate(s)
	if err != nil {
		exit.Log(err)
	}
	if err := f.WriteFile(flag.Arg(0)); err != nil {
		exit.Log(err)
	}
	fmt.Printf("Wrote %d sources to %s\n", s.total(), flag.Arg(0))
}

// total returns the number of sources generate writes.
func (s params) total() int {
	n := s.n
	if s.hasLX {
		n += s.ln
	}
	if s.hasLY {
		n += s.ln
	}
	return n
}

func generate(s params) (*rlfits.File, error) {
	switch {
	case s.n < 0 || s.ln < 0:
		return nil, fmt.Errorf("negative source count")
	case !(s.width > 0 && s.height > 0):
		return nil, fmt.Errorf("image size %gx%g", s.width, s.height)
	}
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(s.seed)

	var x, y []float64
	for i := 0; i < s.n; i++ {
		x = append(x, rnd.Float64()*s.width)
		y = append(y, rnd.Float64()*s.height)
	}
	// lines are within .2 pixel, well inside one bin at the default offset
	jitter := func() float64 { return (rnd.Float64() - .5) * .4 }
	if s.hasLX {
		for i := 0; i < s.ln; i++ {
			x = append(x, s.lx+jitter())
			y = append(y, rnd.Float64()*s.height)
		}
	}
	if s.hasLY {
		for i := 0; i < s.ln; i++ {
			x = append(x, rnd.Float64()*s.width)
			y = append(y, s.ly+jitter())
		}
	}
	flux := make([]float64, len(x))
	for i := range flux {
		flux[i] = 100 + 1000*rnd.Float64()
	}

	u, err := rlfits.NewBinTable([]rlfits.ColumnSpec{
		{Name: "X", Format: "E"},
		{Name: "Y", Format: "E"},
		{Name: "FLUX", Format: "E"},
	}, len(x))
	if err != nil {
		return nil, err
	}
	tb, err := u.Table()
	if err != nil {
		return nil, err
	}
	for _, c := range []struct {
		name string
		v    []float64
	}{{"X", x}, {"Y", y}, {"FLUX", flux}} {
		if err := tb.SetColumn(c.name, c.v); err != nil {
			return nil, err
		}
	}
	if err := u.Header.Set("IMAGEW", s.width, "image width"); err != nil {
		return nil, err
	}
	if err := u.Header.Set("IMAGEH", s.height, "image height"); err != nil {
		return nil, err
	}
	u.Header.AddHistory(fmt.Sprintf("Synthetic xylist written by mkxy, seed %d", s.seed))
	return &rlfits.File{HDUs: []*rlfits.HDU{rlfits.NewPrimary(), u}}, nil
}
