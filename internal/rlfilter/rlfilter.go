// Public domain.

// Package rlfilter removes lines of sources from a source list.
//
// Each axis of the source list is tested separately with rlhist and a
// source is kept only if it survives both tests.  The filtered list is
// marked with history and a count of removed sources.
package rlfilter

import (
	"fmt"
	"math"

	"github.com/soniakeys/removelines/internal/rlhist"
)

// Program names the filter in history text.
const Program = "removelines"

// CountKey is the header keyword recording the number of sources removed.
const CountKey = "REMLINEN"

// Table is one extension of a source list.
type Table interface {
	NumRows() int
	Column(name string) ([]float64, error)
	Filter(keep []bool) error
	AddHistory(text string)
	SetField(key string, value int, comment string) error
}

// Catalog is a source list file.
type Catalog interface {
	// Extension returns a nil Table if extension ext holds no data.
	Extension(ext int) (Table, error)
	WriteFile(name string) error
}

// Options control filtering.
type Options struct {
	XCol, YCol string
	Ext        int
	Cut        float64 // significance, positive.  logcut is -Cut.
	BinWidth   float64
	BinOffset  float64
	Model      rlhist.Model
}

// DefaultOptions returns the options used when none are specified.
func DefaultOptions() Options {
	return Options{
		XCol:      "X",
		YCol:      "Y",
		Ext:       1,
		Cut:       100,
		BinWidth:  1,
		BinOffset: .5,
		Model:     rlhist.Compat,
	}
}

// Validate checks options before any file is read.
func (o *Options) Validate() error {
	bad := func(format string, a ...interface{}) error {
		return fmt.Errorf("%w: "+format,
			append([]interface{}{rlhist.ErrInvalidParameter}, a...)...)
	}
	switch {
	case o.XCol == "" || o.YCol == "":
		return bad("empty column name")
	case o.Ext < 0:
		return bad("extension %d", o.Ext)
	case math.IsNaN(o.Cut) || math.IsInf(o.Cut, 0) || o.Cut <= 0:
		return bad("significance cut %g", o.Cut)
	case math.IsNaN(o.BinWidth) || math.IsInf(o.BinWidth, 0) || o.BinWidth <= 0:
		return bad("bin width %g", o.BinWidth)
	case math.IsNaN(o.BinOffset) || math.IsInf(o.BinOffset, 0):
		return bad("bin offset %g", o.BinOffset)
	case o.Model != rlhist.Compat && o.Model != rlhist.Poisson:
		return bad("model %v", o.Model)
	}
	return nil
}

// Status tells what Filter did.
type Status int

const (
	Filtered Status = iota
	NoData          // the extension holds no data
	NoRows          // the table has zero rows
)

// Result reports the outcome of Filter.
type Result struct {
	Status   Status
	NSources int // rows before filtering
	NRemoved int
}

// Message returns a one line description of r.
func (r Result) Message() string {
	switch r.Status {
	case NoData:
		return "Input file contains no sources."
	case NoRows:
		return "Your FITS file contains 0 sources (rows)"
	}
	return fmt.Sprintf("Removed %d sources", r.NRemoved)
}

// Masks returns the keep masks of the X and Y columns of t.
func Masks(t Table, o Options) (keepX, keepY []bool, err error) {
	x, err := t.Column(o.XCol)
	if err != nil {
		return nil, nil, err
	}
	y, err := t.Column(o.YCol)
	if err != nil {
		return nil, nil, err
	}
	if keepX, err = rlhist.KeepMaskModel(x, o.BinWidth, o.BinOffset, -o.Cut, o.Model); err != nil {
		return nil, nil, fmt.Errorf("column %s: %w", o.XCol, err)
	}
	if keepY, err = rlhist.KeepMaskModel(y, o.BinWidth, o.BinOffset, -o.Cut, o.Model); err != nil {
		return nil, nil, fmt.Errorf("column %s: %w", o.YCol, err)
	}
	return keepX, keepY, nil
}

// Filter removes lines from extension o.Ext of c, in memory.
//
// An extension with no data or no rows is left unchanged and is not an
// error.  Otherwise rows are filtered, history is added and CountKey is set,
// even when nothing is removed.
func Filter(c Catalog, o Options) (Result, error) {
	if err := o.Validate(); err != nil {
		return Result{}, err
	}
	t, err := c.Extension(o.Ext)
	if err != nil {
		return Result{}, err
	}
	if t == nil {
		return Result{Status: NoData}, nil
	}
	n := t.NumRows()
	if n == 0 {
		return Result{Status: NoRows}, nil
	}
	keepX, keepY, err := Masks(t, o)
	if err != nil {
		return Result{}, err
	}
	keep := make([]bool, n)
	kept := 0
	for i := range keep {
		if keep[i] = keepX[i] && keepY[i]; keep[i] {
			kept++
		}
	}
	r := Result{Status: Filtered, NSources: n, NRemoved: n - kept}
	t.AddHistory(`This xylist was filtered by the "` + Program + `" program`)
	t.AddHistory("to remove horizontal and vertical lines of sources")
	if err := t.SetField(CountKey, r.NRemoved,
		`Number of sources removed by "`+Program+`"`); err != nil {
		return Result{}, err
	}
	if err := t.Filter(keep); err != nil {
		return Result{}, err
	}
	return r, nil
}

// FilterFile filters the source list in file in and writes it to file out.
// Out is written even if nothing was filtered.
func FilterFile(in, out string, o Options) (Result, error) {
	if err := o.Validate(); err != nil {
		return Result{}, err
	}
	c, err := Open(in)
	if err != nil {
		return Result{}, err
	}
	r, err := Filter(c, o)
	if err != nil {
		return Result{}, err
	}
	return r, c.WriteFile(out)
}
