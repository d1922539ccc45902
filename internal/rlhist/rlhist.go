// Public domain.

// Package rlhist detects lines of sources along one image axis.
//
// Source coordinates along the axis are binned into a fixed-width histogram.
// The counts of occupied bins, less one, are modeled as Poisson distributed
// with a single shared rate.  Bins with a count too improbable under that
// model are taken to be lines, artifacts of the detector rather than real
// sources, and sources falling in them are marked for removal.
package rlhist

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParameter is wrapped by errors for unusable parameters or input.
var ErrInvalidParameter = errors.New("invalid parameter")

// Model selects how the log-likelihood of a bin count is computed.
type Model int

const (
	// Compat scores a bin excess k as k ln(mean) - mean - k(k-1)/2.
	// The last term stands in for ln k! and matches the scores of the
	// long-standing removelines program exactly.
	Compat Model = iota
	// Poisson scores a bin excess with the true Poisson log probability.
	Poisson
)

func (m Model) String() string {
	switch m {
	case Compat:
		return "compat"
	case Poisson:
		return "poisson"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// MaxBins limits the histogram size.  Coordinates are pixel positions so
// real images are far below this.
const MaxBins = 1 << 24

// Hist is the histogram of one axis of a source list along with the
// statistics of its occupied bins.
type Hist struct {
	Width, Offset float64
	Model         Model

	Edges  []float64 // len(Counts)+1 bin edges
	Counts []float64 // sources per bin

	// The rest are parallel slices over occupied bins, in bin order.
	Occupied []int     // bin index
	Excess   []int     // count - 1
	LogLik   []float64 // log-likelihood of Excess given Mean

	Mean float64 // mean excess over occupied bins
}

// New bins x and scores the occupied bins.
//
// Bin i covers [Edges[i], Edges[i+1]) where Edges[i] = i*width - offset.
// Edges extend just past max(x).  Values below -offset fall in no bin.
func New(x []float64, width, offset float64, model Model) (*Hist, error) {
	if err := checkParams(width, offset); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no coordinates", ErrInvalidParameter)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: coordinate %d is %g",
				ErrInvalidParameter, i, v)
		}
	}
	xmax := floats.Max(x)
	if (xmax+offset)/width > MaxBins {
		return nil, fmt.Errorf("%w: %g at bin width %g needs more than %d bins",
			ErrInvalidParameter, xmax, width, MaxBins)
	}
	h := &Hist{Width: width, Offset: offset, Model: model}
	h.Edges = edges(xmax, width, offset)

	// stat.Histogram wants sorted data inside the edge range.
	s := append([]float64{}, x...)
	sort.Float64s(s)
	lo := sort.SearchFloat64s(s, h.Edges[0])
	h.Counts = stat.Histogram(nil, h.Edges, s[lo:], nil)

	sum := 0
	for i, c := range h.Counts {
		if c > 0 {
			k := int(c) - 1
			h.Occupied = append(h.Occupied, i)
			h.Excess = append(h.Excess, k)
			sum += k
		}
	}
	if len(h.Occupied) == 0 {
		return h, nil
	}
	h.Mean = float64(sum) / float64(len(h.Occupied))
	h.LogLik = make([]float64, len(h.Excess))
	for i, k := range h.Excess {
		h.LogLik[i] = model.logLik(k, h.Mean)
	}
	return h, nil
}

func checkParams(width, offset float64) error {
	switch {
	case math.IsNaN(width) || math.IsInf(width, 0) || width <= 0:
		return fmt.Errorf("%w: bin width %g", ErrInvalidParameter, width)
	case math.IsNaN(offset) || math.IsInf(offset, 0):
		return fmt.Errorf("%w: bin offset %g", ErrInvalidParameter, offset)
	}
	return nil
}

// edges returns i*width - offset for i = 0, 1, ... up to and including the
// first edge greater than xmax.  There are always at least two edges.
func edges(xmax, width, offset float64) []float64 {
	e := []float64{-offset, width - offset}
	for i := 2; e[len(e)-1] <= xmax; i++ {
		e = append(e, float64(i)*width-offset)
	}
	return e
}

// logLik with mean == 0 and k == 0 is 0 * -Inf = NaN under Compat.
// NaN never compares below a cut so such bins are never lines.
func (m Model) logLik(k int, mean float64) float64 {
	if m == Poisson {
		return distuv.Poisson{Lambda: mean}.LogProb(float64(k))
	}
	kf := float64(k)
	return kf*math.Log(mean) - mean - float64(k*(k-1)/2)
}

// BadBins returns indexes of occupied bins with log-likelihood below logCut.
func (h *Hist) BadBins(logCut float64) []int {
	var bad []int
	for i, ll := range h.LogLik {
		if ll < logCut {
			bad = append(bad, h.Occupied[i])
		}
	}
	return bad
}

// Keep returns a mask over x, true for values not in any bad bin.
//
// x should be the slice h was built from.
func (h *Hist) Keep(x []float64, logCut float64) []bool {
	keep := make([]bool, len(x))
	for i := range keep {
		keep[i] = true
	}
	for _, b := range h.BadBins(logCut) {
		left := h.Edges[b]
		right := left + h.Width
		for i, v := range x {
			if v >= left && v < right {
				keep[i] = false
			}
		}
	}
	return keep
}

// KeepMask returns a mask over x, false for values lying in a line.
//
// logCut is a negative log-likelihood threshold.  The more negative,
// the more improbable a bin count must be before it is a line.
func KeepMask(x []float64, binWidth, binOffset, logCut float64) ([]bool, error) {
	return KeepMaskModel(x, binWidth, binOffset, logCut, Compat)
}

// KeepMaskModel is KeepMask with a choice of scoring model.
func KeepMaskModel(x []float64, binWidth, binOffset, logCut float64, model Model) ([]bool, error) {
	if math.IsNaN(logCut) {
		return nil, fmt.Errorf("%w: log cut is NaN", ErrInvalidParameter)
	}
	h, err := New(x, binWidth, binOffset, model)
	if err != nil {
		return nil, err
	}
	return h.Keep(x, logCut), nil
}
