// Public domain.

package rlfilter_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/removelines/internal/rlfilter"
	"github.com/soniakeys/removelines/internal/rlfits"
	"github.com/soniakeys/removelines/internal/rlhist"
)

// writeXY writes a source list with X, Y and FLUX columns.  FLUX is the
// row number so row order can be checked after filtering.
func writeXY(t *testing.T, x, y []float64) string {
	t.Helper()
	tab, err := rlfits.NewBinTable([]rlfits.ColumnSpec{
		{Name: "X", Format: "E"}, {Name: "Y", Format: "E"}, {Name: "FLUX", Format: "J"},
	}, len(x))
	require.NoError(t, err)
	tb, err := tab.Table()
	require.NoError(t, err)
	flux := make([]float64, len(x))
	for i := range flux {
		flux[i] = float64(i)
	}
	require.NoError(t, tb.SetColumn("X", x))
	require.NoError(t, tb.SetColumn("Y", y))
	require.NoError(t, tb.SetColumn("FLUX", flux))
	fn := filepath.Join(t.TempDir(), "in.xyls")
	f := &rlfits.File{HDUs: []*rlfits.HDU{rlfits.NewPrimary(), tab}}
	require.NoError(t, f.WriteFile(fn))
	return fn
}

// lineXY is 100 sources spread over 50 pixels in x plus 20 sources in a
// line at x = 10.5.  Y is spread evenly.
func lineXY() (x, y []float64) {
	for i := 0; i < 100; i++ {
		x = append(x, 12+.5*float64(i))
	}
	for i := 0; i < 20; i++ {
		x = append(x, 10.5)
	}
	for i := range x {
		y = append(y, .4*float64(i))
	}
	return
}

func readTable(t *testing.T, fn string) (*rlfits.Header, *rlfits.Table) {
	t.Helper()
	f, err := rlfits.ReadFile(fn)
	require.NoError(t, err)
	require.Len(t, f.HDUs, 2)
	tb, err := f.HDUs[1].Table()
	require.NoError(t, err)
	return f.HDUs[1].Header, tb
}

func outName(t *testing.T) string {
	return filepath.Join(t.TempDir(), "out.xyls")
}

func TestLine(t *testing.T) {
	x, y := lineXY()
	in := writeXY(t, x, y)
	out := outName(t)
	r, err := rlfilter.FilterFile(in, out, rlfilter.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, rlfilter.Result{Status: rlfilter.Filtered, NSources: 120, NRemoved: 20}, r)
	require.Equal(t, "Removed 20 sources", r.Message())

	h, tb := readTable(t, out)
	require.Equal(t, 100, tb.NumRows())
	flux, err := tb.Column("FLUX")
	require.NoError(t, err)
	want := make([]float64, 100)
	for i := range want {
		want[i] = float64(i)
	}
	if d := cmp.Diff(want, flux); d != "" {
		t.Fatalf("surviving rows (-want +got):\n%s", d)
	}
	n, err := h.Int(rlfilter.CountKey)
	require.NoError(t, err)
	require.EqualValues(t, 20, n)
	require.Equal(t, []string{
		`This xylist was filtered by the "removelines" program`,
		"to remove horizontal and vertical lines of sources",
	}, h.History())
}

func TestIdempotent(t *testing.T) {
	x, y := lineXY()
	in := writeXY(t, x, y)
	once := outName(t)
	_, err := rlfilter.FilterFile(in, once, rlfilter.DefaultOptions())
	require.NoError(t, err)
	twice := outName(t)
	r, err := rlfilter.FilterFile(once, twice, rlfilter.DefaultOptions())
	require.NoError(t, err)
	require.Zero(t, r.NRemoved)
	_, tb1 := readTable(t, once)
	_, tb2 := readTable(t, twice)
	x1, err := tb1.Column("X")
	require.NoError(t, err)
	x2, err := tb2.Column("X")
	require.NoError(t, err)
	require.Equal(t, x1, x2)
}

func TestUniform(t *testing.T) {
	var x, y []float64
	for i := 0; i < 50; i++ {
		x = append(x, float64(i))
		y = append(y, float64(49-i))
	}
	out := outName(t)
	r, err := rlfilter.FilterFile(writeXY(t, x, y), out, rlfilter.DefaultOptions())
	require.NoError(t, err)
	require.Zero(t, r.NRemoved)
	h, tb := readTable(t, out)
	require.Equal(t, 50, tb.NumRows())
	n, err := h.Int(rlfilter.CountKey)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Len(t, h.History(), 2)
}

func TestMonotoneCut(t *testing.T) {
	x, y := lineXY()
	for i := 0; i < 12; i++ {
		x = append(x, 30+.1*float64(i))
		y = append(y, 5)
	}
	in := writeXY(t, x, y)
	last := len(x) + 1
	for _, cut := range []float64{1, 5, 20, 100, 170, 1000} {
		o := rlfilter.DefaultOptions()
		o.Cut = cut
		r, err := rlfilter.FilterFile(in, outName(t), o)
		require.NoError(t, err)
		require.LessOrEqual(t, r.NRemoved, last, "cut %g", cut)
		last = r.NRemoved
	}
	require.Zero(t, last)
}

func TestZeroRows(t *testing.T) {
	in := writeXY(t, nil, nil)
	out := outName(t)
	r, err := rlfilter.FilterFile(in, out, rlfilter.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, rlfilter.NoRows, r.Status)
	require.Contains(t, r.Message(), "0 sources (rows)")
	sameFile(t, in, out)
}

func TestNoData(t *testing.T) {
	x, y := lineXY()
	in := writeXY(t, x, y)
	out := outName(t)
	o := rlfilter.DefaultOptions()
	o.Ext = 0
	r, err := rlfilter.FilterFile(in, out, o)
	require.NoError(t, err)
	require.Equal(t, rlfilter.NoData, r.Status)
	require.Contains(t, r.Message(), "no sources")
	sameFile(t, in, out)
}

func sameFile(t *testing.T, a, b string) {
	t.Helper()
	ab, err := os.ReadFile(a)
	require.NoError(t, err)
	bb, err := os.ReadFile(b)
	require.NoError(t, err)
	require.Equal(t, ab, bb)
}

func TestErrors(t *testing.T) {
	x, y := lineXY()
	in := writeXY(t, x, y)
	for _, tc := range []struct {
		name string
		mod  func(*rlfilter.Options)
	}{
		{"missing column", func(o *rlfilter.Options) { o.XCol = "XX" }},
		{"missing extension", func(o *rlfilter.Options) { o.Ext = 2 }},
	} {
		o := rlfilter.DefaultOptions()
		tc.mod(&o)
		out := outName(t)
		_, err := rlfilter.FilterFile(in, out, o)
		require.Error(t, err, tc.name)
		_, statErr := os.Stat(out)
		require.True(t, errors.Is(statErr, os.ErrNotExist), tc.name)
	}

	_, err := rlfilter.FilterFile(filepath.Join(t.TempDir(), "none.xyls"),
		outName(t), rlfilter.DefaultOptions())
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	for _, mod := range []func(*rlfilter.Options){
		func(o *rlfilter.Options) { o.Cut = 0 },
		func(o *rlfilter.Options) { o.Cut = -100 },
		func(o *rlfilter.Options) { o.BinWidth = 0 },
		func(o *rlfilter.Options) { o.Ext = -1 },
		func(o *rlfilter.Options) { o.YCol = "" },
		func(o *rlfilter.Options) { o.Model = 7 },
	} {
		o := rlfilter.DefaultOptions()
		mod(&o)
		err := o.Validate()
		require.True(t, errors.Is(err, rlhist.ErrInvalidParameter), "%+v", o)
	}
	o := rlfilter.DefaultOptions()
	require.NoError(t, o.Validate())
}

// memTable is a Table held in memory.
type memTable struct {
	cols    map[string][]float64
	hist    []string
	fields  map[string]int
	filters int
}

func (m *memTable) NumRows() int { return len(m.cols["X"]) }

func (m *memTable) Column(name string) ([]float64, error) {
	c, ok := m.cols[name]
	if !ok {
		return nil, errors.New("no column " + name)
	}
	return c, nil
}

func (m *memTable) Filter(keep []bool) error {
	m.filters++
	for name, c := range m.cols {
		var k []float64
		for i, v := range c {
			if keep[i] {
				k = append(k, v)
			}
		}
		m.cols[name] = k
	}
	return nil
}

func (m *memTable) AddHistory(text string) { m.hist = append(m.hist, text) }

func (m *memTable) SetField(key string, value int, comment string) error {
	m.fields[key] = value
	return nil
}

type memCatalog struct{ t *memTable }

func (c memCatalog) Extension(ext int) (rlfilter.Table, error) {
	if c.t == nil {
		return nil, nil
	}
	return c.t, nil
}

func (c memCatalog) WriteFile(string) error { return nil }

func TestBothAxes(t *testing.T) {
	// a line in x at 10.5 and a line in y at 3.
	x, y := lineXY()
	for i := 0; i < 20; i++ {
		x = append(x, 70+.5*float64(i))
		y = append(y, 3)
	}
	m := &memTable{
		cols:   map[string][]float64{"X": x, "Y": y},
		fields: map[string]int{},
	}
	r, err := rlfilter.Filter(memCatalog{m}, rlfilter.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, m.filters)
	require.Equal(t, 140, r.NSources)
	// both lines, and the two evenly spread sources at y 2.8 and 3.2
	require.Equal(t, 42, r.NRemoved)
	require.Equal(t, r.NRemoved, m.fields[rlfilter.CountKey])
	for _, v := range m.cols["Y"] {
		require.False(t, v >= 2.5 && v < 3.5, "y %g survived", v)
	}
	require.True(t, strings.Contains(m.hist[0], rlfilter.Program))

	r, err = rlfilter.Filter(memCatalog{}, rlfilter.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, rlfilter.NoData, r.Status)
}
