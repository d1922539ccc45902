// Public domain.

package rlfits

import (
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Column describes one field of a binary table row.
type Column struct {
	Name   string
	Format string // TFORMn as written
	Repeat int
	Type   byte // TFORMn data type code
	Offset int  // byte offset within a row
	Width  int  // bytes within a row

	Scale, Zero float64 // TSCALn, TZEROn
}

// Table is a view of a binary table extension.  Filtering through the
// Table updates the underlying HDU.
type Table struct {
	hdu    *HDU
	rowLen int
	nRows  int
	Cols   []Column
}

var rxTForm = regexp.MustCompile(`^(\d*)([LXBIJKAEDCMPQ])`)

// typeSize is bytes per element.  X is handled by the caller.
var typeSize = map[byte]int{
	'L': 1, 'B': 1, 'A': 1,
	'I': 2, 'J': 4, 'K': 8,
	'E': 4, 'D': 8, 'C': 8, 'M': 16,
	'P': 8, 'Q': 16,
}

func parseTForm(f string) (repeat int, code byte, width int, err error) {
	m := rxTForm.FindStringSubmatch(strings.TrimSpace(f))
	if m == nil {
		return 0, 0, 0, fmt.Errorf("invalid TFORM %q", f)
	}
	repeat = 1
	if m[1] != "" {
		if repeat, err = strconv.Atoi(m[1]); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid TFORM %q", f)
		}
	}
	code = m[2][0]
	if code == 'X' {
		w := repeat / 8
		if repeat%8 != 0 {
			w++
		}
		return repeat, code, w, nil
	}
	w, ok := mulSize(int64(repeat), int64(typeSize[code]))
	if !ok || w > math.MaxInt {
		return 0, 0, 0, fmt.Errorf("TFORM %q overflows row length", f)
	}
	return repeat, code, int(w), nil
}

// Table returns a view of u as a binary table.
func (u *HDU) Table() (*Table, error) {
	if x := u.XTension(); x != "BINTABLE" {
		if x == "" {
			x = "primary"
		}
		return nil, fmt.Errorf("HDU is %s, not a binary table", x)
	}
	h := u.Header
	naxis1, err := h.Int("NAXIS1")
	if err != nil {
		return nil, err
	}
	naxis2, err := h.Int("NAXIS2")
	if err != nil {
		return nil, err
	}
	tfields, err := h.Int("TFIELDS")
	if err != nil {
		return nil, err
	}
	if tfields < 0 || tfields > 999 {
		return nil, fmt.Errorf("invalid TFIELDS %d", tfields)
	}
	if naxis1 < 0 || naxis2 < 0 {
		return nil, fmt.Errorf("invalid NAXIS1 %d or NAXIS2 %d", naxis1, naxis2)
	}
	if size, ok := mulSize(naxis1, naxis2); !ok || size > int64(len(u.data)) {
		return nil, fmt.Errorf("%d rows of %d bytes exceed data unit", naxis2, naxis1)
	}
	t := &Table{hdu: u, rowLen: int(naxis1), nRows: int(naxis2)}
	off := 0
	for i := 1; i <= int(tfields); i++ {
		form, err := h.String(fmt.Sprintf("TFORM%d", i))
		if err != nil {
			return nil, err
		}
		c := Column{Format: form, Offset: off, Scale: 1}
		if c.Repeat, c.Type, c.Width, err = parseTForm(form); err != nil {
			return nil, err
		}
		c.Name, _ = h.Get(fmt.Sprintf("TTYPE%d", i))
		if c.Scale, err = h.FloatDefault(fmt.Sprintf("TSCAL%d", i), 1); err != nil {
			return nil, err
		}
		if c.Zero, err = h.FloatDefault(fmt.Sprintf("TZERO%d", i), 0); err != nil {
			return nil, err
		}
		if c.Width > t.rowLen-off {
			return nil, fmt.Errorf("columns exceed NAXIS1 %d", t.rowLen)
		}
		off += c.Width
		t.Cols = append(t.Cols, c)
	}
	if off != t.rowLen {
		return nil, fmt.Errorf("columns total %d bytes, NAXIS1 is %d", off, t.rowLen)
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.nRows
}

// Index returns the index of the named column, or -1.  An exact match is
// preferred, otherwise case is ignored.
func (t *Table) Index(name string) int {
	for i, c := range t.Cols {
		if c.Name == name {
			return i
		}
	}
	for i, c := range t.Cols {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

func (t *Table) scalar(name string) (*Column, error) {
	i := t.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("no column %q", name)
	}
	c := &t.Cols[i]
	if c.Repeat != 1 {
		return nil, fmt.Errorf("column %q has %d elements per row", name, c.Repeat)
	}
	switch c.Type {
	case 'B', 'I', 'J', 'K', 'E', 'D':
		return c, nil
	}
	return nil, fmt.Errorf("column %q format %s is not numeric", name, c.Format)
}

// Column returns the named scalar numeric column with scaling applied.
func (t *Table) Column(name string) ([]float64, error) {
	c, err := t.scalar(name)
	if err != nil {
		return nil, err
	}
	v := make([]float64, t.nRows)
	be := binary.BigEndian
	for r := range v {
		b := t.hdu.data[r*t.rowLen+c.Offset:]
		var x float64
		switch c.Type {
		case 'B':
			x = float64(b[0])
		case 'I':
			x = float64(int16(be.Uint16(b)))
		case 'J':
			x = float64(int32(be.Uint32(b)))
		case 'K':
			x = float64(int64(be.Uint64(b)))
		case 'E':
			x = float64(math.Float32frombits(be.Uint32(b)))
		case 'D':
			x = math.Float64frombits(be.Uint64(b))
		}
		if c.Scale != 1 || c.Zero != 0 {
			x = c.Zero + c.Scale*x
		}
		v[r] = x
	}
	return v, nil
}

// SetColumn stores v, one value per row, in the named scalar numeric
// column.  Scaling is removed before values are stored.
func (t *Table) SetColumn(name string, v []float64) error {
	c, err := t.scalar(name)
	if err != nil {
		return err
	}
	if len(v) != t.nRows {
		return fmt.Errorf("%d values for %d rows", len(v), t.nRows)
	}
	be := binary.BigEndian
	for r, x := range v {
		if c.Scale != 1 || c.Zero != 0 {
			x = (x - c.Zero) / c.Scale
		}
		b := t.hdu.data[r*t.rowLen+c.Offset:]
		switch c.Type {
		case 'B':
			b[0] = byte(math.Round(x))
		case 'I':
			be.PutUint16(b, uint16(int16(math.Round(x))))
		case 'J':
			be.PutUint32(b, uint32(int32(math.Round(x))))
		case 'K':
			be.PutUint64(b, uint64(int64(math.Round(x))))
		case 'E':
			be.PutUint32(b, math.Float32bits(float32(x)))
		case 'D':
			be.PutUint64(b, math.Float64bits(x))
		}
	}
	return nil
}

// Filter keeps rows where keep is true, in their original order.  The heap
// following the rows is kept and NAXIS2 and THEAP are updated.
func (t *Table) Filter(keep []bool) error {
	if len(keep) != t.nRows {
		return fmt.Errorf("mask has %d values for %d rows", len(keep), t.nRows)
	}
	old := t.rowLen * t.nRows
	data := make([]byte, 0, len(t.hdu.data))
	n := 0
	for r, k := range keep {
		if k {
			data = append(data, t.hdu.data[r*t.rowLen:(r+1)*t.rowLen]...)
			n++
		}
	}
	data = append(data, t.hdu.data[old:]...)
	h := t.hdu.Header
	if h.Has("THEAP") {
		theap, err := h.Int("THEAP")
		if err != nil {
			return err
		}
		theap -= int64(old - n*t.rowLen)
		if err := h.Set("THEAP", theap, comment(h, "THEAP")); err != nil {
			return err
		}
	}
	if err := h.Set("NAXIS2", n, comment(h, "NAXIS2")); err != nil {
		return err
	}
	t.hdu.data = data
	t.nRows = n
	return nil
}

// comment returns the comment of the key card, so a rewritten card can
// keep it.
func comment(h *Header, key string) string {
	i := h.index(key)
	if i < 0 {
		return ""
	}
	c := h.cards[i]
	v := strings.TrimLeft(c[10:], " ")
	if strings.HasPrefix(v, "'") {
		// skip the string, doubled quotes and all
		j := 1
		for ; j < len(v); j++ {
			if v[j] == '\'' {
				if j+1 < len(v) && v[j+1] == '\'' {
					j++
					continue
				}
				break
			}
		}
		v = v[j+1:]
	}
	if k := strings.IndexByte(v, '/'); k >= 0 {
		return strings.TrimSpace(v[k+1:])
	}
	return ""
}

// ColumnSpec names a column and its TFORM for NewBinTable.
type ColumnSpec struct {
	Name, Format string
}

// NewBinTable returns a binary table extension of nRows zeroed rows.
func NewBinTable(cols []ColumnSpec, nRows int) (*HDU, error) {
	if nRows < 0 {
		return nil, fmt.Errorf("negative row count %d", nRows)
	}
	rowLen := 0
	for _, c := range cols {
		_, _, w, err := parseTForm(c.Format)
		if err != nil {
			return nil, err
		}
		if w > math.MaxInt-rowLen {
			return nil, fmt.Errorf("column %s overflows row length", c.Name)
		}
		rowLen += w
	}
	size, ok := mulSize(int64(rowLen), int64(nRows))
	if !ok || size > math.MaxInt {
		return nil, fmt.Errorf("%d rows of %d bytes overflow", nRows, rowLen)
	}
	h := &Header{}
	set := func(key string, v interface{}, c string) {
		if err := h.Set(key, v, c); err != nil {
			panic(err) // keys here are valid
		}
	}
	set("XTENSION", "BINTABLE", "binary table extension")
	set("BITPIX", 8, "array data type")
	set("NAXIS", 2, "number of array dimensions")
	set("NAXIS1", rowLen, "length of dimension 1")
	set("NAXIS2", nRows, "length of dimension 2")
	set("PCOUNT", 0, "number of group parameters")
	set("GCOUNT", 1, "number of groups")
	set("TFIELDS", len(cols), "number of table fields")
	for i, c := range cols {
		set(fmt.Sprintf("TTYPE%d", i+1), c.Name, "")
		set(fmt.Sprintf("TFORM%d", i+1), c.Format, "")
	}
	return &HDU{Header: h, data: make([]byte, size)}, nil
}
