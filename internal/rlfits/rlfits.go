// Public domain.

// Package rlfits reads and writes the subset of FITS needed to filter
// source lists.
//
// A file is held in memory as a list of HDUs, each a header and a raw data
// unit.  HDUs that are not modified are written back exactly as read.
// Binary table extensions can be read a column at a time and filtered by
// row.  Nothing else about the data is interpreted.
package rlfits

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	BlockSize = 2880
	CardSize  = 80
)

var endCard = pad80("END")

// FormatError describes a file that does not parse as FITS.
type FormatError struct {
	HDU int
	Msg string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("fits HDU %d: %s", e.HDU, e.Msg)
}

// File is a FITS file.
type File struct {
	HDUs []*HDU
}

// HDU is one header and data unit.
type HDU struct {
	Header *Header
	data   []byte // without block padding
}

// Data returns the data unit, without block padding.
func (u *HDU) Data() []byte {
	return u.data
}

// HasData reports whether the data unit is non-empty.
func (u *HDU) HasData() bool {
	return len(u.data) > 0
}

// XTension returns the extension type, or "" for the primary HDU.
func (u *HDU) XTension() string {
	x, _ := u.Header.Get("XTENSION")
	return x
}

// ReadFile reads the named FITS file.
func ReadFile(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read reads a FITS file from r.  Blocks of zeros after the last HDU are
// ignored.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	var f File
	for n := 0; ; n++ {
		h, err := readHeader(br, n)
		if err == io.EOF {
			if n == 0 {
				return nil, &FormatError{0, "empty file"}
			}
			return &f, nil
		}
		if err != nil {
			return nil, err
		}
		size, err := dataSize(h, n == 0)
		if err != nil {
			return nil, &FormatError{n, err.Error()}
		}
		// buf grows with the bytes read, not with the size claimed
		var buf bytes.Buffer
		if _, err := io.CopyN(&buf, br, int64(padded(size))); err != nil {
			if err == io.EOF {
				return nil, &FormatError{n, "truncated data unit"}
			}
			return nil, err
		}
		u := &HDU{Header: h}
		if size > 0 {
			u.data = buf.Bytes()[:size]
		}
		f.HDUs = append(f.HDUs, u)
	}
}

// readHeader returns io.EOF at a clean end of file.
func readHeader(r io.Reader, n int) (*Header, error) {
	var h Header
	block := make([]byte, BlockSize)
	for first := true; ; first = false {
		if _, err := io.ReadFull(r, block); err != nil {
			switch {
			case first && err == io.EOF:
				return nil, io.EOF
			case err == io.EOF || err == io.ErrUnexpectedEOF:
				return nil, &FormatError{n, "truncated header"}
			}
			return nil, err
		}
		if first {
			if n > 0 && block[0] == 0 && bytes.Count(block, []byte{0}) == BlockSize {
				return nil, io.EOF
			}
			want := "SIMPLE"
			if n > 0 {
				want = "XTENSION"
			}
			if cardKey(string(block[:CardSize])) != want {
				return nil, &FormatError{n, "header does not begin with " + want}
			}
		}
		for i := 0; i < BlockSize; i += CardSize {
			c := string(block[i : i+CardSize])
			if cardKey(c) == "END" {
				return &h, nil
			}
			h.cards = append(h.cards, c)
		}
	}
}

// dataSize computes the data unit size in bytes from the header.
func dataSize(h *Header, primary bool) (int, error) {
	bitpix, err := h.Int("BITPIX")
	if err != nil {
		return 0, err
	}
	switch bitpix {
	case 8, 16, 32, 64, -32, -64:
	default:
		return 0, fmt.Errorf("invalid BITPIX %d", bitpix)
	}
	naxis, err := h.Int("NAXIS")
	if err != nil {
		return 0, err
	}
	if naxis < 0 || naxis > 999 {
		return 0, fmt.Errorf("invalid NAXIS %d", naxis)
	}
	if naxis == 0 {
		return 0, nil
	}
	groups := false
	if primary && h.Has("GROUPS") {
		if groups, err = h.Bool("GROUPS"); err != nil {
			return 0, err
		}
	}
	n := int64(1)
	for i := int64(1); i <= naxis; i++ {
		ni, err := h.Int(fmt.Sprintf("NAXIS%d", i))
		if err != nil {
			return 0, err
		}
		if ni < 0 {
			return 0, fmt.Errorf("negative NAXIS%d", i)
		}
		if i == 1 && groups && ni == 0 {
			continue
		}
		var ok bool
		if n, ok = mulSize(n, ni); !ok {
			return 0, fmt.Errorf("NAXIS%d overflows data size", i)
		}
	}
	pcount, err := h.IntDefault("PCOUNT", 0)
	if err != nil {
		return 0, err
	}
	gcount, err := h.IntDefault("GCOUNT", 1)
	if err != nil {
		return 0, err
	}
	if pcount < 0 || gcount < 0 {
		return 0, fmt.Errorf("invalid PCOUNT %d or GCOUNT %d", pcount, gcount)
	}
	if bitpix < 0 {
		bitpix = -bitpix
	}
	size, ok := int64(0), pcount <= math.MaxInt64-n
	if ok {
		size, ok = mulSize(gcount, pcount+n)
	}
	if ok {
		size, ok = mulSize(bitpix/8, size)
	}
	// leave room for block padding
	if !ok || size > math.MaxInt-BlockSize {
		return 0, errors.New("data size overflows")
	}
	return int(size), nil
}

// mulSize returns a*b for non-negative a and b.  The result is false if
// the product overflows.
func mulSize(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

func padded(n int) int {
	return (n + BlockSize - 1) / BlockSize * BlockSize
}

// WriteFile writes f to the named file, replacing any existing file.
func (f *File) WriteFile(name string) error {
	fh, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = f.Write(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Write writes all HDUs of f to w.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, u := range f.HDUs {
		if err := u.write(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (u *HDU) write(w io.Writer) error {
	hb := make([]byte, 0, padded((len(u.Header.cards)+1)*CardSize))
	for _, c := range u.Header.cards {
		hb = append(hb, pad80(c)...)
	}
	hb = append(hb, endCard...)
	hb = append(hb, bytes.Repeat([]byte{' '}, padded(len(hb))-len(hb))...)
	if _, err := w.Write(hb); err != nil {
		return err
	}
	if len(u.data) == 0 {
		return nil
	}
	if _, err := w.Write(u.data); err != nil {
		return err
	}
	fill := byte(0)
	if u.XTension() == "TABLE" {
		fill = ' '
	}
	_, err := w.Write(bytes.Repeat([]byte{fill}, padded(len(u.data))-len(u.data)))
	return err
}

// NewPrimary returns a primary HDU with no data.
func NewPrimary() *HDU {
	h := &Header{}
	h.Set("SIMPLE", true, "conforms to FITS standard")
	h.Set("BITPIX", 8, "array data type")
	h.Set("NAXIS", 0, "number of array dimensions")
	h.Set("EXTEND", true, "")
	return &HDU{Header: h}
}
