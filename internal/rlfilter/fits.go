// Public domain.

package rlfilter

import (
	"fmt"

	"github.com/soniakeys/removelines/internal/rlfits"
)

// Open reads the named FITS source list.
func Open(name string) (Catalog, error) {
	f, err := rlfits.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return fitsCatalog{f}, nil
}

type fitsCatalog struct {
	f *rlfits.File
}

func (c fitsCatalog) Extension(ext int) (Table, error) {
	if ext < 0 || ext >= len(c.f.HDUs) {
		return nil, fmt.Errorf("extension %d not found, file has %d HDUs",
			ext, len(c.f.HDUs))
	}
	u := c.f.HDUs[ext]
	if u.XTension() != "BINTABLE" {
		if !u.HasData() {
			return nil, nil
		}
		return nil, fmt.Errorf("extension %d is not a binary table", ext)
	}
	t, err := u.Table()
	if err != nil {
		return nil, fmt.Errorf("extension %d: %w", ext, err)
	}
	return fitsTable{t, u.Header}, nil
}

func (c fitsCatalog) WriteFile(name string) error {
	return c.f.WriteFile(name)
}

type fitsTable struct {
	*rlfits.Table
	h *rlfits.Header
}

func (t fitsTable) AddHistory(text string) {
	t.h.AddHistory(text)
}

func (t fitsTable) SetField(key string, value int, comment string) error {
	return t.h.Set(key, value, comment)
}
