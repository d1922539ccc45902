// Public domain.

// Package rlconf reads removelines configuration files.
//
// A configuration file is YAML with any of these keys:
//
//	x_column: X
//	y_column: Y
//	extension: 1
//	cut: 100
//	bin_width: 1
//	bin_offset: 0.5
//	exact: false
//
// Keys not present keep their default values.
package rlconf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soniakeys/removelines/internal/rlfilter"
	"github.com/soniakeys/removelines/internal/rlhist"
)

type config struct {
	XColumn   *string  `yaml:"x_column"`
	YColumn   *string  `yaml:"y_column"`
	Extension *int     `yaml:"extension"`
	Cut       *float64 `yaml:"cut"`
	BinWidth  *float64 `yaml:"bin_width"`
	BinOffset *float64 `yaml:"bin_offset"`
	Exact     *bool    `yaml:"exact"`
}

// Read applies the configuration in r to o.
func Read(r io.Reader, o *rlfilter.Options) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c config
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if c.XColumn != nil {
		o.XCol = *c.XColumn
	}
	if c.YColumn != nil {
		o.YCol = *c.YColumn
	}
	if c.Extension != nil {
		o.Ext = *c.Extension
	}
	if c.Cut != nil {
		o.Cut = *c.Cut
	}
	if c.BinWidth != nil {
		o.BinWidth = *c.BinWidth
	}
	if c.BinOffset != nil {
		o.BinOffset = *c.BinOffset
	}
	if c.Exact != nil {
		o.Model = rlhist.Compat
		if *c.Exact {
			o.Model = rlhist.Poisson
		}
	}
	return nil
}

// ReadFile applies the named configuration file to o.
func ReadFile(name string, o *rlfilter.Options) error {
	b, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if err := Read(bytes.NewReader(b), o); err != nil {
		return fmt.Errorf("config file %s: %w", name, err)
	}
	return nil
}
