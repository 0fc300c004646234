// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package schemachange remaps the rows of one block into another block laid
// out under a different schema: columns move by mapping table, absent
// columns fill from defaults, and compatible types widen. All conversion
// compatibility is settled when the Changer is built; remapping itself
// cannot fail on data.
package schemachange

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/lxqfy/incubator-doris/internal/base"
	"github.com/lxqfy/incubator-doris/olap/rowblk"
	"github.com/lxqfy/incubator-doris/olap/rowcursor"
	"github.com/lxqfy/incubator-doris/olap/schema"
)

// ErrUnsupportedConversion is returned by MakeChanger for a column mapping
// whose source type cannot be converted to the destination type.
var ErrUnsupportedConversion = errors.New("schemachange: unsupported field conversion")

// ColumnMapping describes where one destination column takes its values
// from.
type ColumnMapping struct {
	// From is the source layout's materialized column index, or -1 to fill
	// the destination column from the default.
	From int
	// DefaultNull fills the column with NULL. The destination column must be
	// nullable.
	DefaultNull bool
	// Default is the default value for From == -1: the value encoding for
	// fixed-width columns (char values may be shorter than the column and
	// are zero-padded), the raw payload for variable-length columns.
	Default []byte
}

// Options configures a Changer.
type Options struct {
	// Logger for the per-block conversion summary. Defaults to
	// base.DefaultLogger.
	Logger base.Logger
}

// A Changer remaps rows between two layouts. Build one per schema change and
// drive it over the tablet's blocks; it is not thread-safe and holds
// per-conversion cursor state.
type Changer struct {
	src, dst schema.Layout
	mappings []ColumnMapping
	logger   base.Logger
	// directCopy is set when every column maps to itself between identical
	// layouts with no pool-backed fields, letting rows move by stride copy.
	directCopy bool

	srcCur, dstCur rowcursor.Cursor
}

// MakeChanger validates the mapping table against the two layouts and
// returns a Changer. mappings has one entry per destination column.
func MakeChanger(src, dst schema.Layout, mappings []ColumnMapping, opts Options) (*Changer, error) {
	if len(mappings) != dst.NumColumns() {
		return nil, errors.Newf("schemachange: %d mappings for %d destination columns",
			len(mappings), dst.NumColumns())
	}
	for i := range mappings {
		m := &mappings[i]
		df := dst.Field(i)
		if m.From < 0 {
			if err := validateDefault(m, df, dst.NullSupported()); err != nil {
				return nil, err
			}
			continue
		}
		if m.From >= src.NumColumns() {
			return nil, errors.Newf("schemachange: destination column %d maps from %d, source has %d columns",
				i, m.From, src.NumColumns())
		}
		sf := src.Field(m.From)
		if !convertible(sf, df) {
			return nil, errors.WithDetailf(ErrUnsupportedConversion,
				"%s -> %s for destination column %d", sf.Type, df.Type, i)
		}
		// A NULL can only arrive from a nullable source field of a
		// null-supporting layout, and then the destination must accept it.
		if src.NullSupported() && sf.Nullable && !(dst.NullSupported() && df.Nullable) {
			return nil, errors.Newf("schemachange: nullable column id %d maps to non-nullable column id %d",
				sf.ID, df.ID)
		}
	}

	ch := &Changer{
		src:        src,
		dst:        dst,
		mappings:   append([]ColumnMapping(nil), mappings...),
		logger:     opts.Logger,
		directCopy: directCopyable(src, dst, mappings),
	}
	if ch.logger == nil {
		ch.logger = base.DefaultLogger{}
	}
	ch.srcCur.Init(src)
	ch.dstCur.Init(dst)
	return ch, nil
}

func validateDefault(m *ColumnMapping, df schema.FieldInfo, nullSupported bool) error {
	if m.DefaultNull {
		if !nullSupported || !df.Nullable {
			return errors.Newf("schemachange: NULL default for non-nullable column id %d", df.ID)
		}
		return nil
	}
	switch {
	case df.Type.IsVariableLength():
		// Any payload length.
	case df.Type == schema.TypeChar:
		if len(m.Default) > df.Width {
			return errors.Newf("schemachange: %d byte default for char(%d) column id %d",
				len(m.Default), df.Width, df.ID)
		}
	default:
		if len(m.Default) != df.Width {
			return errors.Newf("schemachange: %d byte default for %d byte column id %d",
				len(m.Default), df.Width, df.ID)
		}
	}
	return nil
}

// convertible reports whether source values of sf can become destination
// values of df: same type (chars may only widen), integer widening, float to
// double, and char to varchar.
func convertible(sf, df schema.FieldInfo) bool {
	if sf.Type == df.Type {
		if df.Type == schema.TypeChar {
			return df.Width >= sf.Width
		}
		return true
	}
	switch df.Type {
	case schema.TypeSmallInt:
		return sf.Type == schema.TypeTinyInt
	case schema.TypeInt:
		return sf.Type == schema.TypeTinyInt || sf.Type == schema.TypeSmallInt
	case schema.TypeBigInt:
		return sf.Type.IsInteger()
	case schema.TypeDouble:
		return sf.Type == schema.TypeFloat
	case schema.TypeVarchar:
		return sf.Type == schema.TypeChar
	default:
		return false
	}
}

func directCopyable(src, dst schema.Layout, mappings []ColumnMapping) bool {
	if src.Fingerprint() != dst.Fingerprint() {
		return false
	}
	for i := range mappings {
		if mappings[i].From != i {
			return false
		}
	}
	for _, f := range dst.Fields() {
		if f.Type.IsVariableLength() {
			return false
		}
	}
	return true
}

// ChangeRowBlock remaps every row of src into dst and finalizes dst with
// src's row count and status. dst must be freshly Init-ed or Cleared with
// capacity for src's rows and must be laid out per the Changer's destination
// layout.
func (ch *Changer) ChangeRowBlock(src, dst *rowblk.Block) error {
	if src.Layout().Fingerprint() != ch.src.Fingerprint() ||
		dst.Layout().Fingerprint() != ch.dst.Fingerprint() {
		panic(errors.AssertionFailedf("schemachange: blocks do not match the Changer's layouts"))
	}
	n := src.RowNum()
	if n > dst.Capacity() {
		return errors.WithDetailf(rowblk.ErrCapacityExceeded,
			"source rows=%d destination capacity=%d", n, dst.Capacity())
	}

	if ch.directCopy {
		srcRaw, dstRaw := src.Raw(), dst.Raw()
		for i := 0; i < n; i++ {
			copy(dstRaw.RowBytes(i), srcRaw.RowBytes(i))
		}
	} else {
		for i := 0; i < n; i++ {
			src.GetRow(i, &ch.srcCur)
			dst.GetRow(i, &ch.dstCur)
			for di := range ch.mappings {
				ch.convertField(di)
			}
		}
	}
	if err := dst.Finalize(n); err != nil {
		return err
	}
	dst.SetStatus(src.Status())
	ch.logger.Infof("schemachange: remapped %d rows into %d columns, pool %s",
		n, ch.dst.NumColumns(), dst.Pool().Metrics())
	return nil
}

func (ch *Changer) convertField(di int) {
	m := &ch.mappings[di]
	if m.From < 0 {
		ch.applyDefault(di)
		return
	}
	si := m.From
	src, dst := &ch.srcCur, &ch.dstCur
	if src.IsNull(si) {
		dst.SetNull(di)
		return
	}
	df := ch.dst.Field(di)
	sf := ch.src.Field(si)
	switch df.Type {
	case schema.TypeTinyInt:
		dst.SetInt8(di, src.Int8(si))
	case schema.TypeSmallInt:
		switch sf.Type {
		case schema.TypeTinyInt:
			dst.SetInt16(di, int16(src.Int8(si)))
		default:
			dst.SetInt16(di, src.Int16(si))
		}
	case schema.TypeInt:
		switch sf.Type {
		case schema.TypeTinyInt:
			dst.SetInt32(di, int32(src.Int8(si)))
		case schema.TypeSmallInt:
			dst.SetInt32(di, int32(src.Int16(si)))
		default:
			dst.SetInt32(di, src.Int32(si))
		}
	case schema.TypeBigInt:
		switch sf.Type {
		case schema.TypeTinyInt:
			dst.SetInt64(di, int64(src.Int8(si)))
		case schema.TypeSmallInt:
			dst.SetInt64(di, int64(src.Int16(si)))
		case schema.TypeInt:
			dst.SetInt64(di, int64(src.Int32(si)))
		default:
			dst.SetInt64(di, src.Int64(si))
		}
	case schema.TypeFloat:
		dst.SetFloat32(di, src.Float32(si))
	case schema.TypeDouble:
		switch sf.Type {
		case schema.TypeFloat:
			dst.SetFloat64(di, float64(src.Float32(si)))
		default:
			dst.SetFloat64(di, src.Float64(si))
		}
	case schema.TypeChar:
		dst.SetFixedBytes(di, src.FixedBytes(si))
	case schema.TypeVarchar:
		switch sf.Type {
		case schema.TypeChar:
			// Chars are zero-padded to their width; the varchar value is the
			// unpadded prefix.
			dst.SetBytes(di, bytes.TrimRight(src.FixedBytes(si), "\x00"))
		default:
			dst.SetBytes(di, src.Bytes(si))
		}
	default:
		dst.SetBytes(di, src.Bytes(si))
	}
}

func (ch *Changer) applyDefault(di int) {
	m := &ch.mappings[di]
	dst := &ch.dstCur
	df := ch.dst.Field(di)
	switch {
	case m.DefaultNull:
		dst.SetNull(di)
	case df.Type.IsVariableLength():
		dst.SetBytes(di, m.Default)
	case df.Type == schema.TypeChar:
		dst.SetFixedBytes(di, m.Default)
	default:
		dst.SetRawValue(di, m.Default)
	}
}
