// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package schema

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// FieldInfo describes one materialized column of a row layout.
type FieldInfo struct {
	ID       ColumnID
	Type     FieldType
	Length   int
	Nullable bool
	IsKey    bool
	// Width is the in-row width in bytes of the value, excluding the null
	// indicator byte.
	Width int
	// Offset is the field's in-row offset. When the layout supports nulls it
	// is the offset of the null indicator byte, with the value bytes directly
	// after; otherwise it is the offset of the value bytes.
	Offset int
	// ValueOffset is the in-row offset of the value bytes.
	ValueOffset int
}

// Layout is the computed in-row placement of a set of materialized columns:
// each row of a block is a fixed-stride byte slot and every field of it lives
// at a fixed offset. When nulls are supported, each field is preceded by a
// one-byte null indicator (1 = NULL), so
//
//	stride = sum over fields of (1 + value width)
//
// and a field's stored offset addresses its null byte. Without null support
// the indicator bytes are absent.
//
// A Layout is immutable once made and is freely copyable; copies share the
// field table.
type Layout struct {
	fields        []FieldInfo
	numKeyFields  int
	stride        int
	nullSupported bool
	fingerprint   uint64
}

// MakeLayout computes the layout of the given columns, in schema order. An
// empty columnIDs materializes every column of the schema. Column ids must be
// known, unique, and ordered by schema ordinal.
func MakeLayout(s *Schema, columnIDs []ColumnID, nullSupported bool) (Layout, error) {
	ordinals := make([]int, 0, len(columnIDs))
	if len(columnIDs) == 0 {
		for i := 0; i < s.NumColumns(); i++ {
			ordinals = append(ordinals, i)
		}
	} else {
		prev := -1
		for _, id := range columnIDs {
			ord, ok := s.ColumnIndexByID(id)
			if !ok {
				return Layout{}, errors.Newf("schema: unknown column id %d", id)
			}
			if ord <= prev {
				return Layout{}, errors.Newf("schema: column id %d out of schema order", id)
			}
			prev = ord
			ordinals = append(ordinals, ord)
		}
	}

	l := Layout{
		fields:        make([]FieldInfo, len(ordinals)),
		nullSupported: nullSupported,
	}
	offset := 0
	for i, ord := range ordinals {
		c := s.Column(ord)
		f := &l.fields[i]
		*f = FieldInfo{
			ID:          c.ID,
			Type:        c.Type,
			Length:      c.Length,
			Nullable:    c.Nullable,
			IsKey:       c.IsKey,
			Width:       c.FieldWidth(),
			Offset:      offset,
			ValueOffset: offset,
		}
		if nullSupported {
			f.ValueOffset++
			offset += 1 + f.Width
		} else {
			offset += f.Width
		}
		// Key search needs the key columns to be a materialized prefix; count
		// how far that holds.
		if ord == i && c.IsKey && l.numKeyFields == i {
			l.numKeyFields++
		}
	}
	l.stride = offset
	l.fingerprint = computeFingerprint(l.fields, nullSupported)
	return l, nil
}

// Stride returns the row width in bytes. A zero-column layout has stride 0.
func (l Layout) Stride() int {
	return l.stride
}

// NumColumns returns the number of materialized columns.
func (l Layout) NumColumns() int {
	return len(l.fields)
}

// NumKeyColumns returns the number of key columns materialized as a prefix of
// the layout. Searches compare over this prefix.
func (l Layout) NumKeyColumns() int {
	return l.numKeyFields
}

// NullSupported reports whether rows carry null indicator bytes.
func (l Layout) NullSupported() bool {
	return l.nullSupported
}

// Field returns the i'th materialized column.
func (l Layout) Field(i int) FieldInfo {
	return l.fields[i]
}

// Fields returns the materialized columns in layout order. The returned slice
// is shared; callers must not modify it.
func (l Layout) Fields() []FieldInfo {
	return l.fields
}

// FieldOffset returns the stored in-row offset of the i'th materialized
// column: the null indicator byte when nulls are supported, the value bytes
// otherwise.
func (l Layout) FieldOffset(i int) int {
	return l.fields[i].Offset
}

// Prefix returns the layout over the first n materialized columns. Offsets
// are shared with l; the stride shrinks to cover only those columns. It is
// used to build search keys that materialize a prefix of the key columns.
func (l Layout) Prefix(n int) Layout {
	if n >= len(l.fields) {
		return l
	}
	sub := Layout{
		fields:        l.fields[:n:n],
		numKeyFields:  min(l.numKeyFields, n),
		stride:        l.fields[n].Offset,
		nullSupported: l.nullSupported,
	}
	sub.fingerprint = computeFingerprint(sub.fields, sub.nullSupported)
	return sub
}

// Fingerprint returns a hash of the layout's identity: the null mode and each
// field's id, type and width, in order. Two layouts lay rows out
// byte-compatibly iff their fingerprints match. Hot paths never check it;
// invariant builds use it to catch cursors and blocks disagreeing on layout.
func (l Layout) Fingerprint() uint64 {
	return l.fingerprint
}

func computeFingerprint(fields []FieldInfo, nullSupported bool) uint64 {
	h := xxhash.New()
	var scratch [9]byte
	if nullSupported {
		scratch[0] = 1
	}
	_, _ = h.Write(scratch[:1])
	for i := range fields {
		f := &fields[i]
		binary.LittleEndian.PutUint32(scratch[0:4], uint32(f.ID))
		scratch[4] = byte(f.Type)
		binary.LittleEndian.PutUint32(scratch[5:9], uint32(f.Width))
		_, _ = h.Write(scratch[:9])
	}
	return h.Sum64()
}

// String returns a multi-line description of the layout, one field per line.
func (l Layout) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stride=%d null-supported=%t\n", l.stride, l.nullSupported)
	for i := range l.fields {
		f := &l.fields[i]
		fmt.Fprintf(&sb, "%d: id=%d type=%s offset=%d width=%d", i, f.ID, f.Type, f.Offset, f.Width)
		if f.IsKey {
			sb.WriteString(" key")
		}
		if f.Nullable {
			sb.WriteString(" nullable")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
