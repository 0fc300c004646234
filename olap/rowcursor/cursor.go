// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package rowcursor provides a movable, layout-driven view over a single row:
// typed field access, null handling, and the key comparison that row block
// searches are built on.
package rowcursor

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/lxqfy/incubator-doris/internal/invariants"
	"github.com/lxqfy/incubator-doris/internal/mempool"
	"github.com/lxqfy/incubator-doris/olap/schema"
)

// A Cursor is a view over one row laid out per a schema.Layout. A cursor
// either owns its row storage (InitOwned, for building standalone rows and
// search keys) or is attached to a row slot inside a block (Init + Attach).
// Attached cursors are weak views: they must not outlive the buffer they are
// attached to, nor a Clear or re-Init cycle of the owning block.
//
// Field accessors address fields by their index in the layout's materialized
// column order and must match the field's type; mismatches are caller errors,
// checked only in invariant builds.
//
// A Cursor is not thread-safe.
type Cursor struct {
	fields        []schema.FieldInfo
	layout        schema.Layout
	row           []byte
	pool          *mempool.Pool
	nullSupported bool

	// ownBuf and ownPool back the row of an InitOwned cursor. They are
	// retained across re-inits.
	ownBuf  []byte
	ownPool mempool.Pool
}

// Init prepares the cursor to view rows of the given layout. The cursor has
// no row until Attach is called.
func (c *Cursor) Init(l schema.Layout) {
	c.layout = l
	c.fields = l.Fields()
	c.nullSupported = l.NullSupported()
	c.row = nil
	c.pool = nil
}

// InitOwned prepares the cursor with its own zeroed row buffer and its own
// memory pool, for building rows independent of any block. Buffers are
// reused across calls.
func (c *Cursor) InitOwned(l schema.Layout) {
	c.Init(l)
	if cap(c.ownBuf) < l.Stride() {
		c.ownBuf = make([]byte, l.Stride())
	} else {
		c.ownBuf = c.ownBuf[:l.Stride()]
		clear(c.ownBuf)
	}
	if c.ownPool.Initialized() {
		c.ownPool.Clear()
	} else {
		c.ownPool.Init(0)
	}
	c.row = c.ownBuf
	c.pool = &c.ownPool
}

// Attach binds the cursor to an externally owned row and the pool that backs
// the row's variable-length payloads.
func (c *Cursor) Attach(row []byte, pool *mempool.Pool) {
	if invariants.Enabled && len(row) < c.layout.Stride() {
		panic(errors.AssertionFailedf("rowcursor: attached row has %d bytes, layout needs %d",
			len(row), c.layout.Stride()))
	}
	c.row = row
	c.pool = pool
}

// Layout returns the cursor's layout.
func (c *Cursor) Layout() schema.Layout {
	return c.layout
}

// LayoutFingerprint returns the fingerprint of the cursor's layout.
func (c *Cursor) LayoutFingerprint() uint64 {
	return c.layout.Fingerprint()
}

// RowBytes returns the cursor's row: exactly Stride bytes. It aliases the
// attached buffer.
func (c *Cursor) RowBytes() []byte {
	return c.row
}

// IsNull reports whether the i'th field is NULL. Rows of a layout without
// null support are never NULL.
func (c *Cursor) IsNull(i int) bool {
	if !c.nullSupported {
		return false
	}
	return c.row[c.fields[i].Offset] != 0
}

// SetNull sets the i'th field to NULL. The layout must support nulls and the
// column must be nullable; violations are checked in invariant builds only.
func (c *Cursor) SetNull(i int) {
	if !c.nullSupported {
		if invariants.Enabled {
			panic(errors.AssertionFailedf("rowcursor: SetNull on a layout without null support"))
		}
		return
	}
	if invariants.Enabled && !c.fields[i].Nullable {
		panic(errors.AssertionFailedf("rowcursor: SetNull on non-nullable column id %d", c.fields[i].ID))
	}
	c.row[c.fields[i].Offset] = 1
}

func (c *Cursor) clearNull(f *schema.FieldInfo) {
	if c.nullSupported {
		c.row[f.Offset] = 0
	}
}

func (c *Cursor) checkType(f *schema.FieldInfo, t schema.FieldType) {
	if invariants.Enabled && f.Type != t {
		panic(errors.AssertionFailedf("rowcursor: column id %d is %s, accessed as %s", f.ID, f.Type, t))
	}
}

// Int8 returns the i'th field as a tinyint.
func (c *Cursor) Int8(i int) int8 {
	f := &c.fields[i]
	c.checkType(f, schema.TypeTinyInt)
	return int8(c.row[f.ValueOffset])
}

// SetInt8 sets the i'th field to a tinyint value and clears its null byte.
func (c *Cursor) SetInt8(i int, v int8) {
	f := &c.fields[i]
	c.checkType(f, schema.TypeTinyInt)
	c.clearNull(f)
	c.row[f.ValueOffset] = byte(v)
}

// Int16 returns the i'th field as a smallint.
func (c *Cursor) Int16(i int) int16 {
	f := &c.fields[i]
	c.checkType(f, schema.TypeSmallInt)
	return int16(binary.LittleEndian.Uint16(c.row[f.ValueOffset:]))
}

// SetInt16 sets the i'th field to a smallint value and clears its null byte.
func (c *Cursor) SetInt16(i int, v int16) {
	f := &c.fields[i]
	c.checkType(f, schema.TypeSmallInt)
	c.clearNull(f)
	binary.LittleEndian.PutUint16(c.row[f.ValueOffset:], uint16(v))
}

// Int32 returns the i'th field as an int.
func (c *Cursor) Int32(i int) int32 {
	f := &c.fields[i]
	c.checkType(f, schema.TypeInt)
	return int32(binary.LittleEndian.Uint32(c.row[f.ValueOffset:]))
}

// SetInt32 sets the i'th field to an int value and clears its null byte.
func (c *Cursor) SetInt32(i int, v int32) {
	f := &c.fields[i]
	c.checkType(f, schema.TypeInt)
	c.clearNull(f)
	binary.LittleEndian.PutUint32(c.row[f.ValueOffset:], uint32(v))
}

// Int64 returns the i'th field as a bigint.
func (c *Cursor) Int64(i int) int64 {
	f := &c.fields[i]
	c.checkType(f, schema.TypeBigInt)
	return int64(binary.LittleEndian.Uint64(c.row[f.ValueOffset:]))
}

// SetInt64 sets the i'th field to a bigint value and clears its null byte.
func (c *Cursor) SetInt64(i int, v int64) {
	f := &c.fields[i]
	c.checkType(f, schema.TypeBigInt)
	c.clearNull(f)
	binary.LittleEndian.PutUint64(c.row[f.ValueOffset:], uint64(v))
}

// Float32 returns the i'th field as a float.
func (c *Cursor) Float32(i int) float32 {
	f := &c.fields[i]
	c.checkType(f, schema.TypeFloat)
	return math.Float32frombits(binary.LittleEndian.Uint32(c.row[f.ValueOffset:]))
}

// SetFloat32 sets the i'th field to a float value and clears its null byte.
func (c *Cursor) SetFloat32(i int, v float32) {
	f := &c.fields[i]
	c.checkType(f, schema.TypeFloat)
	c.clearNull(f)
	binary.LittleEndian.PutUint32(c.row[f.ValueOffset:], math.Float32bits(v))
}

// Float64 returns the i'th field as a double.
func (c *Cursor) Float64(i int) float64 {
	f := &c.fields[i]
	c.checkType(f, schema.TypeDouble)
	return math.Float64frombits(binary.LittleEndian.Uint64(c.row[f.ValueOffset:]))
}

// SetFloat64 sets the i'th field to a double value and clears its null byte.
func (c *Cursor) SetFloat64(i int, v float64) {
	f := &c.fields[i]
	c.checkType(f, schema.TypeDouble)
	c.clearNull(f)
	binary.LittleEndian.PutUint64(c.row[f.ValueOffset:], math.Float64bits(v))
}

// FixedBytes returns the i'th field's value bytes; the field must be a char
// column. The slice aliases the row.
func (c *Cursor) FixedBytes(i int) []byte {
	f := &c.fields[i]
	c.checkType(f, schema.TypeChar)
	return c.row[f.ValueOffset : f.ValueOffset+f.Width : f.ValueOffset+f.Width]
}

// SetFixedBytes sets the i'th field of a char column, right-padding with
// zeroes. b must not exceed the column length.
func (c *Cursor) SetFixedBytes(i int, b []byte) {
	f := &c.fields[i]
	c.checkType(f, schema.TypeChar)
	if len(b) > f.Width {
		panic(errors.AssertionFailedf("rowcursor: %d bytes exceed char(%d) column id %d",
			len(b), f.Width, f.ID))
	}
	c.clearNull(f)
	n := copy(c.row[f.ValueOffset:f.ValueOffset+f.Width], b)
	clear(c.row[f.ValueOffset+n : f.ValueOffset+f.Width])
}

// Bytes returns the i'th field's payload; the field must be a
// variable-length column. The slice aliases pool memory and is invalidated
// when the pool is cleared. An empty payload reads as nil.
func (c *Cursor) Bytes(i int) []byte {
	f := &c.fields[i]
	c.checkVarLen(f)
	offset := binary.LittleEndian.Uint32(c.row[f.ValueOffset:])
	length := binary.LittleEndian.Uint32(c.row[f.ValueOffset+4:])
	return c.pool.Bytes(offset, int(length))
}

// SetBytes sets the i'th field of a variable-length column: the payload is
// copied into the cursor's pool and the field stores its descriptor.
func (c *Cursor) SetBytes(i int, b []byte) {
	f := &c.fields[i]
	c.checkVarLen(f)
	offset := c.pool.Alloc(len(b))
	copy(c.pool.Bytes(offset, len(b)), b)
	c.clearNull(f)
	binary.LittleEndian.PutUint32(c.row[f.ValueOffset:], offset)
	binary.LittleEndian.PutUint32(c.row[f.ValueOffset+4:], uint32(len(b)))
}

func (c *Cursor) checkVarLen(f *schema.FieldInfo) {
	if invariants.Enabled && !f.Type.IsVariableLength() {
		panic(errors.AssertionFailedf("rowcursor: column id %d is %s, accessed as variable-length", f.ID, f.Type))
	}
}

// ValueBytes returns the i'th field's inline bytes: the value itself for
// fixed-width fields, the pool descriptor for variable-length fields. The
// slice aliases the row.
func (c *Cursor) ValueBytes(i int) []byte {
	f := &c.fields[i]
	return c.row[f.ValueOffset : f.ValueOffset+f.Width : f.ValueOffset+f.Width]
}

// SetRawValue sets the i'th field from its value encoding and clears its
// null byte. The field must be fixed-width and b exactly Width bytes;
// variable-length descriptors cannot be transplanted between pools.
func (c *Cursor) SetRawValue(i int, b []byte) {
	f := &c.fields[i]
	if invariants.Enabled {
		if f.Type.IsVariableLength() {
			panic(errors.AssertionFailedf("rowcursor: SetRawValue on variable-length column id %d", f.ID))
		}
		if len(b) != f.Width {
			panic(errors.AssertionFailedf("rowcursor: %d raw bytes for %d byte column id %d", len(b), f.Width, f.ID))
		}
	}
	c.clearNull(f)
	copy(c.row[f.ValueOffset:f.ValueOffset+f.Width], b)
}

// Compare returns -1, 0, or +1 according to how c's key orders relative to
// other's. Keys compare field by field in layout order over the shorter of
// the two key prefixes, so a search key materializing only a prefix of the
// key columns compares against full rows. NULL sorts before every value and
// equal to NULL. The two layouts must agree on the compared prefix.
func (c *Cursor) Compare(other *Cursor) int {
	n := min(c.layout.NumKeyColumns(), other.layout.NumKeyColumns())
	for i := 0; i < n; i++ {
		if v := c.compareField(other, i); v != 0 {
			return v
		}
	}
	return 0
}

func (c *Cursor) compareField(other *Cursor, i int) int {
	f := &c.fields[i]
	if invariants.Enabled && other.fields[i].Type != f.Type {
		panic(errors.AssertionFailedf("rowcursor: comparing %s field to %s field", f.Type, other.fields[i].Type))
	}
	ln, rn := c.IsNull(i), other.IsNull(i)
	if ln || rn {
		switch {
		case ln && rn:
			return 0
		case ln:
			return -1
		default:
			return +1
		}
	}
	switch f.Type {
	case schema.TypeTinyInt:
		return cmp.Compare(c.Int8(i), other.Int8(i))
	case schema.TypeSmallInt:
		return cmp.Compare(c.Int16(i), other.Int16(i))
	case schema.TypeInt:
		return cmp.Compare(c.Int32(i), other.Int32(i))
	case schema.TypeBigInt:
		return cmp.Compare(c.Int64(i), other.Int64(i))
	case schema.TypeFloat:
		return cmp.Compare(c.Float32(i), other.Float32(i))
	case schema.TypeDouble:
		return cmp.Compare(c.Float64(i), other.Float64(i))
	case schema.TypeChar:
		return bytes.Compare(c.FixedBytes(i), other.FixedBytes(i))
	case schema.TypeVarchar:
		return bytes.Compare(c.Bytes(i), other.Bytes(i))
	default:
		panic(errors.AssertionFailedf("rowcursor: %s fields are not comparable", f.Type))
	}
}
