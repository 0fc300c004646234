// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package vecbatch implements the column-major batch the vectorized reader
// exchanges with row blocks: per-column value arrays, a selection vector for
// filtered rows, and the pivots between the two shapes. Predicate evaluation
// itself lives above this package; callers populate the selection vector and
// this package carries its consequences back into block form.
package vecbatch

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/lxqfy/incubator-doris/internal/invariants"
	"github.com/lxqfy/incubator-doris/internal/mempool"
	"github.com/lxqfy/incubator-doris/olap/rowblk"
	"github.com/lxqfy/incubator-doris/olap/schema"
)

// ColumnVector holds one column's values for a batch of rows, packed at the
// column's in-row width with no null bytes interleaved. Values use the same
// encoding as row fields, so pivoting to and from rows is a plain copy;
// variable-length slots hold descriptors into the batch's pool.
type ColumnVector struct {
	field schema.FieldInfo
	data  []byte
	// nulls has one entry per slot. It is nil when the batch's layout does
	// not support nulls.
	nulls []bool
	pool  *mempool.Pool
}

// Field returns the column this vector materializes.
func (v *ColumnVector) Field() schema.FieldInfo {
	return v.field
}

// Slot returns the i'th value's bytes: the value itself for fixed-width
// columns, the pool descriptor for variable-length columns.
func (v *ColumnVector) Slot(i int) []byte {
	w := v.field.Width
	return v.data[i*w : (i+1)*w : (i+1)*w]
}

// IsNull reports whether the i'th value is NULL.
func (v *ColumnVector) IsNull(i int) bool {
	return v.nulls != nil && v.nulls[i]
}

// SetNull marks the i'th value NULL or non-NULL.
func (v *ColumnVector) SetNull(i int, null bool) {
	if v.nulls == nil {
		if invariants.Enabled && null {
			panic(errors.AssertionFailedf("vecbatch: SetNull on a batch without null support"))
		}
		return
	}
	v.nulls[i] = null
}

// Bytes returns the i'th value's payload; the column must be
// variable-length. The slice aliases the batch's pool.
func (v *ColumnVector) Bytes(i int) []byte {
	if invariants.Enabled && !v.field.Type.IsVariableLength() {
		panic(errors.AssertionFailedf("vecbatch: column id %d is %s, accessed as variable-length",
			v.field.ID, v.field.Type))
	}
	slot := v.Slot(i)
	offset := binary.LittleEndian.Uint32(slot)
	length := binary.LittleEndian.Uint32(slot[4:])
	return v.pool.Bytes(offset, int(length))
}

// SetBytes sets the i'th value of a variable-length column, copying the
// payload into the batch's pool.
func (v *ColumnVector) SetBytes(i int, b []byte) {
	if invariants.Enabled && !v.field.Type.IsVariableLength() {
		panic(errors.AssertionFailedf("vecbatch: column id %d is %s, accessed as variable-length",
			v.field.ID, v.field.Type))
	}
	offset := v.pool.Alloc(len(b))
	copy(v.pool.Bytes(offset, len(b)), b)
	slot := v.Slot(i)
	binary.LittleEndian.PutUint32(slot, offset)
	binary.LittleEndian.PutUint32(slot[4:], uint32(len(b)))
	v.SetNull(i, false)
}

// A Batch is a fixed-capacity, column-major buffer of rows. Like a row
// block it is single-owner and cycles through fill and drain phases; Reset
// reuses all of its memory.
type Batch struct {
	layout   schema.Layout
	cols     []ColumnVector
	pool     mempool.Pool
	capacity int
	// size is the number of valid rows: vector positions [0, size) without a
	// selection, the first size entries of selected with one.
	size int
	// loaded is the row count of the last LoadFromBlock, before any filter
	// shrank size. DumpToBlock compares size against it to report whether the
	// selection kept every loaded row.
	loaded int
	limit  int
	// selected holds the vector positions of surviving rows when
	// selectedInUse is set. Filters shrink size and fill selected instead of
	// compacting the vectors.
	selected      []int
	selectedInUse bool
}

// NewBatch returns a batch over the given layout with room for capacity
// rows.
func NewBatch(l schema.Layout, capacity int) *Batch {
	b := &Batch{
		layout:   l,
		cols:     make([]ColumnVector, l.NumColumns()),
		capacity: capacity,
		limit:    capacity,
		selected: make([]int, capacity),
	}
	b.pool.Init(0)
	for i, f := range l.Fields() {
		v := &b.cols[i]
		v.field = f
		v.data = make([]byte, capacity*f.Width)
		if l.NullSupported() {
			v.nulls = make([]bool, capacity)
		}
		v.pool = &b.pool
	}
	return b
}

// Layout returns the batch's layout.
func (b *Batch) Layout() schema.Layout {
	return b.layout
}

// NumColumns returns the number of column vectors.
func (b *Batch) NumColumns() int {
	return len(b.cols)
}

// Column returns the i'th column vector.
func (b *Batch) Column(i int) *ColumnVector {
	return &b.cols[i]
}

// Capacity returns the number of row slots.
func (b *Batch) Capacity() int {
	return b.capacity
}

// Size returns the number of valid rows.
func (b *Batch) Size() int {
	return b.size
}

// SetSize records the number of valid rows, typically after a filter shrank
// it.
func (b *Batch) SetSize(n int) {
	if n < 0 || n > b.capacity {
		panic(errors.AssertionFailedf("vecbatch: size %d outside [0, %d]", n, b.capacity))
	}
	b.size = n
}

// Limit returns the cap on rows loaded into the batch.
func (b *Batch) Limit() int {
	return b.limit
}

// SetLimit caps the rows LoadFromBlock will load. limit must be in
// [0, Capacity()].
func (b *Batch) SetLimit(limit int) {
	if limit < 0 || limit > b.capacity {
		panic(errors.AssertionFailedf("vecbatch: limit %d outside [0, %d]", limit, b.capacity))
	}
	b.limit = limit
}

// Selected returns the selection vector, one slot per row of capacity. A
// filter fills its first Size entries with the surviving vector positions,
// ascending, and calls SetSelectedInUse.
func (b *Batch) Selected() []int {
	return b.selected
}

// SelectedInUse reports whether the selection vector is in force.
func (b *Batch) SelectedInUse() bool {
	return b.selectedInUse
}

// SetSelectedInUse puts the selection vector in or out of force.
func (b *Batch) SetSelectedInUse(inUse bool) {
	b.selectedInUse = inUse
}

// Reset empties the batch for reuse, retaining all buffers.
func (b *Batch) Reset() {
	b.size = 0
	b.loaded = 0
	b.limit = b.capacity
	b.selectedInUse = false
	b.pool.Clear()
}

// LoadFromBlock drains rows from the block's window into the batch, pivoting
// row-major to column-major, until the window or the batch's limit is
// exhausted. It returns the number of rows loaded and leaves the block's
// position after the last row taken. The batch and block must share a
// layout. Loading replaces the batch's contents; the selection vector is out
// of force afterwards.
func (b *Batch) LoadFromBlock(blk *rowblk.Block) int {
	if b.layout.Fingerprint() != blk.Layout().Fingerprint() {
		panic(errors.AssertionFailedf("vecbatch: batch layout does not match block layout"))
	}
	b.pool.Clear()
	raw := blk.Raw()
	blkPool := blk.Pool()
	nullSupported := b.layout.NullSupported()
	fields := b.layout.Fields()

	n := 0
	for n < b.limit && blk.HasRemaining() {
		row := raw.RowBytes(blk.Pos())
		for ci := range b.cols {
			v := &b.cols[ci]
			f := &fields[ci]
			if nullSupported {
				if row[f.Offset] != 0 {
					v.nulls[n] = true
					continue
				}
				v.nulls[n] = false
			}
			if f.Type.IsVariableLength() {
				offset := binary.LittleEndian.Uint32(row[f.ValueOffset:])
				length := binary.LittleEndian.Uint32(row[f.ValueOffset+4:])
				v.SetBytes(n, blkPool.Bytes(offset, int(length)))
			} else {
				copy(v.Slot(n), row[f.ValueOffset:f.ValueOffset+f.Width])
			}
		}
		blk.PosInc()
		n++
	}
	b.size = n
	b.loaded = n
	b.selectedInUse = false
	return n
}

// DumpToBlock writes the batch's valid rows into the block, pivoting
// column-major to row-major and honoring the selection vector, then
// finalizes the block with that row count. Variable-length payloads are
// copied into the block's pool. The block must be freshly Init-ed or
// Cleared and must share the batch's layout; its capacity must fit
// the batch's size.
//
// The block's status records what the selection kept: every loaded row
// (DelNotSatisfied), none (DelSatisfied), or a strict subset
// (DelPartialSatisfied).
func (b *Batch) DumpToBlock(blk *rowblk.Block) error {
	if b.layout.Fingerprint() != blk.Layout().Fingerprint() {
		panic(errors.AssertionFailedf("vecbatch: batch layout does not match block layout"))
	}
	if b.size > blk.Capacity() {
		return errors.WithDetailf(rowblk.ErrCapacityExceeded, "batch rows=%d block capacity=%d",
			b.size, blk.Capacity())
	}
	raw := blk.Raw()
	blkPool := blk.Pool()
	nullSupported := b.layout.NullSupported()
	fields := b.layout.Fields()

	for j := 0; j < b.size; j++ {
		src := j
		if b.selectedInUse {
			src = b.selected[j]
		}
		row := raw.RowBytes(j)
		for ci := range b.cols {
			v := &b.cols[ci]
			f := &fields[ci]
			if nullSupported {
				if v.nulls[src] {
					row[f.Offset] = 1
					// Zero the value bytes so finalized blocks are
					// byte-deterministic for checksumming.
					clear(row[f.ValueOffset : f.ValueOffset+f.Width])
					continue
				}
				row[f.Offset] = 0
			}
			if f.Type.IsVariableLength() {
				payload := v.Bytes(src)
				offset := blkPool.Alloc(len(payload))
				copy(blkPool.Bytes(offset, len(payload)), payload)
				binary.LittleEndian.PutUint32(row[f.ValueOffset:], offset)
				binary.LittleEndian.PutUint32(row[f.ValueOffset+4:], uint32(len(payload)))
			} else {
				copy(row[f.ValueOffset:f.ValueOffset+f.Width], v.Slot(src))
			}
		}
	}
	if err := blk.Finalize(b.size); err != nil {
		return err
	}
	switch {
	case b.size == 0:
		blk.SetStatus(rowblk.DelSatisfied)
	case !b.selectedInUse || b.size == b.loaded:
		blk.SetStatus(rowblk.DelNotSatisfied)
	default:
		blk.SetStatus(rowblk.DelPartialSatisfied)
	}
	return nil
}
