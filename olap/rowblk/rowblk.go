// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package rowblk implements the row block: a fixed-capacity, schema-typed,
// in-memory page of rows. Rows live in one contiguous buffer at a fixed
// stride; variable-length field payloads live in a per-block memory pool.
// A block cycles through Init → fill → Finalize → read → Clear, reusing its
// buffers across cycles.
//
// A block is owned by a single goroutine at a time: one producer fills and
// finalizes it, then readers consume it. None of its methods synchronize.
package rowblk

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/lxqfy/incubator-doris/internal/invariants"
	"github.com/lxqfy/incubator-doris/internal/mempool"
	"github.com/lxqfy/incubator-doris/olap/rowcursor"
	"github.com/lxqfy/incubator-doris/olap/schema"
)

// MaxBlockBytes caps the row buffer a block will allocate. Init fails on
// capacities that exceed it; blocks are page-sized, so hitting the cap means
// a misconfigured caller.
const MaxBlockBytes = 256 << 20 // 256 MB

// poolInitialSize is the initial size of a block's memory pool.
const poolInitialSize = 4096

var (
	// ErrZeroCapacity is returned by Init when the requested capacity is not
	// positive.
	ErrZeroCapacity = errors.New("rowblk: block capacity must be positive")
	// ErrEmptySchema is returned by Init when no columns are materialized.
	ErrEmptySchema = errors.New("rowblk: no materialized columns")
	// ErrBlockTooBig is returned by Init when capacity times row stride
	// exceeds MaxBlockBytes.
	ErrBlockTooBig = errors.New("rowblk: block size exceeds MaxBlockBytes")
	// ErrCapacityExceeded is returned by Finalize when the row count exceeds
	// the block's capacity.
	ErrCapacityExceeded = errors.New("rowblk: row count exceeds block capacity")
)

// BlockInfo configures a block for one Init cycle.
type BlockInfo struct {
	// Checksum of the block's on-disk encoding. The disk layer computes and
	// verifies it; the block carries it opaquely.
	Checksum uint32
	// RowNum is the block's row capacity. After Finalize, Info reports the
	// actual row count here instead.
	RowNum int
	// NullSupported selects the row format: when set, every field is
	// preceded by a one-byte null indicator.
	NullSupported bool
	// ColumnIDs selects the materialized columns, in schema order. Empty
	// materializes all columns.
	ColumnIDs []schema.ColumnID
}

func (info BlockInfo) String() string {
	return redact.StringWithoutMarkers(info)
}

// SafeFormat implements redact.SafeFormatter.
func (info BlockInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("rows=%d null-supported=%t columns=%d checksum=%08x",
		info.RowNum, info.NullSupported, len(info.ColumnIDs), info.Checksum)
}

// A Block is a fixed-capacity page of rows sharing one schema-derived layout.
// The zero value is unusable; construct with NewBlock and call Init.
type Block struct {
	schema   *schema.Schema
	info     BlockInfo
	layout   schema.Layout
	stride   int
	capacity int

	// buf holds capacity*stride bytes of row slots. Slots hold arbitrary
	// bytes until written; Init does not zero them.
	buf  []byte
	pool mempool.Pool

	rowNum int
	pos    int
	limit  int
	status BlockStatus

	// probe is the reusable cursor FindRow walks rows with.
	probe rowcursor.Cursor
}

// NewBlock returns a block over the given schema. The block is unusable until
// Init succeeds.
func NewBlock(s *schema.Schema) *Block {
	return &Block{schema: s}
}

// Init prepares the block for a fill cycle: it computes the row layout,
// sizes the row buffer to info.RowNum slots and resets all state. The row
// buffer and the memory pool are retained from previous cycles when large
// enough, so a block that is Init-ed repeatedly with the same shape settles
// into steady state with no allocation.
//
// On error the block keeps its previous state.
func (b *Block) Init(info BlockInfo) error {
	if info.RowNum <= 0 {
		return errors.WithDetailf(ErrZeroCapacity, "row_num=%d", info.RowNum)
	}
	layout, err := schema.MakeLayout(b.schema, info.ColumnIDs, info.NullSupported)
	if err != nil {
		return err
	}
	if layout.NumColumns() == 0 {
		return ErrEmptySchema
	}
	if size := int64(layout.Stride()) * int64(info.RowNum); size > MaxBlockBytes {
		return errors.WithDetailf(ErrBlockTooBig, "%d rows × %d byte stride = %d bytes",
			info.RowNum, layout.Stride(), size)
	}

	b.info = info
	b.layout = layout
	b.stride = layout.Stride()
	b.capacity = info.RowNum
	size := b.capacity * b.stride
	if cap(b.buf) < size {
		b.buf = make([]byte, size)
	} else {
		b.buf = b.buf[:size]
	}
	if b.pool.Initialized() {
		b.pool.Clear()
	} else {
		b.pool.Init(poolInitialSize)
	}
	b.rowNum = 0
	b.info.RowNum = 0
	b.pos, b.limit = 0, 0
	b.status = DelPartialSatisfied
	b.probe.Init(layout)
	return nil
}

// Finalize records the actual number of rows the producer wrote and opens the
// read window over all of them. Returns ErrCapacityExceeded, leaving the
// block unchanged, if rowNum exceeds the capacity.
func (b *Block) Finalize(rowNum int) error {
	if rowNum < 0 {
		panic(errors.AssertionFailedf("rowblk: Finalize with negative row count %d", rowNum))
	}
	if rowNum > b.capacity {
		return errors.WithDetailf(ErrCapacityExceeded, "rows=%d capacity=%d", rowNum, b.capacity)
	}
	b.rowNum = rowNum
	b.info.RowNum = rowNum
	b.pos = 0
	b.limit = rowNum
	return nil
}

// Clear resets the block for refilling: row count, window and status return
// to their post-Init state and the pool forgets its allocations. The row
// buffer, layout and capacity are retained, so Clear is only valid reuse when
// the schema, materialized columns and capacity are unchanged; otherwise call
// Init. Rows and payloads read out of the block before Clear are invalid
// afterwards; invariant builds sometimes mangle the buffer to flush out such
// use.
func (b *Block) Clear() {
	if invariants.Enabled && invariants.Sometimes(10) {
		invariants.Mangle(b.buf)
	}
	b.rowNum = 0
	b.info.RowNum = 0
	b.pos, b.limit = 0, 0
	b.status = DelPartialSatisfied
	b.pool.Clear()
}

// Release drops the block's buffers. The block is unusable until Init-ed
// again.
func (b *Block) Release() {
	b.buf = nil
	b.capacity = 0
	b.rowNum = 0
	b.pos, b.limit = 0, 0
	if b.pool.Initialized() {
		b.pool.Release()
	}
}

func (b *Block) rowBytes(i int) []byte {
	start := i * b.stride
	end := start + b.stride
	return b.buf[start:end:end]
}

// GetRow attaches c to the i'th row slot and the block's pool. The cursor
// must have been initialized with the block's layout. Reading iterates
// i < RowNum(); a producer filling the block addresses i < Capacity().
// Bounds are not checked in release builds.
func (b *Block) GetRow(i int, c *rowcursor.Cursor) {
	invariants.CheckBounds(i, b.capacity)
	if invariants.Enabled && c.LayoutFingerprint() != b.layout.Fingerprint() {
		panic(errors.AssertionFailedf("rowblk: cursor layout does not match block layout"))
	}
	c.Attach(b.rowBytes(i), &b.pool)
}

// Row is a source of row bytes for SetRow. rowcursor.Cursor implements it.
type Row interface {
	RowBytes() []byte
}

// SetRow copies one stride of row bytes from row into the i'th slot. The
// source must be laid out identically to the block's rows; that is the
// caller's contract and is checked only in invariant builds. Descriptors of
// variable-length fields are copied verbatim and resolve against this block's
// pool, so rows holding them must have been built against it (fill through a
// GetRow cursor, as DumpToBlock does).
func (b *Block) SetRow(i int, row Row) {
	invariants.CheckBounds(i, b.capacity)
	src := row.RowBytes()
	if invariants.Enabled {
		if len(src) < b.stride {
			panic(errors.AssertionFailedf("rowblk: source row has %d bytes, stride is %d", len(src), b.stride))
		}
		if fp, ok := row.(interface{ LayoutFingerprint() uint64 }); ok &&
			fp.LayoutFingerprint() != b.layout.Fingerprint() {
			panic(errors.AssertionFailedf("rowblk: source row layout does not match block layout"))
		}
	}
	copy(b.rowBytes(i), src)
}

// FieldBytes returns the stored bytes of one field of one row: the null
// indicator byte followed by the value when nulls are supported, the value
// alone otherwise. Bounds are not checked in release builds.
func (b *Block) FieldBytes(row, col int) []byte {
	invariants.CheckBounds(row, b.capacity)
	f := b.layout.Field(col)
	start := row*b.stride + f.Offset
	end := row*b.stride + f.ValueOffset + f.Width
	return b.buf[start:end:end]
}

// RowNum returns the number of rows in the block: zero until Finalize, the
// finalized count after.
func (b *Block) RowNum() int {
	return b.rowNum
}

// Capacity returns the number of row slots.
func (b *Block) Capacity() int {
	return b.capacity
}

// Schema returns the schema the block was built over.
func (b *Block) Schema() *schema.Schema {
	return b.schema
}

// Layout returns the block's row layout.
func (b *Block) Layout() schema.Layout {
	return b.layout
}

// Info returns the block's configuration, with RowNum reflecting the
// finalized row count.
func (b *Block) Info() BlockInfo {
	return b.info
}

// Checksum returns the checksum carried by the block.
func (b *Block) Checksum() uint32 {
	return b.info.Checksum
}

// SetChecksum stores the checksum computed by the disk layer.
func (b *Block) SetChecksum(sum uint32) {
	b.info.Checksum = sum
}

// Pool returns the memory pool backing the block's variable-length fields.
func (b *Block) Pool() *mempool.Pool {
	return &b.pool
}

// MemoryUsage returns the bytes held by the block's row buffer and pool,
// including retained unused capacity.
func (b *Block) MemoryUsage() int {
	return cap(b.buf) + b.pool.Cap()
}

// Pos returns the window position, in [0, Limit()].
func (b *Block) Pos() int {
	return b.pos
}

// SetPos moves the window position. pos must be in [0, Limit()].
func (b *Block) SetPos(pos int) {
	if pos < 0 || pos > b.limit {
		panic(errors.AssertionFailedf("rowblk: pos %d outside window [0, %d]", pos, b.limit))
	}
	b.pos = pos
}

// PosInc advances the window position by one row. Release builds do not
// check the window end; callers gate iteration on HasRemaining.
func (b *Block) PosInc() {
	invariants.CheckBounds(b.pos, b.limit)
	b.pos++
}

// Limit returns the window end.
func (b *Block) Limit() int {
	return b.limit
}

// SetLimit shrinks or re-extends the window end. limit must be in
// [0, RowNum()].
func (b *Block) SetLimit(limit int) {
	if limit < 0 || limit > b.rowNum {
		panic(errors.AssertionFailedf("rowblk: limit %d outside [0, %d]", limit, b.rowNum))
	}
	b.limit = limit
}

// Remaining returns the number of rows left in the window.
func (b *Block) Remaining() int {
	return invariants.SafeSub(b.limit, b.pos)
}

// HasRemaining reports whether any rows are left in the window.
func (b *Block) HasRemaining() bool {
	return b.pos < b.limit
}

// Status returns the block's delete-predicate status byte.
func (b *Block) Status() BlockStatus {
	return b.status
}

// SetStatus stores the delete-predicate status byte. The block does not
// interpret it; see vecbatch.DumpToBlock for the producer that does.
func (b *Block) SetStatus(s BlockStatus) {
	b.status = s
}
