// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package mempool provides a bump allocator for the variable-length field
// payloads of a row block. Allocations are addressed by uint32 offsets into a
// single contiguous buffer rather than by pointers, so they stay valid when
// the buffer grows and can be stored inside fixed-width row slots.
package mempool

import (
	"math"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/lxqfy/incubator-doris/internal/invariants"
	"golang.org/x/exp/constraints"
)

// allocAlign is the alignment of every offset returned by Alloc.
const allocAlign = 8

// minPoolSize is the smallest buffer Init will allocate.
const minPoolSize = 64

// A Pool is a bump allocator backing the variable-length fields of one row
// block. An initial size of the buffer is provided on Init, but a Pool will
// grow to meet the largest working set size. Clear forgets all allocations
// while retaining the buffer, so a pool cycles through fill/clear without
// reallocating once it has reached its high-water mark.
//
// Offset 0 is reserved as a nil handle; Alloc never returns it for a non-empty
// allocation.
//
// A Pool is not thread-safe and is owned by a single block (or cursor) at a
// time.
type Pool struct {
	// buf holds all allocations. buf[0] is reserved so that offset 0 can act
	// as a nil handle. len(buf) is the bump pointer; cap(buf) is the
	// high-water mark retained across Clear.
	buf     []byte
	metrics Metrics
	closed  invariants.CloseChecker
}

// Init initializes the pool with an initial buffer size of initialSize bytes.
// It may be called on a previously Released pool.
func (p *Pool) Init(initialSize int) {
	initialSize = max(initialSize, minPoolSize)
	*p = Pool{
		buf: make([]byte, 1, initialSize),
	}
}

// Initialized reports whether the pool has a buffer.
func (p *Pool) Initialized() bool {
	return p.buf != nil
}

// Alloc allocates n bytes and returns the offset of the allocation. The
// returned offset is allocAlign-aligned. Allocating zero bytes returns the nil
// offset. Growing past the uint32 offset space is a contract violation; row
// blocks cap their memory far below it.
func (p *Pool) Alloc(n int) uint32 {
	p.closed.AssertNotClosed()
	if n == 0 {
		return 0
	}
	if invariants.Enabled && !p.Initialized() {
		panic(errors.AssertionFailedf("mempool: Alloc on an uninitialized Pool"))
	}
	offset := align(len(p.buf), allocAlign)
	end := offset + n
	if uint64(end) > math.MaxUint32 {
		panic(errors.AssertionFailedf("mempool: allocation of %d bytes overflows the offset space", n))
	}
	if end > cap(p.buf) {
		p.grow(end)
	}
	prevLen := len(p.buf)
	p.buf = p.buf[:end]
	// Zero the alignment padding. The buffer beyond the old length may hold
	// stale bytes from before a Clear.
	for i := prevLen; i < offset; i++ {
		p.buf[i] = 0
	}
	p.metrics.Inc(uint64(n))
	return uint32(offset)
}

// grow reallocates the buffer so that cap(buf) >= need, preserving contents.
// Offsets handed out before the growth remain valid.
func (p *Pool) grow(need int) {
	newCap := max(2*cap(p.buf), need)
	newBuf := make([]byte, len(p.buf), newCap)
	copy(newBuf, p.buf)
	p.buf = newBuf
}

// Bytes returns the n bytes at offset. The slice aliases pool memory and is
// invalidated by Clear and Release; it remains valid across later Allocs.
// A nil offset returns nil.
func (p *Pool) Bytes(offset uint32, n int) []byte {
	if offset == 0 {
		return nil
	}
	end := int(offset) + n
	return p.buf[offset:end:end]
}

// Clear forgets all allocations. The buffer is retained for reuse. Previously
// returned offsets and slices must not be used afterwards; invariant builds
// sometimes mangle the buffer to flush out violations.
func (p *Pool) Clear() {
	if !p.Initialized() {
		return
	}
	if invariants.Enabled && invariants.Sometimes(10) {
		invariants.Mangle(p.buf[1:])
	}
	p.buf = p.buf[:1]
	p.metrics = Metrics{}
}

// Release drops the buffer. The pool must be Init-ed again before use.
func (p *Pool) Release() {
	p.closed.Close()
	p.buf = nil
	p.metrics = Metrics{}
}

// Len returns the number of buffer bytes in use, including the reserved byte
// and alignment padding.
func (p *Pool) Len() int {
	return len(p.buf)
}

// Cap returns the size of the underlying buffer.
func (p *Pool) Cap() int {
	return cap(p.buf)
}

// Metrics returns the allocation counts since the last Init or Clear.
func (p *Pool) Metrics() Metrics {
	return p.metrics
}

// Metrics tracks the count and total payload size of the live allocations in
// a Pool. Alignment padding is excluded.
type Metrics struct {
	Allocs uint64
	Bytes  uint64
}

// Inc records a single allocation of the given size.
func (m *Metrics) Inc(size uint64) {
	m.Allocs++
	m.Bytes += size
}

// Accumulate increases the counts and sizes by the given amounts.
func (m *Metrics) Accumulate(other Metrics) {
	m.Allocs += other.Allocs
	m.Bytes += other.Bytes
}

func (m Metrics) String() string {
	return redact.StringWithoutMarkers(m)
}

// SafeFormat implements redact.SafeFormatter.
func (m Metrics) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s allocs (%s)", crhumanize.Count(m.Allocs, crhumanize.Compact),
		crhumanize.Bytes(m.Bytes, crhumanize.Compact, crhumanize.OmitI))
}

// align returns the next value greater than or equal to offset that's
// divisible by val.
func align[T constraints.Integer](offset, val T) T {
	return (offset + val - 1) & ^(val - 1)
}
