// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package rowblk

import "github.com/cockroachdb/errors"

// RawBlock grants whole-row byte access to the block's bulk collaborators:
// the vectorized batch pivot and the schema-change remapper. It bypasses the
// cursor layer but not the block's ownership rules; slices it returns are
// invalidated by Clear, Init and Release like any cursor view.
//
// Ordinary readers should use GetRow.
type RawBlock struct {
	b *Block
}

// Raw returns the block's raw access capability.
func (b *Block) Raw() RawBlock {
	return RawBlock{b: b}
}

// RowBytes returns the i'th row slot: exactly stride bytes.
func (r RawBlock) RowBytes(i int) []byte {
	if i < 0 || i >= r.b.capacity {
		panic(errors.AssertionFailedf("rowblk: row %d out of bounds [0, %d)", i, r.b.capacity))
	}
	return r.b.rowBytes(i)
}

// Data returns the bytes of all finalized rows, for the disk layer to encode
// and checksum.
func (r RawBlock) Data() []byte {
	return r.b.buf[:r.b.rowNum*r.b.stride]
}
