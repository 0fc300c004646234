// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package rowblk

import (
	"github.com/cockroachdb/errors"
	"github.com/lxqfy/incubator-doris/internal/invariants"
	"github.com/lxqfy/incubator-doris/olap/rowcursor"
)

// FindRow binary searches the block's rows for key. With findLast unset it
// returns the smallest index whose row orders at or after key (lower bound);
// with findLast set, the smallest index whose row orders strictly after key
// (upper bound). Either bound may be RowNum() when no such row exists; an
// empty block returns 0. [FindRow(key, false), FindRow(key, true)) is the
// run of rows equal to key.
//
// The block's rows must be sorted by key. key typically materializes a
// prefix of the key columns (schema.Layout.Prefix); rows compare over that
// prefix only, so a partial key matches every row it prefixes.
//
// FindRow costs O(log RowNum) row comparisons.
func (b *Block) FindRow(key *rowcursor.Cursor, findLast bool) int {
	if invariants.Enabled && key.Layout().NumKeyColumns() == 0 {
		panic(errors.AssertionFailedf("rowblk: search key materializes no key columns"))
	}
	// Define f(i) = "row i orders after key" (or "at or after" when findLast
	// is unset), f(-1) == false and f(rowNum) == true.
	// Invariant: f(index-1) == false, f(upper) == true.
	index, upper := 0, b.rowNum
	for index < upper {
		h := int(uint(index+upper) >> 1) // avoid overflow when computing h
		// index ≤ h < upper
		b.probe.Attach(b.rowBytes(h), &b.pool)
		c := b.probe.Compare(key)
		if c < 0 || (c == 0 && findLast) {
			index = h + 1 // preserves f(index-1) == false
		} else {
			upper = h // preserves f(upper) == true
		}
	}
	// index == upper, f(index-1) == false, and f(upper) (= f(index)) == true
	// => answer is index.
	return index
}
