// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package rowblk

import "github.com/cockroachdb/redact"

// BlockStatus records how a block's rows relate to the delete predicates in
// force when it was produced. The block stores and returns the byte verbatim;
// producing and interpreting it belongs to the predicate-pushdown layer.
type BlockStatus uint8

const (
	// DelSatisfied means every row matched a delete predicate.
	DelSatisfied BlockStatus = 0
	// DelNotSatisfied means no row matched a delete predicate.
	DelNotSatisfied BlockStatus = 1
	// DelPartialSatisfied means some rows matched. It is the conservative
	// default a block starts each cycle with.
	DelPartialSatisfied BlockStatus = 2
)

var blockStatusName = [...]redact.SafeString{
	DelSatisfied:        "del-satisfied",
	DelNotSatisfied:     "del-not-satisfied",
	DelPartialSatisfied: "del-partial-satisfied",
}

func (s BlockStatus) String() string {
	return redact.StringWithoutMarkers(s)
}

// SafeFormat implements redact.SafeFormatter.
func (s BlockStatus) SafeFormat(w redact.SafePrinter, _ rune) {
	if int(s) >= len(blockStatusName) {
		w.Printf("unknown-status-%d", int(s))
		return
	}
	w.Print(blockStatusName[s])
}
