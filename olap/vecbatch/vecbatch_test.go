// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package vecbatch

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/lxqfy/incubator-doris/olap/rowblk"
	"github.com/lxqfy/incubator-doris/olap/rowcursor"
	"github.com/lxqfy/incubator-doris/olap/schema"
	"github.com/stretchr/testify/require"
)

func idNameScoreSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NewSchema([]schema.Column{
		{ID: 1, Name: "id", Type: schema.TypeInt, IsKey: true},
		{ID: 2, Name: "name", Type: schema.TypeVarchar, Nullable: true},
		{ID: 3, Name: "score", Type: schema.TypeBigInt, Nullable: true},
	})
	require.NoError(t, err)
	return s
}

func newTestBlock(t *testing.T, s *schema.Schema, capacity int, nulls bool) *rowblk.Block {
	t.Helper()
	b := rowblk.NewBlock(s)
	require.NoError(t, b.Init(rowblk.BlockInfo{RowNum: capacity, NullSupported: nulls}))
	return b
}

// fillIDNameScore writes rows (i+1, "name-i", 100*(i+1)), with the name NULL
// on row 2 and the score NULL on row 3, and finalizes.
func fillIDNameScore(t *testing.T, b *rowblk.Block, n int) {
	t.Helper()
	var w rowcursor.Cursor
	w.Init(b.Layout())
	for i := 0; i < n; i++ {
		b.GetRow(i, &w)
		w.SetInt32(0, int32(i+1))
		if i == 2 {
			w.SetNull(1)
		} else {
			w.SetBytes(1, []byte(fmt.Sprintf("name-%d", i)))
		}
		if i == 3 {
			w.SetNull(2)
		} else {
			w.SetInt64(2, int64(100*(i+1)))
		}
	}
	require.NoError(t, b.Finalize(n))
}

func TestBatchLoadDump(t *testing.T) {
	s := idNameScoreSchema(t)
	src := newTestBlock(t, s, 4, true)
	fillIDNameScore(t, src, 4)

	batch := NewBatch(src.Layout(), 8)
	require.Equal(t, 3, batch.NumColumns())
	n := batch.LoadFromBlock(src)
	require.Equal(t, 4, n)
	require.Equal(t, 4, batch.Size())
	require.False(t, batch.SelectedInUse())
	require.False(t, src.HasRemaining())

	id, name, score := batch.Column(0), batch.Column(1), batch.Column(2)
	require.EqualValues(t, 2, binary.LittleEndian.Uint32(id.Slot(1)))
	require.Equal(t, "name-0", string(name.Bytes(0)))
	require.True(t, name.IsNull(2))
	require.False(t, name.IsNull(3))
	require.True(t, score.IsNull(3))
	require.EqualValues(t, 200, binary.LittleEndian.Uint64(score.Slot(1)))

	dst := newTestBlock(t, s, 4, true)
	require.NoError(t, batch.DumpToBlock(dst))
	require.Equal(t, 4, dst.RowNum())
	require.Equal(t, rowblk.DelNotSatisfied, dst.Status())

	var r rowcursor.Cursor
	r.Init(dst.Layout())
	for i := 0; i < 4; i++ {
		dst.GetRow(i, &r)
		require.EqualValues(t, i+1, r.Int32(0))
		if i == 2 {
			require.True(t, r.IsNull(1))
		} else {
			require.Equal(t, fmt.Sprintf("name-%d", i), string(r.Bytes(1)))
		}
		if i == 3 {
			require.True(t, r.IsNull(2))
		} else {
			require.EqualValues(t, 100*(i+1), r.Int64(2))
		}
	}
}

func TestBatchSelection(t *testing.T) {
	s := idNameScoreSchema(t)
	src := newTestBlock(t, s, 4, true)
	fillIDNameScore(t, src, 4)

	batch := NewBatch(src.Layout(), 4)
	require.Equal(t, 4, batch.LoadFromBlock(src))

	// Keep rows 0 and 2 only.
	sel := batch.Selected()
	sel[0], sel[1] = 0, 2
	batch.SetSize(2)
	batch.SetSelectedInUse(true)

	dst := newTestBlock(t, s, 4, true)
	require.NoError(t, batch.DumpToBlock(dst))
	require.Equal(t, 2, dst.RowNum())
	require.Equal(t, rowblk.DelPartialSatisfied, dst.Status())

	var r rowcursor.Cursor
	r.Init(dst.Layout())
	dst.GetRow(0, &r)
	require.EqualValues(t, 1, r.Int32(0))
	require.Equal(t, "name-0", string(r.Bytes(1)))
	dst.GetRow(1, &r)
	require.EqualValues(t, 3, r.Int32(0))
	require.True(t, r.IsNull(1))
	require.EqualValues(t, 300, r.Int64(2))

	// An empty selection dumps an empty block.
	batch.SetSize(0)
	dst.Clear()
	require.NoError(t, batch.DumpToBlock(dst))
	require.Equal(t, 0, dst.RowNum())
	require.Equal(t, rowblk.DelSatisfied, dst.Status())

	// A selection in force that kept every loaded row is no filter at all.
	for i := range 4 {
		sel[i] = i
	}
	batch.SetSize(4)
	dst.Clear()
	require.NoError(t, batch.DumpToBlock(dst))
	require.Equal(t, 4, dst.RowNum())
	require.Equal(t, rowblk.DelNotSatisfied, dst.Status())
}

func TestBatchLimit(t *testing.T) {
	s := idNameScoreSchema(t)
	src := newTestBlock(t, s, 5, true)
	fillIDNameScore(t, src, 5)

	batch := NewBatch(src.Layout(), 8)
	batch.SetLimit(2)

	require.Equal(t, 2, batch.LoadFromBlock(src))
	require.Equal(t, 2, src.Pos())
	require.Equal(t, 3, src.Remaining())
	require.EqualValues(t, 1, binary.LittleEndian.Uint32(batch.Column(0).Slot(0)))

	require.Equal(t, 2, batch.LoadFromBlock(src))
	// Loading replaces the batch's contents.
	require.EqualValues(t, 3, binary.LittleEndian.Uint32(batch.Column(0).Slot(0)))

	require.Equal(t, 1, batch.LoadFromBlock(src))
	require.False(t, src.HasRemaining())
	require.Equal(t, 0, batch.LoadFromBlock(src))

	require.Panics(t, func() { batch.SetLimit(9) })
	require.Panics(t, func() { batch.SetLimit(-1) })
	require.Panics(t, func() { batch.SetSize(9) })
	require.Panics(t, func() { batch.SetSize(-1) })
}

func TestBatchReset(t *testing.T) {
	s := idNameScoreSchema(t)
	src := newTestBlock(t, s, 4, true)
	fillIDNameScore(t, src, 4)

	batch := NewBatch(src.Layout(), 4)
	batch.SetLimit(3)
	require.Equal(t, 3, batch.LoadFromBlock(src))
	batch.Selected()[0] = 1
	batch.SetSize(1)
	batch.SetSelectedInUse(true)

	batch.Reset()
	require.Equal(t, 0, batch.Size())
	require.Equal(t, 4, batch.Limit())
	require.False(t, batch.SelectedInUse())

	// The remaining window rows load into the reused batch.
	require.Equal(t, 1, batch.LoadFromBlock(src))
	require.EqualValues(t, 4, binary.LittleEndian.Uint32(batch.Column(0).Slot(0)))
}

func TestBatchNoNullSupport(t *testing.T) {
	s, err := schema.NewSchema([]schema.Column{
		{ID: 1, Name: "id", Type: schema.TypeInt, IsKey: true},
		{ID: 2, Name: "name", Type: schema.TypeVarchar},
	})
	require.NoError(t, err)
	src := newTestBlock(t, s, 2, false)
	var w rowcursor.Cursor
	w.Init(src.Layout())
	for i := 0; i < 2; i++ {
		src.GetRow(i, &w)
		w.SetInt32(0, int32(i))
		w.SetBytes(1, []byte(fmt.Sprintf("v%d", i)))
	}
	require.NoError(t, src.Finalize(2))

	batch := NewBatch(src.Layout(), 2)
	require.Equal(t, 2, batch.LoadFromBlock(src))
	require.False(t, batch.Column(1).IsNull(0))
	require.Equal(t, "v1", string(batch.Column(1).Bytes(1)))
	batch.Column(1).SetNull(0, false) // no-op without null support

	dst := newTestBlock(t, s, 2, false)
	require.NoError(t, batch.DumpToBlock(dst))
	var r rowcursor.Cursor
	r.Init(dst.Layout())
	dst.GetRow(1, &r)
	require.Equal(t, "v1", string(r.Bytes(1)))
}

func TestBatchDumpCapacityError(t *testing.T) {
	s := idNameScoreSchema(t)
	src := newTestBlock(t, s, 4, true)
	fillIDNameScore(t, src, 4)
	batch := NewBatch(src.Layout(), 4)
	require.Equal(t, 4, batch.LoadFromBlock(src))

	dst := newTestBlock(t, s, 2, true)
	require.ErrorIs(t, batch.DumpToBlock(dst), rowblk.ErrCapacityExceeded)
}

func TestBatchLayoutMismatch(t *testing.T) {
	s := idNameScoreSchema(t)
	withNulls := newTestBlock(t, s, 2, true)
	fillIDNameScore(t, withNulls, 2)
	noNulls := newTestBlock(t, s, 2, false)

	batch := NewBatch(withNulls.Layout(), 2)
	require.Panics(t, func() { batch.LoadFromBlock(noNulls) })
	require.Panics(t, func() { batch.DumpToBlock(noNulls) })
}
