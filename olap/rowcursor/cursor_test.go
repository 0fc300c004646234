// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package rowcursor

import (
	"encoding/binary"
	"testing"

	"github.com/lxqfy/incubator-doris/internal/mempool"
	"github.com/lxqfy/incubator-doris/olap/schema"
	"github.com/stretchr/testify/require"
)

func testLayout(t *testing.T, nullSupported bool, cols ...schema.Column) schema.Layout {
	t.Helper()
	s, err := schema.NewSchema(cols)
	require.NoError(t, err)
	l, err := schema.MakeLayout(s, nil, nullSupported)
	require.NoError(t, err)
	return l
}

func TestCursorRoundTrip(t *testing.T) {
	l := testLayout(t, true,
		schema.Column{ID: 1, Name: "c1", Type: schema.TypeTinyInt, IsKey: true},
		schema.Column{ID: 2, Name: "c2", Type: schema.TypeSmallInt},
		schema.Column{ID: 3, Name: "c3", Type: schema.TypeInt},
		schema.Column{ID: 4, Name: "c4", Type: schema.TypeBigInt},
		schema.Column{ID: 5, Name: "c5", Type: schema.TypeFloat},
		schema.Column{ID: 6, Name: "c6", Type: schema.TypeDouble},
		schema.Column{ID: 7, Name: "c7", Type: schema.TypeChar, Length: 4},
		schema.Column{ID: 8, Name: "c8", Type: schema.TypeVarchar, Nullable: true},
		schema.Column{ID: 9, Name: "c9", Type: schema.TypeHLL},
	)

	var c Cursor
	c.InitOwned(l)
	require.Len(t, c.RowBytes(), l.Stride())

	// A fresh owned row is zero-valued, not NULL.
	require.False(t, c.IsNull(2))
	require.EqualValues(t, 0, c.Int32(2))
	require.Nil(t, c.Bytes(7))

	c.SetInt8(0, -5)
	c.SetInt16(1, -1234)
	c.SetInt32(2, 123456)
	c.SetInt64(3, -1234567890123)
	c.SetFloat32(4, 1.5)
	c.SetFloat64(5, -2.75)
	c.SetFixedBytes(6, []byte("ab"))
	c.SetBytes(7, []byte("hello world"))
	c.SetBytes(8, []byte{0x01, 0x02, 0x03})

	require.EqualValues(t, -5, c.Int8(0))
	require.EqualValues(t, -1234, c.Int16(1))
	require.EqualValues(t, 123456, c.Int32(2))
	require.EqualValues(t, -1234567890123, c.Int64(3))
	require.EqualValues(t, 1.5, c.Float32(4))
	require.EqualValues(t, -2.75, c.Float64(5))
	require.Equal(t, []byte{'a', 'b', 0, 0}, c.FixedBytes(6))
	require.Equal(t, "hello world", string(c.Bytes(7)))
	require.Equal(t, []byte{0x01, 0x02, 0x03}, c.Bytes(8))

	// NULL round trip; a typed set clears it again.
	c.SetNull(7)
	require.True(t, c.IsNull(7))
	c.SetBytes(7, []byte("x"))
	require.False(t, c.IsNull(7))
	require.Equal(t, "x", string(c.Bytes(7)))
}

func TestCursorNoNullSupport(t *testing.T) {
	l := testLayout(t, false,
		schema.Column{ID: 1, Name: "k", Type: schema.TypeInt, IsKey: true},
	)
	var c Cursor
	c.InitOwned(l)
	c.SetInt32(0, 42)
	require.False(t, c.IsNull(0))
	require.EqualValues(t, 42, c.Int32(0))
	require.Len(t, c.RowBytes(), 4)
}

func TestCursorAttach(t *testing.T) {
	l := testLayout(t, false,
		schema.Column{ID: 1, Name: "k", Type: schema.TypeInt, IsKey: true},
	)
	buf := make([]byte, 2*l.Stride())
	var pool mempool.Pool
	pool.Init(0)

	var c Cursor
	c.Init(l)
	c.Attach(buf[:4], &pool)
	c.SetInt32(0, 7)
	c.Attach(buf[4:8], &pool)
	c.SetInt32(0, 9)

	require.EqualValues(t, 7, binary.LittleEndian.Uint32(buf[0:]))
	require.EqualValues(t, 9, binary.LittleEndian.Uint32(buf[4:]))
}

func TestCursorSetRawValue(t *testing.T) {
	l := testLayout(t, true,
		schema.Column{ID: 1, Name: "k", Type: schema.TypeInt, IsKey: true, Nullable: true},
	)
	var c Cursor
	c.InitOwned(l)
	c.SetNull(0)

	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], uint32(42))
	c.SetRawValue(0, raw[:])
	require.False(t, c.IsNull(0))
	require.EqualValues(t, 42, c.Int32(0))
	require.Equal(t, raw[:], c.ValueBytes(0))
}

func TestCursorCompare(t *testing.T) {
	l := testLayout(t, true,
		schema.Column{ID: 1, Name: "k1", Type: schema.TypeInt, IsKey: true, Nullable: true},
		schema.Column{ID: 2, Name: "k2", Type: schema.TypeInt, IsKey: true},
		schema.Column{ID: 3, Name: "v", Type: schema.TypeVarchar},
	)

	var a, b Cursor
	a.InitOwned(l)
	b.InitOwned(l)

	a.SetInt32(0, 3)
	a.SetInt32(1, 30)
	a.SetBytes(2, []byte("payload"))
	b.SetInt32(0, 3)
	b.SetInt32(1, 31)

	require.Equal(t, -1, a.Compare(&b))
	require.Equal(t, +1, b.Compare(&a))

	// Non-key columns do not participate.
	b.SetInt32(1, 30)
	require.Equal(t, 0, a.Compare(&b))
	require.Equal(t, 0, b.Compare(&a))

	// A key materializing a prefix compares over the prefix only.
	var k Cursor
	k.InitOwned(l.Prefix(1))
	k.SetInt32(0, 3)
	require.Equal(t, 0, a.Compare(&k))
	require.Equal(t, 0, k.Compare(&a))
	k.SetInt32(0, 2)
	require.Equal(t, +1, a.Compare(&k))
	require.Equal(t, -1, k.Compare(&a))

	// NULL sorts before every value and equal to NULL.
	a.SetNull(0)
	require.Equal(t, -1, a.Compare(&b))
	require.Equal(t, +1, b.Compare(&a))
	b.SetNull(0)
	require.Equal(t, 0, a.Compare(&b))
}

func TestCursorCompareBytes(t *testing.T) {
	l := testLayout(t, true,
		schema.Column{ID: 1, Name: "k1", Type: schema.TypeChar, Length: 3, IsKey: true},
		schema.Column{ID: 2, Name: "k2", Type: schema.TypeVarchar, IsKey: true},
	)
	var x, y Cursor
	x.InitOwned(l)
	y.InitOwned(l)

	x.SetFixedBytes(0, []byte("ab"))
	x.SetBytes(1, []byte("zz"))
	y.SetFixedBytes(0, []byte("ab"))
	y.SetBytes(1, []byte("za"))
	require.Equal(t, +1, x.Compare(&y))

	y.SetBytes(1, []byte("zz"))
	require.Equal(t, 0, x.Compare(&y))

	y.SetFixedBytes(0, []byte("aa"))
	require.Equal(t, +1, x.Compare(&y))
	require.Equal(t, -1, y.Compare(&x))
}
