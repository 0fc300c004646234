// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package schema

// FieldType describes the logical type of a column's values and fixes the
// in-row physical representation. Fixed-width types store their value bytes
// inline. Variable-length types store a fixed-width descriptor inline and
// keep the payload in the block's memory pool.
type FieldType uint8

const (
	// TypeInvalid represents an unset or invalid field type.
	TypeInvalid FieldType = 0
	// TypeTinyInt is a signed 8-bit integer.
	TypeTinyInt FieldType = 1
	// TypeSmallInt is a signed 16-bit integer.
	TypeSmallInt FieldType = 2
	// TypeInt is a signed 32-bit integer.
	TypeInt FieldType = 3
	// TypeBigInt is a signed 64-bit integer.
	TypeBigInt FieldType = 4
	// TypeFloat is an IEEE-754 single-precision float.
	TypeFloat FieldType = 5
	// TypeDouble is an IEEE-754 double-precision float.
	TypeDouble FieldType = 6
	// TypeChar is a fixed-length byte string; the length is set per column.
	TypeChar FieldType = 7
	// TypeVarchar is a variable-length byte string.
	TypeVarchar FieldType = 8
	// TypeHLL is a variable-length HyperLogLog sketch.
	TypeHLL FieldType = 9

	fieldTypesCount FieldType = 10
)

// VarLenDescSize is the in-row width of variable-length fields: a uint32
// memory pool offset followed by a uint32 payload length, little-endian.
const VarLenDescSize = 8

var fieldTypeName [fieldTypesCount]string = [fieldTypesCount]string{
	TypeInvalid:  "invalid",
	TypeTinyInt:  "tinyint",
	TypeSmallInt: "smallint",
	TypeInt:      "int",
	TypeBigInt:   "bigint",
	TypeFloat:    "float",
	TypeDouble:   "double",
	TypeChar:     "char",
	TypeVarchar:  "varchar",
	TypeHLL:      "hll",
}

// String returns a human-readable string representation of the field type.
func (t FieldType) String() string {
	return fieldTypeName[t]
}

// IsVariableLength reports whether values of this type live in the memory
// pool rather than inline in the row.
func (t FieldType) IsVariableLength() bool {
	return t == TypeVarchar || t == TypeHLL
}

// IsNumeric reports whether the type is an integer or floating-point type.
func (t FieldType) IsNumeric() bool {
	return t >= TypeTinyInt && t <= TypeDouble
}

// IsInteger reports whether the type is a signed integer type.
func (t FieldType) IsInteger() bool {
	return t >= TypeTinyInt && t <= TypeBigInt
}

// FixedWidth returns the in-row width in bytes of fields of this type. It
// panics for TypeChar, whose width is set per column (see Column.FieldWidth).
func (t FieldType) FixedWidth() int {
	switch t {
	case TypeTinyInt:
		return 1
	case TypeSmallInt:
		return 2
	case TypeInt, TypeFloat:
		return 4
	case TypeBigInt, TypeDouble:
		return 8
	case TypeVarchar, TypeHLL:
		return VarLenDescSize
	default:
		panic("width is per-column")
	}
}

// AggregationType describes how the storage engine combines the values of a
// non-key column when rows with equal keys are merged.
type AggregationType uint8

const (
	// AggNone keeps values as they are; rows with equal keys are not merged
	// on this column's account.
	AggNone AggregationType = 0
	// AggSum adds the values.
	AggSum AggregationType = 1
	// AggMin keeps the smallest value.
	AggMin AggregationType = 2
	// AggMax keeps the largest value.
	AggMax AggregationType = 3
	// AggReplace keeps the most recently loaded value.
	AggReplace AggregationType = 4
	// AggHLLUnion merges HyperLogLog sketches.
	AggHLLUnion AggregationType = 5
	// AggBitmapUnion merges serialized bitmaps.
	AggBitmapUnion AggregationType = 6

	aggregationTypesCount AggregationType = 7
)

var aggregationTypeName [aggregationTypesCount]string = [aggregationTypesCount]string{
	AggNone:        "none",
	AggSum:         "sum",
	AggMin:         "min",
	AggMax:         "max",
	AggReplace:     "replace",
	AggHLLUnion:    "hll_union",
	AggBitmapUnion: "bitmap_union",
}

// String returns a human-readable string representation of the aggregation.
func (a AggregationType) String() string {
	return aggregationTypeName[a]
}

// CompatibleWith reports whether the aggregation can be applied to a column
// of type t.
func (a AggregationType) CompatibleWith(t FieldType) bool {
	switch a {
	case AggNone, AggReplace:
		return true
	case AggSum:
		return t.IsNumeric()
	case AggMin, AggMax:
		return t.IsNumeric() || t == TypeChar || t == TypeVarchar
	case AggHLLUnion:
		return t == TypeHLL
	case AggBitmapUnion:
		return t == TypeVarchar
	default:
		return false
	}
}
