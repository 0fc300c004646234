// Copyright 2026 The Doris-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package schema holds the slice of the table schema that row blocks need:
// column descriptors, the field type catalog, and the Layout that maps a set
// of materialized columns to byte offsets within a fixed-stride row.
package schema

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
)

// ColumnID uniquely identifies a column within a table. IDs are assigned by
// the catalog and survive schema changes; ordinals do not.
type ColumnID uint32

// Column describes a single column.
type Column struct {
	ID   ColumnID
	Name string
	Type FieldType
	// Length is the value width in bytes for TypeChar columns. It is ignored
	// for other types.
	Length int
	// Nullable columns may store NULL. The in-row null indicator byte is
	// present for all columns of a null-supported layout regardless.
	Nullable bool
	// IsKey marks a sort key column. Key columns must form a prefix of the
	// schema.
	IsKey       bool
	Aggregation AggregationType
}

// FieldWidth returns the in-row width in bytes of the column's value,
// excluding the null indicator byte.
func (c *Column) FieldWidth() int {
	if c.Type == TypeChar {
		return c.Length
	}
	return c.Type.FixedWidth()
}

// Schema is an ordered set of columns with the key columns first. A Schema is
// immutable once constructed and may be shared by any number of blocks.
type Schema struct {
	cols       []Column
	numKeyCols int
	byID       swiss.Map[ColumnID, int]
}

func (s *Schema) init(cols []Column) error {
	s.cols = append([]Column(nil), cols...)
	s.byID.Init(len(cols))
	for i := range s.cols {
		c := &s.cols[i]
		if c.Name == "" {
			return errors.Newf("schema: column %d has an empty name", i)
		}
		if c.Type == TypeInvalid || c.Type >= fieldTypesCount {
			return errors.Newf("schema: column %q has an invalid type", c.Name)
		}
		if c.Type == TypeChar && c.Length <= 0 {
			return errors.Newf("schema: char column %q needs a positive length", c.Name)
		}
		if _, ok := s.byID.Get(c.ID); ok {
			return errors.Newf("schema: duplicate column id %d", c.ID)
		}
		s.byID.Put(c.ID, i)
		if c.IsKey {
			if i != s.numKeyCols {
				return errors.Newf("schema: key column %q does not form a prefix", c.Name)
			}
			if c.Type == TypeHLL {
				return errors.Newf("schema: hll column %q cannot be a key", c.Name)
			}
			if c.Aggregation != AggNone {
				return errors.Newf("schema: key column %q cannot be aggregated", c.Name)
			}
			s.numKeyCols++
		}
		if !c.Aggregation.CompatibleWith(c.Type) {
			return errors.Newf("schema: %s aggregation is incompatible with %s column %q",
				c.Aggregation, c.Type, c.Name)
		}
	}
	return nil
}

// NewSchema validates the columns and builds a Schema. The key columns must
// form a prefix, ids must be unique, and each column's aggregation must be
// compatible with its type.
func NewSchema(cols []Column) (*Schema, error) {
	s := &Schema{}
	if err := s.init(cols); err != nil {
		return nil, err
	}
	return s, nil
}

// NumColumns returns the number of columns.
func (s *Schema) NumColumns() int {
	return len(s.cols)
}

// NumKeyColumns returns the number of key columns. Key columns are the first
// NumKeyColumns columns of the schema.
func (s *Schema) NumKeyColumns() int {
	return s.numKeyCols
}

// Column returns the i'th column.
func (s *Schema) Column(i int) Column {
	return s.cols[i]
}

// ColumnIndexByID returns the ordinal of the column with the given id.
func (s *Schema) ColumnIndexByID(id ColumnID) (int, bool) {
	return s.byID.Get(id)
}
