// Package catalog implements minisql's storage engine: typed Columns and
// Rows, hash Indexes, Tables with PK/UNIQUE/FK enforcement and referential
// actions, Databases, and the root Catalog with JSON persistence. Table/
// Column/ForeignKey shape is grounded on the teacher's pkg/schema/schema.go
// (Table.Columns, case-insensitive lookups, ForeignKeyRef), generalized
// from a display-only schema model into a live storage engine.
package catalog

import "github.com/minisql/minisql/pkg/value"

// ReferentialAction is the ON DELETE / ON UPDATE policy attached to a
// foreign key. Values match parser.ReferentialAction's string spellings so
// converting between the two packages is a plain cast.
type ReferentialAction string

const (
	ActionCascade  ReferentialAction = "CASCADE"
	ActionSetNull  ReferentialAction = "SET NULL"
	ActionRestrict ReferentialAction = "RESTRICT"
	ActionNoAction ReferentialAction = "NO ACTION"
)

// ForeignKey is a column-level REFERENCES constraint.
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete ReferentialAction
	OnUpdate ReferentialAction
}

// Column is one declared field of a Table.
type Column struct {
	Name         string
	Type         value.DataType
	IsPrimaryKey bool
	IsUnique     bool
	ForeignKey   *ForeignKey
}

// Indexed reports whether this column carries a hash index: PK, UNIQUE, or
// the child side of a foreign key (indexed for fast referential-action
// lookups, not uniqueness).
func (c *Column) Indexed() bool {
	return c.IsPrimaryKey || c.IsUnique || c.ForeignKey != nil
}

// Unique reports whether this column's index rejects duplicate keys.
func (c *Column) Unique() bool {
	return c.IsPrimaryKey || c.IsUnique
}
