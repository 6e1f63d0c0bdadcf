package catalog

import (
	"strings"

	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/value"
)

// Table is a named column set plus a dense row vector and an index map.
// Row positions are logical identifiers for the life of the table; any
// deletion renumbers the vector and rebuilds every index, per spec §4.4's
// Design Notes on row-position instability.
type Table struct {
	Name     string
	Columns  []*Column
	colIndex map[string]int
	Rows     []Row
	indexes  map[string]*Index
}

// NewTable builds an empty Table from its column list. Caller has already
// validated exactly-one-PK and no-duplicate-names (parser/DDL concern).
func NewTable(name string, columns []*Column) *Table {
	t := &Table{
		Name:     name,
		Columns:  columns,
		colIndex: make(map[string]int, len(columns)),
		indexes:  make(map[string]*Index),
	}
	for i, c := range columns {
		key := strings.ToLower(c.Name)
		t.colIndex[key] = i
		if c.Indexed() {
			t.indexes[key] = newIndex(c.Unique())
		}
	}
	return t
}

// Column looks up a declared column case-insensitively.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.colIndex[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// PKColumn returns the table's single primary-key column.
func (t *Table) PKColumn() *Column {
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			return c
		}
	}
	return nil
}

// ColumnNames returns declared column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the hash index backing a column, if any.
func (t *Table) Index(name string) (*Index, bool) {
	idx, ok := t.indexes[strings.ToLower(name)]
	return idx, ok
}

// Scan returns the table's live rows. Callers must not mutate the
// returned slice or its Rows in place.
func (t *Table) Scan() []Row { return t.Rows }

// CoerceValues validates arity and coerces each literal value to its
// declared column type, per spec §4.4 Table.insert: "validate arity;
// coerce each value to its declared type (reject mismatches)". Returns the
// assembled Row keyed by lower-cased column name.
func (t *Table) CoerceValues(columns []string, values []value.Value) (Row, error) {
	targets := t.Columns
	if columns != nil {
		if len(columns) != len(values) {
			return nil, dberr.Semantic("INSERT column list has %d names but %d values", len(columns), len(values))
		}
		targets = make([]*Column, len(columns))
		for i, name := range columns {
			c, ok := t.Column(name)
			if !ok {
				return nil, dberr.NotFound("column %q does not exist on table %q", name, t.Name)
			}
			targets[i] = c
		}
	} else if len(values) != len(t.Columns) {
		return nil, dberr.Semantic("table %q has %d columns but INSERT supplied %d values", t.Name, len(t.Columns), len(values))
	}

	row := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		row[strings.ToLower(c.Name)] = value.Null()
	}
	for i, c := range targets {
		coerced, err := value.CoerceTo(c.Type, values[i])
		if err != nil {
			return nil, dberr.TypeErr("column %q: %v", c.Name, err)
		}
		row[strings.ToLower(c.Name)] = coerced
	}
	return row, nil
}

// CheckUnique reports whether value v would collide with an existing PK/
// UNIQUE entry, ignoring the row at excludePos (pass -1 for inserts).
func (t *Table) CheckUnique(col *Column, v value.Value, excludePos int) error {
	if !col.Unique() || v.IsNull() {
		return nil
	}
	idx, ok := t.Index(col.Name)
	if !ok {
		return nil
	}
	for _, pos := range idx.Lookup(v) {
		if pos != excludePos {
			kind := "UNIQUE"
			if col.IsPrimaryKey {
				kind = "PRIMARY KEY"
			}
			return dberr.Constraint("%s violation on %s.%s: value %s already exists", kind, t.Name, col.Name, v.String())
		}
	}
	return nil
}

// CommitInsert appends row as a new live row and updates every index.
func (t *Table) CommitInsert(row Row) int {
	pos := len(t.Rows)
	t.Rows = append(t.Rows, row)
	for key, idx := range t.indexes {
		idx.insert(row[key], pos)
	}
	return pos
}

// CommitUpdate replaces the row at pos and updates the indexes whose
// columns changed value.
func (t *Table) CommitUpdate(pos int, newRow Row) {
	old := t.Rows[pos]
	t.Rows[pos] = newRow
	for key, idx := range t.indexes {
		if valueChanged(old[key], newRow[key]) {
			idx.rebuildColumn(t.Rows, key)
		}
	}
}

// valueChanged reports whether two column values differ, treating
// both-Null as unchanged (Equal alone would call that "not equal").
func valueChanged(a, b value.Value) bool {
	if a.IsNull() && b.IsNull() {
		return false
	}
	return !value.Equal(a, b)
}

// rebuildColumn recomputes one index's entries from the current row
// vector's values for its column.
func (idx *Index) rebuildColumn(rows []Row, key string) {
	values := make([]value.Value, len(rows))
	for i, r := range rows {
		values[i] = r[key]
	}
	idx.rebuild(values)
}

// DeleteMany removes the rows at the given positions, renumbering the
// dense vector and rebuilding every index from scratch — per spec §9's
// Design Note that row-position instability after delete is an accepted
// design, not a bug.
func (t *Table) DeleteMany(positions map[int]bool) {
	if len(positions) == 0 {
		return
	}
	kept := make([]Row, 0, len(t.Rows)-len(positions))
	for i, r := range t.Rows {
		if !positions[i] {
			kept = append(kept, r)
		}
	}
	t.Rows = kept
	for key, idx := range t.indexes {
		idx.rebuildColumn(t.Rows, key)
	}
}
