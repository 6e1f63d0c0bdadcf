package catalog

import (
	"strings"

	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/value"
)

// Plan is the precomputed closure of every referential-action effect
// induced by a DELETE or a key-changing UPDATE, per spec §9's Design Note
// "Referential actions as a plan": compute the full closure before
// mutation, dedupe by (table, row-position), then execute — preserving
// the all-or-nothing guarantee cheaply and handling diamond dependencies.
type Plan struct {
	Deletes  map[string]map[int]bool
	SetNulls map[string]map[int]map[string]bool
	KeySets  map[string]map[int]map[string]value.Value
}

func newPlan() *Plan {
	return &Plan{
		Deletes:  make(map[string]map[int]bool),
		SetNulls: make(map[string]map[int]map[string]bool),
		KeySets:  make(map[string]map[int]map[string]value.Value),
	}
}

func (p *Plan) isDeleted(tableKey string, pos int) bool {
	return p.Deletes[tableKey] != nil && p.Deletes[tableKey][pos]
}

func (p *Plan) markDelete(tableKey string, pos int) {
	if p.Deletes[tableKey] == nil {
		p.Deletes[tableKey] = make(map[int]bool)
	}
	p.Deletes[tableKey][pos] = true
}

func (p *Plan) markSetNull(tableKey string, pos int, col string) {
	if p.SetNulls[tableKey] == nil {
		p.SetNulls[tableKey] = make(map[int]map[string]bool)
	}
	if p.SetNulls[tableKey][pos] == nil {
		p.SetNulls[tableKey][pos] = make(map[string]bool)
	}
	p.SetNulls[tableKey][pos][col] = true
}

func (p *Plan) markKeySet(tableKey string, pos int, col string, v value.Value) {
	if p.KeySets[tableKey] == nil {
		p.KeySets[tableKey] = make(map[int]map[string]value.Value)
	}
	if p.KeySets[tableKey][pos] == nil {
		p.KeySets[tableKey][pos] = make(map[string]value.Value)
	}
	p.KeySets[tableKey][pos][col] = v
}

// Merge folds other's scheduled effects into p, for callers combining
// multiple PlanKeyUpdate calls (one per changed key column) into a single
// plan before Apply.
func (p *Plan) Merge(other *Plan) { p.merge(other) }

func (p *Plan) merge(other *Plan) {
	for tk, positions := range other.Deletes {
		for pos := range positions {
			p.markDelete(tk, pos)
		}
	}
	for tk, byPos := range other.SetNulls {
		for pos, cols := range byPos {
			for col := range cols {
				p.markSetNull(tk, pos, col)
			}
		}
	}
	for tk, byPos := range other.KeySets {
		for pos, cols := range byPos {
			for col, v := range cols {
				p.markKeySet(tk, pos, col, v)
			}
		}
	}
}

// childRef is one table/column pair that holds a foreign key pointing at
// some other table's PK/UNIQUE column.
type childRef struct {
	tableName string
	table     *Table
	column    *Column
}

// childrenReferencing finds every FK column across the database pointing
// at parentTable.parentColumn.
func childrenReferencing(db *Database, parentTable, parentColumn string) []childRef {
	var out []childRef
	for _, name := range db.TableNames() {
		t, _ := db.Table(name)
		for _, c := range t.Columns {
			if c.ForeignKey != nil &&
				strings.EqualFold(c.ForeignKey.Table, parentTable) &&
				strings.EqualFold(c.ForeignKey.Column, parentColumn) {
				out = append(out, childRef{tableName: name, table: t, column: c})
			}
		}
	}
	return out
}

// PlanDelete computes the full referential-action closure for deleting
// the given row positions from tableName, per spec §4.4: RESTRICT/NO
// ACTION aborts the whole statement if any non-scheduled child still
// references the row; CASCADE recursively schedules child deletes; SET
// NULL schedules a null-out on the child's FK column (rejecting a target
// that is itself part of the child's PK).
func PlanDelete(db *Database, tableName string, positions []int) (*Plan, error) {
	plan := newPlan()
	root, ok := db.Table(tableName)
	if !ok {
		return nil, dberr.NotFound("table %q does not exist", tableName)
	}

	var visit func(tableName string, t *Table, pos int) error
	visit = func(tableName string, t *Table, pos int) error {
		key := strings.ToLower(tableName)
		if plan.isDeleted(key, pos) {
			return nil
		}
		plan.markDelete(key, pos)

		row := t.Rows[pos]
		for _, col := range t.Columns {
			if !col.Unique() {
				continue
			}
			parentVal := row[strings.ToLower(col.Name)]
			if parentVal.IsNull() {
				continue
			}
			for _, ref := range childrenReferencing(db, tableName, col.Name) {
				idx, ok := ref.table.Index(ref.column.Name)
				if !ok {
					continue
				}
				childKey := strings.ToLower(ref.tableName)
				for _, childPos := range idx.Lookup(parentVal) {
					if plan.isDeleted(childKey, childPos) {
						continue
					}
					switch ref.column.ForeignKey.OnDelete {
					case ActionCascade:
						if err := visit(ref.tableName, ref.table, childPos); err != nil {
							return err
						}
					case ActionSetNull:
						if pk := ref.table.PKColumn(); pk != nil && strings.EqualFold(pk.Name, ref.column.Name) {
							return dberr.Constraint("cannot SET NULL on %s.%s: column is the table's primary key", ref.tableName, ref.column.Name)
						}
						plan.markSetNull(childKey, childPos, strings.ToLower(ref.column.Name))
					default: // RESTRICT, NO ACTION
						return dberr.Constraint("RESTRICT: row in %q references %s.%s = %s", ref.tableName, tableName, col.Name, parentVal.String())
					}
				}
			}
		}
		return nil
	}

	for _, pos := range positions {
		if err := visit(tableName, root, pos); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// PlanKeyUpdate computes the referential-action closure for changing a
// unique column's value on the given row positions (UPDATE touching a
// PK/UNIQUE column that some FK targets), per spec §4.4's ON UPDATE
// handling: CASCADE propagates the new value to children (recursing if
// the child's FK column is itself a further target), SET NULL nulls the
// child column, RESTRICT/NO ACTION aborts if any child still references
// the old value.
func PlanKeyUpdate(db *Database, tableName, columnName string, changes map[int]value.Value, oldValues map[int]value.Value) (*Plan, error) {
	plan := newPlan()

	for pos, newVal := range changes {
		oldVal := oldValues[pos]
		if oldVal.IsNull() {
			continue
		}
		for _, ref := range childrenReferencing(db, tableName, columnName) {
			idx, ok := ref.table.Index(ref.column.Name)
			if !ok {
				continue
			}
			childKey := strings.ToLower(ref.tableName)
			for _, childPos := range idx.Lookup(oldVal) {
				switch ref.column.ForeignKey.OnUpdate {
				case ActionCascade:
					plan.markKeySet(childKey, childPos, strings.ToLower(ref.column.Name), newVal)
					if ref.column.Unique() {
						sub, err := PlanKeyUpdate(db, ref.tableName, ref.column.Name,
							map[int]value.Value{childPos: newVal},
							map[int]value.Value{childPos: oldVal})
						if err != nil {
							return nil, err
						}
						plan.merge(sub)
					}
				case ActionSetNull:
					if pk := ref.table.PKColumn(); pk != nil && strings.EqualFold(pk.Name, ref.column.Name) {
						return nil, dberr.Constraint("cannot SET NULL on %s.%s: column is the table's primary key", ref.tableName, ref.column.Name)
					}
					plan.markSetNull(childKey, childPos, strings.ToLower(ref.column.Name))
				default: // RESTRICT, NO ACTION
					return nil, dberr.Constraint("RESTRICT: row in %q references %s.%s = %s", ref.tableName, tableName, columnName, oldVal.String())
				}
			}
		}
	}
	return plan, nil
}

// Apply commits a Plan's effects: key-sets and set-nulls are merged per
// row and written first (DeleteMany renumbers positions, so updates must
// land on the pre-delete row vector), then every scheduled delete is
// applied per table.
func (p *Plan) Apply(db *Database) {
	patchesByTable := make(map[string]map[int]map[string]value.Value)
	addPatch := func(tableKey string, pos int, col string, v value.Value) {
		if patchesByTable[tableKey] == nil {
			patchesByTable[tableKey] = make(map[int]map[string]value.Value)
		}
		if patchesByTable[tableKey][pos] == nil {
			patchesByTable[tableKey][pos] = make(map[string]value.Value)
		}
		patchesByTable[tableKey][pos][col] = v
	}
	for tableKey, byPos := range p.SetNulls {
		for pos, cols := range byPos {
			if p.isDeleted(tableKey, pos) {
				continue
			}
			for col := range cols {
				addPatch(tableKey, pos, col, value.Null())
			}
		}
	}
	for tableKey, byPos := range p.KeySets {
		for pos, cols := range byPos {
			if p.isDeleted(tableKey, pos) {
				continue
			}
			for col, v := range cols {
				addPatch(tableKey, pos, col, v)
			}
		}
	}

	for tableKey, byPos := range patchesByTable {
		t := tableByKey(db, tableKey)
		if t == nil {
			continue
		}
		for pos, cols := range byPos {
			newRow := t.Rows[pos].Clone()
			for col, v := range cols {
				newRow[col] = v
			}
			t.CommitUpdate(pos, newRow)
		}
	}

	for tableKey, positions := range p.Deletes {
		t := tableByKey(db, tableKey)
		if t == nil {
			continue
		}
		t.DeleteMany(positions)
	}
}

func tableByKey(db *Database, tableKey string) *Table {
	for _, name := range db.TableNames() {
		if strings.ToLower(name) == tableKey {
			t, _ := db.Table(name)
			return t
		}
	}
	return nil
}
