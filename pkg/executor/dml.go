package executor

import (
	"strings"

	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/eval"
	"github.com/minisql/minisql/pkg/parser"
	"github.com/minisql/minisql/pkg/value"
)

func (e *Executor) executeInsert(s *parser.InsertStatement) (*Result, error) {
	db, t, err := e.currentTable(s.Table)
	if err != nil {
		return nil, err
	}

	values := make([]value.Value, len(s.Values))
	for i, expr := range s.Values {
		v, err := eval.Eval(expr, &eval.Context{Binding: eval.NewBinding()})
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	row, err := t.CoerceValues(s.Columns, values)
	if err != nil {
		return nil, err
	}

	if err := checkRowConstraints(db, t, row, -1); err != nil {
		return nil, err
	}

	t.CommitInsert(row)
	db.Dirty = true
	return affectedResult(1), nil
}

// checkRowConstraints validates PK/UNIQUE uniqueness (excluding excludePos,
// -1 for inserts) and that every FK column's value exists in its target's
// PK/UNIQUE index, per spec §4.4's Table.insert/Table.update rules.
func checkRowConstraints(db *catalog.Database, t *catalog.Table, row catalog.Row, excludePos int) error {
	for _, c := range t.Columns {
		v := row[strings.ToLower(c.Name)]
		if c.Unique() {
			if err := t.CheckUnique(c, v, excludePos); err != nil {
				return err
			}
		}
		if c.ForeignKey != nil && !v.IsNull() {
			target, ok := db.Table(c.ForeignKey.Table)
			if !ok {
				return dberr.Constraint("foreign key on %s.%s references unknown table %q", t.Name, c.Name, c.ForeignKey.Table)
			}
			idx, ok := target.Index(c.ForeignKey.Column)
			if !ok || !idx.Has(v) {
				return dberr.Constraint("foreign key violation: %s.%s = %s has no matching %s.%s",
					t.Name, c.Name, v.String(), c.ForeignKey.Table, c.ForeignKey.Column)
			}
		}
	}
	return nil
}

func (e *Executor) executeUpdate(s *parser.UpdateStatement) (*Result, error) {
	db, t, err := e.currentTable(s.Table)
	if err != nil {
		return nil, err
	}

	positions, err := matchingPositions(t, s.Where)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return affectedResult(0), nil
	}

	newRows := make(map[int]catalog.Row, len(positions))
	keyColumnChanges := make(map[string]map[int]value.Value)
	keyColumnOld := make(map[string]map[int]value.Value)

	for _, pos := range positions {
		old := t.Rows[pos]
		newRow := old.Clone()
		b := eval.NewBinding()
		b.AddRow(t.Name, old, t.ColumnNames())
		for _, assign := range s.Set {
			col, ok := t.Column(assign.Column)
			if !ok {
				return nil, dberr.NotFound("column %q does not exist on table %q", assign.Column, t.Name)
			}
			v, err := eval.Eval(assign.Value, &eval.Context{Binding: b})
			if err != nil {
				return nil, err
			}
			coerced, err := value.CoerceTo(col.Type, v)
			if err != nil {
				return nil, dberr.TypeErr("column %q: %v", col.Name, err)
			}
			key := strings.ToLower(col.Name)
			newRow[key] = coerced
			if col.Unique() {
				if keyColumnChanges[key] == nil {
					keyColumnChanges[key] = make(map[int]value.Value)
					keyColumnOld[key] = make(map[int]value.Value)
				}
				keyColumnChanges[key][pos] = coerced
				keyColumnOld[key][pos] = old[key]
			}
		}
		if err := checkRowConstraints(db, t, newRow, pos); err != nil {
			return nil, err
		}
		newRows[pos] = newRow
	}

	plan, err := planKeyUpdates(db, t, keyColumnChanges, keyColumnOld)
	if err != nil {
		return nil, err
	}

	for pos, newRow := range newRows {
		t.CommitUpdate(pos, newRow)
	}
	if plan != nil {
		plan.Apply(db)
	}
	db.Dirty = true
	return affectedResult(len(positions)), nil
}

func planKeyUpdates(db *catalog.Database, t *catalog.Table, changes, old map[string]map[int]value.Value) (*catalog.Plan, error) {
	var merged *catalog.Plan
	for _, c := range t.Columns {
		key := strings.ToLower(c.Name)
		colChanges, ok := changes[key]
		if !ok {
			continue
		}
		plan, err := catalog.PlanKeyUpdate(db, t.Name, c.Name, colChanges, old[key])
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = plan
		} else {
			merged.Merge(plan)
		}
	}
	return merged, nil
}

func (e *Executor) executeDelete(s *parser.DeleteStatement) (*Result, error) {
	db, t, err := e.currentTable(s.Table)
	if err != nil {
		return nil, err
	}

	positions, err := matchingPositions(t, s.Where)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return affectedResult(0), nil
	}

	plan, err := catalog.PlanDelete(db, t.Name, positions)
	if err != nil {
		return nil, err
	}
	plan.Apply(db)
	db.Dirty = true
	return affectedResult(len(positions)), nil
}

// matchingPositions scans t and returns the row positions admitted by
// where (nil where admits every row), per spec §4.4's candidate-selection
// step shared by UPDATE and DELETE.
func matchingPositions(t *catalog.Table, where parser.Expression) ([]int, error) {
	var positions []int
	for i, row := range t.Rows {
		if where == nil {
			positions = append(positions, i)
			continue
		}
		b := eval.NewBinding()
		b.AddRow(t.Name, row, t.ColumnNames())
		v, err := eval.Eval(where, &eval.Context{Binding: b})
		if err != nil {
			return nil, err
		}
		if v.Truthy() {
			positions = append(positions, i)
		}
	}
	return positions, nil
}
