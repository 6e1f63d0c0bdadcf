package catalog

import (
	"strings"

	"github.com/minisql/minisql/pkg/dberr"
)

// Database is a named, ordered collection of Tables plus a dirty flag the
// Catalog uses to decide which databases need re-serializing after a
// mutating statement.
type Database struct {
	Name   string
	order  []string
	tables map[string]*Table
	Dirty  bool
}

// NewDatabase creates an empty Database.
func NewDatabase(name string) *Database {
	return &Database{Name: name, tables: make(map[string]*Table)}
}

// Table looks up a table case-insensitively.
func (d *Database) Table(name string) (*Table, bool) {
	t, ok := d.tables[strings.ToLower(name)]
	return t, ok
}

// TableNames returns table names in creation order.
func (d *Database) TableNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// AddTable registers a new table. Caller has already checked FK targets
// and cycle-freedom (see CheckCreateTable).
func (d *Database) AddTable(t *Table) {
	key := strings.ToLower(t.Name)
	if _, exists := d.tables[key]; !exists {
		d.order = append(d.order, t.Name)
	}
	d.tables[key] = t
	d.Dirty = true
}

// DropTable removes a table and its dependents' nothing else — FK
// existence is re-validated lazily by downstream statements, matching
// spec's lack of ALTER TABLE/cascading DROP TABLE semantics.
func (d *Database) DropTable(name string) error {
	key := strings.ToLower(name)
	if _, ok := d.tables[key]; !ok {
		return dberr.NotFound("table %q does not exist", name)
	}
	delete(d.tables, key)
	for i, n := range d.order {
		if strings.EqualFold(n, name) {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.Dirty = true
	return nil
}

// CheckCreateTable validates every FK clause's target (table exists,
// column is PK/UNIQUE) and that adding the new table's FK edges keeps the
// catalog-wide FK graph acyclic, per spec §4.4's DDL-time validation. It
// does not mutate the database — callers add the table only after this
// succeeds.
func (d *Database) CheckCreateTable(name string, columns []*Column) error {
	if _, exists := d.Table(name); exists {
		return dberr.Constraint("table %q already exists", name)
	}

	seenCols := make(map[string]bool, len(columns))
	pkCount := 0
	for _, c := range columns {
		key := strings.ToLower(c.Name)
		if seenCols[key] {
			return dberr.Semantic("duplicate column %q in table %q", c.Name, name)
		}
		seenCols[key] = true
		if c.IsPrimaryKey {
			pkCount++
		}
		if c.ForeignKey != nil {
			target, ok := d.Table(c.ForeignKey.Table)
			if !ok {
				return dberr.Constraint("foreign key on %s.%s references unknown table %q", name, c.Name, c.ForeignKey.Table)
			}
			targetCol, ok := target.Column(c.ForeignKey.Column)
			if !ok {
				return dberr.Constraint("foreign key on %s.%s references unknown column %s.%s", name, c.Name, c.ForeignKey.Table, c.ForeignKey.Column)
			}
			if !targetCol.Unique() {
				return dberr.Constraint("foreign key on %s.%s must reference a PRIMARY KEY or UNIQUE column, %s.%s is neither", name, c.Name, c.ForeignKey.Table, c.ForeignKey.Column)
			}
		}
	}
	if pkCount != 1 {
		return dberr.Semantic("table %q must declare exactly one PRIMARY KEY column, found %d", name, pkCount)
	}

	return d.checkAcyclic(name, columns)
}

// checkAcyclic runs a DFS over the table-level FK dependency multigraph
// (edge child→parent) with the candidate table's new edges tentatively
// added, per spec §9: "On CREATE TABLE, tentatively insert edges and DFS;
// reject and rollback on back-edge."
func (d *Database) checkAcyclic(newTable string, newColumns []*Column) error {
	edges := make(map[string][]string)
	for _, name := range d.TableNames() {
		t, _ := d.Table(name)
		for _, c := range t.Columns {
			if c.ForeignKey != nil {
				edges[strings.ToLower(name)] = append(edges[strings.ToLower(name)], strings.ToLower(c.ForeignKey.Table))
			}
		}
	}
	newKey := strings.ToLower(newTable)
	for _, c := range newColumns {
		if c.ForeignKey != nil {
			edges[newKey] = append(edges[newKey], strings.ToLower(c.ForeignKey.Table))
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var path []string

	var visit func(node string) error
	visit = func(node string) error {
		color[node] = gray
		path = append(path, node)
		for _, next := range edges[node] {
			switch color[next] {
			case gray:
				cyclePath := append(append([]string{}, path...), next)
				return dberr.Constraint("foreign key graph has a cycle: %s", strings.Join(cyclePath, " -> "))
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[node] = black
		return nil
	}

	for node := range edges {
		if color[node] == white {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}
