package executor

import (
	"fmt"
	"sort"

	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/parser"
	"github.com/minisql/minisql/pkg/value"
)

func (e *Executor) executeCreateDatabase(s *parser.CreateDatabaseStatement) (*Result, error) {
	if _, err := e.Catalog.CreateDatabase(s.Name); err != nil {
		return nil, err
	}
	return messageResult(fmt.Sprintf("database %q created", s.Name)), nil
}

func (e *Executor) executeDropDatabase(s *parser.DropDatabaseStatement) (*Result, error) {
	if err := e.Catalog.DropDatabase(s.Name); err != nil {
		return nil, err
	}
	return messageResult(fmt.Sprintf("database %q dropped", s.Name)), nil
}

func (e *Executor) executeUse(s *parser.UseStatement) (*Result, error) {
	if err := e.Catalog.UseDatabase(s.Name); err != nil {
		return nil, err
	}
	return messageResult(fmt.Sprintf("using database %q", s.Name)), nil
}

func (e *Executor) executeShowDatabases(s *parser.ShowDatabasesStatement) (*Result, error) {
	names := e.Catalog.DatabaseNames()
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	rows := make([]Row, len(sorted))
	for i, n := range sorted {
		rows[i] = Row{"name": value.Text(n)}
	}
	return rowsResult([]string{"name"}, rows), nil
}

func (e *Executor) executeShowTables(s *parser.ShowTablesStatement) (*Result, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return nil, err
	}
	names := db.TableNames()
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	rows := make([]Row, len(sorted))
	for i, n := range sorted {
		rows[i] = Row{"name": value.Text(n)}
	}
	return rowsResult([]string{"name"}, rows), nil
}

func (e *Executor) executeDescribe(s *parser.DescribeStatement) (*Result, error) {
	_, t, err := e.currentTable(s.Table)
	if err != nil {
		return nil, err
	}
	columns := []string{"name", "type", "constraints"}
	rows := make([]Row, len(t.Columns))
	for i, c := range t.Columns {
		rows[i] = Row{
			"name":        value.Text(c.Name),
			"type":        value.Text(c.Type.String()),
			"constraints": value.Text(describeConstraints(c)),
		}
	}
	return rowsResult(columns, rows), nil
}

func describeConstraints(c *catalog.Column) string {
	var parts []string
	if c.IsPrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if c.IsUnique {
		parts = append(parts, "UNIQUE")
	}
	if c.ForeignKey != nil {
		parts = append(parts, fmt.Sprintf("REFERENCES %s(%s) ON DELETE %s ON UPDATE %s",
			c.ForeignKey.Table, c.ForeignKey.Column, c.ForeignKey.OnDelete, c.ForeignKey.OnUpdate))
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func (e *Executor) executeCreateTable(s *parser.CreateTableStatement) (*Result, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return nil, err
	}

	columns := make([]*catalog.Column, len(s.Columns))
	for i, cd := range s.Columns {
		col := &catalog.Column{
			Name:         cd.Name,
			Type:         cd.Type,
			IsPrimaryKey: cd.IsPrimaryKey,
			IsUnique:     cd.IsUnique,
		}
		if cd.ForeignKey != nil {
			col.ForeignKey = &catalog.ForeignKey{
				Table:    cd.ForeignKey.TargetTable,
				Column:   cd.ForeignKey.TargetColumn,
				OnDelete: catalog.ReferentialAction(cd.ForeignKey.OnDelete),
				OnUpdate: catalog.ReferentialAction(cd.ForeignKey.OnUpdate),
			}
		}
		columns[i] = col
	}

	if err := db.CheckCreateTable(s.Name, columns); err != nil {
		return nil, err
	}
	db.AddTable(catalog.NewTable(s.Name, columns))
	return messageResult(fmt.Sprintf("table %q created", s.Name)), nil
}

func (e *Executor) executeDropTable(s *parser.DropTableStatement) (*Result, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return nil, err
	}
	if err := db.DropTable(s.Name); err != nil {
		return nil, err
	}
	return messageResult(fmt.Sprintf("table %q dropped", s.Name)), nil
}
