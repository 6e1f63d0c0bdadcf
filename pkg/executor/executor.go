package executor

import (
	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/parser"
)

// Executor binds a Catalog to statement execution. Grounded on the
// teacher's command-dispatch style (a single entry point type-switching
// over parsed statement kinds), generalized from query validation into
// full read/write execution per spec §4.5.
type Executor struct {
	Catalog *catalog.Catalog
}

// New creates an Executor over cat.
func New(cat *catalog.Catalog) *Executor {
	return &Executor{Catalog: cat}
}

// Execute runs one statement to completion under the catalog's
// coarse-grained statement lock (spec §5: "execute runs to completion or
// failure without yielding... all catalog access is serialized"),
// persisting any dirty database before returning on success.
func (e *Executor) Execute(stmt parser.Statement) (*Result, error) {
	e.Catalog.Lock()
	defer e.Catalog.Unlock()

	res, err := e.dispatch(stmt)
	if err != nil {
		return nil, err
	}
	if err := e.Catalog.SaveAll(); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Executor) dispatch(stmt parser.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *parser.CreateDatabaseStatement:
		return e.executeCreateDatabase(s)
	case *parser.DropDatabaseStatement:
		return e.executeDropDatabase(s)
	case *parser.UseStatement:
		return e.executeUse(s)
	case *parser.ShowDatabasesStatement:
		return e.executeShowDatabases(s)
	case *parser.ShowTablesStatement:
		return e.executeShowTables(s)
	case *parser.DescribeStatement:
		return e.executeDescribe(s)
	case *parser.CreateTableStatement:
		return e.executeCreateTable(s)
	case *parser.DropTableStatement:
		return e.executeDropTable(s)
	case *parser.SelectStatement:
		return e.executeSelect(s)
	case *parser.InsertStatement:
		return e.executeInsert(s)
	case *parser.UpdateStatement:
		return e.executeUpdate(s)
	case *parser.DeleteStatement:
		return e.executeDelete(s)
	}
	return nil, dberr.Feature("statement type %s is not supported", stmt.Type())
}

// currentDatabase fetches the session's current database, failing with
// NotFoundError if somehow unset (should not happen after New).
func (e *Executor) currentDatabase() (*catalog.Database, error) {
	db := e.Catalog.Current()
	if db == nil {
		return nil, dberr.NotFound("no database is selected")
	}
	return db, nil
}

// currentTable resolves name against the current database.
func (e *Executor) currentTable(name string) (*catalog.Database, *catalog.Table, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return nil, nil, err
	}
	t, ok := db.Table(name)
	if !ok {
		return nil, nil, dberr.NotFound("table %q does not exist", name)
	}
	return db, t, nil
}
