// Package seed provides an optional YAML catalog bootstrap, grounded on
// the teacher's pkg/schema/loader.go (SchemaLoader.LoadFromJSON/its YAML
// counterpart, nested anonymous structs mirroring the on-disk shape) using
// gopkg.in/yaml.v3 — the teacher's own dependency, repurposed here from
// "describe an existing schema for analysis" into "declare a schema to
// create on startup". A seed file is compiled into CREATE DATABASE/CREATE
// TABLE statements and replayed through the ordinary parser.Parse +
// executor.Execute path, so it exercises the same constraint/cycle checks
// as any other DDL rather than poking the catalog directly.
package seed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minisql/minisql/pkg/executor"
	"github.com/minisql/minisql/pkg/parser"
)

// Spec is the root of a seed file: a list of databases to create (or
// reuse, if already present) with their tables.
type Spec struct {
	Databases []DatabaseSpec `yaml:"databases"`
}

// DatabaseSpec declares one database and its tables.
type DatabaseSpec struct {
	Name   string      `yaml:"name"`
	Tables []TableSpec `yaml:"tables"`
}

// TableSpec declares one table and its columns.
type TableSpec struct {
	Name    string       `yaml:"name"`
	Columns []ColumnSpec `yaml:"columns"`
}

// ColumnSpec declares one column, mirroring spec §4.2's CREATE TABLE
// column-clause grammar: `name TYPE [PRIMARY KEY] [UNIQUE] [REFERENCES
// table(col) [ON DELETE action] [ON UPDATE action]]`.
type ColumnSpec struct {
	Name       string          `yaml:"name"`
	Type       string          `yaml:"type"`
	PrimaryKey bool            `yaml:"primary_key"`
	Unique     bool            `yaml:"unique"`
	ForeignKey *ForeignKeySpec `yaml:"foreign_key"`
}

// ForeignKeySpec declares a column-level REFERENCES clause.
type ForeignKeySpec struct {
	Table    string `yaml:"table"`
	Column   string `yaml:"column"`
	OnDelete string `yaml:"on_delete"`
	OnUpdate string `yaml:"on_update"`
}

// LoadFile reads and parses a YAML seed file from path.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %q: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing seed file %q: %w", path, err)
	}
	return &spec, nil
}

// Apply compiles spec into DDL statements and runs each one through exec,
// in declaration order: CREATE DATABASE, USE, then CREATE TABLE per table.
// A database or table that already exists is left alone (its CREATE is
// skipped, not treated as a fatal error) so a seed file is safe to replay
// against a catalog that was bootstrapped before.
func Apply(spec *Spec, exec *executor.Executor) error {
	for _, db := range spec.Databases {
		if _, exists := exec.Catalog.Database(db.Name); !exists {
			if err := run(exec, fmt.Sprintf("CREATE DATABASE %s", db.Name)); err != nil {
				return fmt.Errorf("seeding database %q: %w", db.Name, err)
			}
		}
		if err := run(exec, fmt.Sprintf("USE %s", db.Name)); err != nil {
			return fmt.Errorf("seeding database %q: %w", db.Name, err)
		}
		database, _ := exec.Catalog.Database(db.Name)
		for _, tbl := range db.Tables {
			if _, exists := database.Table(tbl.Name); exists {
				continue
			}
			stmt, err := createTableSQL(tbl)
			if err != nil {
				return fmt.Errorf("seeding table %q.%q: %w", db.Name, tbl.Name, err)
			}
			if err := run(exec, stmt); err != nil {
				return fmt.Errorf("seeding table %q.%q: %w", db.Name, tbl.Name, err)
			}
		}
	}
	return nil
}

func run(exec *executor.Executor, sql string) error {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return err
	}
	_, err = exec.Execute(stmt)
	return err
}

func createTableSQL(tbl TableSpec) (string, error) {
	if len(tbl.Columns) == 0 {
		return "", fmt.Errorf("table %q declares no columns", tbl.Name)
	}
	cols := make([]string, 0, len(tbl.Columns))
	for _, c := range tbl.Columns {
		if c.Name == "" || c.Type == "" {
			return "", fmt.Errorf("column with empty name or type in table %q", tbl.Name)
		}
		clause := fmt.Sprintf("%s %s", c.Name, strings.ToUpper(c.Type))
		if c.PrimaryKey {
			clause += " PRIMARY KEY"
		}
		if c.Unique {
			clause += " UNIQUE"
		}
		if c.ForeignKey != nil {
			fk := c.ForeignKey
			clause += fmt.Sprintf(" REFERENCES %s(%s)", fk.Table, fk.Column)
			if fk.OnDelete != "" {
				clause += " ON DELETE " + strings.ToUpper(fk.OnDelete)
			}
			if fk.OnUpdate != "" {
				clause += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
			}
		}
		cols = append(cols, clause)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", tbl.Name, strings.Join(cols, ", ")), nil
}
