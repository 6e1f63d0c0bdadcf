package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/value"
)

// errMalformed is the cause wrapped by dberr.IO when a loaded catalog
// file's scalar shape doesn't match its declared column type — there is
// no underlying OS/JSON error to carry, so a sentinel stands in.
var errMalformed = errors.New("malformed catalog value")

// Wire format mirrors spec §6's catalog file layout byte-for-byte:
// <data_dir>/catalog.json (database list + current-db pointer + schema
// version) and one <db_name>.json per database. encoding/json's
// struct-tag marshaling is used directly — the shape is pinned down
// completely by the spec, leaving nothing for a third-party JSON library
// to add.

const catalogSchemaVersion = 1

type catalogFile struct {
	Databases []string `json:"databases"`
	Current   string   `json:"current"`
	Version   int      `json:"version"`
}

type foreignKeyFile struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	OnDelete string `json:"on_delete"`
	OnUpdate string `json:"on_update"`
}

type columnFile struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	IsPrimaryKey bool            `json:"is_primary_key"`
	IsUnique     bool            `json:"is_unique"`
	ForeignKey   *foreignKeyFile `json:"foreign_key"`
}

type tableFile struct {
	Name    string                   `json:"name"`
	Columns []columnFile             `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

type databaseFile struct {
	Name   string               `json:"name"`
	Tables map[string]tableFile `json:"tables"`
}

// writeAtomic writes data to a temp sibling of path and renames it over
// the target, so a crash mid-write never leaves a half-written catalog
// file — the only durability guarantee spec §5 asks for ("atomic file
// replace", no WAL).
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dberr.IO(err, "creating data directory %q", dir)
	}
	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return dberr.IO(err, "writing temporary file for %q", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return dberr.IO(err, "replacing %q", path)
	}
	return nil
}

func toColumnFile(c *Column) columnFile {
	cf := columnFile{
		Name:         c.Name,
		Type:         c.Type.String(),
		IsPrimaryKey: c.IsPrimaryKey,
		IsUnique:     c.IsUnique,
	}
	if c.ForeignKey != nil {
		cf.ForeignKey = &foreignKeyFile{
			Table:    c.ForeignKey.Table,
			Column:   c.ForeignKey.Column,
			OnDelete: string(c.ForeignKey.OnDelete),
			OnUpdate: string(c.ForeignKey.OnUpdate),
		}
	}
	return cf
}

func fromColumnFile(cf columnFile) (*Column, error) {
	dt, ok := value.ParseDataType(cf.Type)
	if !ok {
		return nil, dberr.IO(errMalformed, "column %q has unknown type %q", cf.Name, cf.Type)
	}
	c := &Column{Name: cf.Name, Type: dt, IsPrimaryKey: cf.IsPrimaryKey, IsUnique: cf.IsUnique}
	if cf.ForeignKey != nil {
		onDelete := ReferentialAction(cf.ForeignKey.OnDelete)
		onUpdate := ReferentialAction(cf.ForeignKey.OnUpdate)
		if onDelete == "" {
			onDelete = ActionRestrict // missing defaults to RESTRICT per spec §6
		}
		if onUpdate == "" {
			onUpdate = ActionRestrict
		}
		c.ForeignKey = &ForeignKey{
			Table:    cf.ForeignKey.Table,
			Column:   cf.ForeignKey.Column,
			OnDelete: onDelete,
			OnUpdate: onUpdate,
		}
	}
	return c, nil
}

func rowToJSON(t *Table, r Row) map[string]interface{} {
	out := make(map[string]interface{}, len(t.Columns))
	for _, c := range t.Columns {
		out[c.Name] = value.AsJSON(r[strings.ToLower(c.Name)])
	}
	return out
}

func rowFromJSON(t *Table, raw map[string]interface{}) (Row, error) {
	row := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		raw, present := raw[c.Name]
		if !present || raw == nil {
			row[strings.ToLower(c.Name)] = value.Null()
			continue
		}
		v, err := scalarToValue(c.Type, raw)
		if err != nil {
			return nil, dberr.IO(err, "column %q in table %q", c.Name, t.Name)
		}
		row[strings.ToLower(c.Name)] = v
	}
	return row, nil
}

func scalarToValue(dt value.DataType, raw interface{}) (value.Value, error) {
	switch dt {
	case value.TypeInt:
		f, ok := raw.(float64)
		if !ok {
			return value.Value{}, dberr.IO(errMalformed, "expected a number")
		}
		return value.Integer(int64(f)), nil
	case value.TypeFloat:
		f, ok := raw.(float64)
		if !ok {
			return value.Value{}, dberr.IO(errMalformed, "expected a number")
		}
		return value.Float(f), nil
	case value.TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return value.Value{}, dberr.IO(errMalformed, "expected a bool")
		}
		return value.Bool(b), nil
	case value.TypeString:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, dberr.IO(errMalformed, "expected a string")
		}
		return value.Text(s), nil
	case value.TypeDate, value.TypeTime, value.TypeDateTime:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, dberr.IO(errMalformed, "expected an ISO-8601 string")
		}
		return value.ParseLiteral(dt, s)
	default:
		return value.Value{}, dberr.IO(errMalformed, "unknown data type")
	}
}

// SaveDatabase serializes db to <data_dir>/<name>.json, atomically.
func SaveDatabase(dataDir string, db *Database) error {
	df := databaseFile{Name: db.Name, Tables: make(map[string]tableFile, len(db.TableNames()))}
	for _, name := range db.TableNames() {
		t, _ := db.Table(name)
		tf := tableFile{Name: t.Name, Rows: make([]map[string]interface{}, 0, len(t.Rows))}
		for _, c := range t.Columns {
			tf.Columns = append(tf.Columns, toColumnFile(c))
		}
		for _, r := range t.Rows {
			tf.Rows = append(tf.Rows, rowToJSON(t, r))
		}
		df.Tables[t.Name] = tf
	}
	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return dberr.IO(err, "marshaling database %q", db.Name)
	}
	return writeAtomic(filepath.Join(dataDir, db.Name+".json"), data)
}

// LoadDatabase deserializes <data_dir>/<name>.json, rebuilding every
// index from the loaded rows since indexes are never persisted.
func LoadDatabase(dataDir, name string) (*Database, error) {
	path := filepath.Join(dataDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dberr.IO(err, "reading database file %q", path)
	}
	var df databaseFile
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, dberr.IO(err, "parsing database file %q", path)
	}

	db := NewDatabase(df.Name)
	for _, tf := range df.Tables {
		columns := make([]*Column, 0, len(tf.Columns))
		for _, cf := range tf.Columns {
			c, err := fromColumnFile(cf)
			if err != nil {
				return nil, err
			}
			columns = append(columns, c)
		}
		t := NewTable(tf.Name, columns)
		for _, raw := range tf.Rows {
			row, err := rowFromJSON(t, raw)
			if err != nil {
				return nil, err
			}
			t.CommitInsert(row)
		}
		db.AddTable(t)
	}
	db.Dirty = false
	return db, nil
}

// SaveCatalogMeta writes catalog.json: the database list, current-db
// pointer, and schema version.
func SaveCatalogMeta(c *Catalog) error {
	cf := catalogFile{Databases: c.DatabaseNames(), Current: c.CurrentName(), Version: catalogSchemaVersion}
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return dberr.IO(err, "marshaling catalog metadata")
	}
	return writeAtomic(filepath.Join(c.DataDir, "catalog.json"), data)
}

// SaveAll persists every dirty database plus the catalog metadata file,
// clearing each database's dirty flag on success.
func (c *Catalog) SaveAll() error {
	for _, name := range c.DatabaseNames() {
		db, _ := c.Database(name)
		if !db.Dirty {
			continue
		}
		if err := SaveDatabase(c.DataDir, db); err != nil {
			return err
		}
		db.Dirty = false
	}
	return SaveCatalogMeta(c)
}

// Load replaces the in-memory catalog with the contents of DataDir's
// catalog.json and every listed database file. If catalog.json does not
// exist yet (fresh data directory), Load is a no-op and the catalog keeps
// its freshly seeded "default" database.
func (c *Catalog) Load() error {
	path := filepath.Join(c.DataDir, "catalog.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return dberr.IO(err, "reading catalog metadata %q", path)
	}
	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return dberr.IO(err, "parsing catalog metadata %q", path)
	}

	c.databases = make(map[string]*Database)
	c.order = nil
	for _, name := range cf.Databases {
		db, err := LoadDatabase(c.DataDir, name)
		if err != nil {
			return err
		}
		c.addDatabase(db)
	}
	if cf.Current != "" {
		c.currentKey = strings.ToLower(cf.Current)
	}
	if _, ok := c.Database(DefaultDatabaseName); !ok {
		c.addDatabase(NewDatabase(DefaultDatabaseName))
	}
	return nil
}
