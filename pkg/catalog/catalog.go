package catalog

import (
	"strings"
	"sync"

	"github.com/minisql/minisql/pkg/dberr"
)

// DefaultDatabaseName is the reserved database created on a fresh catalog
// and that CheckDropDatabase refuses to drop, per spec §3's Lifecycle
// note.
const DefaultDatabaseName = "default"

// Catalog is the root container: a map of named Databases plus a
// "current database" session pointer and the data directory used for
// persistence. Concurrent access is serialized by lock, per spec §5's
// coarse-grained exclusive-lock model (one lock held for the life of a
// statement).
type Catalog struct {
	mu         sync.Mutex
	DataDir    string
	databases  map[string]*Database
	order      []string
	currentKey string
}

// New creates a Catalog rooted at dataDir, seeded with the reserved
// "default" database.
func New(dataDir string) *Catalog {
	c := &Catalog{
		DataDir:   dataDir,
		databases: make(map[string]*Database),
	}
	c.addDatabase(NewDatabase(DefaultDatabaseName))
	c.currentKey = strings.ToLower(DefaultDatabaseName)
	return c
}

// Lock/Unlock expose the catalog's coarse-grained statement lock to the
// executor, which holds it for the duration of one execute() call.
func (c *Catalog) Lock()   { c.mu.Lock() }
func (c *Catalog) Unlock() { c.mu.Unlock() }

func (c *Catalog) addDatabase(db *Database) {
	key := strings.ToLower(db.Name)
	if _, exists := c.databases[key]; !exists {
		c.order = append(c.order, db.Name)
	}
	c.databases[key] = db
}

// Database looks up a database case-insensitively.
func (c *Catalog) Database(name string) (*Database, bool) {
	db, ok := c.databases[strings.ToLower(name)]
	return db, ok
}

// DatabaseNames returns database names in creation order.
func (c *Catalog) DatabaseNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// CreateDatabase adds a new, empty database.
func (c *Catalog) CreateDatabase(name string) (*Database, error) {
	if _, exists := c.Database(name); exists {
		return nil, dberr.Constraint("database %q already exists", name)
	}
	db := NewDatabase(name)
	c.addDatabase(db)
	return db, nil
}

// DropDatabase removes a database. The reserved "default" database can
// never be dropped.
func (c *Catalog) DropDatabase(name string) error {
	if strings.EqualFold(name, DefaultDatabaseName) {
		return dberr.Constraint("the %q database is reserved and cannot be dropped", DefaultDatabaseName)
	}
	key := strings.ToLower(name)
	if _, ok := c.databases[key]; !ok {
		return dberr.NotFound("database %q does not exist", name)
	}
	delete(c.databases, key)
	for i, n := range c.order {
		if strings.EqualFold(n, name) {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.currentKey == key {
		c.currentKey = strings.ToLower(DefaultDatabaseName)
	}
	return nil
}

// UseDatabase switches the current-database pointer.
func (c *Catalog) UseDatabase(name string) error {
	key := strings.ToLower(name)
	if _, ok := c.databases[key]; !ok {
		return dberr.NotFound("database %q does not exist", name)
	}
	c.currentKey = key
	return nil
}

// Current returns the current database for this session.
func (c *Catalog) Current() *Database {
	return c.databases[c.currentKey]
}

// CurrentName returns the current database's name.
func (c *Catalog) CurrentName() string {
	if db := c.Current(); db != nil {
		return db.Name
	}
	return ""
}
