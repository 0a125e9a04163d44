package metastore

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// DefaultGranularity is used for tables registered without an explicit granularity.
const DefaultGranularity = GranularityYearMonthDay

// Database is a named collection of tables sharing a root path and a schema store.
type Database struct {
	name        string
	rootPath    string
	schemaStore string
	granularity Granularity

	mu     sync.RWMutex
	tables map[string]*Table
}

// DatabaseOption configures a Database built by NewDatabase.
type DatabaseOption func(*Database)

// WithSchemaStore sets the module schema references of registered tables resolve against.
func WithSchemaStore(path string) DatabaseOption {
	return func(d *Database) { d.schemaStore = path }
}

// WithDefaultGranularity is used by tables registered without WithGranularity.
func WithDefaultGranularity(g Granularity) DatabaseOption {
	return func(d *Database) { d.granularity = g }
}

// NewDatabase creates an empty database whose tables live under rootPath.
func NewDatabase(name, rootPath string, opts ...DatabaseOption) *Database {
	d := &Database{
		name:        name,
		rootPath:    rootPath,
		granularity: DefaultGranularity,
		tables:      make(map[string]*Table),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Database) Name() string                    { return d.name }
func (d *Database) RootPath() string                { return d.rootPath }
func (d *Database) SchemaStore() string             { return d.schemaStore }
func (d *Database) DefaultGranularity() Granularity { return d.granularity }

// RegisterTable creates a table under the database root and stores it,
// replacing any table of the same name. schema is relative to the schema store.
func (d *Database) RegisterTable(name, schema string, opts ...TableOption) *Table {
	base := []TableOption{WithGranularity(d.granularity)}
	if schema != "" {
		base = append(base, WithSchema(SchemaRef{Module: d.schemaStore, Path: schema}))
	}
	t := NewTable(d.rootPath, name, append(base, opts...)...)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[name] = t
	return t
}

func (d *Database) Table(name string) (*Table, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tables[name]
	return t, ok
}

// UnregisterTable removes name. Absent names are ignored.
func (d *Database) UnregisterTable(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.tables, name)
}

func (d *Database) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tables)
}

// TableNames yields registered table names in sorted order. Every iteration
// works on a fresh snapshot, so the sequence can be ranged over repeatedly.
func (d *Database) TableNames() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range d.snapshot() {
			if !yield(name) {
				return
			}
		}
	}
}

// Tables yields name and table pairs in name order from a snapshot.
func (d *Database) Tables() iter.Seq2[string, *Table] {
	return func(yield func(string, *Table) bool) {
		d.mu.RLock()
		tables := maps.Clone(d.tables)
		d.mu.RUnlock()
		for _, name := range slices.Sorted(maps.Keys(tables)) {
			if !yield(name, tables[name]) {
				return
			}
		}
	}
}

func (d *Database) snapshot() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Sorted(maps.Keys(d.tables))
}
