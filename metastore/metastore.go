package metastore

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"
)

// Metastore is the top level catalog of databases.
type Metastore struct {
	name string

	mu        sync.RWMutex
	databases map[string]*Database
}

func New(name string) *Metastore {
	return &Metastore{
		name:      name,
		databases: make(map[string]*Database),
	}
}

func (m *Metastore) Name() string { return m.name }

// RegisterDatabase stores db under name. A later registration of the same name wins.
func (m *Metastore) RegisterDatabase(name string, db *Database) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.databases[name] = db
}

// Database returns the named database or ErrDatabaseNotFound.
func (m *Metastore) Database(name string) (*Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	db, ok := m.databases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}
	return db, nil
}

// Table looks up a table, failing with ErrDatabaseNotFound or ErrTableNotFound.
func (m *Metastore) Table(dbName, tableName string) (*Table, error) {
	db, err := m.Database(dbName)
	if err != nil {
		return nil, err
	}
	t, ok := db.Table(tableName)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, dbName, tableName)
	}
	return t, nil
}

// RegisterTable registers a table into an already registered database.
func (m *Metastore) RegisterTable(dbName, tableName, schema string, opts ...TableOption) (*Table, error) {
	db, err := m.Database(dbName)
	if err != nil {
		return nil, err
	}
	return db.RegisterTable(tableName, schema, opts...), nil
}

// Databases yields databases in name order from a snapshot taken when iteration starts.
func (m *Metastore) Databases() iter.Seq2[string, *Database] {
	return func(yield func(string, *Database) bool) {
		m.mu.RLock()
		dbs := maps.Clone(m.databases)
		m.mu.RUnlock()
		for _, name := range slices.Sorted(maps.Keys(dbs)) {
			if !yield(name, dbs[name]) {
				return
			}
		}
	}
}
