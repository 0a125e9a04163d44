package metastore

import "errors"

var (
	ErrDatabaseNotFound       = errors.New("database not found")
	ErrTableNotFound          = errors.New("table not found")
	ErrSchemaUnavailable      = errors.New("schema unavailable")
	ErrSchemaMalformed        = errors.New("schema malformed")
	ErrPartitionArityMismatch = errors.New("partition arity mismatch")
)
