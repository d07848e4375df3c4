package repository

import (
	"context"
	"database/sql" // Required for sql.Result
	"fmt"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Dialect selects the SQL flavour of a database adapter.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectOracle   Dialect = "oracle"
)

// ParseDialect validates a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectPostgres:
		return DialectPostgres, nil
	case DialectOracle:
		return DialectOracle, nil
	}
	return "", fmt.Errorf("unsupported sql dialect %q", s)
}

// boolArg encodes a boolean for the dialect; Oracle stores flags as NUMBER(1).
func (d Dialect) boolArg(b bool) interface{} {
	if d == DialectOracle {
		if b {
			return 1
		}
		return 0
	}
	return b
}

// mergeArgs repeats the row for Oracle MERGE, whose match and insert
// branches bind the values straight into the target columns.
func (d Dialect) mergeArgs(row []interface{}) []interface{} {
	if d != DialectOracle {
		return row
	}
	args := make([]interface{}, 0, 2*len(row))
	args = append(args, row...)
	return append(args, row...)
}
