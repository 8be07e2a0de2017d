// Package executor submits compiled SQL to a database and materializes the
// result as a table.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/satishbabariya/dwq/query/result"
	"github.com/satishbabariya/dwq/query/sqlgen"
)

// Driver executes one SQL statement and returns its rows
type Driver interface {
	Query(ctx context.Context, sql string, args ...any) (*result.Table, error)
}

// DriverFunc adapts a function to the Driver interface
type DriverFunc func(ctx context.Context, sql string, args ...any) (*result.Table, error)

// Query calls f
func (f DriverFunc) Query(ctx context.Context, sql string, args ...any) (*result.Table, error) {
	return f(ctx, sql, args...)
}

// SQLDriver runs statements on a database/sql pool
type SQLDriver struct {
	db *sql.DB
}

// NewSQLDriver creates a driver over db
func NewSQLDriver(db *sql.DB) *SQLDriver {
	return &SQLDriver{db: db}
}

// DB returns the underlying pool
func (d *SQLDriver) DB() *sql.DB {
	return d.db
}

// Query executes the statement and scans every row. Text returned as
// []byte is converted to string.
func (d *SQLDriver) Query(ctx context.Context, query string, args ...any) (*result.Table, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	t := &result.Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return t, nil
}

// Run submits a compiled query and attaches the SQL to any failure
func Run(ctx context.Context, d Driver, q sqlgen.Query) (*result.Table, error) {
	t, err := d.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) {
			return nil, err
		}
		return nil, &ExecError{SQL: q.SQL, Args: q.Args, Err: err}
	}
	return t, nil
}
