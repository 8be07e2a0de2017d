// Package client connects to a database and runs queries and summary
// templates against it.
package client

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/sijms/go-ora/v2"     // Oracle driver

	"github.com/satishbabariya/dwq/internal/debug"
	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/dialect"
	"github.com/satishbabariya/dwq/query/executor"
	"github.com/satishbabariya/dwq/query/result"
	"github.com/satishbabariya/dwq/query/sqlgen"
	"github.com/satishbabariya/dwq/query/summary"
)

// Client is a database connection bound to one dialect
type Client struct {
	db      *sql.DB
	dialect dialect.Dialect
	driver  executor.Driver
	runner  *summary.Runner
}

// Option configures a Client
type Option func(*options)

type options struct {
	middlewares []Middleware
}

// Middleware intercepts every statement the client runs
type Middleware = executor.Middleware

// WithMiddleware adds middlewares, outermost first
func WithMiddleware(m ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, m...)
	}
}

// Open connects to the database at url. On sqlite the library version is
// probed and window functions are disabled when it is too old.
func Open(ctx context.Context, url string, opts ...Option) (*Client, error) {
	target, err := ResolveDialect(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", target.Dialect, err)
	}
	if target.Dialect.Name == dialect.SQLite.Name && target.DSN == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", target.Dialect, err)
	}

	d := target.Dialect
	if d.Name == dialect.SQLite.Name {
		if d, err = narrowSQLite(ctx, db, d); err != nil {
			db.Close()
			return nil, err
		}
	}

	debug.Debug("Connected", "dialect", d.Name, "driver", target.Driver)
	return New(db, d, opts...), nil
}

// New wraps an open database
func New(db *sql.DB, d dialect.Dialect, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	driver := executor.Chain(executor.NewSQLDriver(db), o.middlewares...)
	return &Client{
		db:      db,
		dialect: d,
		driver:  driver,
		runner:  summary.NewRunner(driver),
	}
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the dialect queries are rendered for
func (c *Client) Dialect() dialect.Dialect {
	return c.dialect
}

// Driver returns the driver statements are submitted through
func (c *Client) Driver() executor.Driver {
	return c.driver
}

// Summary returns the template runner bound to this connection
func (c *Client) Summary() *summary.Runner {
	return c.runner
}

// Qry starts an empty query over table
func (c *Client) Qry(table string) builder.Query {
	return builder.New(c.dialect, table)
}

// Run executes q as written
func (c *Client) Run(ctx context.Context, q builder.Query) (*result.Table, error) {
	compiled, err := sqlgen.Compile(q)
	if err != nil {
		return nil, err
	}
	return executor.Run(ctx, c.driver, compiled)
}

// RunWith executes a trusted outer body over q wrapped as x
func (c *Client) RunWith(ctx context.Context, q builder.Query, outer string, args ...any) (*result.Table, error) {
	compiled, err := sqlgen.WrapSQL(q, outer, args...)
	if err != nil {
		return nil, err
	}
	return executor.Run(ctx, c.driver, compiled)
}

// Exec runs raw SQL with ? placeholders converted for the dialect
func (c *Client) Exec(ctx context.Context, sql string, args ...any) (*result.Table, error) {
	if len(args) > 0 {
		var err error
		if sql, err = c.dialect.Placeholder.ReplacePlaceholders(sql); err != nil {
			return nil, fmt.Errorf("%w: %w", sqlgen.ErrCompilationFailed, err)
		}
	}
	return executor.Run(ctx, c.driver, sqlgen.Query{SQL: sql, Args: args})
}
