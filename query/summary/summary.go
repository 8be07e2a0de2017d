// Package summary implements the summary templates: statistical query shapes
// that wrap a builder query as the common table expression x and run an outer
// query over it.
//
// Every template has a pure XxxQuery function returning the compiled SQL and
// a Runner method that executes it and shapes the result. Nothing is cached;
// each call compiles and executes again.
package summary

import (
	"context"
	"fmt"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/executor"
	"github.com/satishbabariya/dwq/query/result"
	"github.com/satishbabariya/dwq/query/sqlgen"
)

// DefaultHeadRows is the row count of Head when none is given
const DefaultHeadRows = 5

// MinMax is the result of Mimx
type MinMax struct {
	Min any
	Max any
}

// Runner executes summary templates through a driver
type Runner struct {
	driver executor.Driver
}

// NewRunner creates a runner over d
func NewRunner(d executor.Driver) *Runner {
	return &Runner{driver: d}
}

func (r *Runner) exec(ctx context.Context, c sqlgen.Query) (*result.Table, error) {
	return executor.Run(ctx, r.driver, c)
}

// LenQuery counts the rows of q
func LenQuery(q builder.Query) (sqlgen.Query, error) {
	return sqlgen.Wrap(q, sqlgen.Outer(q.Dialect(), "count(1) AS n"))
}

// Len returns the number of rows of q
func (r *Runner) Len(ctx context.Context, q builder.Query) (int64, error) {
	c, err := LenQuery(q)
	if err != nil {
		return 0, err
	}
	t, err := r.exec(ctx, c)
	if err != nil {
		return 0, err
	}
	return count(t)
}

// ColsQuery is a zero-row probe that only yields the column names of q
func ColsQuery(q builder.Query) (sqlgen.Query, error) {
	return sqlgen.Wrap(q, sqlgen.Outer(q.Dialect(), "*").Where("1=0"))
}

// Cols returns the column names of q
func (r *Runner) Cols(ctx context.Context, q builder.Query) ([]string, error) {
	c, err := ColsQuery(q)
	if err != nil {
		return nil, err
	}
	t, err := r.exec(ctx, c)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

// TopQuery selects one row of q
func TopQuery(q builder.Query) (sqlgen.Query, error) {
	d := q.Dialect()
	return sqlgen.Wrap(q, sqlgen.Limit(d, sqlgen.Outer(d, "*"), 1))
}

// Top returns the first row of q in whatever order the database yields
func (r *Runner) Top(ctx context.Context, q builder.Query) (result.Row, error) {
	c, err := TopQuery(q)
	if err != nil {
		return result.Row{}, err
	}
	t, err := r.exec(ctx, c)
	if err != nil {
		return result.Row{}, err
	}
	if t.Len() == 0 {
		return result.Row{Columns: t.Columns}, ErrNoRows
	}
	return t.Row(0), nil
}

// HeadQuery selects the first n rows of q
func HeadQuery(q builder.Query, n int) (sqlgen.Query, error) {
	if n < 1 {
		return sqlgen.Query{}, fmt.Errorf("%w: head needs n >= 1, got %d", ErrBadArgument, n)
	}
	d := q.Dialect()
	return sqlgen.Wrap(q, sqlgen.Limit(d, sqlgen.Outer(d, "*"), uint64(n)))
}

// Head returns the first n rows of q
func (r *Runner) Head(ctx context.Context, q builder.Query, n int) (*result.Table, error) {
	c, err := HeadQuery(q, n)
	if err != nil {
		return nil, err
	}
	return r.exec(ctx, c)
}

// DistQuery counts the distinct combinations of cols in q
func DistQuery(q builder.Query, cols ...string) (sqlgen.Query, error) {
	if len(cols) == 0 {
		return sqlgen.Query{}, fmt.Errorf("%w: dist", ErrNoColumns)
	}
	d := q.Dialect()
	distinct, _, err := sqlgen.Outer(d, quoteAll(q, cols)...).Distinct().ToSql()
	if err != nil {
		return sqlgen.Query{}, fmt.Errorf("%w: %w", sqlgen.ErrCompilationFailed, err)
	}
	return sqlgen.Wrap(q, sqlgen.Select(d, "count(1) AS n").From(derived(distinct, "d")))
}

// Dist returns the number of distinct combinations of cols in q
func (r *Runner) Dist(ctx context.Context, q builder.Query, cols ...string) (int64, error) {
	c, err := DistQuery(q, cols...)
	if err != nil {
		return 0, err
	}
	t, err := r.exec(ctx, c)
	if err != nil {
		return 0, err
	}
	return count(t)
}

// MimxQuery selects the minimum and maximum of col
func MimxQuery(q builder.Query, col string) (sqlgen.Query, error) {
	if col == "" {
		return sqlgen.Query{}, fmt.Errorf("%w: mimx", ErrNoColumns)
	}
	c := sqlgen.QuoteIdent(q.Dialect(), col)
	return sqlgen.Wrap(q, sqlgen.Outer(q.Dialect(), "min("+c+") AS mn", "max("+c+") AS mx"))
}

// Mimx returns the minimum and maximum of col. Both are nil when col has no
// non-null value.
func (r *Runner) Mimx(ctx context.Context, q builder.Query, col string) (MinMax, error) {
	c, err := MimxQuery(q, col)
	if err != nil {
		return MinMax{}, err
	}
	t, err := r.exec(ctx, c)
	if err != nil {
		return MinMax{}, err
	}
	if t.Len() == 0 {
		return MinMax{}, ErrNoRows
	}
	row := t.Row(0)
	mn, err := row.Get("mn")
	if err != nil {
		return MinMax{}, err
	}
	mx, err := row.Get("mx")
	if err != nil {
		return MinMax{}, err
	}
	return MinMax{Min: mn, Max: mx}, nil
}

func count(t *result.Table) (int64, error) {
	v, err := scalar(t, "n")
	if err != nil {
		return 0, err
	}
	return toInt64(v)
}

// derived renders a subquery usable in FROM on every dialect. squirrel's
// FromSelect emits "AS alias", which oracle rejects for tables.
func derived(sub, alias string) string {
	return "(" + sub + ") " + alias
}

func quoteAll(q builder.Query, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = sqlgen.QuoteIdent(q.Dialect(), c)
	}
	return out
}
