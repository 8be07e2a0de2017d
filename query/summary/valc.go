package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/result"
	"github.com/satishbabariya/dwq/query/sqlgen"
)

// ValcSpec configures a value count
type ValcSpec struct {
	// GroupBy lists the grouping columns; at least one is required
	GroupBy []string
	// Agg lists extra aggregate expressions, e.g. "avg(score) AS mean"
	Agg []string
	// OrderBy replaces the default ordering
	OrderBy []string
	// NoCount drops the n column
	NoCount bool
}

// ValcQuery counts rows per combination of the group columns. Without an
// explicit order the result is sorted by n descending, ties broken by the
// group columns ascending.
func ValcQuery(q builder.Query, spec ValcSpec) (sqlgen.Query, error) {
	if len(spec.GroupBy) == 0 {
		return sqlgen.Query{}, fmt.Errorf("%w: valc", ErrNoColumns)
	}
	for _, e := range append(append([]string(nil), spec.Agg...), spec.OrderBy...) {
		if strings.TrimSpace(e) == "" {
			return sqlgen.Query{}, fmt.Errorf("%w: blank valc expression", ErrBadArgument)
		}
	}

	group := quoteAll(q, spec.GroupBy)
	cols := append([]string(nil), group...)
	if !spec.NoCount {
		cols = append(cols, "count(1) AS n")
	}
	cols = append(cols, spec.Agg...)

	order := spec.OrderBy
	if len(order) == 0 {
		if !spec.NoCount {
			order = append(order, "n DESC")
		}
		order = append(order, group...)
	}

	outer := sqlgen.Outer(q.Dialect(), cols...).GroupBy(group...).OrderBy(order...)
	return sqlgen.Wrap(q, outer)
}

// Valc runs a value count
func (r *Runner) Valc(ctx context.Context, q builder.Query, spec ValcSpec) (*result.Table, error) {
	c, err := ValcQuery(q, spec)
	if err != nil {
		return nil, err
	}
	return r.exec(ctx, c)
}

// PivSpec configures a pivot of a value count
type PivSpec struct {
	// Index is the column whose values become rows
	Index string
	// Columns is the column whose values become columns
	Columns string
	// Agg lists extra aggregate expressions computed per cell
	Agg []string
	// Values lists the result columns that fill the cells; defaults to n
	Values []string
}

// Piv runs a value count grouped by Index and Columns and reshapes it into
// a matrix
func (r *Runner) Piv(ctx context.Context, q builder.Query, spec PivSpec) (*Pivot, error) {
	if spec.Index == "" || spec.Columns == "" {
		return nil, fmt.Errorf("%w: piv needs an index and a columns column", ErrNoColumns)
	}
	values := spec.Values
	if len(values) == 0 {
		values = []string{"n"}
	}

	t, err := r.Valc(ctx, q, ValcSpec{GroupBy: []string{spec.Index, spec.Columns}, Agg: spec.Agg})
	if err != nil {
		return nil, err
	}
	return PivotTable(t, spec.Index, spec.Columns, values...)
}
