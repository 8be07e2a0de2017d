package summary

import (
	"context"
	"fmt"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/sqlgen"
)

// HashQuery sums a 32-bit hash of every row of cols. Each row is hashed as
// the '_'-joined text of its columns with NULL as the empty string, and the
// sum does not depend on row order.
func HashQuery(q builder.Query, cols ...string) (sqlgen.Query, error) {
	if len(cols) == 0 {
		return sqlgen.Query{}, fmt.Errorf("%w: hash", ErrNoColumns)
	}
	d := q.Dialect()
	parts := make([]string, len(cols))
	for i, c := range quoteAll(q, cols) {
		parts[i] = "coalesce(" + d.TextCast(c) + ", '')"
	}
	h, err := d.RowHash(d.Join("'_'", parts...))
	if err != nil {
		return sqlgen.Query{}, err
	}
	return sqlgen.Wrap(q, sqlgen.Outer(d, "sum("+h+") AS h"))
}

// Hash returns the checksum of cols over q, hashing every column when cols
// is empty. An empty result hashes to zero.
func (r *Runner) Hash(ctx context.Context, q builder.Query, cols ...string) (int64, error) {
	if len(cols) == 0 {
		all, err := r.Cols(ctx, q)
		if err != nil {
			return 0, err
		}
		cols = all
	}
	c, err := HashQuery(q, cols...)
	if err != nil {
		return 0, err
	}
	t, err := r.exec(ctx, c)
	if err != nil {
		return 0, err
	}
	v, err := scalar(t, "h")
	if err != nil {
		return 0, err
	}
	return toInt64(v)
}
