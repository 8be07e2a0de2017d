package summary

import (
	"context"
	"fmt"
	"math"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/sqlgen"
)

// Bin is one histogram bucket. Every bucket is [Lo, Hi) except the last,
// which is [Lo, Hi] so the maximum is counted.
type Bin struct {
	Index int
	Lo    float64
	Hi    float64
	Count int64
}

// Bounds returns n contiguous equal-width buckets covering [lo, hi]. The last
// upper bound is exactly hi. A degenerate range yields a single bucket.
func Bounds(lo, hi float64, n int) []Bin {
	n, width := plan(lo, hi, n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Index: i, Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	bins[n-1].Hi = hi
	return bins
}

// plan returns the bucket count and width used for [lo, hi]
func plan(lo, hi float64, n int) (int, float64) {
	if hi == lo {
		return 1, 0
	}
	return n, (hi - lo) / float64(n)
}

// BinQuery counts the non-null values of col per bucket over [lo, hi]. The
// bounds are bound as parameters; values at hi fall into the last bucket.
func BinQuery(q builder.Query, col string, lo, hi float64, n int) (sqlgen.Query, error) {
	if col == "" {
		return sqlgen.Query{}, fmt.Errorf("%w: bin", ErrNoColumns)
	}
	if n < 1 {
		return sqlgen.Query{}, fmt.Errorf("%w: bin needs n >= 1, got %d", ErrBadArgument, n)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || hi < lo {
		return sqlgen.Query{}, fmt.Errorf("%w: bin range [%v, %v]", ErrBadArgument, lo, hi)
	}

	d := q.Dialect()
	n, width := plan(lo, hi, n)
	if width == 0 {
		width = 1
	}

	c := sqlgen.QuoteIdent(d, col)
	cf, pf := d.FloatCast(c), d.FloatCast("?")
	bucket := fmt.Sprintf("CASE WHEN %s >= %s THEN %s ELSE %s END AS b",
		cf, pf, pf, d.Floor("("+cf+" - "+pf+") / "+pf))

	inner, args, err := sqlgen.Outer(d, bucket).
		Where(c+" IS NOT NULL").
		ToSql()
	if err != nil {
		return sqlgen.Query{}, fmt.Errorf("%w: %w", sqlgen.ErrCompilationFailed, err)
	}
	args = append(args, hi, float64(n-1), lo, width)

	outer := sqlgen.Select(d, "b", "count(1) AS n").
		From(derived(inner, "t")).
		GroupBy("b").
		OrderBy("b")
	body, _, err := outer.ToSql()
	if err != nil {
		return sqlgen.Query{}, fmt.Errorf("%w: %w", sqlgen.ErrCompilationFailed, err)
	}
	return sqlgen.WrapSQL(q, body, args...)
}

// Bin builds an n-bucket histogram of col. It takes two round trips: Mimx
// for the range, then the bucketed count. Buckets without rows report zero.
func (r *Runner) Bin(ctx context.Context, q builder.Query, col string, n int) ([]Bin, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: bin needs n >= 1, got %d", ErrBadArgument, n)
	}
	mm, err := r.Mimx(ctx, q, col)
	if err != nil {
		return nil, err
	}
	if mm.Min == nil || mm.Max == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoValues, col)
	}
	lo, err := toFloat64(mm.Min)
	if err != nil {
		return nil, err
	}
	hi, err := toFloat64(mm.Max)
	if err != nil {
		return nil, err
	}

	c, err := BinQuery(q, col, lo, hi, n)
	if err != nil {
		return nil, err
	}
	t, err := r.exec(ctx, c)
	if err != nil {
		return nil, err
	}

	bins := Bounds(lo, hi, n)
	for _, row := range t.Rows {
		b, err := toFloat64(row[0])
		if err != nil {
			return nil, err
		}
		i := int(b)
		if i < 0 {
			return nil, fmt.Errorf("%w: bucket %d outside 0..%d", ErrBadArgument, i, len(bins)-1)
		}
		// rounding in (v - lo) / width can push a value just below hi to n
		i = min(i, len(bins)-1)
		cnt, err := toInt64(row[1])
		if err != nil {
			return nil, err
		}
		bins[i].Count += cnt
	}
	return bins, nil
}
