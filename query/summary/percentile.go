package summary

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/dialect"
	"github.com/satishbabariya/dwq/query/sqlgen"
)

// FivePoints are the percentiles of a five-number summary
var FivePoints = []float64{0, 0.25, 0.5, 0.75, 1}

// Quantile is the value of column at percentile P
type Quantile struct {
	P     float64
	Value float64
}

// FiveNumber is the minimum, quartiles and maximum of a column
type FiveNumber struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// PctQuery computes continuous percentiles (linear interpolation between
// adjacent ordered values, as percentile_cont does) of col.
//
// Dialects with a native percentile_cont use it. Dialects with window
// functions number the non-null values and interpolate between the two
// neighbours of (count-1)*p. Any other dialect yields a CapabilityError.
func PctQuery(q builder.Query, col string, points ...float64) (sqlgen.Query, error) {
	if col == "" {
		return sqlgen.Query{}, fmt.Errorf("%w: pct", ErrNoColumns)
	}
	if len(points) == 0 {
		return sqlgen.Query{}, fmt.Errorf("%w: pct needs at least one point", ErrBadArgument)
	}
	for _, p := range points {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return sqlgen.Query{}, fmt.Errorf("%w: percentile %v outside [0, 1]", ErrBadArgument, p)
		}
	}

	d := q.Dialect()
	c := sqlgen.QuoteIdent(d, col)
	switch {
	case d.NativePercentile:
		cols := make([]string, len(points))
		for i, p := range points {
			cols[i] = fmt.Sprintf("percentile_cont(%s) WITHIN GROUP (ORDER BY %s) AS %s", literal(p), c, pctAlias(p))
		}
		return sqlgen.Wrap(q, sqlgen.Outer(d, cols...))
	case d.WindowFunctions:
		return windowPct(q, d, c, points)
	default:
		return sqlgen.Query{}, dialect.Unsupported(d, "percentiles")
	}
}

func windowPct(q builder.Query, d dialect.Dialect, c string, points []float64) (sqlgen.Query, error) {
	ranked, _, err := sqlgen.Outer(d,
		c+" AS v",
		"row_number() OVER (ORDER BY "+c+") AS rn",
		"count(1) OVER () AS cnt",
	).Where(c + " IS NOT NULL").ToSql()
	if err != nil {
		return sqlgen.Query{}, fmt.Errorf("%w: %w", sqlgen.ErrCompilationFailed, err)
	}

	cols := make([]string, len(points))
	for i, p := range points {
		pos := "(cnt - 1) * " + literal(p)
		fl := d.Floor(pos)
		lo := fmt.Sprintf("max(CASE WHEN rn = %s + 1 THEN v END)", fl)
		hi := fmt.Sprintf("max(CASE WHEN rn = %s + 2 THEN v END)", fl)
		cols[i] = fmt.Sprintf("%s + (max(%s) - max(%s)) * (coalesce(%s, %s) - %s) AS %s",
			lo, pos, fl, hi, lo, lo, pctAlias(p))
	}
	return sqlgen.Wrap(q, sqlgen.Select(d, cols...).From(derived(ranked, "r")))
}

// Pct returns the requested percentiles of col in the order given
func (r *Runner) Pct(ctx context.Context, q builder.Query, col string, points ...float64) ([]Quantile, error) {
	c, err := PctQuery(q, col, points...)
	if err != nil {
		return nil, err
	}
	t, err := r.exec(ctx, c)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, ErrNoRows
	}

	out := make([]Quantile, len(points))
	for i, p := range points {
		v := t.Rows[0][i]
		if v == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoValues, col)
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		out[i] = Quantile{P: p, Value: f}
	}
	return out, nil
}

// Five returns the five-number summary of col
func (r *Runner) Five(ctx context.Context, q builder.Query, col string) (FiveNumber, error) {
	qs, err := r.Pct(ctx, q, col, FivePoints...)
	if err != nil {
		return FiveNumber{}, err
	}
	return FiveNumber{
		Min:    qs[0].Value,
		Q1:     qs[1].Value,
		Median: qs[2].Value,
		Q3:     qs[3].Value,
		Max:    qs[4].Value,
	}, nil
}

// FiveQuery is PctQuery at FivePoints
func FiveQuery(q builder.Query, col string) (sqlgen.Query, error) {
	return PctQuery(q, col, FivePoints...)
}

func literal(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// pctAlias names a percentile column: 0.25 is p25, 0.975 is p97_5
func pctAlias(p float64) string {
	pct := math.Round(p*1e6) / 1e4
	return "p" + strings.ReplaceAll(strconv.FormatFloat(pct, 'f', -1, 64), ".", "_")
}
