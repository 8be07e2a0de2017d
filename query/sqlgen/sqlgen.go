// Package sqlgen compiles builder queries into dialect-specific SQL.
package sqlgen

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/dialect"
)

// Alias names the wrapped query inside the WITH clause
const Alias = "x"

// Query represents a SQL query with arguments
type Query struct {
	SQL  string
	Args []any
}

// Compile renders q on its own (direct mode). Clauses always render in the
// order select, from/joins, where, group by, having, order by.
func Compile(q builder.Query) (Query, error) {
	if err := q.Err(); err != nil {
		return Query{}, err
	}
	if q.IsRaw() {
		return Query{SQL: q.Raw()}, nil
	}
	if q.Table() == "" {
		return Query{}, ErrNoSource
	}

	d := q.Dialect()
	cols, err := columns(q)
	if err != nil {
		return Query{}, err
	}
	sb := Select(d, cols...).From(q.Table())

	for _, j := range q.Joins() {
		sb = sb.JoinClause(joinClause(j))
	}
	for _, w := range group(q.Wheres()) {
		sb = sb.Where(w)
	}
	if gb := q.GroupBys(); len(gb) > 0 {
		sb = sb.GroupBy(quoteAll(d, gb)...)
	}
	for _, h := range group(q.Havings()) {
		sb = sb.Having(h)
	}
	if ob := q.OrderBys(); len(ob) > 0 {
		sb = sb.OrderBy(quoteAll(d, ob)...)
	}

	sql, args, err := sb.ToSql()
	if err != nil {
		return Query{}, fmt.Errorf("%w: %w", ErrCompilationFailed, err)
	}
	return Query{SQL: sql, Args: args}, nil
}

// Wrap compiles q as the common table expression x and appends the outer
// select, which must read from Alias
func Wrap(q builder.Query, outer sq.SelectBuilder) (Query, error) {
	if err := q.Err(); err != nil {
		return Query{}, err
	}
	body, args, err := outer.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return Query{}, fmt.Errorf("%w: %w", ErrCompilationFailed, err)
	}
	return WrapSQL(q, body, args...)
}

// WrapSQL is Wrap with a trusted outer body written with ? placeholders
func WrapSQL(q builder.Query, outer string, args ...any) (Query, error) {
	inner, err := Compile(q)
	if err != nil {
		return Query{}, err
	}
	outer = strings.TrimSpace(outer)
	if outer == "" {
		return Query{}, fmt.Errorf("%w: outer query is empty", ErrCompilationFailed)
	}

	body := inner.SQL
	if len(args) > 0 && len(inner.Args) == 0 {
		body = escape(q.Dialect(), body)
	}

	var b strings.Builder
	b.WriteString("WITH " + Alias + " AS (\n")
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("    " + line + "\n")
	}
	b.WriteString(")\n")
	b.WriteString(outer)

	all := append(append([]any(nil), inner.Args...), args...)
	sql, err := bind(q.Dialect(), b.String(), all)
	if err != nil {
		return Query{}, err
	}
	return Query{SQL: sql, Args: all}, nil
}

// Select starts a select builder carrying the dialect's select hint
func Select(d dialect.Dialect, cols ...string) sq.SelectBuilder {
	sb := sq.Select(cols...)
	if d.SelectHint != "" {
		sb = sb.Options(d.SelectHint)
	}
	return sb
}

// Outer starts a select over the wrapped alias
func Outer(d dialect.Dialect, cols ...string) sq.SelectBuilder {
	return Select(d, cols...).From(Alias)
}

// Limit restricts sb to n rows the way the dialect spells it
func Limit(d dialect.Dialect, sb sq.SelectBuilder, n uint64) sq.SelectBuilder {
	switch d.RowLimit {
	case dialect.FetchFirst:
		return sb.Suffix(fmt.Sprintf("FETCH FIRST %d ROWS ONLY", n))
	case dialect.RownumPredicate:
		return sb.Where(fmt.Sprintf("rownum <= %d", n))
	default:
		return sb.Limit(n)
	}
}

// escape doubles every ? in trusted SQL that binds nothing itself, so the
// dialect's placeholder rewrite turns it back into a single literal ?
func escape(d dialect.Dialect, sql string) string {
	if d.Placeholder == nil || d.Placeholder == sq.Question {
		return sql
	}
	return strings.ReplaceAll(sql, "?", "??")
}

// bind converts ? placeholders to the dialect's format. SQL without
// arguments is left alone so a literal ? inside a fragment survives.
func bind(d dialect.Dialect, sql string, args []any) (string, error) {
	if len(args) == 0 || d.Placeholder == nil {
		return sql, nil
	}
	out, err := d.Placeholder.ReplacePlaceholders(sql)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompilationFailed, err)
	}
	return out, nil
}

func columns(q builder.Query) ([]string, error) {
	d := q.Dialect()
	items := q.SelectItems()
	cases := q.Cases()

	var cols []string
	if len(items) == 0 {
		cols = append(cols, "*")
	}
	for _, it := range items {
		expr := QuoteIdent(d, it.Expr)
		if it.Alias != "" {
			expr += " AS " + it.Alias
		}
		cols = append(cols, expr)
	}
	for _, c := range cases {
		col, err := caseColumn(c)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	if d.QualifiedStar && len(cols) > 1 {
		star := sourceAlias(q.Table()) + ".*"
		for i, c := range cols {
			if c == "*" {
				cols[i] = star
			}
		}
	}
	return cols, nil
}

func caseColumn(c builder.CaseExpr) (string, error) {
	cb := sq.Case()
	for _, w := range c.Whens {
		cb = cb.When(w.Cond, w.Then)
	}
	sql, _, err := cb.Else(c.Else).ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: case %s: %w", ErrCompilationFailed, c.Alias, err)
	}
	return sql + " AS " + c.Alias, nil
}

func joinClause(j builder.Join) string {
	if j.Type == builder.CrossJoin {
		return "CROSS JOIN " + j.Target
	}
	return fmt.Sprintf("%s JOIN %s ON %s", j.Type, j.Target, strings.Join(group(j.On), " AND "))
}

// group parenthesises each predicate when several are AND-combined, so an
// embedded OR keeps its meaning
func group(preds []string) []string {
	if len(preds) < 2 {
		return preds
	}
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = "(" + p + ")"
	}
	return out
}

// sourceAlias is the name a table is referenced by: its alias when one is
// given, the table name otherwise
func sourceAlias(table string) string {
	f := strings.Fields(table)
	return f[len(f)-1]
}
