// Package builder accumulates clause fragments into immutable query values.
//
// Every clause method returns a new Query and leaves its receiver untouched,
// so one base query can seed any number of derived queries:
//
//	base := builder.New(dialect.SQLite, "test a").Where("score > 0.5")
//	bycat := base.GroupBy("cat")
//	recent := base.Where("time >= '2013-02-01'")
//
// Fragments are trusted SQL text. The builder checks structure (non-empty
// fragments, raw override exclusivity, join predicates) but never parses SQL.
package builder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/satishbabariya/dwq/query/dialect"
)

// SelectItem is one entry of the select list
type SelectItem struct {
	Expr  string
	Alias string
}

// When is one "when <Cond> then <Then>" branch of a case expression
type When struct {
	Cond string
	Then string
}

// CaseExpr is a searched case expression appended to the select list
type CaseExpr struct {
	Alias string
	Whens []When
	Else  string
}

// Query is the accumulated state of a query. The zero value has no dialect
// and no source; use New.
type Query struct {
	dialect dialect.Dialect
	table   string

	selects  []SelectItem
	cases    []CaseExpr
	joins    []Join
	wheres   []string
	groupBys []string
	havings  []string
	orderBys []string
	raw      string

	err error
}

// New returns an empty query over table rendered for d
func New(d dialect.Dialect, table string) Query {
	return Query{dialect: d, table: strings.TrimSpace(table)}
}

// Err returns the construction error recorded by an earlier call, if any
func (q Query) Err() error { return q.err }

// Dialect returns the dialect the query renders for
func (q Query) Dialect() dialect.Dialect { return q.dialect }

// Table returns the source table, including any alias
func (q Query) Table() string { return q.table }

// Raw returns the raw SQL override, empty when unset
func (q Query) Raw() string { return q.raw }

// IsRaw reports whether the query is a raw override
func (q Query) IsRaw() bool { return q.raw != "" }

// SelectItems returns a copy of the select list
func (q Query) SelectItems() []SelectItem { return slices.Clone(q.selects) }

// Cases returns a copy of the case expressions
func (q Query) Cases() []CaseExpr {
	out := make([]CaseExpr, len(q.cases))
	for i, c := range q.cases {
		c.Whens = slices.Clone(c.Whens)
		out[i] = c
	}
	return out
}

// Joins returns a copy of the join list
func (q Query) Joins() []Join {
	out := make([]Join, len(q.joins))
	for i, j := range q.joins {
		j.On = slices.Clone(j.On)
		out[i] = j
	}
	return out
}

// Wheres returns a copy of the where predicates
func (q Query) Wheres() []string { return slices.Clone(q.wheres) }

// GroupBys returns a copy of the group by expressions
func (q Query) GroupBys() []string { return slices.Clone(q.groupBys) }

// Havings returns a copy of the having predicates
func (q Query) Havings() []string { return slices.Clone(q.havings) }

// OrderBys returns a copy of the order by expressions
func (q Query) OrderBys() []string { return slices.Clone(q.orderBys) }

// IsEmpty reports whether no clause has been added
func (q Query) IsEmpty() bool {
	return len(q.selects) == 0 && len(q.cases) == 0 && len(q.joins) == 0 &&
		len(q.wheres) == 0 && len(q.groupBys) == 0 && len(q.havings) == 0 &&
		len(q.orderBys) == 0 && q.raw == ""
}

// Select appends expressions to the select list
func (q Query) Select(exprs ...string) Query {
	frags, err := fragments("select", exprs)
	if err != nil {
		return q.fail(err)
	}
	items := make([]SelectItem, len(frags))
	for i, f := range frags {
		items[i] = SelectItem{Expr: f}
	}
	return q.clause(func(n *Query) { n.selects = appendClipped(n.selects, items...) })
}

// SelectAs appends one aliased expression to the select list
func (q Query) SelectAs(expr, alias string) Query {
	expr, alias = strings.TrimSpace(expr), strings.TrimSpace(alias)
	if expr == "" || alias == "" {
		return q.fail(fmt.Errorf("%w: select expression and alias are required", ErrEmptyFragment))
	}
	return q.clause(func(n *Query) {
		n.selects = appendClipped(n.selects, SelectItem{Expr: expr, Alias: alias})
	})
}

// Case appends "case when ... end as alias" with an else of NULL.
// Branches are kept in the order given; the database picks the first match.
func (q Query) Case(alias string, whens ...When) Query {
	return q.CaseElse(alias, "NULL", whens...)
}

// CaseElse appends a case expression with an explicit else value
func (q Query) CaseElse(alias, els string, whens ...When) Query {
	alias, els = strings.TrimSpace(alias), strings.TrimSpace(els)
	if alias == "" {
		return q.fail(fmt.Errorf("%w: case alias is required", ErrEmptyFragment))
	}
	if len(whens) == 0 {
		return q.fail(fmt.Errorf("%w: case %s has no when branches", ErrEmptyFragment, alias))
	}
	if els == "" {
		els = "NULL"
	}
	branches := make([]When, len(whens))
	for i, w := range whens {
		w.Cond, w.Then = strings.TrimSpace(w.Cond), strings.TrimSpace(w.Then)
		if w.Cond == "" || w.Then == "" {
			return q.fail(fmt.Errorf("%w: case %s branch %d", ErrEmptyFragment, alias, i+1))
		}
		branches[i] = w
	}
	c := CaseExpr{Alias: alias, Whens: branches, Else: els}
	return q.clause(func(n *Query) { n.cases = appendClipped(n.cases, c) })
}

// Where appends predicates, combined with AND
func (q Query) Where(preds ...string) Query {
	frags, err := fragments("where", preds)
	if err != nil {
		return q.fail(err)
	}
	return q.clause(func(n *Query) { n.wheres = appendClipped(n.wheres, frags...) })
}

// GroupBy appends group by expressions
func (q Query) GroupBy(exprs ...string) Query {
	frags, err := fragments("group by", exprs)
	if err != nil {
		return q.fail(err)
	}
	return q.clause(func(n *Query) { n.groupBys = appendClipped(n.groupBys, frags...) })
}

// Having appends having predicates, combined with AND
func (q Query) Having(preds ...string) Query {
	frags, err := fragments("having", preds)
	if err != nil {
		return q.fail(err)
	}
	return q.clause(func(n *Query) { n.havings = appendClipped(n.havings, frags...) })
}

// OrderBy appends order by expressions
func (q Query) OrderBy(exprs ...string) Query {
	frags, err := fragments("order by", exprs)
	if err != nil {
		return q.fail(err)
	}
	return q.clause(func(n *Query) { n.orderBys = appendClipped(n.orderBys, frags...) })
}

// SQL replaces the whole query with raw SQL. It cannot be combined with any
// clause method.
func (q Query) SQL(raw string) Query {
	if q.err != nil {
		return q
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return q.fail(fmt.Errorf("%w: raw sql is empty", ErrEmptyFragment))
	}
	if !q.IsEmpty() {
		return q.fail(fmt.Errorf("%w: raw sql given after clause methods", ErrRawConflict))
	}
	n := q
	n.raw = raw
	return n
}

// clause applies fn to a copy of q, enforcing raw override exclusivity.
// Slices of the copy share backing arrays with q; fn must only append
// through appendClipped so q is never written.
func (q Query) clause(fn func(*Query)) Query {
	if q.err != nil {
		return q
	}
	if q.raw != "" {
		return q.fail(fmt.Errorf("%w: clause method called on raw sql", ErrRawConflict))
	}
	n := q
	fn(&n)
	return n
}

// fail returns a poisoned query that carries err and no clause state
func (q Query) fail(err error) Query {
	if q.err != nil {
		return q
	}
	return Query{dialect: q.dialect, table: q.table, err: err}
}

// appendClipped appends to a slice without ever writing into spare capacity
// a sibling query could also be using
func appendClipped[T any](s []T, v ...T) []T {
	return append(slices.Clip(s), v...)
}

func fragments(clause string, in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one fragment", ErrEmptyFragment, clause)
	}
	out := make([]string, len(in))
	for i, f := range in {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("%w: %s fragment %d is blank", ErrEmptyFragment, clause, i+1)
		}
		out[i] = f
	}
	return out, nil
}
