package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/dialect"
)

var errNoTable = errors.New("a query needs --table or --sql")

// queryFlags are the clause flags shared by every query command
type queryFlags struct {
	table    string
	selects  []string
	joins    []string
	wheres   []string
	groupBys []string
	havings  []string
	orderBys []string
	sql      string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.table, "table", "t", "", "source table, optionally with an alias: \"sales s\"")
	fl.StringArrayVarP(&f.selects, "select", "s", nil, "select expression (repeatable)")
	fl.StringArrayVarP(&f.joins, "join", "j", nil, "join: \"[left|inner|right|full|cross] target [on predicate]\" (repeatable)")
	fl.StringArrayVarP(&f.wheres, "where", "w", nil, "where predicate, AND-combined (repeatable)")
	fl.StringArrayVarP(&f.groupBys, "group-by", "g", nil, "group by expression (repeatable)")
	fl.StringArrayVar(&f.havings, "having", nil, "having predicate, AND-combined (repeatable)")
	fl.StringArrayVarP(&f.orderBys, "order-by", "o", nil, "order by expression (repeatable)")
	fl.StringVar(&f.sql, "sql", "", "raw SQL used instead of the clause flags")
}

// build accumulates the flags into a query for d
func (f *queryFlags) build(d dialect.Dialect) (builder.Query, error) {
	if f.table == "" && f.sql == "" {
		return builder.Query{}, errNoTable
	}

	q := builder.New(d, f.table)
	if len(f.selects) > 0 {
		q = q.Select(f.selects...)
	}
	for _, j := range f.joins {
		kind, target, on, err := parseJoin(j)
		if err != nil {
			return builder.Query{}, err
		}
		q = q.JoinKind(kind, target, on...)
	}
	if len(f.wheres) > 0 {
		q = q.Where(f.wheres...)
	}
	if len(f.groupBys) > 0 {
		q = q.GroupBy(f.groupBys...)
	}
	if len(f.havings) > 0 {
		q = q.Having(f.havings...)
	}
	if len(f.orderBys) > 0 {
		q = q.OrderBy(f.orderBys...)
	}
	if f.sql != "" {
		q = q.SQL(f.sql)
	}
	return q, q.Err()
}

// parseJoin reads "[kind] [join] target [on predicate]", for example
// "inner other b on a.id = b.id" or "cross dates d". The kind defaults to left.
func parseJoin(s string) (builder.JoinType, string, []string, error) {
	rest := strings.TrimSpace(s)
	kind := builder.LeftJoin
	if first, tail, ok := strings.Cut(rest, " "); ok {
		if k, err := builder.ParseJoinType(first); err == nil {
			kind, rest = k, strings.TrimSpace(tail)
		}
	}
	if first, tail, ok := strings.Cut(rest, " "); ok && strings.EqualFold(first, "join") {
		rest = strings.TrimSpace(tail)
	}

	target, on := rest, []string(nil)
	if i := strings.Index(strings.ToLower(rest), " on "); i >= 0 {
		target = strings.TrimSpace(rest[:i])
		on = []string{strings.TrimSpace(rest[i+len(" on "):])}
	}
	if target == "" {
		return "", "", nil, fmt.Errorf("%w: --join %q has no target", builder.ErrBadJoin, s)
	}
	return kind, target, on, nil
}
