package builder

import (
	"fmt"
	"strings"
)

// JoinType is the kind of a join clause
type JoinType string

const (
	LeftJoin  JoinType = "LEFT"
	InnerJoin JoinType = "INNER"
	RightJoin JoinType = "RIGHT"
	FullJoin  JoinType = "FULL"
	CrossJoin JoinType = "CROSS"
)

// Join is one join clause. On predicates are AND-combined.
type Join struct {
	Type   JoinType
	Target string
	On     []string
}

// ParseJoinType maps a case-insensitive kind name to a JoinType
func ParseJoinType(kind string) (JoinType, error) {
	switch t := JoinType(strings.ToUpper(strings.TrimSpace(kind))); t {
	case LeftJoin, InnerJoin, RightJoin, FullJoin, CrossJoin:
		return t, nil
	case "":
		return LeftJoin, nil
	default:
		return "", fmt.Errorf("%w: join kind %q", ErrBadJoin, kind)
	}
}

// Join appends a left join of target on the given predicates
func (q Query) Join(target string, on ...string) Query {
	return q.JoinKind(LeftJoin, target, on...)
}

// JoinKind appends a join of the given kind. Every kind but CrossJoin needs
// at least one predicate; CrossJoin takes none.
func (q Query) JoinKind(kind JoinType, target string, on ...string) Query {
	kind, err := ParseJoinType(string(kind))
	if err != nil {
		return q.fail(err)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return q.fail(fmt.Errorf("%w: join target is blank", ErrEmptyFragment))
	}

	var preds []string
	switch {
	case kind == CrossJoin && len(on) > 0:
		return q.fail(fmt.Errorf("%w: cross join of %s takes no predicate", ErrBadJoin, target))
	case kind != CrossJoin && len(on) == 0:
		return q.fail(fmt.Errorf("%w: %s join of %s", ErrMissingJoinPredicate, strings.ToLower(string(kind)), target))
	case len(on) > 0:
		if preds, err = fragments("join", on); err != nil {
			return q.fail(err)
		}
	}

	j := Join{Type: kind, Target: target, On: preds}
	return q.clause(func(n *Query) { n.joins = appendClipped(n.joins, j) })
}
