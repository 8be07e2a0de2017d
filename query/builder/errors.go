package builder

import "errors"

var (
	ErrRawConflict          = errors.New("raw sql cannot be combined with clause methods")
	ErrEmptyFragment        = errors.New("empty clause fragment")
	ErrMissingJoinPredicate = errors.New("join requires a predicate")
	ErrBadJoin              = errors.New("invalid join")
)
