package script

import "errors"

var (
	// ErrSyntax is returned when a script cannot be tokenized, usually an
	// unterminated literal or comment
	ErrSyntax = errors.New("invalid sql script")
	// ErrEmptyScript is returned when a script holds no statements
	ErrEmptyScript = errors.New("script has no statements")
)
