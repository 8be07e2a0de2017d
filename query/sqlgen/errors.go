package sqlgen

import "errors"

var (
	ErrNoSource          = errors.New("query has no source table")
	ErrCompilationFailed = errors.New("query compilation failed")
)
