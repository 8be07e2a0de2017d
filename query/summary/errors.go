package summary

import "errors"

var (
	ErrNoColumns    = errors.New("template needs at least one column")
	ErrBadArgument  = errors.New("invalid template argument")
	ErrNoRows       = errors.New("query returned no rows")
	ErrNoValues     = errors.New("column has no non-null values")
	ErrDuplicateKey = errors.New("duplicate pivot key")
)
