package client

import "errors"

var (
	ErrInvalidURL = errors.New("invalid connection url")
	ErrNoTable    = errors.New("table name is required")
)
