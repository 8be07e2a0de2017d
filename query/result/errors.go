package result

import "errors"

var ErrNoColumn = errors.New("no such column")
