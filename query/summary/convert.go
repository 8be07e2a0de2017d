package summary

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/satishbabariya/dwq/query/result"
)

// scalar returns the single value of a one-row result
func scalar(t *result.Table, column string) (any, error) {
	if t.Len() == 0 {
		return nil, ErrNoRows
	}
	return t.Value(0, column)
}

func toInt64(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrBadArgument, v)
		}
		return int64(f), nil
	}
	return n, nil
}

func toFloat64(v any) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v is not numeric", ErrBadArgument, v)
	}
	return f, nil
}
