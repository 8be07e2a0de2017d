package summary

import (
	"fmt"
	"math"
	"slices"

	"github.com/spf13/cast"

	"github.com/satishbabariya/dwq/query/result"
)

// Cell is one pivot cell. Present is false where the long result had no row
// for the combination; Value is then nil.
type Cell struct {
	Value   any
	Present bool
}

// Pivot is a wide matrix built from a long result. Cells[value][row][col]
// holds the value column at RowKeys[row], ColKeys[col].
type Pivot struct {
	Index   string
	Columns string
	Values  []string
	RowKeys []any
	ColKeys []any
	Cells   map[string][][]Cell
}

// At returns the cell of value at the given positions
func (p *Pivot) At(value string, row, col int) Cell {
	return p.Cells[value][row][col]
}

// Get returns the cell of value at the given keys
func (p *Pivot) Get(value string, rowKey, colKey any) Cell {
	i := slices.IndexFunc(p.RowKeys, func(k any) bool { return k == key(rowKey) })
	j := slices.IndexFunc(p.ColKeys, func(k any) bool { return k == key(colKey) })
	if i < 0 || j < 0 {
		return Cell{}
	}
	return p.At(value, i, j)
}

// PivotTable reshapes t so distinct values of index become rows and distinct
// values of columns become columns. Keys are sorted: nil first, then numbers
// in numeric order, then everything else by its text.
func PivotTable(t *result.Table, index, columns string, values ...string) (*Pivot, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: pivot needs at least one value column", ErrNoColumns)
	}
	ii, ci := t.Index(index), t.Index(columns)
	if ii < 0 || ci < 0 {
		return nil, fmt.Errorf("%w: %s, %s", result.ErrNoColumn, index, columns)
	}
	vi := make([]int, len(values))
	for i, v := range values {
		if vi[i] = t.Index(v); vi[i] < 0 {
			return nil, fmt.Errorf("%w: %s", result.ErrNoColumn, v)
		}
	}

	var rowKeys, colKeys []any
	for _, r := range t.Rows {
		rowKeys = appendKey(rowKeys, key(r[ii]))
		colKeys = appendKey(colKeys, key(r[ci]))
	}
	slices.SortFunc(rowKeys, compareKeys)
	slices.SortFunc(colKeys, compareKeys)

	p := &Pivot{
		Index:   index,
		Columns: columns,
		Values:  values,
		RowKeys: rowKeys,
		ColKeys: colKeys,
		Cells:   make(map[string][][]Cell, len(values)),
	}
	for _, v := range values {
		grid := make([][]Cell, len(rowKeys))
		for i := range grid {
			grid[i] = make([]Cell, len(colKeys))
		}
		p.Cells[v] = grid
	}

	for _, r := range t.Rows {
		i := slices.Index(rowKeys, key(r[ii]))
		j := slices.Index(colKeys, key(r[ci]))
		for k, v := range values {
			cell := &p.Cells[v][i][j]
			if cell.Present {
				return nil, fmt.Errorf("%w: (%v, %v)", ErrDuplicateKey, r[ii], r[ci])
			}
			*cell = Cell{Value: r[vi[k]], Present: true}
		}
	}
	return p, nil
}

// key makes driver values usable as comparable keys
func key(v any) any {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case float64:
		if math.IsNaN(v) {
			return "NaN"
		}
		return v
	case float32:
		if math.IsNaN(float64(v)) {
			return "NaN"
		}
		return v
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func appendKey(keys []any, k any) []any {
	if slices.Contains(keys, k) {
		return keys
	}
	return append(keys, k)
}

func compareKeys(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		return 0
	case 1:
		fa, fb := cast.ToFloat64(a), cast.ToFloat64(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

// rank orders key kinds: nil, numbers, everything else
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return 1
	default:
		return 2
	}
}
