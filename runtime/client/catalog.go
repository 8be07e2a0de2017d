package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/dwq/query/dialect"
	"github.com/satishbabariya/dwq/query/result"
)

// Column is one column of a table as the catalog reports it
type Column struct {
	Name string
	Type string
}

// ListTables lists the user tables visible to the connection
func (c *Client) ListTables(ctx context.Context) (*result.Table, error) {
	return c.Exec(ctx, c.dialect.Catalog.Tables)
}

// ListConstraints lists the key constraints of the user tables
func (c *Client) ListConstraints(ctx context.Context) (*result.Table, error) {
	if c.dialect.Catalog.Constraints == "" {
		return nil, dialect.Unsupported(c.dialect, "constraint listing")
	}
	return c.Exec(ctx, c.dialect.Catalog.Constraints)
}

// TableSizes lists the size of each table in megabytes
func (c *Client) TableSizes(ctx context.Context) (*result.Table, error) {
	if c.dialect.Catalog.Sizes == "" {
		return nil, dialect.Unsupported(c.dialect, "table sizes")
	}
	return c.Exec(ctx, c.dialect.Catalog.Sizes)
}

// Exists reports whether table, given as "table" or "schema.table", is
// visible to the connection
func (c *Client) Exists(ctx context.Context, table string) (bool, error) {
	cols, err := c.TableCols(ctx, table)
	if err != nil {
		return false, err
	}
	return len(cols) > 0, nil
}

// TableCols lists the columns of table, given as "table" or "schema.table"
func (c *Client) TableCols(ctx context.Context, table string) ([]Column, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, ErrNoTable
	}
	cat := c.dialect.Catalog

	schema, name, ok := strings.Cut(table, ".")
	if !ok {
		schema, name = cat.DefaultSchema, table
	}
	if cat.UpperCase {
		schema, name = strings.ToUpper(schema), strings.ToUpper(name)
	}
	if schema == "" && cat.UpperCase {
		// oracle: the connected user's schema
		t, err := c.Exec(ctx, "SELECT sys_context('USERENV', 'CURRENT_SCHEMA') AS s FROM dual")
		if err != nil {
			return nil, err
		}
		if t.Len() == 0 {
			return nil, fmt.Errorf("failed to resolve current schema")
		}
		schema = fmt.Sprint(t.Rows[0][0])
	}

	t, err := c.Exec(ctx, cat.Columns, cat.ColumnArgs(schema, name)...)
	if err != nil {
		return nil, err
	}
	cols := make([]Column, t.Len())
	for i := range t.Rows {
		row := t.Row(i)
		n, err := row.Get("column_name")
		if err != nil {
			return nil, err
		}
		typ, err := row.Get("data_type")
		if err != nil {
			return nil, err
		}
		cols[i] = Column{Name: fmt.Sprint(n), Type: fmt.Sprint(typ)}
	}
	return cols, nil
}
