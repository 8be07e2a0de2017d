package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/dwq/query/dialect"
	"github.com/satishbabariya/dwq/query/executor"
	"github.com/satishbabariya/dwq/runtime/client"
)

func TestResolveDialect(t *testing.T) {
	tests := []struct {
		url     string
		dialect string
		driver  string
		dsn     string
	}{
		{"sqlite::memory:", "sqlite", client.SQLiteDriverName, ":memory:"},
		{"sqlite://data/test.db", "sqlite", client.SQLiteDriverName, "data/test.db"},
		{"file:test.db?cache=shared", "sqlite", client.SQLiteDriverName, "file:test.db?cache=shared"},
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "postgres", "postgres", "postgres://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://localhost/db", "postgres", "postgres", "postgresql://localhost/db"},
		{"mysql://u:p@tcp(localhost:3306)/db", "mysql", "mysql", "u:p@tcp(localhost:3306)/db"},
		{"oracle://u:p@localhost:1521/xe", "oracle", "oracle", "oracle://u:p@localhost:1521/xe"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := client.ResolveDialect(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, got.Dialect.Name)
			assert.Equal(t, tt.driver, got.Driver)
			assert.Equal(t, tt.dsn, got.DSN)
		})
	}
}

func TestResolveDialect_Errors(t *testing.T) {
	_, err := client.ResolveDialect("localhost")
	assert.ErrorIs(t, err, client.ErrInvalidURL)

	_, err = client.ResolveDialect("sqlite://")
	assert.ErrorIs(t, err, client.ErrInvalidURL)

	_, err = client.ResolveDialect("db2://host/db")
	assert.ErrorIs(t, err, dialect.ErrUnknownDialect)
}

func openMemory(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()
	c, err := client.Open(context.Background(), "sqlite::memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	_, err = c.DB().Exec(`
		CREATE TABLE test (id INTEGER, cat TEXT, score REAL);
		INSERT INTO test VALUES (1, 'a', 0.5), (2, 'b', 1.5), (3, 'a', 2.5);
		CREATE TABLE other (id INTEGER, label TEXT);
		INSERT INTO other VALUES (1, 'one'), (3, 'three');
	`)
	require.NoError(t, err)
	return c
}

func TestOpen_SQLite(t *testing.T) {
	c := openMemory(t)
	assert.Equal(t, "sqlite", c.Dialect().Name)
	assert.True(t, c.Dialect().WindowFunctions)
	assert.NotNil(t, c.Summary())
}

func TestClient_Run(t *testing.T) {
	c := openMemory(t)
	ctx := context.Background()

	q := c.Qry("test a").
		Join("other b", "a.id = b.id").
		Select("a.id", "b.label").
		Where("a.cat = 'a'").
		OrderBy("a.id")

	tbl, err := c.Run(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1), "one"}, {int64(3), "three"}}, tbl.Rows)

	tbl, err = c.RunWith(ctx, q, "SELECT count(1) AS n FROM x WHERE id > ?", 1)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1)}}, tbl.Rows)

	tbl, err = c.Exec(ctx, "SELECT label FROM other WHERE id = ?", 3)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"three"}}, tbl.Rows)
}

func TestClient_RunRaw(t *testing.T) {
	c := openMemory(t)

	tbl, err := c.Run(context.Background(), c.Qry("").SQL("select 1 as v union all select 2"))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestClient_Catalog(t *testing.T) {
	c := openMemory(t)
	ctx := context.Background()

	tables, err := c.ListTables(ctx)
	require.NoError(t, err)
	names, err := tables.Column("table_name")
	require.NoError(t, err)
	assert.Equal(t, []any{"other", "test"}, names)

	cols, err := c.TableCols(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, []client.Column{
		{Name: "id", Type: "INTEGER"},
		{Name: "cat", Type: "TEXT"},
		{Name: "score", Type: "REAL"},
	}, cols)

	cols, err = c.TableCols(ctx, "main.other")
	require.NoError(t, err)
	assert.Len(t, cols, 2)

	_, err = c.TableCols(ctx, " ")
	assert.ErrorIs(t, err, client.ErrNoTable)
}

func TestClient_Exists(t *testing.T) {
	c := openMemory(t)
	ctx := context.Background()

	ok, err := c.Exists(ctx, "test")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, "main.other")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Exists(ctx, "")
	assert.ErrorIs(t, err, client.ErrNoTable)
}

func TestClient_ListConstraints(t *testing.T) {
	c := openMemory(t)
	ctx := context.Background()

	_, err := c.DB().Exec(`
		CREATE TABLE parent (id INTEGER, code TEXT UNIQUE, PRIMARY KEY (id, code));
		CREATE TABLE child (pid INTEGER, pcode TEXT, FOREIGN KEY (pid, pcode) REFERENCES parent (id, code));
	`)
	require.NoError(t, err)

	tbl, err := c.ListConstraints(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"table_name", "constraint_name", "constraint_type"}, tbl.Columns)

	kinds := map[string][]any{}
	for _, row := range tbl.Rows {
		name := row[0].(string)
		kinds[name] = append(kinds[name], row[2])
	}
	assert.ElementsMatch(t, []any{"PRIMARY KEY", "UNIQUE"}, kinds["parent"])
	assert.Equal(t, []any{"FOREIGN KEY"}, kinds["child"])
	assert.NotContains(t, kinds, "test")
}

func TestClient_TableSizes_Unsupported(t *testing.T) {
	c := openMemory(t)

	_, err := c.TableSizes(context.Background())
	assert.ErrorIs(t, err, dialect.ErrUnsupported)

	var capErr *dialect.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "table sizes", capErr.Feature)
}

func TestClient_Middleware(t *testing.T) {
	var seen []string
	c := openMemory(t, client.WithMiddleware(executor.ReportMiddleware(func(e executor.QueryEvent) {
		seen = append(seen, e.Query)
	})))

	n, err := c.Summary().Len(context.Background(), c.Qry("test"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.Len(t, seen, 1)
	assert.Contains(t, seen[0], "SELECT count(1) AS n FROM x")
}

func TestRowHash(t *testing.T) {
	assert.Equal(t, client.RowHash("1_one"), client.RowHash("1_one"))
	assert.NotEqual(t, client.RowHash("1_one"), client.RowHash("1_onf"))
	// FNV-1a 32-bit offset basis
	assert.Equal(t, int64(2166136261), client.RowHash(""))
}
