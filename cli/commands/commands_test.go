package commands

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/dwq/cli/internal/config"
	"github.com/satishbabariya/dwq/cli/internal/ui"
	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/dialect"
)

// setup isolates config and env, creates a sqlite fixture and points
// DWQ_URL at it
func setup(t *testing.T) afero.Fs {
	t.Helper()
	old := config.AppFs
	config.AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { config.AppFs = old })

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE test (id INTEGER, cat TEXT, score REAL);
		INSERT INTO test VALUES (1, 'a', 1.0), (2, 'a', 2.0), (3, 'b', 3.0), (4, 'b', 4.0), (5, 'c', 5.0);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	t.Setenv("DWQ_URL", "sqlite://"+path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DWQ_DIALECT", "")
	t.Setenv("DWQ_DEBUG", "")
	return config.AppFs
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	oldOut, oldErr := ui.Out, ui.Err
	ui.Out, ui.Err = out, out
	t.Cleanup(func() { ui.Out, ui.Err = oldOut, oldErr })

	cmd := NewRootCommand()
	cmd.SetArgs(append(args, "--no-color"))
	cmd.SetOut(out)
	cmd.SetErr(out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"len", "cols", "top", "head", "dist", "mimx", "valc", "piv", "five", "pct", "bin", "hash", "sql", "run", "tables", "exists", "templates", "version"}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"url", "dialect", "debug", "print", "timing", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	valc, _, err := cmd.Find([]string{"valc"})
	require.NoError(t, err)
	for _, name := range []string{"table", "select", "join", "where", "group-by", "having", "order-by", "sql", "agg", "order", "no-count"} {
		assert.NotNil(t, valc.Flags().Lookup(name), name)
	}
}

func TestParseJoin(t *testing.T) {
	tests := []struct {
		in     string
		kind   builder.JoinType
		target string
		on     []string
	}{
		{"other b on a.id = b.id", builder.LeftJoin, "other b", []string{"a.id = b.id"}},
		{"inner other b ON a.id = b.id", builder.InnerJoin, "other b", []string{"a.id = b.id"}},
		{"full join other b on a.id = b.id and b.x > 1", builder.FullJoin, "other b", []string{"a.id = b.id and b.x > 1"}},
		{"cross dates d", builder.CrossJoin, "dates d", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, target, on, err := parseJoin(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.target, target)
			assert.Equal(t, tt.on, on)
		})
	}

	_, _, _, err := parseJoin("inner ")
	assert.ErrorIs(t, err, builder.ErrBadJoin)
}

func TestQueryFlags_Build(t *testing.T) {
	_, err := (&queryFlags{}).build(dialect.SQLite)
	assert.ErrorIs(t, err, errNoTable)

	_, err = (&queryFlags{table: "t", wheres: []string{"x > 1"}, sql: "select 1"}).build(dialect.SQLite)
	assert.ErrorIs(t, err, builder.ErrRawConflict)

	_, err = (&queryFlags{table: "t", joins: []string{"other o"}}).build(dialect.SQLite)
	assert.ErrorIs(t, err, builder.ErrMissingJoinPredicate)

	q, err := (&queryFlags{sql: "select 1 as v"}).build(dialect.SQLite)
	require.NoError(t, err)
	assert.True(t, q.IsRaw())
}

func TestPrint_WithoutConnection(t *testing.T) {
	setup(t)
	t.Setenv("DWQ_URL", "")

	out, err := execute(t, "len", "-t", "test", "-w", "score > 1", "--print", "--dialect", "postgres")
	require.NoError(t, err)
	assert.Equal(t, "WITH x AS (\n    SELECT * FROM test WHERE score > 1\n)\nSELECT count(1) AS n FROM x\n", out)

	_, err = execute(t, "len", "-t", "test", "--print")
	assert.ErrorIs(t, err, errNoDialect)
}

func TestPrint_ClauseOrder(t *testing.T) {
	setup(t)

	out, err := execute(t, "sql", "--print",
		"-o", "n desc", "-g", "cat", "-s", "cat", "-s", "count(1) n", "-t", "test", "-w", "score > 0")
	require.NoError(t, err)
	assert.Equal(t, "SELECT cat, count(1) n FROM test WHERE score > 0 GROUP BY cat ORDER BY n desc\n", out)
}

func TestTemplates_Run(t *testing.T) {
	setup(t)

	out, err := execute(t, "len", "-t", "test")
	require.NoError(t, err)
	assert.Equal(t, "len: 5\n", out)

	out, err = execute(t, "dist", "cat", "-t", "test")
	require.NoError(t, err)
	assert.Equal(t, "dist: 3\n", out)

	out, err = execute(t, "valc", "cat", "-t", "test", "--agg", "max(score) AS top")
	require.NoError(t, err)
	assert.Contains(t, out, "(3 rows)")
	assert.Contains(t, out, "top")

	out, err = execute(t, "five", "score", "-t", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "median")
	assert.Regexp(t, `1\s+\|\s+2\s+\|\s+3\s+\|\s+4\s+\|\s+5`, out)

	out, err = execute(t, "mimx", "score", "-t", "test", "-w", "cat = 'b'")
	require.NoError(t, err)
	assert.Regexp(t, `3\s+\|\s+4`, out)

	out, err = execute(t, "head", "2", "-t", "test", "-o", "id")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 rows)")

	out, err = execute(t, "bin", "score", "2", "-t", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "bucket")

	out, err = execute(t, "hash", "-t", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "hash: ")

	out, err = execute(t, "piv", "--index", "cat", "--columns", "id", "-t", "test", "-w", "id < 3")
	require.NoError(t, err)
	assert.Contains(t, out, "cat")
}

func TestTiming(t *testing.T) {
	setup(t)

	out, err := execute(t, "len", "-t", "test", "--timing")
	require.NoError(t, err)
	assert.Contains(t, out, "len: 5\n")
	assert.Contains(t, out, "-- 1 row in ")

	out, err = execute(t, "sql", "-t", "missing", "--timing")
	require.Error(t, err)
	assert.Contains(t, out, "-- failed after ")
}

func TestBin_PrintNeedsRange(t *testing.T) {
	setup(t)

	_, err := execute(t, "bin", "score", "-t", "test", "--print")
	assert.Error(t, err)

	out, err := execute(t, "bin", "score", "4", "-t", "test", "--print", "--lo", "0", "--hi", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "-- args: 100, 3, 0, 25")
}

func TestRun_Script(t *testing.T) {
	fs := setup(t)
	require.NoError(t, afero.WriteFile(fs, "extract.sql", []byte(`
		drop table if exists extract_:label;
		create table extract_:label as select * from test where score > :threshold;
		-- result
		select count(1) as n from extract_:label;
	`), 0o644))

	out, err := execute(t, "run", "extract.sql", "-p", "label=x1", "-p", ":threshold=2")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 rows)")
	assert.Regexp(t, `\b3\b`, out)

	out, err = execute(t, "run", "extract.sql", "-p", "label=x1", "-p", "threshold=2", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "create table extract_x1 as select * from test where score > 2;\n")

	_, err = execute(t, "run", "extract.sql", "-p", "label")
	assert.Error(t, err)
}

func TestTables(t *testing.T) {
	setup(t)

	out, err := execute(t, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "test")

	out, err = execute(t, "tables", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "score")
	assert.Contains(t, out, "REAL")

	out, err = execute(t, "tables", "--constraints")
	require.NoError(t, err)
	assert.Contains(t, out, "constraint_type")

	_, err = execute(t, "tables", "--sizes")
	assert.ErrorIs(t, err, dialect.ErrUnsupported)
}

func TestExists(t *testing.T) {
	setup(t)

	out, err := execute(t, "exists", "test")
	require.NoError(t, err)
	assert.Equal(t, "exists: true\n", out)

	out, err = execute(t, "exists", "main.nope")
	require.NoError(t, err)
	assert.Equal(t, "exists: false\n", out)
}

func TestVersion(t *testing.T) {
	setup(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dwq version")

	_, err = execute(t, "version", "--check", ">= 100.0")
	assert.Error(t, err)
}
