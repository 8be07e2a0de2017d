package sqlgen_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/dialect"
	"github.com/satishbabariya/dwq/query/sqlgen"
)

func TestCompile_ClauseOrder(t *testing.T) {
	// clauses added in reverse keyword order
	q := builder.New(dialect.SQLite, "test a").
		OrderBy("a.score desc").
		Having("count(1) > 1").
		GroupBy("a.cat").
		Where("a.score > 0.5").
		Join("other b", "a.id = b.id").
		Select("a.cat").
		SelectAs("count(1)", "n").
		Where("b.flag = 1 or b.flag is null")

	got, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT a.cat, count(1) AS n FROM test a LEFT JOIN other b ON a.id = b.id "+
			"WHERE (a.score > 0.5) AND (b.flag = 1 or b.flag is null) "+
			"GROUP BY a.cat HAVING count(1) > 1 ORDER BY a.score desc",
		got.SQL)
	assert.Empty(t, got.Args)
}

func TestCompile_OmitsAbsentClauses(t *testing.T) {
	got, err := sqlgen.Compile(builder.New(dialect.SQLite, "test").Where("x = 1"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM test WHERE x = 1", got.SQL)
}

func TestCompile_CaseOrder(t *testing.T) {
	q := builder.New(dialect.SQLite, "t").
		Select("id").
		Case("grade",
			builder.When{Cond: "score > 50", Then: "'b'"},
			builder.When{Cond: "score > 90", Then: "'a'"},
		)

	got, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, CASE WHEN score > 50 THEN 'b' WHEN score > 90 THEN 'a' ELSE NULL END AS grade FROM t",
		got.SQL)
}

func TestCompile_OracleQualifiedStar(t *testing.T) {
	q := builder.New(dialect.Oracle, "test t").
		CaseElse("big", "0", builder.When{Cond: "score > 90", Then: "1"})

	got, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT /*+PARALLEL (4)*/ t.*, CASE WHEN score > 90 THEN 1 ELSE 0 END AS big FROM test t",
		got.SQL)

	plain, err := sqlgen.Compile(builder.New(dialect.Oracle, "test t"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT /*+PARALLEL (4)*/ * FROM test t", plain.SQL)
}

func TestCompile_Joins(t *testing.T) {
	q := builder.New(dialect.Postgres, "a").
		JoinKind(builder.InnerJoin, "c", "a.id = c.id", "c.ok = 1").
		JoinKind(builder.CrossJoin, "d")

	got, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a INNER JOIN c ON (a.id = c.id) AND (c.ok = 1) CROSS JOIN d", got.SQL)
}

func TestCompile_QuotesReservedIdentifiers(t *testing.T) {
	q := builder.New(dialect.Postgres, "t").Select("user", "name").GroupBy("user", "name").OrderBy("user")

	got, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "user", name FROM t GROUP BY "user", name ORDER BY "user"`, got.SQL)

	mysql, err := sqlgen.Compile(builder.New(dialect.MySQL, "t").Select("rank"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT `rank` FROM t", mysql.SQL)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"level"`, sqlgen.QuoteIdent(dialect.Oracle, "level"))
	assert.Equal(t, "t.level", sqlgen.QuoteIdent(dialect.Oracle, "t.level"))
	assert.Equal(t, "count(level)", sqlgen.QuoteIdent(dialect.Oracle, "count(level)"))
	assert.Equal(t, "score", sqlgen.QuoteIdent(dialect.Oracle, "score"))
}

func TestCompile_LiteralQuestionMarkSurvives(t *testing.T) {
	got, err := sqlgen.Compile(builder.New(dialect.Postgres, "t").Where("doc ? 'key'"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE doc ? 'key'", got.SQL)
}

func TestCompile_Errors(t *testing.T) {
	_, err := sqlgen.Compile(builder.New(dialect.SQLite, "").Select("a"))
	assert.ErrorIs(t, err, sqlgen.ErrNoSource)

	_, err = sqlgen.Compile(builder.New(dialect.SQLite, "t").Join("b"))
	assert.ErrorIs(t, err, builder.ErrMissingJoinPredicate)

	_, err = sqlgen.WrapSQL(builder.New(dialect.SQLite, "t"), "  ")
	assert.ErrorIs(t, err, sqlgen.ErrCompilationFailed)
}

func TestCompile_Deterministic(t *testing.T) {
	q := builder.New(dialect.Oracle, "t").Select("a").Where("a > 1", "a < 9").OrderBy("a")

	first, err := sqlgen.Wrap(q, sqlgen.Outer(dialect.Oracle, "count(1) AS n"))
	require.NoError(t, err)
	second, err := sqlgen.Wrap(q, sqlgen.Outer(dialect.Oracle, "count(1) AS n"))
	require.NoError(t, err)
	assert.Equal(t, first.SQL, second.SQL)
}

func TestWrapSQL_EmptyState(t *testing.T) {
	got, err := sqlgen.WrapSQL(builder.New(dialect.SQLite, "test"), "SELECT count(1) AS n FROM x")
	require.NoError(t, err)
	assert.Equal(t, "WITH x AS (\n    SELECT * FROM test\n)\nSELECT count(1) AS n FROM x", got.SQL)
}

func TestWrapSQL_RawIndented(t *testing.T) {
	q := builder.New(dialect.SQLite, "").SQL("select 1 as v\nunion all select 2")

	got, err := sqlgen.WrapSQL(q, "SELECT sum(v) AS s FROM x")
	require.NoError(t, err)
	assert.Equal(t, "WITH x AS (\n    select 1 as v\n    union all select 2\n)\nSELECT sum(v) AS s FROM x", got.SQL)
}

func TestWrap_Placeholders(t *testing.T) {
	tests := []struct {
		d    dialect.Dialect
		want string
	}{
		{dialect.SQLite, "SELECT count(1) AS n FROM x WHERE v > ? AND v < ?"},
		{dialect.Postgres, "SELECT count(1) AS n FROM x WHERE v > $1 AND v < $2"},
		{dialect.Oracle, "SELECT /*+PARALLEL (4)*/ count(1) AS n FROM x WHERE v > :1 AND v < :2"},
	}

	for _, tt := range tests {
		t.Run(tt.d.Name, func(t *testing.T) {
			outer := sqlgen.Outer(tt.d, "count(1) AS n").Where("v > ?", 3).Where("v < ?", 9)
			got, err := sqlgen.Wrap(builder.New(tt.d, "t"), outer)
			require.NoError(t, err)
			assert.Contains(t, got.SQL, "\n)\n"+tt.want)
			assert.Equal(t, []any{3, 9}, got.Args)
		})
	}
}

func TestWrapSQL_LiteralQuestionMarkWithArgs(t *testing.T) {
	tests := []struct {
		d    dialect.Dialect
		want string
	}{
		{dialect.SQLite, "WITH x AS (\n    SELECT * FROM t WHERE note <> '?'\n)\nSELECT count(1) AS n FROM x WHERE v > ?"},
		{dialect.Postgres, "WITH x AS (\n    SELECT * FROM t WHERE note <> '?'\n)\nSELECT count(1) AS n FROM x WHERE v > $1"},
		{dialect.Oracle, "WITH x AS (\n    SELECT /*+PARALLEL (4)*/ * FROM t WHERE note <> '?'\n)\nSELECT count(1) AS n FROM x WHERE v > :1"},
	}

	for _, tt := range tests {
		t.Run(tt.d.Name, func(t *testing.T) {
			q := builder.New(tt.d, "t").Where("note <> '?'")
			got, err := sqlgen.WrapSQL(q, "SELECT count(1) AS n FROM x WHERE v > ?", 3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.SQL)
			assert.Equal(t, []any{3}, got.Args)
		})
	}
}

func TestLimit(t *testing.T) {
	fetch := dialect.Postgres
	fetch.Name = "fetch"
	fetch.RowLimit = dialect.FetchFirst

	tests := []struct {
		d    dialect.Dialect
		want string
	}{
		{dialect.SQLite, "SELECT * FROM x LIMIT 5"},
		{dialect.MySQL, "SELECT * FROM x LIMIT 5"},
		{dialect.Oracle, "SELECT /*+PARALLEL (4)*/ * FROM x WHERE rownum <= 5"},
		{fetch, "SELECT * FROM x FETCH FIRST 5 ROWS ONLY"},
	}

	for _, tt := range tests {
		t.Run(tt.d.Name, func(t *testing.T) {
			sql, _, err := sqlgen.Limit(tt.d, sqlgen.Outer(tt.d, "*"), 5).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestWrap_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, d := range []dialect.Dialect{dialect.SQLite, dialect.Postgres, dialect.Oracle, dialect.MySQL} {
		t.Run(d.Name, func(t *testing.T) {
			q := builder.New(d, "test a").
				Select("a.cat").
				SelectAs("count(1)", "n").
				Join("other b", "a.id = b.id").
				Where("a.score > 0.5", "b.flag = 1 or b.flag is null").
				GroupBy("a.cat").
				Having("count(1) > 1").
				OrderBy("a.score desc")

			got, err := sqlgen.Wrap(q, sqlgen.Outer(d, "count(1) AS n"))
			require.NoError(t, err)
			g.Assert(t, "wrap_"+d.Name, []byte(got.SQL))
		})
	}
}
