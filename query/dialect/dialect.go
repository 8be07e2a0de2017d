// Package dialect describes the rendering rules and capabilities of each SQL engine.
//
// A Dialect is a plain value. Templates and the compiler consult its flags at
// render time instead of dispatching on engine-specific types, so supporting
// another engine means declaring another Dialect value.
package dialect

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// RowLimitStyle selects how a row restriction is rendered
type RowLimitStyle int

const (
	// LimitClause renders "LIMIT n"
	LimitClause RowLimitStyle = iota
	// FetchFirst renders "FETCH FIRST n ROWS ONLY". None of the predefined
	// dialects use it; it serves dialects declared outside this package,
	// such as Oracle 12c+ or DB2.
	FetchFirst
	// RownumPredicate renders a "rownum <= n" where predicate
	RownumPredicate
)

// ConcatStyle selects how string concatenation is rendered
type ConcatStyle int

const (
	// ConcatPipes joins with the || operator
	ConcatPipes ConcatStyle = iota
	// ConcatFunc joins with concat(...)
	ConcatFunc
)

// Catalog holds the metadata queries of a dialect
type Catalog struct {
	// Tables lists user tables; takes no arguments
	Tables string
	// Columns lists the columns of one table
	Columns string
	// DefaultSchema is used when a table name carries no schema
	DefaultSchema string
	// UpperCase folds schema and table names before binding (oracle)
	UpperCase bool
	// ColumnArgs orders the bound arguments of Columns
	ColumnArgs func(schema, table string) []any
	// Constraints lists key constraints; empty when the engine has no such view
	Constraints string
	// Sizes lists table sizes in megabytes; empty when unsupported
	Sizes string
}

// Dialect is the rule set of one engine family
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	RowLimit    RowLimitStyle
	QuoteOpen   string
	QuoteClose  string
	Reserved    map[string]struct{}

	// NativePercentile reports percentile_cont(p) WITHIN GROUP support
	NativePercentile bool
	// WindowFunctions reports row_number() / count() OVER () support
	WindowFunctions bool
	// QualifiedStar requires "alias.*" when * is mixed with other select items
	QualifiedStar bool

	// SelectHint is emitted right after every SELECT keyword
	SelectHint string

	TextType  string
	FloatType string
	// FloorFormat renders floor() of a non-negative expression
	FloorFormat string
	Concat      ConcatStyle
	// RowHashFormat renders a 32-bit hash of a text expression
	RowHashFormat string

	Catalog Catalog
}

// String returns the dialect name
func (d Dialect) String() string {
	return d.Name
}

// IsReserved reports whether word is a reserved word in the dialect
func (d Dialect) IsReserved(word string) bool {
	_, ok := d.Reserved[strings.ToLower(word)]
	return ok
}

// Quote wraps an identifier in the dialect's quote characters
func (d Dialect) Quote(ident string) string {
	return d.QuoteOpen + strings.ReplaceAll(ident, d.QuoteClose, d.QuoteClose+d.QuoteClose) + d.QuoteClose
}

// Floor renders the floor of a non-negative numeric expression
func (d Dialect) Floor(expr string) string {
	return fmt.Sprintf(d.FloorFormat, expr)
}

// TextCast casts expr to the dialect's text type
func (d Dialect) TextCast(expr string) string {
	return fmt.Sprintf("cast(%s as %s)", expr, d.TextType)
}

// FloatCast casts expr to the dialect's floating point type
func (d Dialect) FloatCast(expr string) string {
	return fmt.Sprintf("cast(%s as %s)", expr, d.FloatType)
}

// Join concatenates expressions with sep, a trusted SQL string literal
func (d Dialect) Join(sep string, exprs ...string) string {
	if len(exprs) == 1 {
		return exprs[0]
	}
	switch d.Concat {
	case ConcatFunc:
		parts := make([]string, 0, len(exprs)*2-1)
		for i, e := range exprs {
			if i > 0 {
				parts = append(parts, sep)
			}
			parts = append(parts, e)
		}
		return "concat(" + strings.Join(parts, ", ") + ")"
	default:
		return strings.Join(exprs, " || "+sep+" || ")
	}
}

// RowHash renders the per-row hash of a text expression
func (d Dialect) RowHash(expr string) (string, error) {
	if d.RowHashFormat == "" {
		return "", Unsupported(d, "row hashing")
	}
	return fmt.Sprintf(d.RowHashFormat, expr), nil
}

// WithoutWindows returns a copy of d that reports no window function support
func (d Dialect) WithoutWindows() Dialect {
	d.WindowFunctions = false
	return d
}

func words(list string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		m[w] = struct{}{}
	}
	return m
}

const commonReserved = `all and as asc between by case check column constraint create
	cross default delete desc distinct drop else end exists false from full group having
	in index inner insert intersect into is join left like not null on or order outer
	primary references right select set table then to true union unique update using
	values when where with`

var (
	// SQLite is the sqlite3 dialect
	SQLite = Dialect{
		Name:             "sqlite",
		Placeholder:      sq.Question,
		RowLimit:         LimitClause,
		QuoteOpen:        `"`,
		QuoteClose:       `"`,
		Reserved:         words(commonReserved + " limit offset"),
		NativePercentile: false,
		WindowFunctions:  true,
		TextType:         "text",
		FloatType:        "real",
		FloorFormat:      "cast(%s as integer)",
		Concat:           ConcatPipes,
		RowHashFormat:    "dwq_hash(%s)",
		Catalog: Catalog{
			Tables:        "SELECT name AS table_name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
			Columns:       "SELECT name AS column_name, type AS data_type FROM pragma_table_info(?, ?) ORDER BY cid",
			DefaultSchema: "main",
			ColumnArgs:    func(schema, table string) []any { return []any{table, schema} },
			Constraints: "SELECT m.name AS table_name, l.name AS constraint_name, " +
				"CASE l.origin WHEN 'pk' THEN 'PRIMARY KEY' ELSE 'UNIQUE' END AS constraint_type " +
				"FROM sqlite_master m JOIN pragma_index_list(m.name) l " +
				"WHERE m.type = 'table' AND l.origin IN ('pk', 'u') " +
				"UNION ALL SELECT m.name, 'fk_' || m.name || '_' || f.id, 'FOREIGN KEY' " +
				"FROM sqlite_master m JOIN pragma_foreign_key_list(m.name) f " +
				"WHERE m.type = 'table' AND f.seq = 0 ORDER BY 1, 2",
		},
	}

	// Postgres is the PostgreSQL dialect
	Postgres = Dialect{
		Name:             "postgres",
		Placeholder:      sq.Dollar,
		RowLimit:         LimitClause,
		QuoteOpen:        `"`,
		QuoteClose:       `"`,
		Reserved:         words(commonReserved + " limit offset user analyse analyze array window"),
		NativePercentile: true,
		WindowFunctions:  true,
		TextType:         "text",
		FloatType:        "double precision",
		FloorFormat:      "floor(%s)",
		Concat:           ConcatPipes,
		RowHashFormat:    "('x' || substr(md5(%s), 1, 8))::bit(32)::bigint",
		Catalog: Catalog{
			Tables: "SELECT table_catalog, table_schema, table_name, is_insertable_into, commit_action " +
				"FROM information_schema.tables WHERE table_schema NOT IN ('information_schema', 'pg_catalog') " +
				"ORDER BY table_schema, table_name",
			Columns:       "SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position",
			DefaultSchema: "public",
			ColumnArgs:    func(schema, table string) []any { return []any{schema, table} },
			Constraints:   "SELECT * FROM information_schema.constraint_table_usage ORDER BY table_schema, table_name, constraint_name",
			Sizes: "SELECT table_schema, table_name, " +
				"pg_total_relation_size(quote_ident(table_schema) || '.' || quote_ident(table_name)) / 1024.0 / 1024.0 AS table_size_mb " +
				"FROM information_schema.tables WHERE table_type = 'BASE TABLE' " +
				"AND table_schema NOT IN ('information_schema', 'pg_catalog') ORDER BY table_schema, table_name",
		},
	}

	// Oracle is the Oracle Database dialect
	Oracle = Dialect{
		Name:             "oracle",
		Placeholder:      sq.Colon,
		RowLimit:         RownumPredicate,
		QuoteOpen:        `"`,
		QuoteClose:       `"`,
		Reserved:         words(commonReserved + " level rownum rowid user size number date comment access file mode"),
		NativePercentile: true,
		WindowFunctions:  true,
		QualifiedStar:    true,
		SelectHint:       "/*+PARALLEL (4)*/",
		TextType:         "varchar2(4000)",
		FloatType:        "binary_double",
		FloorFormat:      "floor(%s)",
		Concat:           ConcatPipes,
		RowHashFormat:    "ora_hash(%s)",
		Catalog: Catalog{
			Tables:    "SELECT owner, table_name FROM all_tables WHERE owner = sys_context('USERENV', 'CURRENT_SCHEMA') ORDER BY table_name",
			Columns:   "SELECT column_name, data_type FROM all_tab_columns WHERE owner = ? AND table_name = ? ORDER BY column_id",
			UpperCase: true,
			ColumnArgs: func(schema, table string) []any {
				return []any{schema, table}
			},
			Constraints: "SELECT owner, table_name, constraint_name, constraint_type FROM all_constraints " +
				"WHERE owner = sys_context('USERENV', 'CURRENT_SCHEMA') ORDER BY table_name, constraint_name",
			Sizes: "SELECT /*+PARALLEL (4)*/ tablespace_name, segment_type, segment_name, " +
				"sum(bytes) / 1024 / 1024 AS table_size_mb FROM user_extents " +
				"GROUP BY tablespace_name, segment_type, segment_name ORDER BY segment_name",
		},
	}

	// MySQL is the MySQL 8 dialect
	MySQL = Dialect{
		Name:             "mysql",
		Placeholder:      sq.Question,
		RowLimit:         LimitClause,
		QuoteOpen:        "`",
		QuoteClose:       "`",
		Reserved:         words(commonReserved + " limit key keys rank window div mod"),
		NativePercentile: false,
		WindowFunctions:  true,
		TextType:         "char",
		FloatType:        "double",
		FloorFormat:      "floor(%s)",
		Concat:           ConcatFunc,
		RowHashFormat:    "crc32(%s)",
		Catalog: Catalog{
			Tables:     "SELECT table_schema, table_name FROM information_schema.tables WHERE table_schema = database() ORDER BY table_name",
			Columns:    "SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = coalesce(nullif(?, ''), database()) AND table_name = ? ORDER BY ordinal_position",
			ColumnArgs: func(schema, table string) []any { return []any{schema, table} },
			Constraints: "SELECT table_schema, table_name, constraint_name, constraint_type FROM information_schema.table_constraints " +
				"WHERE table_schema = database() ORDER BY table_name, constraint_name",
			Sizes: "SELECT table_schema, table_name, (data_length + index_length) / 1024 / 1024 AS table_size_mb " +
				"FROM information_schema.tables WHERE table_schema = database() AND table_type = 'BASE TABLE' ORDER BY table_name",
		},
	}
)

// Resolve returns the predefined dialect registered under name
func Resolve(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3", "lt":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "oracle", "oc":
		return Oracle, nil
	case "mysql":
		return MySQL, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}
