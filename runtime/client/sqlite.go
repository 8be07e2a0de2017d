package client

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"github.com/hashicorp/go-version"
	"github.com/mattn/go-sqlite3"

	"github.com/satishbabariya/dwq/internal/debug"
	"github.com/satishbabariya/dwq/query/dialect"
)

// SQLiteDriverName is the sqlite3 driver with the dwq_hash function installed
const SQLiteDriverName = "sqlite3_dwq"

// minWindowVersion is the first sqlite release with window functions
var minWindowVersion = version.Must(version.NewVersion("3.25.0"))

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("dwq_hash", RowHash, true)
		},
	})
}

// RowHash is the 32-bit FNV-1a hash of s, the row hash used on sqlite
func RowHash(s string) int64 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int64(h.Sum32())
}

// narrowSQLite drops window function support when the linked sqlite is too
// old to provide it
func narrowSQLite(ctx context.Context, db *sql.DB, d dialect.Dialect) (dialect.Dialect, error) {
	var raw string
	if err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&raw); err != nil {
		return d, fmt.Errorf("failed to read sqlite version: %w", err)
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return d, fmt.Errorf("invalid sqlite version %q: %w", raw, err)
	}
	if v.LessThan(minWindowVersion) {
		debug.Warn("sqlite lacks window functions, percentiles disabled", "version", raw)
		return d.WithoutWindows(), nil
	}
	debug.Debug("sqlite version", "version", raw)
	return d, nil
}
