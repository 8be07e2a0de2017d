package summary_test

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/dialect"
	"github.com/satishbabariya/dwq/query/sqlgen"
	"github.com/satishbabariya/dwq/query/summary"
)

func TestTemplates_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	templates := []struct {
		name    string
		compile func(q builder.Query) (sqlgen.Query, error)
	}{
		{"len", summary.LenQuery},
		{"cols", summary.ColsQuery},
		{"top", summary.TopQuery},
		{"head", func(q builder.Query) (sqlgen.Query, error) { return summary.HeadQuery(q, 5) }},
		{"dist", func(q builder.Query) (sqlgen.Query, error) { return summary.DistQuery(q, "cat", "grp") }},
		{"mimx", func(q builder.Query) (sqlgen.Query, error) { return summary.MimxQuery(q, "score") }},
		{"valc", func(q builder.Query) (sqlgen.Query, error) {
			return summary.ValcQuery(q, summary.ValcSpec{GroupBy: []string{"cat", "grp"}, Agg: []string{"avg(score) AS mean"}})
		}},
		{"pct", func(q builder.Query) (sqlgen.Query, error) { return summary.PctQuery(q, "score", 0.5, 0.975) }},
		{"bin", func(q builder.Query) (sqlgen.Query, error) { return summary.BinQuery(q, "score", 0, 100, 4) }},
		{"hash", func(q builder.Query) (sqlgen.Query, error) { return summary.HashQuery(q, "cat", "score") }},
	}

	for _, d := range []dialect.Dialect{dialect.SQLite, dialect.Postgres, dialect.Oracle, dialect.MySQL} {
		base := builder.New(d, "test t").Where("t.score > 0")
		for _, tt := range templates {
			t.Run(tt.name+"_"+d.Name, func(t *testing.T) {
				got, err := tt.compile(base)
				require.NoError(t, err)
				g.Assert(t, tt.name+"_"+d.Name, []byte(got.SQL+"\n-- args: "+fmt.Sprint(got.Args)))
			})
		}
	}
}
