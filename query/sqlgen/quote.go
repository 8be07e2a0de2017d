package sqlgen

import (
	"regexp"

	"github.com/satishbabariya/dwq/query/dialect"
)

var bareIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QuoteIdent quotes expr when it is a bare identifier that the dialect
// reserves. Anything else (qualified names, expressions, already quoted
// text) is returned unchanged; this is best effort, not escaping.
func QuoteIdent(d dialect.Dialect, expr string) string {
	if d.QuoteOpen == "" || !bareIdent.MatchString(expr) || !d.IsReserved(expr) {
		return expr
	}
	return d.Quote(expr)
}

func quoteAll(d dialect.Dialect, exprs []string) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = QuoteIdent(d, e)
	}
	return out
}
