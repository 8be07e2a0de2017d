package script

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// SQLLexer splits SQL text into the pieces parameter binding cares about.
// Everything that is not a literal, comment, parameter or separator is Text.
var SQLLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},

	// Literals
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"|` + "`[^`]*`"},

	// Postgres cast (must come before Param)
	{Name: "Cast", Pattern: `::`},
	{Name: "Param", Pattern: `:[\p{L}\p{N}_]+`},

	{Name: "Semicolon", Pattern: `;`},
	{Name: "Text", Pattern: "[^'\"`:;/-]+"},
	{Name: "Punct", Pattern: `[:/-]`},
})

var symbols = SQLLexer.Symbols()

func tokenize(name, sql string) ([]lexer.Token, error) {
	l, err := SQLLexer.LexString(name, sql)
	if err != nil {
		return nil, err
	}
	return lexer.ConsumeAll(l)
}

func is(tok lexer.Token, names ...string) bool {
	for _, n := range names {
		if tok.Type == symbols[n] {
			return true
		}
	}
	return false
}
