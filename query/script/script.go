// Package script loads SQL scripts and binds their :name parameters.
//
// Binding is textual, like a template: values are spliced into the SQL as
// written and never escaped. Use it for table names, dates and other trusted
// fragments; pass untrusted values as driver arguments instead.
package script

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/afero"

	"github.com/satishbabariya/dwq/internal/debug"
)

// Script is SQL text read from a file
type Script struct {
	Path string
	Text string
}

// Load reads the script at path from fs
func Load(fs afero.Fs, path string) (*Script, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	debug.Info("sql from", "path", path)
	return &Script{Path: path, Text: string(data)}, nil
}

// Statements binds params into the script and splits it into statements
func (s *Script) Statements(params map[string]string) ([]string, error) {
	bound, err := bind(s.Path, s.Text, params)
	if err != nil {
		return nil, err
	}
	stmts, err := split(s.Path, bound)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyScript, s.Path)
	}
	return stmts, nil
}

// Bind replaces :name parameters in sql with their values. A name matches
// when the character after it is not a letter or digit, so "tbl_:yr_0304"
// binds "yr"; the longest bound name wins. Comments and :: casts are left
// alone, unbound parameters are kept as written.
func Bind(sql string, params map[string]string) (string, error) {
	return bind("", sql, params)
}

func bind(name, sql string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return sql, nil
	}
	toks, err := tokenize(name, sql)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	// longest first
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	var b strings.Builder
	for _, tok := range toks {
		if tok.EOF() {
			break
		}
		if is(tok, "Comment", "BlockComment", "Cast") {
			b.WriteString(tok.Value)
			continue
		}
		b.WriteString(substitute(tok.Value, keys, params))
	}
	return b.String(), nil
}

// substitute replaces every ":name" in s that is not part of a "::"
func substitute(s string, keys []string, params map[string]string) string {
	if !strings.Contains(s, ":") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != ':' || (i > 0 && s[i-1] == ':') || (i+1 < len(s) && s[i+1] == ':') {
			b.WriteByte(s[i])
			continue
		}
		rest := s[i+1:]
		if k, ok := match(rest, keys); ok {
			b.WriteString(params[k])
			debug.Debug("replaced parameter", "name", k, "value", params[k])
			i += len(k)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func match(rest string, keys []string) (string, bool) {
	for _, k := range keys {
		if !strings.HasPrefix(rest, k) {
			continue
		}
		if len(rest) == len(k) {
			return k, true
		}
		next := []rune(rest[len(k):])[0]
		if !unicode.IsLetter(next) && !unicode.IsDigit(next) {
			return k, true
		}
	}
	return "", false
}

// Params lists the distinct parameter names referenced in sql, in order of
// first appearance. Only parameters in code are reported.
func Params(sql string) ([]string, error) {
	toks, err := tokenize("", sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	var names []string
	for _, tok := range toks {
		if is(tok, "Param") {
			n := tok.Value[1:]
			if !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
	}
	return names, nil
}

// Split breaks sql into statements on semicolons outside literals and
// comments. Statements that hold only comments or whitespace are dropped.
func Split(sql string) ([]string, error) {
	return split("", sql)
}

func split(name, sql string) ([]string, error) {
	toks, err := tokenize(name, sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	var (
		stmts []string
		cur   strings.Builder
		code  bool
	)
	flush := func() {
		if code {
			stmts = append(stmts, strings.TrimSpace(cur.String()))
		}
		cur.Reset()
		code = false
	}
	for _, tok := range toks {
		switch {
		case tok.EOF():
			flush()
		case is(tok, "Semicolon"):
			flush()
		default:
			cur.WriteString(tok.Value)
			if !is(tok, "Comment", "BlockComment") && strings.TrimSpace(tok.Value) != "" {
				code = true
			}
		}
	}
	return stmts, nil
}
