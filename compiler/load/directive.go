package load

import (
	"go/ast"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
)

// directive is a raw "//name:verb args" comment line.
type directive struct {
	name string
	args string
	pos  token.Pos
}

// directives returns the directive lines of the comment group in order.
func directives(cg *ast.CommentGroup) []directive {
	if cg == nil {
		return nil
	}
	var ds []directive
	for _, c := range cg.List {
		text, ok := strings.CutPrefix(c.Text, "//")
		if !ok {
			continue
		}
		name, args, _ := strings.Cut(text, " ")
		if !isDirectiveName(name) {
			continue
		}
		ds = append(ds, directive{name: name, args: strings.TrimSpace(args), pos: c.Pos()})
	}
	return ds
}

// isDirectiveName follows the go/ast convention for directives: a
// lowercase or digit prefix, a colon, and a non-empty verb.
func isDirectiveName(name string) bool {
	prefix, verb, ok := strings.Cut(name, ":")
	if !ok || prefix == "" || verb == "" {
		return false
	}
	for _, r := range prefix {
		if !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '_' || r == '.' || r == '-') {
			return false
		}
	}
	return true
}

// parseArgs splits directive arguments into typed values. Identifiers and
// qualified identifiers become type arguments with an unresolved TypeRef,
// Go string literals become string arguments, anything else is kept as
// raw text. Input that does not scan is returned as one raw argument.
func parseArgs(src string) []Arg {
	if src == "" {
		return nil
	}
	fset := token.NewFileSet()
	file := fset.AddFile("", -1, len(src))
	var (
		s      scanner.Scanner
		failed bool
		toks   []scanned
	)
	s.Init(file, []byte(src), func(token.Position, string) { failed = true }, 0)
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		// Automatic semicolon inserted at the end of input.
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		toks = append(toks, scanned{tok: tok, lit: lit})
	}
	if failed {
		return []Arg{{Kind: ArgOther, Value: src}}
	}
	var args []Arg
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.tok == token.IDENT && i+2 < len(toks) && toks[i+1].tok == token.PERIOD && toks[i+2].tok == token.IDENT:
			expr := t.lit + "." + toks[i+2].lit
			args = append(args, Arg{Kind: ArgType, Type: &TypeRef{Expr: expr}})
			i += 2
		case t.tok == token.IDENT:
			args = append(args, Arg{Kind: ArgType, Type: &TypeRef{Expr: t.lit}})
		case t.tok == token.STRING:
			v, err := strconv.Unquote(t.lit)
			if err != nil {
				args = append(args, Arg{Kind: ArgOther, Value: t.lit})
				continue
			}
			args = append(args, Arg{Kind: ArgString, Value: v})
		default:
			args = append(args, Arg{Kind: ArgOther, Value: t.text()})
		}
	}
	return args
}

type scanned struct {
	tok token.Token
	lit string
}

func (s scanned) text() string {
	if s.lit != "" {
		return s.lit
	}
	return s.tok.String()
}
