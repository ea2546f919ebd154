package gen

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/entitysql/compiler/load"
)

// Output is the rendered source of one request.
type Output struct {
	// Key is the qualified target name. It is unique within one pass.
	Key      string
	Filename string
	Dir      string
	Text     []byte

	Request    *Request
	Statements Statements
}

// Path returns the file path the output is written to.
func (o *Output) Path() string {
	return filepath.Join(o.Dir, o.Filename)
}

var statementDocs = map[string]string{
	"SelectAll":  "%s returns the statement selecting all rows of %s.",
	"SelectById": "%s returns the statement selecting the row of %s matching @Id.",
	"Insert":     "%s returns the statement inserting one row into %s.",
	"UpdateById": "%s returns the statement updating the row of %s matching @Id.",
	"DeleteById": "%s returns the statement deleting the row of %s matching @Id.",
}

// Render resolves the entity of the request and renders its statements as
// methods of the target type. The snapshot is only read.
func Render(req *Request, snap *load.Snapshot, cfg *Config) (*Output, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	target := req.Target.QualifiedName()
	entity, err := snap.Struct(req.Entity)
	if err != nil {
		return nil, NewUnresolvedEntityError(target, req.Entity.String(), req.Pos, err)
	}
	if len(entity.Fields) == 0 {
		return nil, NewEmptyEntityError(target, req.Entity.String(), req.Pos)
	}
	filename := cfg.filename(req.Target.Name)
	if req.Target.PkgName == "" {
		return nil, NewGenerationError("render", filename, fmt.Sprintf("package name of %s is unknown", target), nil)
	}
	stmts := BuildStatements(req.Table, entity.Fields)

	f := jen.NewFilePathName(req.Target.Package, req.Target.PkgName)
	f.HeaderComment(cfg.header())
	for i, name := range StatementNames {
		if i > 0 {
			f.Line()
		}
		sql, _ := stmts.Get(name)
		f.Commentf(statementDocs[name], name, req.Table)
		f.Func().Params(receiver(req.Target)).Id(name).Params().String().Block(
			jen.Return(jen.Lit(sql)),
		)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError("render", filename, "rendering "+target, err)
	}
	return &Output{
		Key:        target,
		Filename:   filename,
		Dir:        req.Target.Dir,
		Text:       buf.Bytes(),
		Request:    req,
		Statements: stmts,
	}, nil
}

// receiver returns the value receiver of the target. Type parameters of a
// generic target are left blank, e.g. "Page[_, _]".
func receiver(t Target) *jen.Statement {
	recv := jen.Id(t.Name)
	if t.TypeParams == 0 {
		return recv
	}
	params := make([]jen.Code, t.TypeParams)
	for i := range params {
		params[i] = jen.Id("_")
	}
	return recv.Types(params...)
}
