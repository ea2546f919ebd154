// Package load turns compiled Go packages into a Snapshot of their type
// declarations and the directive markers attached to them.
package load

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Config configures package loading.
type Config struct {
	// Dir is the directory patterns are resolved in. Empty means the
	// current working directory.
	Dir string
	// BuildFlags are passed to the underlying build system, e.g. "-tags=dev".
	BuildFlags []string
	// Env overrides the environment of the build system, if not nil.
	Env []string
	// GeneratedSuffix marks generated files. Files ending in it that carry
	// a "Code generated ... DO NOT EDIT." header are loaded without their
	// declarations.
	GeneratedSuffix string
	// Logger receives the type errors ignored by Load. Nil discards them.
	Logger *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// IsGenerated reports whether the source of filename is a generated file
// ending in suffix. An empty suffix matches nothing.
func IsGenerated(filename string, src []byte, suffix string) bool {
	if suffix == "" || !strings.HasSuffix(filename, suffix) {
		return false
	}
	f, err := parser.ParseFile(token.NewFileSet(), filename, src, parser.PackageClauseOnly|parser.ParseComments)
	return err == nil && ast.IsGenerated(f)
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Load loads the packages matching the patterns and returns a snapshot of
// their type declarations. Declarations appear in package import path
// order, then file name order, then source order.
//
// Type errors are logged and skipped, e.g. calls to methods that are not
// generated yet. Listing and parse errors are returned.
func Load(ctx context.Context, cfg *Config, patterns ...string) (*Snapshot, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	fset := token.NewFileSet()
	pkgs, err := packages.Load(&packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        cfg.Dir,
		Env:        cfg.Env,
		BuildFlags: cfg.BuildFlags,
		Fset:       fset,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			if IsGenerated(filename, src, cfg.GeneratedSuffix) {
				return parser.ParseFile(fset, filename, src, parser.PackageClauseOnly)
			}
			return parser.ParseFile(fset, filename, src, parser.AllErrors|parser.ParseComments|parser.SkipObjectResolution)
		},
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: loading packages %s: %w", strings.Join(patterns, " "), err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("load: no packages matched %s", strings.Join(patterns, " "))
	}
	var errs []error
	for _, p := range pkgs {
		for _, e := range p.Errors {
			if e.Kind == packages.TypeError {
				cfg.logger().Warn("ignoring type error", "package", p.PkgPath, "error", e.Msg, "pos", e.Pos)
				continue
			}
			errs = append(errs, fmt.Errorf("load: package %s: %w", p.PkgPath, e))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })
	l := &loader{
		fset:     fset,
		loaded:   make(map[string]bool, len(pkgs)),
		external: make(map[string]*types.TypeName),
	}
	for _, p := range pkgs {
		l.loaded[p.PkgPath] = true
	}
	for _, p := range pkgs {
		l.loadPackage(p)
	}
	return l.snapshot(), nil
}

// Dirs returns the distinct directories of the declarations in the snapshot.
func Dirs(s *Snapshot) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, d := range s.Decls() {
		if dir := d.Info().Dir; dir != "" && !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return dirs
}

type loader struct {
	fset     *token.FileSet
	decls    []Decl
	loaded   map[string]bool
	external map[string]*types.TypeName
}

func (l *loader) loadPackage(pkg *packages.Package) {
	files := make([]*ast.File, len(pkg.Syntax))
	copy(files, pkg.Syntax)
	sort.SliceStable(files, func(i, j int) bool {
		return l.fset.File(files[i].Pos()).Name() < l.fset.File(files[j].Pos()).Name()
	})
	for _, f := range files {
		for _, d := range f.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				if decl := l.typeSpec(pkg, ts, doc); decl != nil {
					l.decls = append(l.decls, decl)
				}
			}
		}
	}
}

func (l *loader) typeSpec(pkg *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup) Decl {
	obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok || obj == nil {
		return nil
	}
	pos := l.fset.Position(ts.Pos())
	info := DeclInfo{
		Name:    ts.Name.Name,
		Package: pkg.PkgPath,
		PkgName: pkg.Name,
		Dir:     filepath.Dir(pos.Filename),
		Pos:     pos.String(),
	}
	if ts.TypeParams != nil {
		info.TypeParams = ts.TypeParams.NumFields()
	}
	for _, dir := range directives(doc) {
		m := &Marker{
			Name: dir.name,
			Args: parseArgs(dir.args),
			Pos:  l.fset.Position(dir.pos).String(),
		}
		for _, a := range m.Args {
			if a.Kind == ArgType {
				l.resolve(pkg, ts.Pos(), a.Type)
			}
		}
		info.Markers = append(info.Markers, m)
	}
	if ts.Assign.IsValid() {
		d := &AliasDecl{DeclInfo: info, Target: TypeRef{Expr: types.ExprString(ts.Type)}}
		if tn := namedObj(obj.Type()); tn != nil {
			d.Target.Package, d.Target.Name = tn.Pkg().Path(), tn.Name()
		}
		return d
	}
	info.Methods = methods(obj.Type())
	return newDecl(info, obj.Type())
}

// resolve fills the package and name of a type reference by evaluating its
// expression in the scope of the declaration, so file imports apply.
func (l *loader) resolve(pkg *packages.Package, pos token.Pos, ref *TypeRef) {
	tv, err := safeEval(l.fset, pkg.Types, pos, ref.Expr)
	if err != nil || !tv.IsType() {
		return
	}
	tn := namedObj(tv.Type)
	if tn == nil {
		return
	}
	ref.Package, ref.Name = tn.Pkg().Path(), tn.Name()
	if !l.loaded[ref.Package] {
		l.external[ref.QualifiedName()] = tn
	}
}

func (l *loader) snapshot() *Snapshot {
	keys := make([]string, 0, len(l.external))
	for k := range l.external {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	decls := l.decls
	for _, k := range keys {
		tn := l.external[k]
		pos := l.fset.Position(tn.Pos())
		info := DeclInfo{
			Name:    tn.Name(),
			Package: tn.Pkg().Path(),
			PkgName: tn.Pkg().Name(),
		}
		if pos.IsValid() {
			info.Pos = pos.String()
		}
		if named, ok := types.Unalias(tn.Type()).(*types.Named); ok {
			info.TypeParams = named.TypeParams().Len()
		}
		info.Methods = methods(tn.Type())
		decls = append(decls, newDecl(info, tn.Type()))
	}
	return NewSnapshot(decls...)
}

func newDecl(info DeclInfo, t types.Type) Decl {
	switch u := t.Underlying().(type) {
	case *types.Struct:
		return &StructDecl{DeclInfo: info, Fields: structFields(u)}
	case *types.Interface:
		return &InterfaceDecl{DeclInfo: info}
	default:
		return &NamedDecl{DeclInfo: info, Underlying: types.TypeString(u, nil)}
	}
}

// structFields returns the exported, non-embedded fields in declaration order.
func structFields(st *types.Struct) []string {
	var fields []string
	for i := range st.NumFields() {
		f := st.Field(i)
		if f.Embedded() || !f.Exported() {
			continue
		}
		fields = append(fields, f.Name())
	}
	return fields
}

// methods returns the sorted names of the methods declared on a named type.
func methods(t types.Type) []string {
	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	var names []string
	for i := range named.NumMethods() {
		names = append(names, named.Method(i).Name())
	}
	slices.Sort(names)
	return names
}

// namedObj returns the type name of a named type, seeing through aliases.
// Predeclared types such as error have no package and are not returned.
func namedObj(t types.Type) *types.TypeName {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil
	}
	return named.Obj()
}

// safeEval wraps types.Eval with recover to ensure a malformed expression
// never panics the whole load.
func safeEval(fset *token.FileSet, pkg *types.Package, pos token.Pos, expr string) (tv types.TypeAndValue, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("types.Eval(%q) panics: %v", expr, v)
		}
	}()
	return types.Eval(fset, pkg, pos, expr)
}
