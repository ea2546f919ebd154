package gen

import (
	"fmt"
	"slices"

	"github.com/syssam/entitysql/compiler/load"
)

// Target is the type the generated statements are attached to.
// TypeParams is the number of type parameters of a generic target.
type Target struct {
	Name       string
	Package    string
	PkgName    string
	Dir        string
	TypeParams int
}

// QualifiedName returns the import path qualified target name.
func (t Target) QualifiedName() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// Request is a resolved (target, entity, table) triple ready for rendering.
// Requests are immutable once collected.
type Request struct {
	Target Target
	Entity load.TypeRef
	Table  string
	Marker string // Marker name that produced the request.
	Pos    string // Marker position.
}

// Collect scans the snapshot declarations in order and returns one request
// per recognized, well-formed marker. Malformed markers are reported in the
// returned errors and produce no request; collection always completes.
func Collect(snap *load.Snapshot, cfg *Config) ([]*Request, []error) {
	if cfg == nil {
		cfg = &Config{}
	}
	var (
		reqs []*Request
		errs []error
	)
	for _, d := range snap.Decls() {
		info := d.Info()
		for _, m := range info.Markers {
			if !cfg.recognized(m.Name) {
				continue
			}
			req, err := newRequest(d, m)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			reqs = append(reqs, req)
		}
	}
	return reqs, errs
}

func newRequest(d load.Decl, m *load.Marker) (*Request, error) {
	info := d.Info()
	fail := func(format string, args ...any) error {
		return NewMarkerError(info.QualifiedName(), m.Name, m.Pos, fmt.Sprintf(format, args...))
	}
	switch d.(type) {
	case *load.InterfaceDecl:
		return nil, fail("methods cannot be attached to interface type %s", info.Name)
	case *load.AliasDecl:
		return nil, fail("methods cannot be attached to alias %s, mark the aliased type instead", info.Name)
	}
	if n := len(m.Args); n != 2 {
		return nil, fail("expects 2 arguments (entity type and table name), got %d", n)
	}
	entity, table := m.Args[0], m.Args[1]
	if entity.Kind != load.ArgType || entity.Type == nil {
		return nil, fail("first argument must be an entity type, got %s %s", entity.Kind, entity)
	}
	if table.Kind != load.ArgString {
		return nil, fail("second argument must be a table name string, got %s %s", table.Kind, table)
	}
	if table.Value == "" {
		return nil, fail("table name cannot be empty")
	}
	if name, ok := clash(d); ok {
		return nil, fail("%s already has a field or method named %s", info.Name, name)
	}
	return &Request{
		Target: Target{
			Name:       info.Name,
			Package:    info.Package,
			PkgName:    info.PackageName(),
			Dir:        info.Dir,
			TypeParams: info.TypeParams,
		},
		Entity: *entity.Type,
		Table:  table.Value,
		Marker: m.Name,
		Pos:    m.Pos,
	}, nil
}

// clash returns the first statement name already used by a field or a
// method of the target.
func clash(d load.Decl) (string, bool) {
	taken := d.Info().Methods
	if s, ok := d.(*load.StructDecl); ok {
		taken = append(slices.Clip(taken), s.Fields...)
	}
	for _, name := range StatementNames {
		if slices.Contains(taken, name) {
			return name, true
		}
	}
	return "", false
}
