package load

import (
	"fmt"
	"strings"
)

// Decl is a type declaration loaded from a compiled user package.
// The set of implementations is closed: StructDecl, NamedDecl,
// InterfaceDecl and AliasDecl.
type Decl interface {
	// Info returns the attributes shared by every declaration kind.
	Info() *DeclInfo
	decl()
}

// DeclInfo holds the attributes shared by all declaration kinds.
// TypeParams counts the type parameters of a generic type. Methods lists
// the declared methods of the type, leaving out those of generated files.
type DeclInfo struct {
	Name       string    `json:"name" yaml:"name" msgpack:"name"`
	Package    string    `json:"package" yaml:"package" msgpack:"package"`
	PkgName    string    `json:"pkg_name,omitempty" yaml:"pkg_name,omitempty" msgpack:"pkg_name,omitempty"`
	Dir        string    `json:"dir,omitempty" yaml:"dir,omitempty" msgpack:"dir,omitempty"`
	Pos        string    `json:"pos,omitempty" yaml:"pos,omitempty" msgpack:"pos,omitempty"`
	TypeParams int       `json:"type_params,omitempty" yaml:"type_params,omitempty" msgpack:"type_params,omitempty"`
	Methods    []string  `json:"methods,omitempty" yaml:"methods,omitempty" msgpack:"methods,omitempty"`
	Markers    []*Marker `json:"markers,omitempty" yaml:"markers,omitempty" msgpack:"markers,omitempty"`
}

// Info implements the Decl interface.
func (d *DeclInfo) Info() *DeclInfo { return d }

// QualifiedName returns the import path qualified name of the declaration.
func (d *DeclInfo) QualifiedName() string {
	return qualify(d.Package, d.Name)
}

// PackageName returns the package clause name. It falls back to the last
// element of the import path when the name was not recorded.
func (d *DeclInfo) PackageName() string {
	if d.PkgName != "" {
		return d.PkgName
	}
	if i := strings.LastIndexByte(d.Package, '/'); i >= 0 {
		return d.Package[i+1:]
	}
	return d.Package
}

type (
	// StructDecl is a struct type declaration. Fields lists the exported,
	// non-embedded fields in declaration order.
	StructDecl struct {
		DeclInfo
		Fields []string
	}

	// NamedDecl is a defined type whose underlying type is neither a struct
	// nor an interface, for example "type Status int".
	NamedDecl struct {
		DeclInfo
		Underlying string
	}

	// InterfaceDecl is an interface type declaration.
	InterfaceDecl struct {
		DeclInfo
	}

	// AliasDecl is an alias declaration, for example "type A = B".
	AliasDecl struct {
		DeclInfo
		Target TypeRef
	}
)

func (*StructDecl) decl()    {}
func (*NamedDecl) decl()     {}
func (*InterfaceDecl) decl() {}
func (*AliasDecl) decl()     {}

// Marker is a directive comment attached to a type declaration.
//
//	//entitysql:generate User "users"
type Marker struct {
	Name string `json:"name" yaml:"name" msgpack:"name"`
	Args []Arg  `json:"args,omitempty" yaml:"args,omitempty" msgpack:"args,omitempty"`
	Pos  string `json:"pos,omitempty" yaml:"pos,omitempty" msgpack:"pos,omitempty"`
}

// ArgKind describes the syntactic kind of a marker argument.
type ArgKind uint8

// Marker argument kinds.
const (
	ArgOther ArgKind = iota
	ArgType
	ArgString
)

var argKindNames = [...]string{
	ArgOther:  "other",
	ArgType:   "type",
	ArgString: "string",
}

// String returns the kind name.
func (k ArgKind) String() string {
	if int(k) < len(argKindNames) {
		return argKindNames[k]
	}
	return "other"
}

// MarshalText implements the encoding.TextMarshaler interface.
func (k ArgKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (k *ArgKind) UnmarshalText(text []byte) error {
	for i, name := range argKindNames {
		if name == string(text) {
			*k = ArgKind(i)
			return nil
		}
	}
	return fmt.Errorf("load: unknown argument kind %q", text)
}

// Arg is a positional marker argument.
type Arg struct {
	Kind ArgKind `json:"kind" yaml:"kind" msgpack:"kind"`
	// Type is set for ArgType arguments.
	Type *TypeRef `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	// Value holds the unquoted string for ArgString and the raw
	// token text for ArgOther.
	Value string `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
}

// String returns the argument as it would appear in source.
func (a Arg) String() string {
	switch a.Kind {
	case ArgType:
		if a.Type != nil {
			return a.Type.String()
		}
		return ""
	case ArgString:
		return `"` + a.Value + `"`
	default:
		return a.Value
	}
}

// TypeRef references a named type. Package is empty if the
// reference could not be resolved.
type TypeRef struct {
	Package string `json:"package,omitempty" yaml:"package,omitempty" msgpack:"package,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Expr    string `json:"expr,omitempty" yaml:"expr,omitempty" msgpack:"expr,omitempty"`
}

// Resolved reports if the reference points to a named type.
func (r TypeRef) Resolved() bool { return r.Package != "" && r.Name != "" }

// QualifiedName returns the import path qualified name of the reference.
func (r TypeRef) QualifiedName() string { return qualify(r.Package, r.Name) }

// String returns the reference as written in source, or its qualified name.
func (r TypeRef) String() string {
	if r.Expr != "" {
		return r.Expr
	}
	return r.QualifiedName()
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
