package load

import "fmt"

// Snapshot is an immutable, ordered view of the type declarations visible
// to one generation pass. Decls keeps discovery order, which is stable for
// unchanged input.
type Snapshot struct {
	decls []Decl
	index map[string]Decl
}

// NewSnapshot returns a snapshot holding the given declarations in order.
// A later declaration with the same qualified name as an earlier one is
// kept in the list but does not replace the earlier one in the index.
func NewSnapshot(decls ...Decl) *Snapshot {
	s := &Snapshot{index: make(map[string]Decl, len(decls))}
	for _, d := range decls {
		s.add(d)
	}
	return s
}

func (s *Snapshot) add(d Decl) {
	s.decls = append(s.decls, d)
	key := d.Info().QualifiedName()
	if _, ok := s.index[key]; !ok {
		s.index[key] = d
	}
}

// Decls returns the declarations in discovery order.
func (s *Snapshot) Decls() []Decl {
	return s.decls
}

// Len returns the number of declarations.
func (s *Snapshot) Len() int { return len(s.decls) }

// Lookup returns the declaration the reference points to.
func (s *Snapshot) Lookup(ref TypeRef) (Decl, bool) {
	if !ref.Resolved() {
		return nil, false
	}
	d, ok := s.index[ref.QualifiedName()]
	return d, ok
}

// Struct returns the struct declaration the reference points to, or an
// error describing why it cannot be used as an entity.
func (s *Snapshot) Struct(ref TypeRef) (*StructDecl, error) {
	d, ok := s.Lookup(ref)
	if !ok {
		return nil, fmt.Errorf("type %s not found", ref)
	}
	sd, ok := d.(*StructDecl)
	if !ok {
		return nil, fmt.Errorf("type %s is %s, not a struct", ref, KindOf(d))
	}
	return sd, nil
}

// KindOf returns a short name for the declaration kind.
func KindOf(d Decl) string {
	switch d.(type) {
	case *StructDecl:
		return "struct"
	case *InterfaceDecl:
		return "interface"
	case *AliasDecl:
		return "alias"
	case *NamedDecl:
		return "named"
	default:
		return "unknown"
	}
}
