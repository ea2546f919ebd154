package load

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is a snapshot encoding.
type Format string

// Supported snapshot encodings.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// snapshotVersion is bumped on incompatible changes to the wire records.
const snapshotVersion = 1

// FormatFromPath returns the encoding matching the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("load: unknown snapshot extension %q", ext)
	}
}

type (
	snapshotRecord struct {
		Version int          `json:"version" yaml:"version" msgpack:"version"`
		Decls   []declRecord `json:"decls" yaml:"decls" msgpack:"decls"`
	}

	// declRecord flattens the Decl variants into one wire shape.
	declRecord struct {
		Kind       string `json:"kind" yaml:"kind" msgpack:"kind"`
		DeclInfo   `yaml:",inline" msgpack:",inline"`
		Fields     []string `json:"fields,omitempty" yaml:"fields,omitempty" msgpack:"fields,omitempty"`
		Underlying string   `json:"underlying,omitempty" yaml:"underlying,omitempty" msgpack:"underlying,omitempty"`
		Target     *TypeRef `json:"target,omitempty" yaml:"target,omitempty" msgpack:"target,omitempty"`
	}
)

func newDeclRecord(d Decl) declRecord {
	r := declRecord{Kind: KindOf(d), DeclInfo: *d.Info()}
	switch d := d.(type) {
	case *StructDecl:
		r.Fields = d.Fields
	case *NamedDecl:
		r.Underlying = d.Underlying
	case *AliasDecl:
		target := d.Target
		r.Target = &target
	}
	return r
}

func (r declRecord) decl() (Decl, error) {
	switch r.Kind {
	case "struct":
		return &StructDecl{DeclInfo: r.DeclInfo, Fields: r.Fields}, nil
	case "named":
		return &NamedDecl{DeclInfo: r.DeclInfo, Underlying: r.Underlying}, nil
	case "interface":
		return &InterfaceDecl{DeclInfo: r.DeclInfo}, nil
	case "alias":
		d := &AliasDecl{DeclInfo: r.DeclInfo}
		if r.Target != nil {
			d.Target = *r.Target
		}
		return d, nil
	default:
		return nil, fmt.Errorf("load: declaration %q has unknown kind %q", r.Name, r.Kind)
	}
}

// Encode writes the snapshot to w in the given format.
func Encode(w io.Writer, f Format, s *Snapshot) error {
	rec := snapshotRecord{Version: snapshotVersion, Decls: make([]declRecord, 0, s.Len())}
	for _, d := range s.Decls() {
		rec.Decls = append(rec.Decls, newDeclRecord(d))
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(rec)
	default:
		return fmt.Errorf("load: unsupported snapshot format %q", f)
	}
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	var rec snapshotRecord
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&rec)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&rec)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&rec)
	default:
		return nil, fmt.Errorf("load: unsupported snapshot format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("load: decode %s snapshot: %w", f, err)
	}
	if rec.Version > snapshotVersion {
		return nil, fmt.Errorf("load: snapshot version %d is newer than supported version %d", rec.Version, snapshotVersion)
	}
	decls := make([]Decl, 0, len(rec.Decls))
	for _, dr := range rec.Decls {
		d, err := dr.decl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return NewSnapshot(decls...), nil
}
