// Package fixture copies the loader test packages into temporary modules,
// so tests can generate next to the marked types without touching the
// source tree.
package fixture

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

// Module is the module path of a copied tree. It matches the import path
// the test packages use for each other.
const Module = "github.com/syssam/entitysql/compiler/load/testdata"

// Copy copies the tree rooted at src into a temporary module and returns
// its root directory.
func Copy(t testing.TB, src string) string {
	t.Helper()
	dst := t.TempDir()
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, b, 0o644)
	})
	require.NoError(t, err)
	gomod := "module " + Module + "\n\ngo 1.24\n"
	require.NoError(t, os.WriteFile(filepath.Join(dst, "go.mod"), []byte(gomod), 0o644))
	return dst
}

// Rename replaces every occurrence of from with to in the file.
func Rename(t testing.TB, file, from, to string) {
	t.Helper()
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(b), from)
	require.NoError(t, os.WriteFile(file, []byte(strings.ReplaceAll(string(b), from, to)), 0o644))
}

// TypeCheck type checks the packages matching the patterns in dir,
// generated files included, and fails the test on any error.
func TypeCheck(t testing.TB, dir string, patterns ...string) {
	t.Helper()
	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  dir,
	}, patterns...)
	require.NoError(t, err)
	require.NotEmpty(t, pkgs)
	var errs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e.Error())
		}
	})
	require.Empty(t, errs)
}
