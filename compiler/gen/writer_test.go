package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/entitysql/compiler/load"
)

// generated renders the test snapshot as if its package lived in dir.
func generated(t *testing.T, cfg *Config, dir string) []*Output {
	t.Helper()
	res, err := Generate(context.Background(), testSnapshot(), cfg)
	require.NoError(t, err)
	require.NoError(t, res.Err())
	for _, o := range res.Outputs {
		o.Dir = dir
	}
	return res.Outputs
}

const generatedHeader = "// Code generated by entitysql. DO NOT EDIT.\n\npackage data\n"

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	cfg := MustNewConfig()
	outs := generated(t, cfg, dir)

	w := NewWriter(cfg)
	require.NoError(t, w.Write(context.Background(), outs))

	for _, name := range []string{"user_sql_entitysql.go", "audit_sql_entitysql.go"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Contains(t, string(b), "// Code generated by entitysql. DO NOT EDIT.")
		assert.Contains(t, string(b), "package data")
	}
	m := w.Metrics()
	assert.Equal(t, 2, m.FilesGenerated)
	assert.Zero(t, m.FilesUnchanged)
	assert.Positive(t, m.TotalBytes)

	t.Run("unchanged files are skipped", func(t *testing.T) {
		w := NewWriter(cfg)
		require.NoError(t, w.Write(context.Background(), outs))
		assert.Equal(t, 2, w.Metrics().FilesUnchanged)
		assert.Zero(t, w.Metrics().FilesGenerated)
	})
}

func TestWriterDryRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg := MustNewConfig(WithDryRun(true))
	w := NewWriter(cfg)
	require.NoError(t, w.Write(context.Background(), generated(t, cfg, dir)))

	assert.Equal(t, 2, w.Metrics().FilesGenerated)
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestWriterErrors(t *testing.T) {
	t.Run("invalid source is dumped", func(t *testing.T) {
		dir := t.TempDir()
		out := &Output{Key: "bad.T", Filename: "bad.go", Dir: dir, Text: []byte("package bad\n\nfunc {\n")}
		err := NewWriter(nil).Write(context.Background(), []*Output{out})
		require.Error(t, err)
		assert.True(t, IsGenerationError(err))

		b, err := os.ReadFile(filepath.Join(dir, "bad.go.error"))
		require.NoError(t, err)
		assert.Equal(t, out.Text, b)
		_, err = os.Stat(filepath.Join(dir, "bad.go"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("unknown directory", func(t *testing.T) {
		out := &Output{Key: "x.T", Filename: "t_entitysql.go", Text: []byte("package x\n")}
		err := NewWriter(nil).Write(context.Background(), []*Output{out})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output directory of x.T is unknown")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := MustNewConfig()
		err := NewWriter(cfg).Write(ctx, generated(t, cfg, t.TempDir()))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWriterPrune(t *testing.T) {
	setup := func(t *testing.T) (string, *load.Snapshot) {
		t.Helper()
		dir := t.TempDir()
		files := map[string]string{
			"user_sql_entitysql.go":   generatedHeader,
			"broken_entitysql.go":     generatedHeader,
			"old_sql_entitysql.go":    generatedHeader,
			"notes_entitysql.go":      "package data\n",
			"old_sql.go":              generatedHeader,
			"old_sql_entitysql.go.bk": generatedHeader,
		}
		for name, src := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
		}
		user := target("UserSql", marker(MarkerGenerate, typeArg(modelsPkg, "User"), strArg("Users")))
		broken := target("Broken", marker(MarkerGenerate, typeArg(modelsPkg, "User")))
		user.Dir, broken.Dir = dir, dir
		return dir, load.NewSnapshot(user, broken, entity("User", "Id", "Name"))
	}

	t.Run("removes unowned generated files", func(t *testing.T) {
		dir, snap := setup(t)
		w := NewWriter(MustNewConfig())
		removed, err := w.Prune(snap)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "old_sql_entitysql.go")}, removed)
		assert.Equal(t, 1, w.Metrics().FilesRemoved)

		assert.NoFileExists(t, filepath.Join(dir, "old_sql_entitysql.go"))
		assert.FileExists(t, filepath.Join(dir, "user_sql_entitysql.go"))
		assert.FileExists(t, filepath.Join(dir, "broken_entitysql.go"), "a malformed marker keeps its file")
		assert.FileExists(t, filepath.Join(dir, "notes_entitysql.go"), "hand-written files are kept")
		assert.FileExists(t, filepath.Join(dir, "old_sql.go"))
	})

	t.Run("dry run only reports", func(t *testing.T) {
		dir, snap := setup(t)
		removed, err := NewWriter(MustNewConfig(WithDryRun(true))).Prune(snap)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "old_sql_entitysql.go")}, removed)
		assert.FileExists(t, filepath.Join(dir, "old_sql_entitysql.go"))
	})

	t.Run("missing directory", func(t *testing.T) {
		d := target("UserSql", marker(MarkerGenerate, typeArg(modelsPkg, "User"), strArg("Users")))
		d.Dir = filepath.Join(t.TempDir(), "gone")
		removed, err := NewWriter(nil).Prune(load.NewSnapshot(d))
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}
