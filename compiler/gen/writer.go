package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/entitysql/compiler/load"
)

// Writer merges rendered outputs into the build by writing them next to
// their target types.
type Writer struct {
	cfg *Config

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks what a Writer did.
type WriterMetrics struct {
	FilesGenerated int
	FilesUnchanged int
	FilesRemoved   int
	TotalBytes     int64
}

// NewWriter creates a writer for the given config.
func NewWriter(cfg *Config) *Writer {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Writer{cfg: cfg}
}

// Metrics returns a copy of the metrics collected so far.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write formats and writes the outputs in parallel. Files whose content is
// unchanged are left untouched. In dry-run mode nothing is written.
func (w *Writer) Write(ctx context.Context, outputs []*Output) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.cfg.workers())
	for _, o := range outputs {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.write(o)
			}
		})
	}
	return eg.Wait()
}

func (w *Writer) write(o *Output) error {
	if o.Dir == "" {
		return NewGenerationError("write", o.Filename, fmt.Sprintf("output directory of %s is unknown", o.Key), nil)
	}
	path := o.Path()
	formatted, err := imports.Process(path, o.Text, nil)
	if err != nil {
		if w.cfg.DryRun {
			return NewGenerationError("format", path, "formatting generated source", err)
		}
		// Best effort dump of the unformatted source.
		debugPath := path + ".error"
		_ = os.MkdirAll(o.Dir, 0o755)
		_ = os.WriteFile(debugPath, o.Text, 0o644)
		return NewGenerationError("format", path, "unformatted source written to "+debugPath, err)
	}
	if w.cfg.DryRun {
		w.record(len(formatted), false)
		return nil
	}
	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, formatted) {
		w.record(0, true)
		return nil
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return NewGenerationError("write", path, "creating directory", err)
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return NewGenerationError("write", path, "", err)
	}
	w.record(len(formatted), false)
	return nil
}

// Prune removes the generated files of the snapshot directories that no
// marked type owns, e.g. the output of a renamed target. A marked type owns
// its file even if its marker is malformed. Only files ending in the file
// suffix with a generated code header are removed. In dry-run mode the
// files are only reported.
func (w *Writer) Prune(snap *load.Snapshot) ([]string, error) {
	owned := make(map[string]bool)
	for _, d := range snap.Decls() {
		info := d.Info()
		if slices.ContainsFunc(info.Markers, func(m *load.Marker) bool { return w.cfg.recognized(m.Name) }) {
			owned[filepath.Join(info.Dir, w.cfg.filename(info.Name))] = true
		}
	}
	var (
		removed []string
		errs    []error
		suffix  = w.cfg.fileSuffix()
	)
	for _, dir := range load.Dirs(snap) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, NewGenerationError("prune", dir, "reading directory", err))
			}
			continue
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) || owned[path] {
				continue
			}
			src, err := os.ReadFile(path)
			if err != nil || !load.IsGenerated(path, src, suffix) {
				continue
			}
			if !w.cfg.DryRun {
				if err := os.Remove(path); err != nil {
					errs = append(errs, NewGenerationError("prune", path, "", err))
					continue
				}
			}
			w.mu.Lock()
			w.metrics.FilesRemoved++
			w.mu.Unlock()
			removed = append(removed, path)
		}
	}
	return removed, errors.Join(errs...)
}

func (w *Writer) record(n int, unchanged bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if unchanged {
		w.metrics.FilesUnchanged++
		return
	}
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(n)
}
