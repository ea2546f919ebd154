package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is the quiet period after the last change before a pass
// is started.
const debounceDelay = 300 * time.Millisecond

// watcher reruns a generation pass when Go sources in the watched
// directories change.
type watcher struct {
	fs     *fsnotify.Watcher
	suffix string
	delay  time.Duration
	log    *slog.Logger
	dirs   map[string]bool
}

func newWatcher(suffix string, log *slog.Logger) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &watcher{
		fs:     fs,
		suffix: suffix,
		delay:  debounceDelay,
		log:    log,
		dirs:   make(map[string]bool),
	}, nil
}

// add starts watching the directories not watched yet.
func (w *watcher) add(dirs []string) {
	for _, dir := range dirs {
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			w.log.Warn("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		w.log.Debug("watching directory", "dir", dir)
		w.dirs[dir] = true
	}
}

// relevant reports whether the event may change the generated output.
// Generated files and tests are ignored.
func (w *watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	switch ext := filepath.Ext(name); {
	case ext == ".go":
		return !strings.HasSuffix(name, w.suffix) && !strings.HasSuffix(name, "_test.go")
	default:
		_, ok := snapshotExt[ext]
		return ok
	}
}

var snapshotExt = map[string]struct{}{".json": {}, ".yaml": {}, ".yml": {}, ".msgpack": {}, ".mpk": {}}

// Run calls pass once and again after every burst of relevant changes,
// until the context is done. pass returns the directories to watch. Pass
// errors are logged, except when the first pass has nothing to watch.
func (w *watcher) Run(ctx context.Context, pass func() ([]string, error)) error {
	dirs, err := pass()
	if err != nil {
		if len(dirs) == 0 {
			return err
		}
		w.log.Error("generation failed", "error", err)
	}
	w.add(dirs)

	timer := time.NewTimer(w.delay)
	timer.Stop()
	var debounce <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.log.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
				timer.Reset(w.delay)
				debounce = timer.C
			}
		case <-debounce:
			debounce = nil
			dirs, err := pass()
			if err != nil {
				w.log.Error("generation failed", "error", err)
			}
			w.add(dirs)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops watching.
func (w *watcher) Close() error {
	return w.fs.Close()
}
