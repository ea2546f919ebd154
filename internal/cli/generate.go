// Package cli implements the entitysql commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/entitysql/compiler/gen"
	"github.com/syssam/entitysql/compiler/load"
)

type generateOptions struct {
	snapshot string
	dir      string
	header   string
	suffix   string
	workers  int
	dryRun   bool
	watch    bool
	tags     []string
	verbose  bool
}

// GenerateCmd returns the generate command.
func GenerateCmd() *cobra.Command {
	var o generateOptions

	cmd := &cobra.Command{
		Use:   "generate [packages]",
		Short: "Generate statement methods for marked types",
		Long: `Load the Go packages matching the patterns (default ".") and generate
the statement methods of every type marked with //entitysql:generate or
//entitysql:crud.

Each file is written next to its marked type. Generated files that no
marked type owns any more are removed.

Malformed markers and unknown entities are reported and skipped; all other
files are still written. The command fails if anything was reported.`,
		Example: `  entitysql generate ./...
  entitysql generate --dry-run ./internal/store
  entitysql generate -C ./service ./...
  entitysql generate --snapshot decls.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}

	cmd.Flags().StringVar(&o.snapshot, "snapshot", "", "read declarations from a snapshot file instead of loading packages")
	cmd.Flags().StringVarP(&o.dir, "dir", "C", "", "resolve package patterns in `dir`")
	cmd.Flags().StringVar(&o.header, "header", "", "header comment of generated files")
	cmd.Flags().StringVar(&o.suffix, "suffix", "", "suffix of generated file names (default \"_entitysql.go\")")
	cmd.Flags().IntVarP(&o.workers, "workers", "j", 0, "number of parallel render workers (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "render without writing files")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "regenerate when Go files change")
	cmd.Flags().StringSliceVar(&o.tags, "tags", nil, "build tags used when loading packages")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "log debug output")
	return cmd
}

func (o *generateOptions) options(logger *slog.Logger) []gen.Option {
	opts := []gen.Option{
		gen.WithLogger(logger),
		gen.WithWorkers(o.workers),
		gen.WithDryRun(o.dryRun),
	}
	if o.dir != "" {
		opts = append(opts, gen.WithDir(o.dir))
	}
	if o.header != "" {
		opts = append(opts, gen.WithHeader(o.header))
	}
	if o.suffix != "" {
		opts = append(opts, gen.WithFileSuffix(o.suffix))
	}
	if len(o.tags) > 0 {
		opts = append(opts, gen.WithBuildFlags("-tags="+strings.Join(o.tags, ",")))
	}
	return opts
}

func (o *generateOptions) run(ctx context.Context, stdout, stderr io.Writer, patterns []string) error {
	logger := newLogger(stderr, o.verbose)
	cfg, err := gen.NewConfig(o.options(logger)...)
	if err != nil {
		return err
	}
	if !o.watch {
		_, err := o.generate(ctx, stdout, cfg, patterns)
		return err
	}
	w, err := newWatcher(cfg.FileSuffix, logger)
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintln(stdout, infoColor.Sprint("watching for changes, press Ctrl+C to stop"))
	return w.Run(ctx, func() ([]string, error) {
		return o.generate(ctx, stdout, cfg, patterns)
	})
}

// generate runs one pass and returns the directories it read from.
func (o *generateOptions) generate(ctx context.Context, stdout io.Writer, cfg *gen.Config, patterns []string) ([]string, error) {
	var (
		snap *load.Snapshot
		dirs []string
		err  error
	)
	if o.snapshot != "" {
		snap, err = readSnapshot(o.snapshot)
		if abs, aerr := filepath.Abs(o.snapshot); aerr == nil {
			dirs = []string{filepath.Dir(abs)}
		}
	} else {
		snap, err = load.Load(ctx, &cfg.Load, patterns...)
		if snap != nil {
			dirs = load.Dirs(snap)
		}
	}
	if err != nil {
		return dirs, err
	}
	res, err := gen.Generate(ctx, snap, cfg)
	if err != nil {
		return dirs, err
	}
	w := gen.NewWriter(cfg)
	werr := w.Write(ctx, res.Outputs)
	var removed []string
	if werr == nil {
		removed, werr = w.Prune(snap)
	}
	return dirs, report(stdout, res, removed, w.Metrics(), werr, cfg.DryRun)
}

func readSnapshot(path string) (*load.Snapshot, error) {
	format, err := load.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return load.Decode(f, format)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
