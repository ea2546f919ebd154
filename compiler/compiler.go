// Package compiler runs entitysql generation passes over Go packages.
//
//	res, err := compiler.Generate(ctx, []string{"./..."})
//
// A pass loads the packages matched by the patterns, collects the marked
// target types and writes one statements file per target. Every
// well-formed request is written even when others fail; the returned error
// joins the diagnostics of the failed ones.
package compiler

import (
	"context"
	"errors"

	"github.com/syssam/entitysql/compiler/gen"
	"github.com/syssam/entitysql/compiler/load"
)

// Load builds the configuration from the options and loads the packages
// matched by the patterns.
func Load(ctx context.Context, patterns []string, opts ...gen.Option) (*load.Snapshot, *gen.Config, error) {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, nil, err
	}
	cfg.Logger.Debug("loading packages", "patterns", patterns, "dir", cfg.Load.Dir)
	snap, err := load.Load(ctx, &cfg.Load, patterns...)
	if err != nil {
		return nil, nil, err
	}
	cfg.Logger.Debug("packages loaded", "declarations", snap.Len())
	return snap, cfg, nil
}

// Generate loads the packages matched by the patterns and generates the
// statements files of their marked types.
func Generate(ctx context.Context, patterns []string, opts ...gen.Option) (*gen.Result, error) {
	snap, cfg, err := Load(ctx, patterns, opts...)
	if err != nil {
		return nil, err
	}
	return GenerateSnapshot(ctx, snap, cfg)
}

// GenerateSnapshot generates and writes the statements files of the
// snapshot, then removes the generated files no marked type owns. The
// result is returned whenever the pass ran, together with an error joining
// its diagnostics and write failures.
func GenerateSnapshot(ctx context.Context, snap *load.Snapshot, cfg *gen.Config) (*gen.Result, error) {
	if cfg == nil {
		cfg = gen.MustNewConfig()
	}
	res, err := gen.Generate(ctx, snap, cfg)
	if err != nil {
		return nil, err
	}
	w := gen.NewWriter(cfg)
	werr := w.Write(ctx, res.Outputs)
	if werr == nil {
		removed, perr := w.Prune(snap)
		if cfg.Logger != nil {
			for _, path := range removed {
				cfg.Logger.Info("removed stale output", "file", path)
			}
		}
		werr = perr
	}
	return res, errors.Join(werr, res.Err())
}
