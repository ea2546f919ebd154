package gen

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/entitysql/compiler/load"
)

// Result is the outcome of one generation pass.
type Result struct {
	// Requests holds every well-formed request in discovery order.
	Requests []*Request
	// Outputs holds one output per successfully rendered request, in
	// request order, with unique keys and paths.
	Outputs []*Output
	// Diagnostics holds the errors of dropped markers and requests.
	Diagnostics []error
}

// Err joins the diagnostics of the pass. It is nil if nothing was dropped.
func (r *Result) Err() error {
	return errors.Join(r.Diagnostics...)
}

// Generate collects the requests of the snapshot and renders them in
// parallel. Per-request failures are recorded as diagnostics and never
// affect other requests. The returned error is set only if the pass could
// not run at all, e.g. when the context is canceled.
func Generate(ctx context.Context, snap *load.Snapshot, cfg *Config) (*Result, error) {
	if snap == nil {
		return nil, NewConfigError("Snapshot", nil, "snapshot is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.logger()
	reqs, diags := Collect(snap, cfg)
	for _, err := range diags {
		log.Warn("dropping malformed marker", "error", err)
	}

	outs := make([]*Output, len(reqs))
	errs := make([]error, len(reqs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.workers())
	for i, req := range reqs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Debug("rendering request",
				"target", req.Target.QualifiedName(),
				"entity", req.Entity.String(),
				"table", req.Table,
			)
			out, err := Render(req, snap, cfg)
			if err != nil {
				errs[i] = err
				return nil
			}
			outs[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Requests: reqs, Diagnostics: diags}
	var (
		seen  = make(map[string]bool, len(outs))
		paths = make(map[string]string, len(outs))
	)
	for i, out := range outs {
		err := errs[i]
		if err == nil {
			err = merge(out, seen, paths)
		}
		if err != nil {
			log.Warn("dropping request", "error", err)
			res.Diagnostics = append(res.Diagnostics, err)
			continue
		}
		res.Outputs = append(res.Outputs, out)
	}
	log.Info("generation pass complete",
		"requests", len(reqs),
		"outputs", len(res.Outputs),
		"diagnostics", len(res.Diagnostics),
	)
	return res, nil
}

// merge records the key and path of the output, or reports the earlier
// output that already claimed one of them. Paths compare case-insensitively.
func merge(out *Output, seen map[string]bool, paths map[string]string) error {
	if seen[out.Key] {
		return NewDuplicateOutputError(out.Key, out.Path())
	}
	path := strings.ToLower(out.Path())
	if owner, ok := paths[path]; ok {
		return NewPathCollisionError(out.Key, owner, out.Path())
	}
	seen[out.Key] = true
	paths[path] = out.Key
	return nil
}
