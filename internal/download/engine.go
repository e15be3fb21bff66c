// Package download drives the per-unit pipeline: expand the date spec into
// units, resolve each against the archive, fetch, name, and write, and
// collect one result per unit. A failure or skip of one unit never aborts
// the run.
package download

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/observingClouds/satdownload/internal/fetch"
	"github.com/observingClouds/satdownload/internal/outname"
	"github.com/observingClouds/satdownload/internal/resolver"
	"github.com/observingClouds/satdownload/internal/timerange"
)

// maxWorkers caps the fetch worker pool; archives rate-limit aggressively.
const maxWorkers = 16

// Fetcher is the slice of fetch.Fetcher the engine needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string, wantSize int64, dest string) (int64, error)
	AlreadySatisfied(wantSize int64, dest string) bool
}

// Namer renders the destination path for a unit.
type Namer interface {
	RenderAndPrepare(ts time.Time, vals outname.Values) (string, error)
}

// Engine wires resolver, fetcher, and namer together for one run.
type Engine struct {
	Resolver resolver.Resolver
	Fetcher  Fetcher
	Namer    Namer
	// Values supplies the per-unit template placeholder values.
	Values func(u Unit) outname.Values
	// Workers bounds concurrent units; 0 or 1 means sequential.
	Workers int
}

// Run processes the cross product of the spec's instants and the
// selectors, in registration order. The returned summary lists results in
// unit order regardless of completion order; the returned error is only
// non-nil for run-level problems (context cancellation), never for
// per-unit failures.
func (e *Engine) Run(ctx context.Context, spec timerange.DateSpec, selectors []string) (*Summary, error) {
	units := expand(spec, selectors)
	results := make([]Result, len(units))

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	zap.L().Info("starting download run",
		zap.Int("units", len(units)),
		zap.Int("workers", workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range units {
		u := units[i]
		g.Go(func() error {
			// Each unit owns results[u.Index]; no shared mutable state.
			results[u.Index] = e.process(gctx, u)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return summarize(results), nil
}

// expand enumerates units ordered by instant, then selector registration
// order.
func expand(spec timerange.DateSpec, selectors []string) []Unit {
	units := make([]Unit, 0, spec.Count()*len(selectors))
	for ts := range spec.Timestamps() {
		for _, sel := range selectors {
			units = append(units, Unit{Index: len(units), Timestamp: ts, Selector: sel})
		}
	}
	return units
}

// process walks one unit through resolve, name, and fetch.
func (e *Engine) process(ctx context.Context, u Unit) Result {
	log := zap.L().With(zap.Time("timestamp", u.Timestamp), zap.String("selector", u.Selector))

	locs, err := e.Resolver.Resolve(ctx, u.Timestamp, u.Selector)
	if err != nil {
		log.Warn("resolve failed", zap.Error(err))
		return Result{Unit: u, Outcome: OutcomeFailed, Err: err}
	}
	if len(locs) == 0 {
		log.Info("no remote data for unit, skipping")
		return Result{Unit: u, Outcome: OutcomeSkipped}
	}
	// Closest-match resolution yields at most one locator per unit.
	loc := locs[0]

	vals := outname.Values{}
	if e.Values != nil {
		vals = e.Values(u)
	}
	path, err := e.Namer.RenderAndPrepare(loc.Timestamp, vals)
	if err != nil {
		log.Warn("output naming failed", zap.Error(err))
		return Result{Unit: u, Outcome: OutcomeFailed, Err: err}
	}

	if e.Fetcher.AlreadySatisfied(loc.Size, path) {
		log.Info("output already satisfied", zap.String("path", path))
		return Result{Unit: u, Outcome: OutcomeAlready, Path: path}
	}

	n, err := e.Fetcher.Fetch(ctx, loc.URL, loc.Size, path)
	if err != nil {
		var nf *fetch.NotFoundError
		if errors.As(err, &nf) {
			log.Info("remote file gone, skipping", zap.String("url", loc.URL))
			return Result{Unit: u, Outcome: OutcomeSkipped}
		}
		log.Warn("fetch failed", zap.String("url", loc.URL), zap.Error(err))
		return Result{Unit: u, Outcome: OutcomeFailed, Err: err}
	}

	log.Info("written", zap.String("path", path), zap.Int64("bytes", n))
	return Result{Unit: u, Outcome: OutcomeWritten, Path: path, Bytes: n}
}

func summarize(results []Result) *Summary {
	s := &Summary{Results: results}
	for i, r := range results {
		switch r.Outcome {
		case OutcomeWritten:
			s.Written++
		case OutcomeAlready:
			s.Already++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
			var ae *fetch.AuthError
			if i == 0 && errors.As(r.Err, &ae) {
				// A rejected credential on the very first unit will almost
				// certainly repeat for every unit.
				zap.L().Error("authentication rejected on the first unit; check the supplied credentials",
					zap.Error(r.Err))
			}
		}
	}

	zap.L().Info("run complete",
		zap.Int("written", s.Written),
		zap.Int("already", s.Already),
		zap.Int("skipped", s.Skipped),
		zap.Int("failed", s.Failed),
	)
	return s
}
