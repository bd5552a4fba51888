// Package pipeline orchestrates one sort run: route every file through the
// pattern engine, resolve destination collisions, and commit the results.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"dcimsort/dcim/media"
	"dcimsort/dcim/pattern"
	"dcimsort/dcim/sorting"
)

// Report aggregates the per-run counters.
type Report struct {
	Total       int
	Sorted      int
	Skipped     int
	Duplicates  int
	Renamed     int
	Failed      int
	Undecidable int
}

func (r Report) String() string {
	return fmt.Sprintf("total: %d sorted: %d skipped: %d duplicates: %d renamed: %d failed: %d undecidable: %d",
		r.Total, r.Sorted, r.Skipped, r.Duplicates, r.Renamed, r.Failed, r.Undecidable)
}

// Pipeline wires the router, resolver and file operations for one sort run.
// The router and policy are immutable; the resolver's destination index is
// the only shared mutable state and is discarded with the pipeline.
type Pipeline struct {
	router   *pattern.Router
	resolver *sorting.Resolver
	ops      *sorting.FileOps
	comparer *sorting.FileComparer
	policy   sorting.DuplicateResolution
	workers  int

	asserts *assert.AssertHandler
	log     zerolog.Logger
}

// New creates a pipeline. A fresh pipeline (and with it a fresh destination
// index) must be created per sort run. The resolver probes the target tree
// before granting a rename candidate, so suffixed files left by earlier runs
// are never clobbered.
func New(router *pattern.Router, policy sorting.DuplicateResolution, ops *sorting.FileOps, workers int, log zerolog.Logger) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	onDisk := func(rel string) bool {
		_, err := os.Stat(ops.TargetPath(rel))
		return err == nil
	}
	return &Pipeline{
		router:   router,
		resolver: sorting.NewResolver(policy, onDisk, log),
		ops:      ops,
		comparer: sorting.DefaultComparer(),
		policy:   policy,
		workers:  workers,
		asserts:  assert.NewAssertHandler(),
		log:      log.With().Str("component", "pipeline").Logger(),
	}
}

// Run sorts all files and returns the aggregated report. Per-file failures
// are logged and counted but never abort the batch.
func (p *Pipeline) Run(ctx context.Context, files []*media.Info) (Report, error) {
	runID := uuid.New()
	log := p.log.With().Str("run_id", runID.String()).Logger()
	log.Info().Int("files", len(files)).Msg("starting sort run")

	p.asserts.Assert(ctx, p.workers > 0, "worker pool size must be positive")

	var mu sync.Mutex
	report := Report{Total: len(files)}

	workers := pool.New().WithContext(ctx).WithMaxGoroutines(p.workers)
	for _, file := range files {
		file := file
		workers.Go(func(ctx context.Context) error {
			outcome := p.processFile(ctx, file, log)
			mu.Lock()
			defer mu.Unlock()
			report.Sorted += outcome.Sorted
			report.Skipped += outcome.Skipped
			report.Duplicates += outcome.Duplicates
			report.Renamed += outcome.Renamed
			report.Failed += outcome.Failed
			report.Undecidable += outcome.Undecidable
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return report, err
	}

	log.Info().Str("report", report.String()).Msg("sort run complete")
	return report, nil
}

// processFile routes, resolves and commits a single file, returning its
// contribution to the run report.
func (p *Pipeline) processFile(ctx context.Context, file *media.Info, log zerolog.Logger) Report {
	var out Report

	// route: pure and parallel-safe
	relDir := p.router.Route(file.Bag)
	candidate := path.Join(relDir, file.Bag.Filename)

	// a pre-existing occupant in the destination tree takes part in
	// collision resolution like any file routed earlier in the run
	p.registerExisting(candidate)

	res, err := p.resolver.Resolve(candidate, file.Identity)
	if err != nil {
		log.Warn().Err(err).Str("file", file.Path).Msg("collision undecidable")
		out.Undecidable++
		out.Skipped++
		return out
	}

	switch res.Outcome {
	case sorting.OutcomeSkip:
		log.Debug().Str("file", file.Path).Str("dst", candidate).Msg("skipped: destination occupied")
		out.Duplicates++
		out.Skipped++
		return out
	case sorting.OutcomeReplace:
		out.Duplicates++
		if p.skipIdenticalReplace(file, res.Path, log) {
			out.Skipped++
			return out
		}
	case sorting.OutcomeRenamed:
		p.asserts.Assert(ctx, res.Path != candidate, "a rename grant must not reuse the colliding path")
		out.Duplicates++
		out.Renamed++
	}

	if err := p.ops.Commit(ctx, file.Path, res.Path); err != nil {
		log.Error().Err(err).Str("file", file.Path).Str("dst", res.Path).Msg("failed to sort file")
		out.Failed++
		return out
	}
	out.Sorted++
	return out
}

// registerExisting grants an on-disk occupant of the candidate path its
// index entry before the new file is resolved, so pre-existing files and
// in-run collisions follow one policy. The check-and-insert is atomic on
// the resolver side; workers racing on the same candidate register the
// occupant exactly once.
func (p *Pipeline) registerExisting(candidate string) {
	dst := p.ops.TargetPath(candidate)
	info, err := os.Stat(dst)
	if err != nil || info.IsDir() {
		return
	}
	p.resolver.RegisterOccupant(candidate, media.NewIdentity(dst, info.Size(), info.ModTime()))
}

// skipIdenticalReplace avoids rewriting a destination file that already
// holds the same content as the source. Only meaningful for Compare
// policies committing real files.
func (p *Pipeline) skipIdenticalReplace(file *media.Info, rel string, log zerolog.Logger) bool {
	if p.policy.Strategy != sorting.StrategyCompare || p.ops.Operation() == sorting.OpSimulate {
		return false
	}
	dst := p.ops.TargetPath(rel)
	if _, err := os.Stat(dst); err != nil {
		return false
	}
	match, err := p.comparer.FilesMatch(file.Path, dst)
	if err != nil {
		log.Warn().Err(err).Str("file", file.Path).Str("dst", dst).Msg("content comparison failed")
		return false
	}
	if match {
		log.Debug().Str("file", file.Path).Str("dst", dst).Msg("destination already holds identical content")
	}
	return match
}

// Resolver exposes the run's destination index, mainly for inspection in
// tests and simulations.
func (p *Pipeline) Resolver() *sorting.Resolver {
	return p.resolver
}
