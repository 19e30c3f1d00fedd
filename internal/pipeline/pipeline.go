// Package pipeline runs the four extraction phases: parallel parse and
// extract, global index construction, parallel scan and resolve, and
// final assembly. The index build is a hard barrier: a call in one file
// may resolve to a symbol in a file processed later, so nothing resolves
// until every table exists.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/henrythdu/GraphMigrator/internal/discover"
	"github.com/henrythdu/GraphMigrator/internal/extractor"
	"github.com/henrythdu/GraphMigrator/internal/graph"
	"github.com/henrythdu/GraphMigrator/internal/index"
	"github.com/henrythdu/GraphMigrator/internal/parser"
	"github.com/henrythdu/GraphMigrator/internal/resolver"
	"github.com/henrythdu/GraphMigrator/internal/scanner"
)

// Options tunes a run. Zero values mean GOMAXPROCS workers and the
// default slog logger.
type Options struct {
	Workers int
	Logger  *slog.Logger
}

// Result is the output of one run.
type Result struct {
	Graph *graph.Graph
	Stats resolver.Stats
	Sites int
}

type fileResult struct {
	entry discover.FileEntry
	table *extractor.SymbolTable
	err   error
}

type resolveResult struct {
	edges      []graph.CallEdge
	unresolved []graph.UnresolvedCall
	stats      resolver.Stats
	sites      int
}

// Run executes all phases over the discovered files. A single file's
// read or parse failure is recorded on the graph and never cancels the
// run; only a structural violation during assembly aborts.
func Run(ctx context.Context, files []discover.FileEntry, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	// Phase 1: parse + extract, one worker per file, no shared state.
	start := time.Now()
	results := make([]fileResult, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, entry := range files {
		eg.Go(func() error {
			results[i] = extractFile(egCtx, entry)
			return egCtx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	tables := make([]*extractor.SymbolTable, 0, len(results))
	var failed []fileResult
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r)
			continue
		}
		tables = append(tables, r.table)
	}
	log.Debug("extraction complete",
		"files", len(files), "failures", len(failed), "elapsed", time.Since(start))

	// Phase 2: single fold over all tables. Frozen from here on.
	idx := index.Build(tables)
	log.Debug("global index built", "names", idx.Names())

	// Phase 3: scan + resolve per file against the frozen tables/index.
	start = time.Now()
	resolved := make([]resolveResult, len(tables))
	res := resolver.New(idx)
	eg, egCtx = errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, t := range tables {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			sites := scanner.Scan(t)
			edges, unresolvedCalls, stats := res.ResolveFile(t, sites)
			resolved[i] = resolveResult{
				edges:      edges,
				unresolved: unresolvedCalls,
				stats:      stats,
				sites:      len(sites),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	log.Debug("resolution complete", "elapsed", time.Since(start))

	// Phase 4: assembly, read-only aggregation.
	g := graph.New()
	for _, t := range tables {
		g.AddSymbols(t)
	}
	out := &Result{Graph: g}
	for _, r := range resolved {
		for _, e := range r.edges {
			if err := g.AddEdge(e); err != nil {
				return nil, err
			}
		}
		for _, u := range r.unresolved {
			if err := g.AddUnresolved(u); err != nil {
				return nil, err
			}
		}
		out.Stats.Attempted += r.stats.Attempted
		out.Stats.Resolved += r.stats.Resolved
		out.Stats.Skipped += r.stats.Skipped
		out.Sites += r.sites
	}
	for _, r := range failed {
		g.AddFailure(r.entry.Path, r.err)
	}
	g.Finalize()

	log.Info("run complete",
		"nodes", len(g.Nodes), "edges", len(g.Edges),
		"unresolved", len(g.Unresolved), "failures", len(g.Failures))
	return out, nil
}

func extractFile(ctx context.Context, entry discover.FileEntry) fileResult {
	source, err := os.ReadFile(entry.Abs)
	if err != nil {
		return fileResult{entry: entry, err: err}
	}
	lp, err := parser.ForLanguage(entry.Language)
	if err != nil {
		return fileResult{entry: entry, err: err}
	}
	file, err := lp.Parse(ctx, entry.Path, source)
	if err != nil {
		return fileResult{entry: entry, err: err}
	}
	return fileResult{entry: entry, table: extractor.Extract(file)}
}
