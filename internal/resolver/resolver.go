// Package resolver maps identifier-shaped call sites to symbols. Lookup
// order is fixed: the caller's own file first, then the global index.
// Same-file calls therefore always win over cross-file name collisions,
// and a cross-file tie is reported as ambiguous instead of guessed.
package resolver

import (
	"github.com/henrythdu/GraphMigrator/internal/extractor"
	"github.com/henrythdu/GraphMigrator/internal/graph"
	"github.com/henrythdu/GraphMigrator/internal/index"
	"github.com/henrythdu/GraphMigrator/internal/scanner"
)

// Stats counts resolution outcomes for one batch of call sites.
type Stats struct {
	Attempted int
	Resolved  int
	Skipped   int
}

func (s *Stats) add(o Stats) {
	s.Attempted += o.Attempted
	s.Resolved += o.Resolved
	s.Skipped += o.Skipped
}

// Resolver resolves call sites against a frozen global index.
type Resolver struct {
	idx *index.GlobalIndex
}

func New(idx *index.GlobalIndex) *Resolver {
	return &Resolver{idx: idx}
}

// ResolveFile resolves every site scanned from one file's table. Each
// site yields exactly one outcome: an edge or an unresolved record.
func (r *Resolver) ResolveFile(t *extractor.SymbolTable, sites []scanner.CallSite) ([]graph.CallEdge, []graph.UnresolvedCall, Stats) {
	var (
		edges      []graph.CallEdge
		unresolved []graph.UnresolvedCall
		stats      Stats
	)
	for _, site := range sites {
		edge, miss, one := r.resolve(t, site)
		stats.add(one)
		if miss != nil {
			unresolved = append(unresolved, *miss)
			continue
		}
		edges = append(edges, *edge)
	}
	return edges, unresolved, stats
}

func (r *Resolver) resolve(t *extractor.SymbolTable, site scanner.CallSite) (*graph.CallEdge, *graph.UnresolvedCall, Stats) {
	switch site.Shape {
	case scanner.ShapeDotted:
		return nil, unresolvedFrom(t, site, graph.ReasonDotted), Stats{Skipped: 1}
	case scanner.ShapeMethod:
		return nil, unresolvedFrom(t, site, graph.ReasonMethod), Stats{Skipped: 1}
	}

	// Same-file lookup first. The table only answers with canonical
	// symbols, so a shadowed declaration can never become a target.
	if target, ok := t.Lookup(site.CalleeText); ok {
		return edgeFrom(t, site, target), nil, Stats{Attempted: 1, Resolved: 1}
	}

	candidates := r.idx.Lookup(site.CalleeText)
	switch len(candidates) {
	case 0:
		return nil, unresolvedFrom(t, site, graph.ReasonUnknown), Stats{Attempted: 1}
	case 1:
		return edgeFrom(t, site, candidates[0]), nil, Stats{Attempted: 1, Resolved: 1}
	default:
		return nil, unresolvedFrom(t, site, graph.ReasonAmbiguous), Stats{Attempted: 1}
	}
}

func edgeFrom(t *extractor.SymbolTable, site scanner.CallSite, target *extractor.Symbol) *graph.CallEdge {
	return &graph.CallEdge{
		Caller: site.Caller,
		Callee: target.ID,
		File:   t.File,
		Span:   site.Span,
	}
}

func unresolvedFrom(t *extractor.SymbolTable, site scanner.CallSite, reason graph.UnresolvedReason) *graph.UnresolvedCall {
	return &graph.UnresolvedCall{
		Caller:     site.Caller,
		CalleeText: site.CalleeText,
		Reason:     reason,
		File:       t.File,
		Span:       site.Span,
	}
}
