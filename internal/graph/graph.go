// Package graph assembles extraction and resolution results into the
// final queryable call graph: node list, edge list, unresolved-call list,
// plus per-run file failures.
package graph

import (
	"fmt"
	"sort"

	"github.com/henrythdu/GraphMigrator/internal/extractor"
)

// Graph is the assembled output of one run. It is populated through
// AddSymbols/AddEdge/AddUnresolved and frozen by Finalize; nothing in the
// graph is mutated after that.
type Graph struct {
	Nodes      []*extractor.Symbol
	Edges      []CallEdge
	Unresolved []UnresolvedCall
	Failures   []FileFailure

	byID map[extractor.SymbolID]*extractor.Symbol
}

func New() *Graph {
	return &Graph{byID: make(map[extractor.SymbolID]*extractor.Symbol)}
}

// AddSymbols registers every symbol of one table as a node, shadowed
// symbols included: every extracted declaration appears in the output
// regardless of its edge count.
func (g *Graph) AddSymbols(t *extractor.SymbolTable) {
	for _, sym := range t.Symbols() {
		g.Nodes = append(g.Nodes, sym)
		g.byID[sym.ID] = sym
	}
}

// AddEdge appends a resolved call. Both endpoints must already be nodes
// and the callee must be canonical; a violation is a bug in extraction or
// resolution, not bad input, and aborts the run.
func (g *Graph) AddEdge(e CallEdge) error {
	if _, ok := g.byID[e.Caller]; !ok {
		return fmt.Errorf("edge caller %d: no such symbol", e.Caller)
	}
	callee, ok := g.byID[e.Callee]
	if !ok {
		return fmt.Errorf("edge callee %d: no such symbol", e.Callee)
	}
	if callee.Shadowed {
		return fmt.Errorf("edge targets shadowed symbol %s", callee.Key())
	}
	g.Edges = append(g.Edges, e)
	return nil
}

// AddUnresolved appends a non-edge outcome.
func (g *Graph) AddUnresolved(u UnresolvedCall) error {
	if _, ok := g.byID[u.Caller]; !ok {
		return fmt.Errorf("unresolved caller %d: no such symbol", u.Caller)
	}
	g.Unresolved = append(g.Unresolved, u)
	return nil
}

// AddFailure records a file excluded from the run.
func (g *Graph) AddFailure(path string, err error) {
	g.Failures = append(g.Failures, FileFailure{Path: path, Err: err.Error()})
}

// Node returns a symbol by ID.
func (g *Graph) Node(id extractor.SymbolID) (*extractor.Symbol, bool) {
	s, ok := g.byID[id]
	return s, ok
}

// FindByName returns every node with the given name, shadowed included.
func (g *Graph) FindByName(name string) []*extractor.Symbol {
	var out []*extractor.Symbol
	for _, n := range g.Nodes {
		if n.Name == name {
			out = append(out, n)
		}
	}
	return out
}

// CallersOf returns every edge whose callee is id, one per call site.
func (g *Graph) CallersOf(id extractor.SymbolID) []CallEdge {
	var out []CallEdge
	for _, e := range g.Edges {
		if e.Callee == id {
			out = append(out, e)
		}
	}
	return out
}

// CalleesOf returns every edge whose caller is id, one per call site.
func (g *Graph) CalleesOf(id extractor.SymbolID) []CallEdge {
	var out []CallEdge
	for _, e := range g.Edges {
		if e.Caller == id {
			out = append(out, e)
		}
	}
	return out
}

// Finalize sorts all lists into a deterministic order. Extraction runs
// in parallel, so insertion order depends on scheduling; sorting by file
// and span makes runs comparable.
func (g *Graph) Finalize() {
	sort.Slice(g.Nodes, func(i, j int) bool {
		a, b := g.Nodes[i], g.Nodes[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Span.StartByte < b.Span.StartByte
	})
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Span.StartByte < b.Span.StartByte
	})
	sort.Slice(g.Unresolved, func(i, j int) bool {
		a, b := g.Unresolved[i], g.Unresolved[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Span.StartByte < b.Span.StartByte
	})
	sort.Slice(g.Failures, func(i, j int) bool {
		return g.Failures[i].Path < g.Failures[j].Path
	})
}

// RebuildIndex restores the internal ID lookup after loading a graph
// from storage.
func (g *Graph) RebuildIndex() {
	g.byID = make(map[extractor.SymbolID]*extractor.Symbol, len(g.Nodes))
	for _, n := range g.Nodes {
		g.byID[n.ID] = n
	}
}
