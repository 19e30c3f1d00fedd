// Package analysis answers "what breaks if these lines change" over a
// call graph: symbols whose spans overlap the changed lines, plus the
// transitive closure of their callers.
package analysis

import (
	"sort"

	"github.com/henrythdu/GraphMigrator/internal/extractor"
	"github.com/henrythdu/GraphMigrator/internal/git"
	"github.com/henrythdu/GraphMigrator/internal/graph"
)

// ImpactReport lists affected symbols. DirectlyAffected symbols overlap
// a changed line; IndirectlyAffected symbols reach one of them through
// call edges (callers, callers of callers, and so on).
type ImpactReport struct {
	DirectlyAffected   []*extractor.Symbol
	IndirectlyAffected []*extractor.Symbol
}

// Analyzer performs impact analysis on an assembled graph.
type Analyzer struct {
	g *graph.Graph
}

func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// AnalyzeImpact maps changed files/lines onto graph symbols.
func (a *Analyzer) AnalyzeImpact(changes []git.ChangedFile) *ImpactReport {
	report := &ImpactReport{
		DirectlyAffected:   []*extractor.Symbol{},
		IndirectlyAffected: []*extractor.Symbol{},
	}

	byFile := make(map[string][]*extractor.Symbol)
	for _, sym := range a.g.Nodes {
		byFile[sym.File] = append(byFile[sym.File], sym)
	}

	direct := make(map[extractor.SymbolID]bool)
	for _, change := range changes {
		for _, sym := range byFile[change.Path] {
			if direct[sym.ID] || !overlaps(sym, change.ChangedLines) {
				continue
			}
			direct[sym.ID] = true
			report.DirectlyAffected = append(report.DirectlyAffected, sym)
		}
	}

	// Walk caller edges transitively from every directly affected
	// symbol. Cycles are fine: the seen set terminates the walk.
	seen := make(map[extractor.SymbolID]bool)
	queue := make([]extractor.SymbolID, 0, len(report.DirectlyAffected))
	for id := range direct {
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range a.g.CallersOf(id) {
			if direct[e.Caller] || seen[e.Caller] {
				continue
			}
			seen[e.Caller] = true
			if caller, ok := a.g.Node(e.Caller); ok {
				report.IndirectlyAffected = append(report.IndirectlyAffected, caller)
			}
			queue = append(queue, e.Caller)
		}
	}

	sortSymbols(report.DirectlyAffected)
	sortSymbols(report.IndirectlyAffected)
	return report
}

func overlaps(sym *extractor.Symbol, lines []int) bool {
	for _, line := range lines {
		if line >= sym.Span.StartLine && line <= sym.Span.EndLine {
			return true
		}
	}
	return false
}

func sortSymbols(syms []*extractor.Symbol) {
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].File != syms[j].File {
			return syms[i].File < syms[j].File
		}
		return syms[i].Span.StartByte < syms[j].Span.StartByte
	})
}
